package service

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/gabriel-vasile/mimetype"
)

// DrawRequest 图像生成请求
type DrawRequest struct {
	Prompt       string   `json:"prompt" zog:"prompt"`
	Model        string   `json:"model"`
	AspectRatio  string   `json:"aspectRatio"`
	ImageSize    string   `json:"imageSize"`
	URLs         []string `json:"urls"`
	WebHook      string   `json:"webHook"`
	ShutProgress bool     `json:"shutProgress"`
}

// ResultRequest 结果查询请求
type ResultRequest struct {
	ID string `json:"id" zog:"id"`
}

// ChatRequest 对话请求，messages 原样透传给上游
type ChatRequest struct {
	Model    string            `json:"model"`
	Messages []json.RawMessage `json:"messages"`
	Stream   bool              `json:"stream"`
}

// KeyRequest 新增 API Key 请求
type KeyRequest struct {
	Value string `json:"value" zog:"value"`
}

func notBlank(valPtr *string, ctx z.Ctx) bool {
	return strings.TrimSpace(*valPtr) != ""
}

var drawSchema = z.Struct(z.Shape{
	"Prompt": z.String().Required(z.Message("Prompt is required")).TestFunc(notBlank, z.Message("Prompt is required")),
})

var resultSchema = z.Struct(z.Shape{
	"ID": z.String().Required(z.Message("id is required")).TestFunc(notBlank, z.Message("id is required")),
})

var keySchema = z.Struct(z.Shape{
	"Value": z.String().Required(z.Message("Api key 不能为空")).TestFunc(notBlank, z.Message("Api key 不能为空")),
})

// Validator 请求参数校验
type Validator struct {
	maxReferenceImages     int
	maxReferenceImageBytes int
}

// NewValidator 创建校验器
func NewValidator(maxReferenceImages, maxReferenceImageBytes int) *Validator {
	return &Validator{
		maxReferenceImages:     maxReferenceImages,
		maxReferenceImageBytes: maxReferenceImageBytes,
	}
}

// SanitizeURLs 去除首尾空白并丢弃空项
func (v *Validator) SanitizeURLs(urls []string) []string {
	trimmed := slice.Map(urls, func(_ int, u string) string {
		return strings.TrimSpace(u)
	})
	return slice.Filter(trimmed, func(_ int, u string) bool {
		return u != ""
	})
}

// ValidateDraw 校验图像生成请求
func (v *Validator) ValidateDraw(req *DrawRequest) error {
	if issues := drawSchema.Validate(req); len(issues) > 0 {
		return NewValidationError(firstIssue(z.Issues.Flatten(issues)))
	}
	return v.ValidateReferenceImages(req.URLs)
}

// ValidateResult 校验结果查询请求
func (v *Validator) ValidateResult(req *ResultRequest) error {
	if issues := resultSchema.Validate(req); len(issues) > 0 {
		return NewValidationError(firstIssue(z.Issues.Flatten(issues)))
	}
	return nil
}

// ValidateKey 校验 API Key
func (v *Validator) ValidateKey(req *KeyRequest) error {
	if issues := keySchema.Validate(req); len(issues) > 0 {
		return NewValidationError(firstIssue(z.Issues.Flatten(issues)))
	}
	return nil
}

// ValidateChat 校验对话请求
func (v *Validator) ValidateChat(req *ChatRequest) error {
	if len(req.Messages) == 0 {
		return NewValidationError("messages is required")
	}
	return nil
}

// ValidateReferenceImages 校验参考图数量、data URL 格式、类型与大小
func (v *Validator) ValidateReferenceImages(urls []string) error {
	if v.maxReferenceImages > 0 && len(urls) > v.maxReferenceImages {
		return NewValidationError(fmt.Sprintf("参考图数量最多 %d 张", v.maxReferenceImages))
	}
	for _, u := range urls {
		if !strings.HasPrefix(u, "data:") {
			continue
		}
		if err := v.validateDataURL(u); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateDataURL(u string) error {
	header, encoded, ok := strings.Cut(u, ",")
	if !ok {
		return NewValidationError("参考图数据格式无效")
	}

	approxSize := len(encoded) * 3 / 4
	if v.maxReferenceImageBytes > 0 && approxSize > v.maxReferenceImageBytes {
		maxMB := v.maxReferenceImageBytes / (1024 * 1024)
		return NewValidationError(fmt.Sprintf("单张参考图大小超出限制（最大 %d MB）", maxMB))
	}

	if !strings.HasSuffix(header, ";base64") {
		return NewValidationError("参考图数据格式无效")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return NewValidationError("参考图数据格式无效")
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return NewValidationError(fmt.Sprintf("参考图必须是图片，实际类型为 %s", mtype.String()))
	}
	return nil
}

// firstIssue 按字段名排序后取第一条错误信息
func firstIssue(flat map[string][]string) string {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(flat[k]) > 0 {
			return flat[k][0]
		}
	}
	return "invalid request"
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
