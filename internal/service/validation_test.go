package service

import (
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 1x1 PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPixel)
}

func TestSanitizeURLs(t *testing.T) {
	v := NewValidator(3, 1024)
	got := v.SanitizeURLs([]string{"  https://a.png ", "", "   ", "https://b.png"})
	assert.Equal(t, []string{"https://a.png", "https://b.png"}, got)
	assert.Empty(t, v.SanitizeURLs(nil))
}

func TestValidateDraw(t *testing.T) {
	v := NewValidator(3, 1024)

	assert.NoError(t, v.ValidateDraw(&DrawRequest{Prompt: "a banana"}))
	requireAPIError(t, v.ValidateDraw(&DrawRequest{Prompt: ""}), http.StatusBadRequest, "Prompt is required")
	requireAPIError(t, v.ValidateDraw(&DrawRequest{Prompt: "  \t"}), http.StatusBadRequest, "Prompt is required")
}

func TestValidateResultAndKey(t *testing.T) {
	v := NewValidator(3, 1024)

	assert.NoError(t, v.ValidateResult(&ResultRequest{ID: "task-1"}))
	requireAPIError(t, v.ValidateResult(&ResultRequest{ID: " "}), http.StatusBadRequest, "id is required")
	requireAPIError(t, v.ValidateKey(&KeyRequest{}), http.StatusBadRequest, "Api key 不能为空")
	requireAPIError(t, v.ValidateChat(&ChatRequest{}), http.StatusBadRequest, "messages is required")
}

func TestValidateReferenceImages(t *testing.T) {
	v := NewValidator(3, 1024)

	assert.NoError(t, v.ValidateReferenceImages([]string{"https://a.png", pngDataURL()}))

	requireAPIError(t,
		v.ValidateReferenceImages([]string{"a", "b", "c", "d"}),
		http.StatusBadRequest, "参考图数量最多 3 张")

	requireAPIError(t,
		v.ValidateReferenceImages([]string{"data:image/png;base64"}),
		http.StatusBadRequest, "参考图数据格式无效")

	requireAPIError(t,
		v.ValidateReferenceImages([]string{"data:image/png;base64,!!!"}),
		http.StatusBadRequest, "参考图数据格式无效")

	text := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello world"))
	err := v.ValidateReferenceImages([]string{text})
	var apiErr *APIError
	if assert.ErrorAs(t, err, &apiErr) {
		assert.Contains(t, apiErr.Message, "参考图必须是图片")
	}
}

func TestValidateReferenceImageSize(t *testing.T) {
	v := NewValidator(3, 1024*1024)
	big := "data:image/png;base64," + strings.Repeat("A", 2*1024*1024)

	requireAPIError(t, v.ValidateReferenceImages([]string{big}), http.StatusBadRequest, "单张参考图大小超出限制（最大 1 MB）")
}
