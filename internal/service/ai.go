package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/JackaZhai/nano-banana/config"
	"github.com/JackaZhai/nano-banana/internal/eventbus"
	"github.com/JackaZhai/nano-banana/internal/utils"
	"k8s.io/klog/v2"
)

const (
	DefaultImageModel  = "nano-banana-fast"
	DefaultAspectRatio = "auto"
	DefaultWebHook     = "-1"
	DefaultChatModel   = "gpt-4o-mini"
)

// AIService 上游 AI 能力代理
type AIService interface {
	// GenerateImage 提交图像生成任务
	GenerateImage(ctx context.Context, req *DrawRequest) (json.RawMessage, error)
	// GetImageResult 查询图像生成结果
	GetImageResult(ctx context.Context, req *ResultRequest) (json.RawMessage, error)
	// ChatCompletion 非流式对话
	ChatCompletion(ctx context.Context, req *ChatRequest) (json.RawMessage, error)
	// ChatCompletionStream 流式对话，调用方负责关闭返回的响应体
	ChatCompletionStream(ctx context.Context, req *ChatRequest) (io.ReadCloser, error)
}

type upstreamAPI interface {
	PostJSON(ctx context.Context, endpoint, apiKey string, payload any) (json.RawMessage, error)
	PostStream(ctx context.Context, endpoint, apiKey string, payload any) (io.ReadCloser, error)
}

type keyResolver interface {
	RequireActiveValue(ctx context.Context) (string, error)
}

type aiService struct {
	cfg       *config.Config
	keys      keyResolver
	upstream  upstreamAPI
	validator *Validator
	bus       *eventbus.UsageEventBus
}

// NewAIService 创建 AI 代理服务
func NewAIService(cfg *config.Config, keys keyResolver, upstream upstreamAPI, validator *Validator, bus *eventbus.UsageEventBus) AIService {
	return &aiService{cfg: cfg, keys: keys, upstream: upstream, validator: validator, bus: bus}
}

type drawPayload struct {
	Model        string   `json:"model"`
	Prompt       string   `json:"prompt"`
	AspectRatio  string   `json:"aspectRatio"`
	ImageSize    string   `json:"imageSize,omitempty"`
	URLs         []string `json:"urls,omitempty"`
	ShutProgress bool     `json:"shutProgress"`
	WebHook      string   `json:"webHook"`
}

type chatPayload struct {
	Model    string            `json:"model"`
	Messages []json.RawMessage `json:"messages"`
	Stream   bool              `json:"stream"`
}

// GenerateImage 提交图像生成任务
func (s *aiService) GenerateImage(ctx context.Context, req *DrawRequest) (json.RawMessage, error) {
	req.URLs = s.validator.SanitizeURLs(req.URLs)
	if err := s.validator.ValidateDraw(req); err != nil {
		return nil, err
	}

	payload := drawPayload{
		Model:        defaultString(req.Model, DefaultImageModel),
		Prompt:       strings.TrimSpace(req.Prompt),
		AspectRatio:  defaultString(req.AspectRatio, DefaultAspectRatio),
		ImageSize:    strings.TrimSpace(req.ImageSize),
		URLs:         req.URLs,
		ShutProgress: req.ShutProgress,
		WebHook:      defaultString(req.WebHook, DefaultWebHook),
	}
	klog.V(6).Infof("GenerateImage: model=%s, aspectRatio=%s, refs=%d", payload.Model, payload.AspectRatio, len(payload.URLs))
	return s.call(ctx, "draw", s.cfg.DrawEndpoint(), payload)
}

// GetImageResult 查询图像生成结果
func (s *aiService) GetImageResult(ctx context.Context, req *ResultRequest) (json.RawMessage, error) {
	if err := s.validator.ValidateResult(req); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.ID)
	klog.V(6).Infof("GetImageResult: id=%s", id)
	return s.call(ctx, "result", s.cfg.ResultEndpoint(), map[string]string{"id": id})
}

// ChatCompletion 非流式对话，响应原样返回
func (s *aiService) ChatCompletion(ctx context.Context, req *ChatRequest) (json.RawMessage, error) {
	if err := s.validator.ValidateChat(req); err != nil {
		return nil, err
	}
	payload := chatPayload{
		Model:    defaultString(req.Model, DefaultChatModel),
		Messages: req.Messages,
		Stream:   false,
	}
	klog.V(6).Infof("ChatCompletion: model=%s, messages=%d", payload.Model, len(payload.Messages))
	return s.call(ctx, "chat", s.cfg.ChatEndpoint(), payload)
}

// ChatCompletionStream 流式对话
func (s *aiService) ChatCompletionStream(ctx context.Context, req *ChatRequest) (io.ReadCloser, error) {
	if err := s.validator.ValidateChat(req); err != nil {
		return nil, err
	}
	apiKey, err := s.keys.RequireActiveValue(ctx)
	if err != nil {
		return nil, err
	}
	payload := chatPayload{
		Model:    defaultString(req.Model, DefaultChatModel),
		Messages: req.Messages,
		Stream:   true,
	}
	klog.V(6).Infof("ChatCompletionStream: model=%s, messages=%d", payload.Model, len(payload.Messages))
	body, err := s.upstream.PostStream(ctx, s.cfg.ChatEndpoint(), apiKey, payload)
	if err != nil {
		return nil, fromUpstreamError(err)
	}
	s.publishUsage(ctx, "chat_stream")
	return body, nil
}

func (s *aiService) call(ctx context.Context, op, endpoint string, payload any) (json.RawMessage, error) {
	apiKey, err := s.keys.RequireActiveValue(ctx)
	if err != nil {
		return nil, err
	}
	klog.V(8).Infof("%s: request=%s", op, utils.Truncate(utils.ToJSON(payload), 512))
	result, err := s.upstream.PostJSON(ctx, endpoint, apiKey, payload)
	if err != nil {
		klog.Errorf("%s: upstream call failed: %v", op, err)
		return nil, fromUpstreamError(err)
	}
	klog.V(8).Infof("%s: upstream response=%s", op, utils.Truncate(string(result), 512))
	s.publishUsage(ctx, op)
	return result, nil
}

// publishUsage 统计失败不影响主流程
func (s *aiService) publishUsage(ctx context.Context, op string) {
	if s.bus == nil {
		return
	}
	event := eventbus.UsageEvent{Type: eventbus.UsageEventUpstreamCall, Operation: op, At: time.Now()}
	if err := s.bus.Publish(ctx, event); err != nil {
		klog.Warningf("使用统计事件处理失败: op=%s, error=%v", op, err)
	}
}
