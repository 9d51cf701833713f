package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"k8s.io/klog/v2"

	"github.com/JackaZhai/nano-banana/internal/pkg/sse"
)

// DefaultModel 默认对话模型
const DefaultModel = "nano-banana-pro"

// ErrEmptyReply 非流式响应中没有回复内容
var ErrEmptyReply = errors.New("no reply content in chat response")

// API 对话接口
type API interface {
	// Chat 非流式对话，返回原始 JSON 响应体
	Chat(ctx context.Context, model string, messages []Message) ([]byte, error)
	// ChatStream 流式对话，返回 text/event-stream 响应体
	ChatStream(ctx context.Context, model string, messages []Message) (io.ReadCloser, error)
}

// Client 对话客户端
type Client struct {
	api   API
	model string
}

// NewClient 创建对话客户端
func NewClient(api API, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: api, model: model}
}

// Model 当前模型
func (c *Client) Model() string {
	return c.model
}

// Send 追加用户消息并以流式方式获取回复，回复内容随增量写入对话中的占位消息。
// onUpdate 以当前完整回复内容被调用。
func (c *Client) Send(ctx context.Context, conv *Conversation, text string, onUpdate func(content string)) (string, error) {
	conv.Append(RoleUser, text)
	history := conv.Messages()
	reply := conv.BeginReply()

	klog.V(6).Infof("发起流式对话: model=%s, messages=%d", c.model, len(history))
	body, err := c.api.ChatStream(ctx, c.model, history)
	if err != nil {
		conv.discard(reply)
		return "", err
	}
	defer body.Close()

	written := 0
	content, err := sse.Consume(ctx, body, func(content string) {
		reply.Write(content[written:])
		written = len(content)
		if onUpdate != nil {
			onUpdate(content)
		}
	}, func() {
		klog.V(6).Infof("流式对话结束: model=%s", c.model)
	})
	if err != nil {
		conv.discard(reply)
		return content, fmt.Errorf("read chat stream: %w", err)
	}
	return content, nil
}

// SendSync 追加用户消息并以非流式方式获取回复
func (c *Client) SendSync(ctx context.Context, conv *Conversation, text string) (string, error) {
	conv.Append(RoleUser, text)
	history := conv.Messages()

	klog.V(6).Infof("发起对话: model=%s, messages=%d", c.model, len(history))
	body, err := c.api.Chat(ctx, c.model, history)
	if err != nil {
		return "", err
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", ErrEmptyReply
	}
	conv.Append(RoleAssistant, content.String())
	return content.String(), nil
}

// discard 移除仍为空的占位消息
func (c *Conversation) discard(r *Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.index != len(c.messages)-1 || c.messages[r.index].Content != "" {
		return
	}
	c.messages = c.messages[:r.index]
}
