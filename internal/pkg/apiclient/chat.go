package apiclient

import (
	"context"
	"io"
	"net/http"

	"github.com/JackaZhai/nano-banana/internal/pkg/chat"
)

type chatRequest struct {
	Model    string         `json:"model,omitempty"`
	Messages []chat.Message `json:"messages"`
	Stream   bool           `json:"stream"`
}

// Chat 非流式对话，返回原始 JSON
func (c *Client) Chat(ctx context.Context, model string, messages []chat.Message) ([]byte, error) {
	return c.postJSON(ctx, "/api/chat", chatRequest{Model: model, Messages: messages})
}

// ChatStream 流式对话，返回事件流响应体，由调用方关闭
func (c *Client) ChatStream(ctx context.Context, model string, messages []chat.Message) (io.ReadCloser, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/chat", chatRequest{Model: model, Messages: messages, Stream: true})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, responseError(resp)
	}
	return resp.Body, nil
}

var _ chat.API = (*Client)(nil)
