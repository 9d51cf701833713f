package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"k8s.io/klog/v2"
)

// KeyTestModel 校验 API Key 时使用的模型
const KeyTestModel = "nano-banana-fast"

// StatusError 上游返回非 2xx 状态码
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// TransportError 网络层错误
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError 上游响应不是合法 JSON
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON from upstream: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Client 第三方 AI 服务 HTTP 客户端
type Client struct {
	host    string
	timeout time.Duration
	http    *http.Client
}

// NewClient 创建上游客户端。timeout 作用于非流式请求整体，流式请求仅限制等待响应头的时间。
func NewClient(host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &Client{
		host:    strings.TrimRight(host, "/"),
		timeout: timeout,
		http:    &http.Client{Transport: transport},
	}
}

// Host 上游主机地址
func (c *Client) Host() string {
	return c.host
}

// PostJSON 以 JSON 发送请求并返回原始 JSON 响应体
func (c *Client) PostJSON(ctx context.Context, endpoint, apiKey string, payload any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, endpoint, apiKey, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		klog.Warningf("上游请求失败: endpoint=%s, status=%d", endpoint, resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, &DecodeError{Body: string(body), Err: fmt.Errorf("%d bytes of non-JSON content", len(body))}
	}
	klog.V(6).Infof("上游请求成功: endpoint=%s, bytes=%d", endpoint, len(body))
	return body, nil
}

// PostStream 发送流式请求，调用方负责关闭返回的响应体
func (c *Client) PostStream(ctx context.Context, endpoint, apiKey string, payload any) (io.ReadCloser, error) {
	resp, err := c.post(ctx, endpoint, apiKey, payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		klog.Warningf("上游流式请求失败: endpoint=%s, status=%d", endpoint, resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	klog.V(6).Infof("上游流式请求已建立: endpoint=%s", endpoint)
	return resp.Body, nil
}

func (c *Client) post(ctx context.Context, endpoint, apiKey string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		klog.Errorf("上游请求网络错误: endpoint=%s, err=%v", endpoint, err)
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

// TestKey 用一次最小的对话请求验证 API Key 是否可用
func (c *Client) TestKey(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = c.host + "/v1"
	cfg.HTTPClient = c.http
	client := openai.NewClientWithConfig(cfg)

	_, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: KeyTestModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Hello"},
		},
		MaxTokens: 1,
	})
	if err != nil {
		klog.V(6).Infof("API Key 校验失败: %v", err)
		return err
	}
	return nil
}
