package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"k8s.io/klog/v2"

	"github.com/JackaZhai/nano-banana/internal/utils"
)

// DefaultBaseURL 本地代理服务地址
const DefaultBaseURL = "http://localhost:5000"

// Error 代理返回的非 2xx 响应，或上游信封中的非零 code
type Error struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "未知错误"
	}
	if e.StatusCode == 0 {
		return msg
	}
	return fmt.Sprintf("API 请求失败: %d - %s", e.StatusCode, msg)
}

// Client 代理服务 HTTP 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient 创建客户端。
// 流式对话需要长连接，因此默认 http.Client 不设置整体超时，由调用方的 context 控制。
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 2 * time.Minute,
			},
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// BaseURL 返回服务地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// postJSON 发送 JSON 请求并读取完整响应体
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	resp, err := c.doRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	klog.V(8).Infof("apiclient %s %s: %s", method, path, utils.Truncate(string(body), 512))
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("网络错误: %w", err)
	}
	return resp, nil
}

// responseError 解析错误响应：优先取 JSON 的 error/message/msg 字段，否则使用纯文本内容
func responseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	apiErr := &Error{StatusCode: resp.StatusCode}
	text := strings.TrimSpace(string(body))
	raw := utils.ExtractJSON(text)
	if gjson.Valid(raw) {
		parsed := gjson.Parse(raw)
		for _, field := range []string{"error.message", "error", "message", "msg"} {
			if v := parsed.Get(field); v.Exists() && v.Type == gjson.String && v.String() != "" {
				apiErr.Message = v.String()
				break
			}
		}
		apiErr.Details = parsed.Get("details").String()
	}
	if apiErr.Message == "" {
		apiErr.Message = text
	}
	return apiErr
}

// unwrapEnvelope 兼容 {code, msg, data} 信封与扁平响应。
// code 非零视为失败，错误信息取 msg。
func unwrapEnvelope(body []byte, fallback string) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("响应不是有效的 JSON: %s", utils.Truncate(string(body), 200))
	}
	code := gjson.GetBytes(body, "code")
	if !code.Exists() {
		return body, nil
	}
	if code.Int() != 0 {
		msg := gjson.GetBytes(body, "msg").String()
		if msg == "" {
			msg = fallback
		}
		return nil, &Error{Message: msg}
	}
	if data := gjson.GetBytes(body, "data"); data.Exists() && data.IsObject() {
		return []byte(data.Raw), nil
	}
	return body, nil
}
