package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// KeyView 脱敏后的 Key
type KeyView struct {
	ID       string `json:"id"`
	Mask     string `json:"mask"`
	Source   string `json:"source"`
	IsActive bool   `json:"isActive"`
}

// KeyStore Key 列表与当前激活项
type KeyStore struct {
	ActiveID string    `json:"activeId"`
	HasKey   bool      `json:"hasKey"`
	Keys     []KeyView `json:"keys"`
}

// KeyTestResult Key 测试结果
type KeyTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Usage 调用统计
type Usage struct {
	TotalCalls int64      `json:"totalCalls"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
}

// Profile 当前 Key 状态与调用统计
type Profile struct {
	HasKey        bool   `json:"hasKey"`
	ActiveKeyMask string `json:"activeKeyMask"`
	Usage         Usage  `json:"usage"`
}

// CatalogItem 可选项
type CatalogItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Catalog 模型与绘图参数目录
type Catalog struct {
	ImageModels  []CatalogItem `json:"imageModels"`
	ChatModels   []CatalogItem `json:"chatModels"`
	AspectRatios []string      `json:"aspectRatios"`
	ImageSizes   []string      `json:"imageSizes"`
}

func (c *Client) ListKeys(ctx context.Context) (*KeyStore, error) {
	return decode[KeyStore](c.do(ctx, http.MethodGet, "/api/keys", nil))
}

func (c *Client) AddKey(ctx context.Context, value string) (*KeyStore, error) {
	return decode[KeyStore](c.postJSON(ctx, "/api/keys", map[string]string{"value": value}))
}

func (c *Client) UseKey(ctx context.Context, id string) (*KeyStore, error) {
	return decode[KeyStore](c.postJSON(ctx, "/api/keys/active", map[string]string{"id": id}))
}

func (c *Client) DeleteKey(ctx context.Context, id string) (*KeyStore, error) {
	return decode[KeyStore](c.do(ctx, http.MethodDelete, "/api/keys/"+url.PathEscape(id), nil))
}

// TestKey 测试 Key 是否可用，value 为空时测试当前激活的 Key
func (c *Client) TestKey(ctx context.Context, value string) (*KeyTestResult, error) {
	return decode[KeyTestResult](c.postJSON(ctx, "/api/keys/test", map[string]string{"value": value}))
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	return decode[Profile](c.do(ctx, http.MethodGet, "/api/profile", nil))
}

func (c *Client) Models(ctx context.Context) (*Catalog, error) {
	return decode[Catalog](c.do(ctx, http.MethodGet, "/api/models", nil))
}

func decode[T any](body []byte, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
