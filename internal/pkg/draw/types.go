package draw

import (
	"context"
	"errors"
)

// Status 生成任务状态
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// IsTerminal 判断状态是否为终止态
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Result 单张生成结果
type Result struct {
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
}

// Task 异步图像生成任务
type Task struct {
	ID            string   `json:"id"`
	Status        Status   `json:"status"`
	Progress      int      `json:"progress"`
	Results       []Result `json:"results,omitempty"`
	FailureReason string   `json:"failure_reason,omitempty"`
}

// Request 图像生成请求
type Request struct {
	Prompt       string   `json:"prompt"`
	Model        string   `json:"model,omitempty"`
	AspectRatio  string   `json:"aspectRatio,omitempty"`
	ImageSize    string   `json:"imageSize,omitempty"`
	URLs         []string `json:"urls,omitempty"`
	WebHook      string   `json:"webHook,omitempty"`
	ShutProgress bool     `json:"shutProgress"`
}

// SubmitResponse 提交结果：返回任务 ID，或直接同步返回结果
type SubmitResponse struct {
	ID      string   `json:"id"`
	Results []Result `json:"results,omitempty"`
}

// API 图像生成接口
type API interface {
	Submit(ctx context.Context, req *Request) (*SubmitResponse, error)
	Result(ctx context.Context, taskID string) (*Task, error)
}

// Update 轮询过程中的一次状态更新。
// Err 非空表示轮询因传输错误或超时而中止。
type Update struct {
	Task Task
	Err  error
}

// Terminal 是否为最后一次更新
func (u Update) Terminal() bool {
	return u.Err != nil || u.Task.Status.IsTerminal()
}

// Succeeded 任务是否成功
func (u Update) Succeeded() bool {
	return u.Err == nil && u.Task.Status == StatusSucceeded
}

// FailureMessage 失败时展示给用户的信息
func (u Update) FailureMessage() string {
	if u.Err != nil {
		return u.Err.Error()
	}
	if u.Task.Status == StatusFailed {
		return u.Task.FailureReason
	}
	return ""
}

var (
	// ErrEmptyPrompt 提示词为空
	ErrEmptyPrompt = errors.New("prompt is required")
	// ErrPollTimeout 达到最大轮询次数仍未完成
	ErrPollTimeout = errors.New("image generation timed out, query the result later")
	// ErrNoTaskID 提交响应既无任务 ID 也无结果
	ErrNoTaskID = errors.New("submit response has neither task id nor results")
)
