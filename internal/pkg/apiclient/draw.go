package apiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JackaZhai/nano-banana/internal/pkg/draw"
)

type resultPayload struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	Progress      int           `json:"progress"`
	Results       []draw.Result `json:"results"`
	FailureReason string        `json:"failure_reason"`
	Error         string        `json:"error"`
}

// Submit 提交图像生成任务
func (c *Client) Submit(ctx context.Context, req *draw.Request) (*draw.SubmitResponse, error) {
	body, err := c.postJSON(ctx, "/api/draw", req)
	if err != nil {
		return nil, err
	}
	data, err := unwrapEnvelope(body, "图像生成请求失败")
	if err != nil {
		return nil, err
	}

	var payload resultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode draw response: %w", err)
	}
	return &draw.SubmitResponse{ID: payload.ID, Results: payload.Results}, nil
}

// Result 查询任务状态。缺失的 status 按 running 处理
func (c *Client) Result(ctx context.Context, taskID string) (*draw.Task, error) {
	body, err := c.postJSON(ctx, "/api/result", map[string]string{"id": taskID})
	if err != nil {
		return nil, err
	}
	data, err := unwrapEnvelope(body, "查询结果失败")
	if err != nil {
		return nil, err
	}

	var payload resultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode result response: %w", err)
	}

	task := &draw.Task{
		ID:            payload.ID,
		Status:        draw.Status(payload.Status),
		Progress:      payload.Progress,
		Results:       payload.Results,
		FailureReason: payload.FailureReason,
	}
	if task.ID == "" {
		task.ID = taskID
	}
	if task.Status == "" {
		task.Status = draw.StatusRunning
	}
	if task.Status == draw.StatusFailed && task.FailureReason == "" {
		task.FailureReason = payload.Error
	}
	return task, nil
}

var _ draw.API = (*Client)(nil)
