package draw

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Session 一次页面/命令生命周期内的图像生成会话。
// 同一时刻最多只有一个活动的轮询，新的提交会先取消并等待上一个轮询退出。
type Session struct {
	api    API
	poller *Poller

	// submitMu 串行化 Submit，保证取消旧轮询与登记新轮询之间不会插入另一次提交
	submitMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	taskID string

	active atomic.Int32
}

// NewSession 创建会话
func NewSession(api API, opts Options) *Session {
	return &Session{
		api:    api,
		poller: NewPoller(api, opts),
	}
}

// Submit 校验并提交生成请求。
// 返回的通道首先给出进度归零的 running 更新；若提交响应已包含结果则紧接着给出成功更新，
// 否则进入轮询，直到终止态后关闭。
func (s *Session) Submit(ctx context.Context, req *Request) (<-chan Update, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	s.Stop()

	resp, err := s.api.Submit(ctx, req)
	if err != nil {
		klog.Errorf("提交生成任务失败: %v", err)
		return nil, err
	}

	reset := Update{Task: Task{ID: resp.ID, Status: StatusRunning, Progress: 0}}

	if len(resp.Results) > 0 {
		klog.V(6).Infof("生成任务同步返回结果: count=%d", len(resp.Results))
		out := make(chan Update, 2)
		out <- reset
		out <- Update{Task: Task{ID: resp.ID, Status: StatusSucceeded, Progress: 100, Results: resp.Results}}
		close(out)
		return out, nil
	}
	if resp.ID == "" {
		return nil, ErrNoTaskID
	}

	klog.V(6).Infof("生成任务已提交，开始轮询: taskID=%s, interval=%v", resp.ID, s.poller.Interval())

	pctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	out := make(chan Update)

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.taskID = resp.ID
	s.mu.Unlock()

	s.active.Add(1)
	go func() {
		defer close(done)
		defer s.active.Add(-1)
		defer close(out)

		updates := s.poller.Poll(pctx, resp.ID)
		defer func() {
			for range updates {
			}
		}()

		if !forward(pctx, out, reset) {
			return
		}
		for u := range updates {
			if !forward(pctx, out, u) {
				return
			}
		}
	}()

	return out, nil
}

func forward(ctx context.Context, out chan<- Update, u Update) bool {
	select {
	case out <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop 取消当前轮询并等待其退出
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	klog.V(6).Infof("已停止轮询")
}

// ActivePolls 当前存活的轮询数量
func (s *Session) ActivePolls() int {
	return int(s.active.Load())
}

// TaskID 最近一次提交的任务 ID
func (s *Session) TaskID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskID
}
