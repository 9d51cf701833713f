package draw

import (
	"context"
	"fmt"
	"time"

	"k8s.io/klog/v2"
)

const (
	// DefaultInterval 默认轮询间隔
	DefaultInterval = 2 * time.Second
	// DefaultMaxAttempts 默认最大轮询次数（2s 间隔下约 5 分钟）
	DefaultMaxAttempts = 150
)

// Options 轮询配置
type Options struct {
	Interval    time.Duration
	MaxAttempts int
}

// Poller 按固定间隔查询任务结果，直到终止态、出错或达到次数上限
type Poller struct {
	api         API
	interval    time.Duration
	maxAttempts int
}

// NewPoller 创建轮询器，未设置的选项使用默认值
func NewPoller(api API, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		api:         api,
		interval:    opts.Interval,
		maxAttempts: opts.MaxAttempts,
	}
}

// Interval 轮询间隔
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Poll 启动轮询，每次查询产生一个 Update，终止后关闭通道。
// 上一次查询未返回时到期的 tick 会被丢弃，因此查询不会重叠。
func (p *Poller) Poll(ctx context.Context, taskID string) <-chan Update {
	out := make(chan Update)
	go p.run(ctx, taskID, out)
	return out
}

func (p *Poller) run(ctx context.Context, taskID string, out chan<- Update) {
	defer close(out)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	send := func(u Update) bool {
		select {
		case out <- u:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			klog.V(6).Infof("轮询已取消: taskID=%s", taskID)
			return
		case <-ticker.C:
		}

		task, err := p.api.Result(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			klog.Errorf("轮询任务失败: taskID=%s, attempt=%d, error=%v", taskID, attempt, err)
			send(Update{Task: Task{ID: taskID, Status: StatusFailed}, Err: fmt.Errorf("query task %s: %w", taskID, err)})
			return
		}
		if task.ID == "" {
			task.ID = taskID
		}

		klog.V(6).Infof("轮询任务: taskID=%s, attempt=%d, status=%s, progress=%d", taskID, attempt, task.Status, task.Progress)
		if !send(Update{Task: *task}) {
			return
		}
		if task.Status.IsTerminal() {
			return
		}

		if attempt >= p.maxAttempts {
			klog.Warningf("轮询达到上限: taskID=%s, attempts=%d", taskID, attempt)
			send(Update{Task: Task{ID: taskID, Status: StatusFailed, Progress: task.Progress}, Err: ErrPollTimeout})
			return
		}
	}
}
