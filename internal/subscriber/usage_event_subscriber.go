package subscriber

import (
	"context"
	"time"

	"github.com/JackaZhai/nano-banana/internal/eventbus"
	"k8s.io/klog/v2"
)

type UsageEventSubscriber struct {
	usage usageRecorder
}

type usageRecorder interface {
	RecordUsage(ctx context.Context, at time.Time) error
}

func NewUsageEventSubscriber(usage usageRecorder) *UsageEventSubscriber {
	return &UsageEventSubscriber{usage: usage}
}

func (s *UsageEventSubscriber) Register(bus *eventbus.UsageEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.UsageEventUpstreamCall, s.handleUpstreamCall)
}

func (s *UsageEventSubscriber) handleUpstreamCall(ctx context.Context, event eventbus.UsageEvent) error {
	at := event.At
	if at.IsZero() {
		at = time.Now()
	}
	if err := s.usage.RecordUsage(ctx, at); err != nil {
		klog.Errorf("使用统计记录失败: op=%s, error=%v", event.Operation, err)
		return err
	}
	klog.V(6).Infof("使用统计记录成功: op=%s", event.Operation)
	return nil
}
