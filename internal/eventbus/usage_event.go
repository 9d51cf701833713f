package eventbus

import "time"

type UsageEventType string

const (
	UsageEventUpstreamCall UsageEventType = "UpstreamCall"
)

// UsageEvent 一次成功的上游调用
type UsageEvent struct {
	Type      UsageEventType
	Operation string // draw, result, chat, chat_stream
	At        time.Time
}

type UsageEventHandler = Handler[UsageEvent]
type UsageEventBus = Bus[UsageEventType, UsageEvent]

func NewUsageEventBus() *UsageEventBus {
	return NewBus(func(e UsageEvent) UsageEventType { return e.Type })
}
