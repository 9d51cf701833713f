package sse

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"k8s.io/klog/v2"
)

const (
	dataPrefix = "data:"
	// DoneSentinel 流结束标记
	DoneSentinel = "[DONE]"
)

// Assembler 将聊天补全事件流中的增量内容拼接为完整回复。
// 内容只追加，不会被改写。
type Assembler struct {
	content strings.Builder
	done    bool
}

// Feed 处理一行完整的事件数据，返回本行带来的增量内容以及是否遇到结束标记
func (a *Assembler) Feed(line string) (delta string, done bool) {
	if a.done {
		return "", true
	}
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == DoneSentinel {
		a.done = true
		return "", true
	}
	if !gjson.Valid(payload) {
		klog.V(6).Infof("跳过无法解析的流数据: %s", payload)
		return "", false
	}

	content := gjson.Get(payload, "choices.0.delta.content")
	if content.Type != gjson.String || content.Str == "" {
		return "", false
	}
	a.content.WriteString(content.Str)
	return content.Str, false
}

// Content 当前已拼接的内容
func (a *Assembler) Content() string {
	return a.content.String()
}

// Done 是否已收到结束标记
func (a *Assembler) Done() bool {
	return a.done
}

// Consume 读取事件流直到 [DONE] 或流结束。
// 每次内容增长时以完整内容调用 onDelta；onDone 在正常结束时恰好调用一次，
// 读取出错时不调用并返回错误。
func Consume(ctx context.Context, body io.Reader, onDelta func(content string), onDone func()) (string, error) {
	var asm Assembler
	lines := NewLineReader(body)

	for {
		if err := ctx.Err(); err != nil {
			return asm.Content(), err
		}

		line, err := lines.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return asm.Content(), err
		}

		delta, done := asm.Feed(line)
		if done {
			break
		}
		if delta != "" && onDelta != nil {
			onDelta(asm.Content())
		}
	}

	if onDone != nil {
		onDone()
	}
	return asm.Content(), nil
}

// Event 事件流的一次更新
type Event struct {
	Content string
	Delta   string
	Done    bool
	Err     error
}

// Events 以通道形式消费事件流，最后一个事件 Done 为 true 或携带错误，之后通道关闭
func Events(ctx context.Context, body io.Reader) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		send := func(ev Event) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var last string
		content, err := Consume(ctx, body, func(content string) {
			delta := strings.TrimPrefix(content, last)
			last = content
			send(Event{Content: content, Delta: delta})
		}, nil)
		if err != nil {
			send(Event{Content: content, Err: err})
			return
		}
		send(Event{Content: content, Done: true})
	}()
	return out
}
