package sse

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader 按给定的分块依次返回数据，用于模拟网络分包
type chunkReader struct {
	chunks []string
	reads  int
	err    error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	r.reads++
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func deltaLine(content string) string {
	return `data: {"choices":[{"delta":{"content":"` + content + `"}}]}` + "\n"
}

func TestConsumeAssemblesHello(t *testing.T) {
	body := &chunkReader{chunks: []string{
		deltaLine("Hel"),
		deltaLine("lo"),
		"data: [DONE]\n",
	}}

	var updates []string
	doneCalls := 0
	content, err := Consume(context.Background(), body,
		func(c string) { updates = append(updates, c) },
		func() { doneCalls++ },
	)

	require.NoError(t, err)
	assert.Equal(t, "Hello", content)
	assert.Equal(t, []string{"Hel", "Hello"}, updates)
	assert.Equal(t, 1, doneCalls)
}

func TestConsumeSkipsMalformedChunk(t *testing.T) {
	body := strings.NewReader(deltaLine("a") + "data: not-json\n" + deltaLine("b") + "data: [DONE]\n")

	var updates []string
	content, err := Consume(context.Background(), body, func(c string) { updates = append(updates, c) }, nil)

	require.NoError(t, err)
	assert.Equal(t, "ab", content)
	assert.Equal(t, []string{"a", "ab"}, updates, "无法解析的行不应触发回调")
}

func TestConsumeStopsAtDoneSentinel(t *testing.T) {
	body := &chunkReader{chunks: []string{
		deltaLine("x") + "data: [DONE]\n",
		deltaLine("never"),
	}}

	content, err := Consume(context.Background(), body, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "x", content)
	assert.Len(t, body.chunks, 1, "遇到 [DONE] 后不应再读取后续数据")
}

func TestConsumeLineSplitAcrossChunks(t *testing.T) {
	line := deltaLine("你好")
	// 在多字节字符中间切分
	cut := strings.Index(line, "你") + 1
	body := &chunkReader{chunks: []string{line[:cut], line[cut:], "data: [DONE]\n"}}

	var updates []string
	content, err := Consume(context.Background(), body, func(c string) { updates = append(updates, c) }, nil)

	require.NoError(t, err)
	assert.Equal(t, "你好", content)
	assert.Equal(t, []string{"你好"}, updates, "行在换行前不应被处理")
}

func TestConsumeFlushesFinalPartialLine(t *testing.T) {
	body := strings.NewReader(deltaLine("a") + `data: {"choices":[{"delta":{"content":"b"}}]}`)

	doneCalls := 0
	content, err := Consume(context.Background(), body, nil, func() { doneCalls++ })

	require.NoError(t, err)
	assert.Equal(t, "ab", content)
	assert.Equal(t, 1, doneCalls, "自然结束也应回调一次")
}

func TestConsumeIgnoresNonDataAndEmptyDeltas(t *testing.T) {
	body := strings.NewReader(strings.Join([]string{
		": keep-alive",
		"",
		"event: message",
		`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
		`data: {"choices":[{"delta":{"content":""}}]}`,
		`data: {"choices":[]}`,
		"data:" + `{"choices":[{"delta":{"content":"ok"}}]}`,
		"",
	}, "\r\n"))

	calls := 0
	content, err := Consume(context.Background(), body, func(string) { calls++ }, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", content)
	assert.Equal(t, 1, calls)
}

func TestConsumeReadErrorSkipsDone(t *testing.T) {
	readErr := errors.New("connection reset")
	body := &chunkReader{chunks: []string{deltaLine("partial")}, err: readErr}

	doneCalls := 0
	content, err := Consume(context.Background(), body, nil, func() { doneCalls++ })

	assert.ErrorIs(t, err, readErr)
	assert.Equal(t, "partial", content)
	assert.Zero(t, doneCalls)
}

func TestAssemblerIgnoresInputAfterDone(t *testing.T) {
	var asm Assembler
	_, done := asm.Feed("data: [DONE]")
	require.True(t, done)

	delta, done := asm.Feed(deltaLine("late"))
	assert.True(t, done)
	assert.Empty(t, delta)
	assert.Empty(t, asm.Content())
}

func TestEventsChannel(t *testing.T) {
	body := strings.NewReader(deltaLine("Hel") + deltaLine("lo") + "data: [DONE]\n")

	var events []Event
	for ev := range Events(context.Background(), body) {
		events = append(events, ev)
	}

	require.Len(t, events, 3)
	assert.Equal(t, "Hel", events[0].Delta)
	assert.Equal(t, "lo", events[1].Delta)
	assert.Equal(t, "Hello", events[1].Content)
	assert.True(t, events[2].Done)
	assert.Equal(t, "Hello", events[2].Content)
}

func TestLineReader(t *testing.T) {
	lines := NewLineReader(strings.NewReader("a\r\nb\n\nc"))

	var got []string
	for {
		line, err := lines.ReadLine()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		got = append(got, line)
	}
	assert.Equal(t, []string{"a", "b", "", "c"}, got)
}
