package sse

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// LineReader 按行读取事件流，跨数据块缓存不完整的行
type LineReader struct {
	r   *bufio.Reader
	eof bool
}

// NewLineReader 创建行读取器
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// ReadLine 返回下一行（不含换行符）。
// 流结束时未以换行结尾的最后一行也会被返回，之后返回 io.EOF。
func (l *LineReader) ReadLine() (string, error) {
	if l.eof {
		return "", io.EOF
	}
	line, err := l.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		l.eof = true
		if line == "" {
			return "", io.EOF
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
