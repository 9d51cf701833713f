package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JackaZhai/nano-banana/internal/pkg/chat"
)

// 1x1 PNG
const pngPixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func runCLI(t *testing.T, handler http.HandlerFunc, args ...string) (string, error) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--server", server.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDrawInlineResults(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/draw", r.URL.Path)
		_, _ = io.WriteString(w, `{"code":0,"data":{"id":"t1","results":[{"url":"https://cdn/a.png"}]}}`)
	}, "draw", "a", "cat")

	require.NoError(t, err)
	assert.Contains(t, out, "生成完成 (1 张)")
	assert.Contains(t, out, "https://cdn/a.png")
}

func TestDrawPollsUntilFailure(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/draw":
			_, _ = io.WriteString(w, `{"id":"t1"}`)
		case "/api/result":
			_, _ = io.WriteString(w, `{"status":"failed","failure_reason":"quota exceeded"}`)
		}
	}, "draw", "--interval", "10ms", "a cat")

	require.Error(t, err)
	assert.Equal(t, "图像生成失败: quota exceeded", err.Error())
	assert.Contains(t, out, "[  0%]")
}

func TestChatOneShotStream(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, chat.DefaultModel, req.Model)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}, "chat", "hi")

	require.NoError(t, err)
	assert.Equal(t, "Hello\n", out)
}

func TestChatSync(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"pong"}}]}`)
	}, "chat", "--stream=false", "ping")

	require.NoError(t, err)
	assert.Equal(t, "pong\n", out)
}

func TestKeysList(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"activeId":"k1","hasKey":true,"keys":[{"id":"k1","mask":"sk-1...7890","source":"env","isActive":true}]}`)
	}, "keys", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "k1")
	assert.Contains(t, out, "sk-1...7890")
	assert.Contains(t, out, "*")
}

func TestKeysTestFailure(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"401 unauthorized"}`)
	}, "keys", "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401 unauthorized")
}

func TestReferenceURL(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(pngPixel)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "ref.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	u, err := referenceURL(path)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+pngPixel, u)

	u, err = referenceURL(" https://example.com/a.png ")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", u)

	textPath := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("hello"), 0o644))
	_, err = referenceURL(textPath)
	require.Error(t, err)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), progressBar(50, 10))
	assert.Equal(t, strings.Repeat("░", 10), progressBar(-3, 10))
	assert.Equal(t, strings.Repeat("█", 10), progressBar(150, 10))
}
