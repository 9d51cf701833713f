package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/JackaZhai/nano-banana/internal/pkg/sse"
	"github.com/JackaZhai/nano-banana/internal/service"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// AIHandler 图像生成与对话代理
type AIHandler struct {
	service service.AIService
}

// NewAIHandler 创建 AI 代理处理器
func NewAIHandler(service service.AIService) *AIHandler {
	return &AIHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *AIHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/draw", h.Draw)
	router.POST("/result", h.Result)
	router.POST("/chat", h.Chat)
}

// Draw 提交图像生成
func (h *AIHandler) Draw(c *gin.Context) {
	var req service.DrawRequest
	if !bindJSON(c, "Draw", &req) {
		return
	}
	result, err := h.service.GenerateImage(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Draw", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

// Result 查询图像生成结果
func (h *AIHandler) Result(c *gin.Context) {
	var req service.ResultRequest
	if !bindJSON(c, "Result", &req) {
		return
	}
	result, err := h.service.GetImageResult(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Result", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

// Chat 对话，stream 为真时以 text/event-stream 转发
func (h *AIHandler) Chat(c *gin.Context) {
	var req service.ChatRequest
	if !bindJSON(c, "Chat", &req) {
		return
	}

	if !req.Stream {
		result, err := h.service.ChatCompletion(c.Request.Context(), &req)
		if err != nil {
			respondError(c, "Chat", err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", result)
		return
	}

	body, err := h.service.ChatCompletionStream(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "ChatStream", err)
		return
	}
	defer body.Close()
	relayStream(c, body)
}

// relayStream 逐行转发上游事件流，每个非空行写为一条 "data: ..." 事件并立即刷新，转发 [DONE] 后结束
func relayStream(c *gin.Context, body io.Reader) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	reader := sse.NewLineReader(body)
	var asm sse.Assembler
	lines := 0
	for {
		line, err := reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				klog.Warningf("ChatStream: upstream read failed: %v", err)
			}
			break
		}
		if line == "" {
			continue
		}
		event := line
		if !strings.HasPrefix(event, "data:") {
			event = "data: " + event
		}
		_, done := asm.Feed(event)
		if _, err := io.WriteString(c.Writer, event+"\n\n"); err != nil {
			klog.V(6).Infof("ChatStream: client gone: %v", err)
			return
		}
		c.Writer.Flush()
		lines++
		if done || ctx.Err() != nil {
			// [DONE] 之后的内容不再转发
			break
		}
	}
	klog.V(6).Infof("ChatStream: relayed %d events, %d chars, done=%v", lines, len(asm.Content()), asm.Done())
}
