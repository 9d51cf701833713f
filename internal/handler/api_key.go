package handler

import (
	"net/http"

	"github.com/JackaZhai/nano-banana/internal/service"
	"github.com/gin-gonic/gin"
)

// APIKeyHandler API Key 处理器
type APIKeyHandler struct {
	service service.APIKeyService
}

// NewAPIKeyHandler 创建 API Key 处理器
func NewAPIKeyHandler(service service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *APIKeyHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/keys", h.List)
	router.POST("/keys", h.Add)
	router.POST("/keys/active", h.SetActive)
	router.POST("/keys/test", h.Test)
	router.DELETE("/keys/:id", h.Delete)
}

// SetActiveRequest 切换激活 Key 请求
type SetActiveRequest struct {
	ID string `json:"id"`
}

// TestKeyRequest 校验 Key 请求，value 为空时校验当前激活的 Key
type TestKeyRequest struct {
	Value string `json:"value"`
}

// List 列出 API Key
func (h *APIKeyHandler) List(c *gin.Context) {
	store, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, "ListKeys", err)
		return
	}
	c.JSON(http.StatusOK, store)
}

// Add 新增 API Key
func (h *APIKeyHandler) Add(c *gin.Context) {
	var req service.KeyRequest
	if !bindJSON(c, "AddKey", &req) {
		return
	}
	store, err := h.service.Add(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "AddKey", err)
		return
	}
	c.JSON(http.StatusOK, store)
}

// SetActive 切换激活的 API Key
func (h *APIKeyHandler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if !bindJSON(c, "SetActiveKey", &req) {
		return
	}
	store, err := h.service.SetActive(c.Request.Context(), req.ID)
	if err != nil {
		respondError(c, "SetActiveKey", err)
		return
	}
	c.JSON(http.StatusOK, store)
}

// Delete 删除 API Key
func (h *APIKeyHandler) Delete(c *gin.Context) {
	store, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "DeleteKey", err)
		return
	}
	c.JSON(http.StatusOK, store)
}

// Test 校验 API Key 是否可用
func (h *APIKeyHandler) Test(c *gin.Context) {
	var req TestKeyRequest
	if !bindJSON(c, "TestKey", &req) {
		return
	}
	result, err := h.service.TestKey(c.Request.Context(), req.Value)
	if err != nil {
		respondError(c, "TestKey", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
