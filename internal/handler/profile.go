package handler

import (
	"net/http"

	"github.com/JackaZhai/nano-banana/internal/model"
	"github.com/JackaZhai/nano-banana/internal/service"
	"github.com/gin-gonic/gin"
)

// ProfileHandler 用户概况与模型目录
type ProfileHandler struct {
	usage   service.UsageService
	catalog model.Catalog
}

// NewProfileHandler 创建概况处理器
func NewProfileHandler(usage service.UsageService) *ProfileHandler {
	return &ProfileHandler{usage: usage, catalog: model.DefaultCatalog()}
}

// RegisterRoutes 注册路由
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/profile", h.Profile)
	router.GET("/models", h.Models)
}

// Profile 当前 Key 状态与调用统计
func (h *ProfileHandler) Profile(c *gin.Context) {
	profile, err := h.usage.Profile(c.Request.Context())
	if err != nil {
		respondError(c, "Profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Models 支持的模型与绘图参数
func (h *ProfileHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog)
}
