package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/JackaZhai/nano-banana/internal/service"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// respondError 将错误写为 {"error": ..., "details"?: ...}
func respondError(c *gin.Context, op string, err error) {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= http.StatusInternalServerError {
			klog.Errorf("%s: failed: %v", op, err)
		} else {
			klog.V(6).Infof("%s: rejected: %v", op, err)
		}
		c.JSON(apiErr.StatusCode, apiErr.Body())
		return
	}
	klog.Errorf("%s: failed: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// bindJSON 空请求体视为空对象，JSON 格式错误返回 400
func bindJSON(c *gin.Context, op string, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		klog.V(6).Infof("%s: invalid request: %v", op, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
