package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/JackaZhai/nano-banana/config"
	"github.com/JackaZhai/nano-banana/internal/handler"
)

func TestHealthzAndCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := Setup(config.Default(), handler.NewAPIKeyHandler(nil), handler.NewAIHandler(nil), handler.NewProfileHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestModelsIsGzipped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := Setup(config.Default(), handler.NewAPIKeyHandler(nil), handler.NewAIHandler(nil), handler.NewProfileHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
