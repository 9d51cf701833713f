package router

import (
	"net/http"

	"github.com/JackaZhai/nano-banana/config"
	"github.com/JackaZhai/nano-banana/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func Setup(
	cfg *config.Config,
	apiKeyHandler *handler.APIKeyHandler,
	aiHandler *handler.AIHandler,
	profileHandler *handler.ProfileHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))
	// 事件流需要逐条刷新，不能压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/chat"})))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		apiKeyHandler.RegisterRoutes(api)
		aiHandler.RegisterRoutes(api)
		profileHandler.RegisterRoutes(api)
	}

	return r
}
