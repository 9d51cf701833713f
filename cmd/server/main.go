package main

import (
	"context"
	"flag"
	"log"
	"os"

	"k8s.io/klog/v2"

	"github.com/JackaZhai/nano-banana/config"
	"github.com/JackaZhai/nano-banana/internal/eventbus"
	"github.com/JackaZhai/nano-banana/internal/handler"
	"github.com/JackaZhai/nano-banana/internal/pkg/database"
	"github.com/JackaZhai/nano-banana/internal/pkg/secret"
	"github.com/JackaZhai/nano-banana/internal/pkg/upstream"
	"github.com/JackaZhai/nano-banana/internal/repository"
	"github.com/JackaZhai/nano-banana/internal/router"
	"github.com/JackaZhai/nano-banana/internal/service"
	"github.com/JackaZhai/nano-banana/internal/subscriber"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()
	if cfg.Security.AppSecret == secret.DefaultSecret {
		klog.Warningf("APP_SECRET_KEY 未设置，API Key 将使用默认密钥加密")
	}

	if cfg.Database.Type != "mysql" {
		if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化 Repository
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	usageRepo := repository.NewUsageRepository(db)

	// 初始化 Service
	upstreamClient := upstream.NewClient(cfg.Upstream.Host, cfg.Upstream.Timeout)
	validator := service.NewValidator(cfg.Security.MaxReferenceImages, cfg.Security.MaxReferenceImageBytes)
	apiKeyService := service.NewAPIKeyService(cfg, apiKeyRepo, secret.NewBox(cfg.Security.AppSecret), upstreamClient, validator)
	usageService := service.NewUsageService(usageRepo, apiKeyService)

	usageBus := eventbus.NewUsageEventBus()
	subscriber.NewUsageEventSubscriber(usageService).Register(usageBus)

	aiService := service.NewAIService(cfg, apiKeyService, upstreamClient, validator, usageBus)

	if err := apiKeyService.Bootstrap(context.Background()); err != nil {
		klog.Errorf("初始化 API Key 失败: %v", err)
	}

	// 初始化 Handler
	apiKeyHandler := handler.NewAPIKeyHandler(apiKeyService)
	aiHandler := handler.NewAIHandler(aiService)
	profileHandler := handler.NewProfileHandler(usageService)

	// 设置路由
	r := router.Setup(cfg, apiKeyHandler, aiHandler, profileHandler)

	log.Printf("Server starting on port %s, upstream %s...", cfg.Server.Port, upstreamClient.Host())
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
