package service

import (
	"context"
	"time"

	"github.com/JackaZhai/nano-banana/internal/model"
	"github.com/JackaZhai/nano-banana/internal/pkg/secret"
	"github.com/JackaZhai/nano-banana/internal/repository"
	"k8s.io/klog/v2"
)

// UsageService 使用统计服务接口
type UsageService interface {
	RecordUsage(ctx context.Context, at time.Time) error
	Profile(ctx context.Context) (*Profile, error)
}

// Profile 当前 Key 状态与使用统计
type Profile struct {
	HasKey        bool             `json:"hasKey"`
	ActiveKeyMask string           `json:"activeKeyMask"`
	Usage         model.UsageStats `json:"usage"`
}

type activeKeyReader interface {
	ActiveValue(ctx context.Context) (string, error)
}

type usageService struct {
	repo repository.UsageRepository
	keys activeKeyReader
}

// NewUsageService 创建使用统计服务
func NewUsageService(repo repository.UsageRepository, keys activeKeyReader) UsageService {
	return &usageService{repo: repo, keys: keys}
}

// RecordUsage 记录一次上游调用
func (s *usageService) RecordUsage(ctx context.Context, at time.Time) error {
	if err := s.repo.Increment(ctx, at); err != nil {
		klog.V(6).Infof("使用统计记录失败: %v", err)
		return err
	}
	return nil
}

// Profile 当前 Key 状态与使用统计
func (s *usageService) Profile(ctx context.Context) (*Profile, error) {
	active, err := s.keys.ActiveValue(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &Profile{
		HasKey:        active != "",
		ActiveKeyMask: secret.Mask(active),
		Usage:         *stats,
	}, nil
}
