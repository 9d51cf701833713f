package repository

import (
	"context"
	"errors"
	"time"

	"github.com/JackaZhai/nano-banana/internal/model"
	"gorm.io/gorm"
)

// UsageRepository 使用统计仓储接口
type UsageRepository interface {
	// Increment 调用次数加一并更新最后使用时间
	Increment(ctx context.Context, at time.Time) error
	// Get 获取统计，没有记录时返回零值
	Get(ctx context.Context) (*model.UsageStats, error)
}

type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository 创建使用统计仓储
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// Increment 调用次数加一并更新最后使用时间
func (r *usageRepository) Increment(ctx context.Context, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stats model.UsageStats
		if err := tx.FirstOrCreate(&stats, model.UsageStats{ID: model.UsageStatsID}).Error; err != nil {
			return err
		}
		return tx.Model(&model.UsageStats{}).
			Where("id = ?", model.UsageStatsID).
			Updates(map[string]interface{}{
				"total_calls":  gorm.Expr("total_calls + ?", 1),
				"last_used_at": at,
			}).Error
	})
}

// Get 获取统计
func (r *usageRepository) Get(ctx context.Context) (*model.UsageStats, error) {
	var stats model.UsageStats
	err := r.db.WithContext(ctx).Where("id = ?", model.UsageStatsID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.UsageStats{}, nil
		}
		return nil, err
	}
	return &stats, nil
}
