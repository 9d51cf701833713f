package repository

import (
	"context"
	"errors"

	"github.com/JackaZhai/nano-banana/internal/model"
	"gorm.io/gorm"
)

// ErrAPIKeyNotFound API Key 不存在错误
var ErrAPIKeyNotFound = errors.New("api key not found")

// APIKeyRepository API Key 仓储接口
type APIKeyRepository interface {
	// List 按创建顺序列出全部 API Key
	List(ctx context.Context) ([]*model.APIKey, error)

	// Create 创建 API Key，IsActive 为真时取消其余 Key 的激活状态
	Create(ctx context.Context, apiKey *model.APIKey) error

	// Delete 删除 API Key
	Delete(ctx context.Context, id string) error

	// GetByID 根据 ID 获取
	GetByID(ctx context.Context, id string) (*model.APIKey, error)

	// GetActive 获取当前激活的 API Key
	GetActive(ctx context.Context) (*model.APIKey, error)

	// SetActive 将指定 Key 设为唯一激活项
	SetActive(ctx context.Context, id string) error
}

type apiKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository 创建 API Key 仓储
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

// List 按创建顺序列出全部 API Key
func (r *apiKeyRepository) List(ctx context.Context) ([]*model.APIKey, error) {
	var apiKeys []*model.APIKey
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&apiKeys).Error
	return apiKeys, err
}

// Create 创建 API Key
func (r *apiKeyRepository) Create(ctx context.Context, apiKey *model.APIKey) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if apiKey.IsActive {
			if err := clearActive(tx); err != nil {
				return err
			}
		}
		return tx.Create(apiKey).Error
	})
}

// Delete 删除 API Key
func (r *apiKeyRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.APIKey{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// GetByID 根据 ID 获取
func (r *apiKeyRepository) GetByID(ctx context.Context, id string) (*model.APIKey, error) {
	var apiKey model.APIKey
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &apiKey, nil
}

// GetActive 获取当前激活的 API Key
func (r *apiKeyRepository) GetActive(ctx context.Context) (*model.APIKey, error) {
	var apiKey model.APIKey
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &apiKey, nil
}

// SetActive 将指定 Key 设为唯一激活项
func (r *apiKeyRepository) SetActive(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.APIKey{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAPIKeyNotFound
		}
		if err := clearActive(tx); err != nil {
			return err
		}
		return tx.Model(&model.APIKey{}).Where("id = ?", id).Update("is_active", true).Error
	})
}

func clearActive(tx *gorm.DB) error {
	return tx.Model(&model.APIKey{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}
