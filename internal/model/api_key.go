package model

import (
	"time"

	"gorm.io/gorm"
)

// APIKeySource API Key 来源
type APIKeySource string

const (
	APIKeySourceEnv    APIKeySource = "env"
	APIKeySourceCustom APIKeySource = "custom"
)

// APIKey 上游服务 API Key，Value 为加密后的密文
type APIKey struct {
	ID        string       `json:"id" gorm:"primaryKey;size:32"`
	Value     string       `json:"-" gorm:"type:text;not null"`
	Source    APIKeySource `json:"source" gorm:"size:20;default:'custom'"`
	IsActive  bool         `json:"is_active" gorm:"default:false;index:idx_api_keys_active"`
	CreatedAt time.Time    `json:"created_at"`
}

// TableName 指定表名
func (APIKey) TableName() string {
	return "api_keys"
}

// BeforeCreate GORM 钩子：补齐创建时间
func (a *APIKey) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.Source == "" {
		a.Source = APIKeySourceCustom
	}
	return nil
}
