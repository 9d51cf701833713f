package model

import "time"

// UsageStatsID 单行使用统计的主键
const UsageStatsID = 1

// UsageStats 上游调用统计
type UsageStats struct {
	ID         uint       `json:"-" gorm:"primaryKey"`
	TotalCalls int64      `json:"totalCalls" gorm:"default:0"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
}

// TableName 指定表名
func (UsageStats) TableName() string {
	return "usage_stats"
}
