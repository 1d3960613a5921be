package db

import "gorm.io/gorm"

// UserPreference 记录用户最后浏览到的计划位置
// 每个用户仅一行，三个字段始终整体覆盖写入
type UserPreference struct {
	gorm.Model
	UserID     uint   `gorm:"uniqueIndex;not null"`
	LastPlanID uint   `gorm:"not null"`
	LastWeekID string `gorm:"not null"`
	LastDayID  string `gorm:"not null"`
}

// TableName 自定义表名以保持命名一致
func (UserPreference) TableName() string {
	return "user_preferences"
}
