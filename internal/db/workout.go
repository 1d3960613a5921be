package db

import (
	"time"

	"gorm.io/gorm"
)

// WorkoutSession 记录某个训练格位上最近一次保存的训练内容
// (user_id, plan_id, week_id, day_id) 采用唯一索引，保证幂等；
// 重复保存只覆盖 Data 与 updated_at，不保留历史版本
type WorkoutSession struct {
	gorm.Model
	UserID uint   `gorm:"not null;index:idx_workout_session_slot,unique"`
	PlanID uint   `gorm:"not null;index:idx_workout_session_slot,unique"`
	WeekID string `gorm:"not null;index:idx_workout_session_slot,unique"`
	DayID  string `gorm:"not null;index:idx_workout_session_slot,unique"`
	Data   string `gorm:"type:text"`
}

// TableName 重写确保唯一索引作用到完整格位四元组
func (WorkoutSession) TableName() string {
	return "workout_sessions"
}

// Completion 记录训练格位的完成标记
// 行存在即已完成，取消完成直接删行，不使用布尔字段
type Completion struct {
	gorm.Model
	UserID      uint      `gorm:"not null;index:idx_completion_slot,unique"`
	PlanID      uint      `gorm:"not null;index:idx_completion_slot,unique"`
	WeekID      string    `gorm:"not null;index:idx_completion_slot,unique"`
	DayID       string    `gorm:"not null;index:idx_completion_slot,unique"`
	CompletedAt time.Time `gorm:"not null;index"`
}

// TableName 自定义表名以保持命名一致
func (Completion) TableName() string {
	return "completions"
}
