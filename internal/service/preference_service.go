package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/liftlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceService 维护用户最后浏览位置的单行记录
type PreferenceService struct {
	db *gorm.DB
}

// PreferenceInput 定义最后浏览位置的三个分量，始终整体写入
type PreferenceInput struct {
	LastPlanID uint
	LastWeekID string
	LastDayID  string
}

// NewPreferenceService 构造 PreferenceService
func NewPreferenceService(gdb *gorm.DB) *PreferenceService {
	return &PreferenceService{db: gdb}
}

// Set 以 user_id 为键整行覆盖写入最后浏览位置
func (s *PreferenceService) Set(userID uint, input PreferenceInput) error {
	if userID == 0 {
		return ErrSlotIncomplete
	}
	if input.LastPlanID == 0 ||
		strings.TrimSpace(input.LastWeekID) == "" ||
		strings.TrimSpace(input.LastDayID) == "" {
		return ErrSlotIncomplete
	}

	record := db.UserPreference{
		UserID:     userID,
		LastPlanID: input.LastPlanID,
		LastWeekID: input.LastWeekID,
		LastDayID:  input.LastDayID,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_plan_id", "last_week_id", "last_day_id", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}

	return nil
}

// Get 返回用户的最后浏览位置，尚未记录时返回 nil
func (s *PreferenceService) Get(userID uint) (*db.UserPreference, error) {
	var pref db.UserPreference
	if err := s.db.Where("user_id = ?", userID).First(&pref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &pref, nil
}
