package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/liftlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// slotConflictColumns 声明格位四元组上的唯一键，供冲突合并子句复用
var slotConflictColumns = []clause.Column{
	{Name: "user_id"},
	{Name: "plan_id"},
	{Name: "week_id"},
	{Name: "day_id"},
}

// WorkoutSessionService 负责训练记录的幂等保存与读取
// 并发首写同一格位时由存储层的冲突合并子句裁决，
// 应用层不做先查后插
type WorkoutSessionService struct {
	db *gorm.DB
}

// NewWorkoutSessionService 构造 WorkoutSessionService
func NewWorkoutSessionService(gdb *gorm.DB) *WorkoutSessionService {
	return &WorkoutSessionService{db: gdb}
}

// Save 保存格位上的训练内容：已存在则覆盖 Data 并刷新 updated_at，
// 否则插入新行。同一格位最终恰好保留一行，内容为最后提交者的载荷
func (s *WorkoutSessionService) Save(key SlotKey, data json.RawMessage) error {
	if err := key.Validate(); err != nil {
		return err
	}

	text, err := encodeDocument(data)
	if err != nil {
		return err
	}

	record := db.WorkoutSession{
		UserID: key.UserID,
		PlanID: key.PlanID,
		WeekID: key.WeekID,
		DayID:  key.DayID,
		Data:   text,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   slotConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("save workout session: %w", err)
	}

	return nil
}

// GetLast 返回格位上最近保存的训练文档，无记录时返回 nil。
// 只做精确格位匹配，不支持部分键查询
func (s *WorkoutSessionService) GetLast(key SlotKey) (any, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var record db.WorkoutSession
	if err := s.db.Where("user_id = ? AND plan_id = ? AND week_id = ? AND day_id = ?",
		key.UserID, key.PlanID, key.WeekID, key.DayID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workout session: %w", err)
	}

	return DecodeDocument(record.Data)
}

// CompletedSlot 描述一个已完成格位及其完成时间
type CompletedSlot struct {
	WeekID      string
	DayID       string
	CompletedAt time.Time
}

// CompletionService 负责完成标记的设置与查询
type CompletionService struct {
	db *gorm.DB
}

// NewCompletionService 构造 CompletionService
func NewCompletionService(gdb *gorm.DB) *CompletionService {
	return &CompletionService{db: gdb}
}

// SetCompleted 设置或清除格位的完成标记。
// 标记走与训练记录相同的冲突合并路径，完成时间取最后写入者；
// 清除不存在的标记是无副作用的成功
func (s *CompletionService) SetCompleted(key SlotKey, completed bool) error {
	if err := key.Validate(); err != nil {
		return err
	}

	if !completed {
		// 物理删除：软删除残留的行仍会占用格位唯一索引，阻塞再次标记完成
		if err := s.db.Unscoped().Where("user_id = ? AND plan_id = ? AND week_id = ? AND day_id = ?",
			key.UserID, key.PlanID, key.WeekID, key.DayID).
			Delete(&db.Completion{}).Error; err != nil {
			return fmt.Errorf("clear completion: %w", err)
		}
		return nil
	}

	record := db.Completion{
		UserID:      key.UserID,
		PlanID:      key.PlanID,
		WeekID:      key.WeekID,
		DayID:       key.DayID,
		CompletedAt: time.Now(),
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   slotConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"completed_at", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("set completion: %w", err)
	}

	return nil
}

// GetStatus 返回格位是否已完成：有行即完成
func (s *CompletionService) GetStatus(key SlotKey) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}

	var count int64
	if err := s.db.Model(&db.Completion{}).
		Where("user_id = ? AND plan_id = ? AND week_id = ? AND day_id = ?",
			key.UserID, key.PlanID, key.WeekID, key.DayID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("get completion status: %w", err)
	}

	return count > 0, nil
}

// GetLast 返回计划下完成时间最晚的格位，同刻并列时按主键序裁决；
// 计划下没有任何完成标记时返回 nil
func (s *CompletionService) GetLast(userID, planID uint) (*CompletedSlot, error) {
	var rows []CompletedSlot
	if err := s.db.Model(&db.Completion{}).
		Select("week_id, day_id, completed_at").
		Where("user_id = ? AND plan_id = ?", userID, planID).
		Order("completed_at DESC, id DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get last completion: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// GetAll 返回计划下全部已完成格位，按完成时间从旧到新排列，
// 供调用方还原完成时间线
func (s *CompletionService) GetAll(userID, planID uint) ([]CompletedSlot, error) {
	var rows []CompletedSlot
	if err := s.db.Model(&db.Completion{}).
		Select("week_id, day_id, completed_at").
		Where("user_id = ? AND plan_id = ?", userID, planID).
		Order("completed_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	return rows, nil
}
