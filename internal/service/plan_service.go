package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/liftlog/internal/db"
	"gorm.io/gorm"
)

// ErrPlanNotFound 在指定计划不存在或不属于当前用户时返回
var ErrPlanNotFound = errors.New("plan not found")

// defaultPlanName 为未命名计划提供占位名称
const defaultPlanName = "未命名计划"

// versionMarkerPattern 匹配名称末尾的版本标记，如 "增肌计划 (#3)"
// 仅锚定在去除首尾空白后的末尾；出现在中间的同形片段不视为版本标记
var versionMarkerPattern = regexp.MustCompile(`\(#(\d+)\)$`)

// PlanService 负责训练计划的增删改查、归档与版本滚动
// 所有查询均以 user_id 过滤，越权访问与不存在一律表现为未找到
type PlanService struct {
	db *gorm.DB
}

// PlanInput 定义创建/更新计划时可配置字段
// Data 为不透明的计划文档，本层仅透传存储
type PlanInput struct {
	Name string
	Data json.RawMessage
}

// NewPlanService 构造 PlanService
func NewPlanService(gdb *gorm.DB) *PlanService {
	return &PlanService{db: gdb}
}

// List 返回用户的计划集合，按归档标记严格二分
func (s *PlanService) List(userID uint, archived bool) ([]db.Plan, error) {
	var plans []db.Plan

	if err := s.db.Where("user_id = ? AND archived = ?", userID, archived).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	return plans, nil
}

// Get 根据 ID 获取计划，仅限本人
func (s *PlanService) Get(id, userID uint) (*db.Plan, error) {
	var plan db.Plan
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &plan, nil
}

// Create 新建计划，始终处于未归档状态且无前驱
func (s *PlanService) Create(userID uint, input PlanInput) (*db.Plan, error) {
	data, err := encodeDocument(input.Data)
	if err != nil {
		return nil, err
	}

	plan := db.Plan{
		UserID:   userID,
		Name:     normalizePlanName(input.Name),
		Data:     data,
		Archived: false,
	}

	if err := s.db.Create(&plan).Error; err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return &plan, nil
}

// Update 整体替换计划的名称与文档内容
func (s *PlanService) Update(id, userID uint, input PlanInput) (*db.Plan, error) {
	data, err := encodeDocument(input.Data)
	if err != nil {
		return nil, err
	}

	var existing db.Plan
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}

	existing.Name = normalizePlanName(input.Name)
	existing.Data = data

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return &existing, nil
}

// Archive 将计划置为已归档。重复归档是无副作用的成功，
// 仅在计划确实不存在时报未找到
func (s *PlanService) Archive(id, userID uint) (*db.Plan, error) {
	var plan db.Plan
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}

	if plan.Archived {
		return &plan, nil
	}

	plan.Archived = true
	if err := s.db.Save(&plan).Error; err != nil {
		return nil, fmt.Errorf("archive plan: %w", err)
	}
	return &plan, nil
}

// Delete 硬删除计划。未命中行视为成功，不额外报错；
// 关联的训练记录与完成标记不做级联清理，留存为惰性孤儿数据
func (s *PlanService) Delete(id, userID uint) error {
	if err := s.db.Unscoped().Where("user_id = ?", userID).Delete(&db.Plan{}, id).Error; err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

// Rollover 将计划滚动升级：归档源计划，并以其文档克隆出下一版。
// 归档与新建在同一事务内完成，读取方不会观察到同一版本链上
// 零个或两个未归档计划并存的中间态
func (s *PlanService) Rollover(id, userID uint) (*db.Plan, error) {
	var createdID uint

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var source db.Plan
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&source).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return fmt.Errorf("find plan: %w", err)
		}

		if err := tx.Model(&db.Plan{}).Where("id = ?", source.ID).
			Update("archived", true).Error; err != nil {
			return fmt.Errorf("archive source plan: %w", err)
		}

		predecessorID := source.ID
		next := db.Plan{
			UserID:            userID,
			Name:              nextPlanName(source.Name),
			Data:              source.Data,
			Archived:          false,
			PredecessorPlanID: &predecessorID,
		}
		if err := tx.Create(&next).Error; err != nil {
			return fmt.Errorf("create rollover plan: %w", err)
		}

		createdID = next.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var created db.Plan
	if err := s.db.First(&created, createdID).Error; err != nil {
		return nil, fmt.Errorf("reload rollover plan: %w", err)
	}
	return &created, nil
}

// nextPlanName 推导滚动升级后的计划名称：
// 末尾存在形如 (#N) 的版本标记时递增为 (#N+1)，否则从 (#2) 开始
func nextPlanName(name string) string {
	trimmed := strings.TrimSpace(name)

	base := trimmed
	version := 2

	if loc := versionMarkerPattern.FindStringSubmatchIndex(trimmed); loc != nil {
		if current, err := strconv.Atoi(trimmed[loc[2]:loc[3]]); err == nil {
			base = strings.TrimSpace(trimmed[:loc[0]])
			version = current + 1
		}
	}

	return fmt.Sprintf("%s (#%d)", base, version)
}

func normalizePlanName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultPlanName
	}
	return trimmed
}
