package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/liftlog/internal/db"
	"gorm.io/gorm"
)

// ErrTemplateNotFound 在指定模板不存在或不属于当前用户时返回
var ErrTemplateNotFound = errors.New("template not found")

// TemplateService 负责计划模板的增删改查
// 模板不参与归档与版本链，保持普通 CRUD
type TemplateService struct {
	db *gorm.DB
}

// TemplateInput 定义创建/更新模板时可配置字段
type TemplateInput struct {
	Name        string
	Description string
	Data        json.RawMessage
}

// NewTemplateService 构造 TemplateService
func NewTemplateService(gdb *gorm.DB) *TemplateService {
	return &TemplateService{db: gdb}
}

// List 返回用户的全部模板
func (s *TemplateService) List(userID uint) ([]db.Template, error) {
	var templates []db.Template

	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	return templates, nil
}

// Get 根据 ID 获取模板，仅限本人
func (s *TemplateService) Get(id, userID uint) (*db.Template, error) {
	var template db.Template
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &template, nil
}

// Create 新建模板
func (s *TemplateService) Create(userID uint, input TemplateInput) (*db.Template, error) {
	data, err := encodeDocument(input.Data)
	if err != nil {
		return nil, err
	}

	template := db.Template{
		UserID:      userID,
		Name:        normalizePlanName(input.Name),
		Description: strings.TrimSpace(input.Description),
		Data:        data,
	}

	if err := s.db.Create(&template).Error; err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return &template, nil
}

// Update 整体替换模板内容
func (s *TemplateService) Update(id, userID uint, input TemplateInput) (*db.Template, error) {
	data, err := encodeDocument(input.Data)
	if err != nil {
		return nil, err
	}

	var existing db.Template
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("find template: %w", err)
	}

	existing.Name = normalizePlanName(input.Name)
	existing.Description = strings.TrimSpace(input.Description)
	existing.Data = data

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return &existing, nil
}

// Delete 硬删除模板，未命中行视为成功
func (s *TemplateService) Delete(id, userID uint) error {
	if err := s.db.Unscoped().Where("user_id = ?", userID).Delete(&db.Template{}, id).Error; err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
