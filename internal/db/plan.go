package db

import "gorm.io/gorm"

// Plan 定义了训练计划模型
// Data 存储序列化后的计划文档（周 → 天 → 动作），本层不解析其内部结构
// Archived 只在 active/archived 两态间切换，归档后保留历史不做删除
// PredecessorPlanID 指向被滚动升级的上一版计划，创建后不再变更，
// 沿指针回溯即可还原整条版本链
type Plan struct {
	gorm.Model
	UserID            uint   `gorm:"index;not null"`
	Name              string `gorm:"not null"`
	Data              string `gorm:"type:text"`
	Archived          bool   `gorm:"not null;default:false;index"`
	PredecessorPlanID *uint  `gorm:"index"`
}

// Template 定义了计划模板模型
// 与 Plan 同构但不参与归档与版本链，仅作为可复用的计划底稿
// Description 为模板说明，支持 Markdown
type Template struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Data        string `gorm:"type:text"`
}
