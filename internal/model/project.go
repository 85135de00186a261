package model

import (
	"slices"
	"time"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusOpen       ProjectStatus = "open"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// projectTransitions 当前状态 -> 允许的下一状态，不含自环
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusDraft:      {ProjectStatusOpen, ProjectStatusCancelled},
	ProjectStatusOpen:       {ProjectStatusInProgress, ProjectStatusCancelled},
	ProjectStatusInProgress: {ProjectStatusCompleted, ProjectStatusCancelled},
	ProjectStatusCompleted:  {},
	ProjectStatusCancelled:  {ProjectStatusDraft},
}

// ProjectStatuses 全部项目状态
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{
		ProjectStatusDraft,
		ProjectStatusOpen,
		ProjectStatusInProgress,
		ProjectStatusCompleted,
		ProjectStatusCancelled,
	}
}

func (s ProjectStatus) Valid() bool {
	_, ok := projectTransitions[s]
	return ok
}

// CanTransitionTo 判断 s -> to 是否为合法迁移
func (s ProjectStatus) CanTransitionTo(to ProjectStatus) bool {
	return slices.Contains(projectTransitions[s], to)
}

// NextStatuses 返回可迁移到的状态（副本）
func (s ProjectStatus) NextStatuses() []ProjectStatus {
	return slices.Clone(projectTransitions[s])
}

// Terminal 没有出边的状态
func (s ProjectStatus) Terminal() bool {
	return s.Valid() && len(projectTransitions[s]) == 0
}

// AcceptsProposals 只有 open 状态的项目可以接收投标
func (s ProjectStatus) AcceptsProposals() bool {
	return s == ProjectStatusOpen
}

type Project struct {
	Model
	Title       string        `gorm:"type:varchar(200);not null" json:"title"`                   // 项目标题
	Description string        `gorm:"type:text;not null" json:"description"`                     // 项目描述
	ClientID    uint          `gorm:"not null;index" json:"client_id"`                           // 发布项目的雇主
	CategoryID  uint          `gorm:"not null;index" json:"category_id"`                         // 所属分类
	SkillIDs    []uint        `gorm:"serializer:json;type:json" json:"skill_ids"`                // 所需技能
	Budget      float64       `gorm:"type:decimal(12,2);not null" json:"budget"`                 // 预算
	Deadline    *time.Time    `gorm:"" json:"deadline,omitempty"`                                // 截止日期，可选
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:draft;index" json:"status"` // 项目状态
	Attachments []string      `gorm:"serializer:json;type:json" json:"attachments"`              // 附件地址
}

// IsActive 未被软删除
func (p *Project) IsActive() bool {
	return !p.DeletedAt.Valid
}
