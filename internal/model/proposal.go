package model

import (
	"fmt"
	"slices"
)

// ProposalStatus 投标状态
type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalStatusPending:   {ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn},
	ProposalStatusAccepted:  {ProposalStatusRejected},
	ProposalStatusRejected:  {},
	ProposalStatusWithdrawn: {},
}

func ProposalStatuses() []ProposalStatus {
	return []ProposalStatus{
		ProposalStatusPending,
		ProposalStatusAccepted,
		ProposalStatusRejected,
		ProposalStatusWithdrawn,
	}
}

func (s ProposalStatus) Valid() bool {
	_, ok := proposalTransitions[s]
	return ok
}

func (s ProposalStatus) CanTransitionTo(to ProposalStatus) bool {
	return slices.Contains(proposalTransitions[s], to)
}

func (s ProposalStatus) NextStatuses() []ProposalStatus {
	return slices.Clone(proposalTransitions[s])
}

func (s ProposalStatus) Terminal() bool {
	return s.Valid() && len(proposalTransitions[s]) == 0
}

// Editable 只有待处理的投标允许修改内容
func (s ProposalStatus) Editable() bool {
	return s == ProposalStatusPending
}

// Active 占用 (项目, 投标人) 唯一名额的状态
func (s ProposalStatus) Active() bool {
	return s == ProposalStatusPending || s == ProposalStatusAccepted
}

type Proposal struct {
	Model
	BidderID      uint           `gorm:"not null;index" json:"bidder_id"`                                // 投标的自由职业者
	ProjectID     uint           `gorm:"not null;index" json:"project_id"`                               // 所投项目
	CoverLetter   string         `gorm:"type:text;not null" json:"cover_letter"`                         // 自荐信
	BidAmount     float64        `gorm:"type:decimal(12,2);not null" json:"bid_amount"`                  // 报价
	EstimatedDays int            `gorm:"not null" json:"estimated_days"`                                 // 预计工期（天）
	Status        ProposalStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`   // 投标状态
	Attachments   []string       `gorm:"serializer:json;type:json" json:"attachments"`                   // 附件地址
	ActiveKey     *string        `gorm:"type:varchar(64);uniqueIndex:uk_proposal_active" json:"-"`       // 有效投标的 (项目, 投标人) 唯一键，失效时置空
}

func (p *Proposal) IsActive() bool {
	return !p.DeletedAt.Valid
}

// ProposalActiveKey (项目, 投标人) 唯一键
func ProposalActiveKey(projectID, bidderID uint) string {
	return fmt.Sprintf("%d:%d", projectID, bidderID)
}

// SyncActiveKey 根据当前状态刷新唯一键：pending/accepted 占用名额，其余释放
func (p *Proposal) SyncActiveKey() {
	if p.Status.Active() && p.IsActive() {
		key := ProposalActiveKey(p.ProjectID, p.BidderID)
		p.ActiveKey = &key
		return
	}
	p.ActiveKey = nil
}
