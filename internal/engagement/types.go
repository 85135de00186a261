package engagement

import (
	"strings"
	"time"

	"freelance-marketplace/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Page 分页与排序参数，零值取默认
type Page struct {
	Page   int
	Limit  int
	SortBy string
	Order  SortOrder
}

// Offset 归一化之后才有意义
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// normalize 填充默认值并校验；sortable 为排序字段白名单（对外名 -> 列名），第一个为默认
func (p Page) normalize(sortable map[string]string, defaultSort string) (Page, string, error) {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Page < 1 {
		return p, "", Validation("page 必须大于等于 1")
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return p, "", Validation("limit 必须在 1 到 %d 之间", MaxLimit)
	}
	if p.SortBy == "" {
		p.SortBy = defaultSort
	}
	column, ok := sortable[p.SortBy]
	if !ok {
		return p, "", Validation("不支持按 %s 排序", p.SortBy)
	}
	p.Order = SortOrder(strings.ToLower(string(p.Order)))
	switch p.Order {
	case "":
		p.Order = SortDesc
	case SortAsc, SortDesc:
	default:
		return p, "", Validation("排序方向只能是 asc 或 desc")
	}
	return p, column, nil
}

// Sort 供存储层使用的已校验排序
type Sort struct {
	Column string
	Desc   bool
}

var projectSortable = map[string]string{
	"createdAt": "created_at",
	"budget":    "budget",
	"deadline":  "deadline",
}

var proposalSortable = map[string]string{
	"createdAt":     "created_at",
	"bidAmount":     "bid_amount",
	"estimatedDays": "estimated_days",
}

// PageResult 列表查询结果
type PageResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type ProjectFilter struct {
	Status     model.ProjectStatus
	ClientID   uint
	CategoryID uint
	SkillID    uint
	Search     string // 标题或描述模糊匹配
	MinBudget  *float64
	MaxBudget  *float64
}

type ProposalFilter struct {
	ProjectID uint
	BidderID  uint
	Status    model.ProposalStatus
}

// StatusBucket 按状态聚合的投标数量与平均报价
type StatusBucket struct {
	Status       model.ProposalStatus
	Count        int64
	AvgBidAmount float64
}

// ProposalStats 投标人的投标统计
type ProposalStats struct {
	Total        int64   `json:"total"`
	Pending      int64   `json:"pending"`
	Accepted     int64   `json:"accepted"`
	Rejected     int64   `json:"rejected"`
	Withdrawn    int64   `json:"withdrawn"`
	AvgBidAmount float64 `json:"avg_bid_amount"`
}

type CreateProjectInput struct {
	ClientID    uint
	Title       string
	Description string
	CategoryID  uint
	SkillIDs    []uint
	Budget      float64
	Deadline    *time.Time
	Attachments []string
}

// UpdateProjectInput nil 字段保持不变；状态只能通过 ChangeProjectStatus 修改
type UpdateProjectInput struct {
	Title       *string
	Description *string
	CategoryID  *uint
	SkillIDs    *[]uint
	Budget      *float64
	Deadline    *time.Time
	Attachments *[]string
}

type SubmitProposalInput struct {
	BidderID      uint
	ProjectID     uint
	CoverLetter   string
	BidAmount     float64
	EstimatedDays int
	Attachments   []string
}

// UpdateProposalInput 只包含内容字段，仅 pending 状态可修改
type UpdateProposalInput struct {
	CoverLetter   *string
	BidAmount     *float64
	EstimatedDays *int
	Attachments   *[]string
}

func (in UpdateProposalInput) empty() bool {
	return in.CoverLetter == nil && in.BidAmount == nil && in.EstimatedDays == nil && in.Attachments == nil
}

// AcceptedEvent 接受投标成功提交后发出
type AcceptedEvent struct {
	ProjectID  uint      `json:"project_id"`
	ProposalID uint      `json:"proposal_id"`
	BidderID   uint      `json:"bidder_id"`
	ClientID   uint      `json:"client_id"`
	BidAmount  float64   `json:"bid_amount"`
	Rejected   []uint    `json:"rejected_proposal_ids"`
	AcceptedAt time.Time `json:"accepted_at"`
}
