package engagement

import (
	"context"

	"freelance-marketplace/internal/model"
)

// Store 项目与投标的持久化接口。
// 读取方法对已软删除的记录返回 NotFound；CompareAndSwap 系列仅在当前状态等于 from 时写入。
type Store interface {
	CreateProject(ctx context.Context, p *model.Project) error
	GetProject(ctx context.Context, id uint) (*model.Project, error)
	// LockProject 读取项目并在当前事务内加排他锁，事务外调用等同 GetProject
	LockProject(ctx context.Context, id uint) (*model.Project, error)
	UpdateProject(ctx context.Context, p *model.Project) error
	CompareAndSwapProjectStatus(ctx context.Context, id uint, from, to model.ProjectStatus) (bool, error)
	DeleteProject(ctx context.Context, id uint) error
	RestoreProject(ctx context.Context, id uint) (*model.Project, error)
	ListProjects(ctx context.Context, f ProjectFilter, page Page, sort Sort) ([]model.Project, int64, error)

	// CreateProposal 有效的 (项目, 投标人) 重复时返回 Conflict
	CreateProposal(ctx context.Context, p *model.Proposal) error
	GetProposal(ctx context.Context, id uint) (*model.Proposal, error)
	// FindActiveProposal 返回 pending/accepted 的投标，没有时返回 nil, nil
	FindActiveProposal(ctx context.Context, projectID, bidderID uint) (*model.Proposal, error)
	// UpdatePendingProposal 仅当投标仍为 pending 时写入内容字段
	UpdatePendingProposal(ctx context.Context, p *model.Proposal) (bool, error)
	CompareAndSwapProposalStatus(ctx context.Context, id uint, from, to model.ProposalStatus) (bool, error)
	// RejectPendingProposals 拒绝项目下除 exceptID 外所有 pending 投标，返回被拒绝的 ID
	RejectPendingProposals(ctx context.Context, projectID, exceptID uint) ([]uint, error)
	CountProposals(ctx context.Context, projectID uint, status model.ProposalStatus) (int64, error)
	DeleteProposal(ctx context.Context, id uint) error
	ListProposals(ctx context.Context, f ProposalFilter, page Page, sort Sort) ([]model.Proposal, int64, error)
	ProposalStatusBuckets(ctx context.Context, bidderID uint) ([]StatusBucket, error)

	CategoryExists(ctx context.Context, id uint) (bool, error)
	// MissingSkills 返回 ids 中不存在的技能
	MissingSkills(ctx context.Context, ids []uint) ([]uint, error)

	// Atomic 在一个事务中执行 fn，fn 返回错误时全部回滚
	Atomic(ctx context.Context, fn func(tx Store) error) error
}
