package engagement

import (
	"context"
	"fmt"

	"freelance-marketplace/internal/global/metrics"
	"freelance-marketplace/internal/global/sentry/tracing"
	"freelance-marketplace/internal/model"
)

// accept 接受投标：投标 -> accepted，项目 open -> in_progress，同项目其他 pending 投标 -> rejected。
// 三步写入在项目锁和同一事务内按此顺序完成，任一步失败全部回滚。
func (s *Service) accept(ctx context.Context, p *model.Proposal) (*model.Proposal, error) {
	start := s.now()
	ctx, done := tracing.StartSpan(ctx, "engagement.accept", fmt.Sprintf("proposal %d", p.ID))
	var (
		project  *model.Project
		rejected []uint
	)

	err := s.withProjectLock(ctx, p.ProjectID, func() error {
		return s.store.Atomic(ctx, func(tx Store) error {
			var err error
			project, err = tx.LockProject(ctx, p.ProjectID)
			if err != nil {
				return err
			}

			// 拿到锁之后重新校验，等锁期间可能已有其他请求完成接受
			current, err := tx.GetProposal(ctx, p.ID)
			if err != nil {
				return err
			}
			if current.Status != p.Status {
				return Conflict("投标 %d 状态已被修改，请刷新后重试", p.ID)
			}
			if project.Status != model.ProjectStatusOpen {
				return InvalidState("项目当前状态为 %s，无法接受投标", project.Status)
			}
			accepted, err := tx.CountProposals(ctx, project.ID, model.ProposalStatusAccepted)
			if err != nil {
				return err
			}
			if accepted > 0 {
				return Conflict("项目 %d 已有被接受的投标", project.ID)
			}

			ok, err := tx.CompareAndSwapProposalStatus(ctx, p.ID, model.ProposalStatusPending, model.ProposalStatusAccepted)
			if err != nil {
				return err
			}
			if !ok {
				return Conflict("投标 %d 状态已被修改，请刷新后重试", p.ID)
			}
			ok, err = tx.CompareAndSwapProjectStatus(ctx, project.ID, model.ProjectStatusOpen, model.ProjectStatusInProgress)
			if err != nil {
				return err
			}
			if !ok {
				return Conflict("项目 %d 已不是 open 状态", project.ID)
			}
			rejected, err = tx.RejectPendingProposals(ctx, project.ID, p.ID)
			return err
		})
	})
	done(err)
	if err != nil {
		recordFailure("proposal", err)
		s.log.Warn("接受投标失败", "proposal_id", p.ID, "project_id", p.ProjectID, "error", err)
		return nil, err
	}

	metrics.AcceptDuration.Observe(s.now().Sub(start).Seconds())
	metrics.Transitions.WithLabelValues("proposal", string(model.ProposalStatusPending), string(model.ProposalStatusAccepted)).Inc()
	metrics.Transitions.WithLabelValues("project", string(model.ProjectStatusOpen), string(model.ProjectStatusInProgress)).Inc()
	metrics.CascadeRejected.Add(float64(len(rejected)))
	s.log.Info("接受投标成功", "proposal_id", p.ID, "project_id", project.ID, "rejected", rejected)

	s.notifyAccepted(ctx, AcceptedEvent{
		ProjectID:  project.ID,
		ProposalID: p.ID,
		BidderID:   p.BidderID,
		ClientID:   project.ClientID,
		BidAmount:  p.BidAmount,
		Rejected:   rejected,
		AcceptedAt: s.now(),
	})
	return s.store.GetProposal(ctx, p.ID)
}

func (s *Service) notifyAccepted(ctx context.Context, evt AcceptedEvent) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.ProposalAccepted(ctx, evt); err != nil {
			s.log.Error("接受投标通知发送失败", "proposal_id", evt.ProposalID, "error", err)
		}
	}()
}
