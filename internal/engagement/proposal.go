package engagement

import (
	"context"
	"strings"

	"freelance-marketplace/internal/global/metrics"
	"freelance-marketplace/internal/model"
)

// SubmitProposal 仅 open 的项目接受投标，同一投标人在同一项目只能有一个有效投标
func (s *Service) SubmitProposal(ctx context.Context, in SubmitProposalInput) (*model.Proposal, error) {
	if in.BidderID == 0 || in.ProjectID == 0 {
		return nil, Validation("缺少投标人或项目")
	}
	if strings.TrimSpace(in.CoverLetter) == "" {
		return nil, Validation("自荐信不能为空")
	}
	if in.BidAmount <= 0 {
		return nil, Validation("报价必须为正数")
	}
	if in.EstimatedDays < 1 {
		return nil, Validation("预计工期至少 1 天")
	}

	p := &model.Proposal{
		BidderID:      in.BidderID,
		ProjectID:     in.ProjectID,
		CoverLetter:   in.CoverLetter,
		BidAmount:     in.BidAmount,
		EstimatedDays: in.EstimatedDays,
		Status:        model.ProposalStatusPending,
		Attachments:   in.Attachments,
	}
	p.SyncActiveKey()

	err := s.withProjectLock(ctx, in.ProjectID, func() error {
		return s.store.Atomic(ctx, func(tx Store) error {
			project, err := tx.LockProject(ctx, in.ProjectID)
			if err != nil {
				return err
			}
			if !project.Status.AcceptsProposals() {
				return InvalidState("项目当前状态为 %s，不接受投标", project.Status)
			}
			if project.ClientID == in.BidderID {
				return Validation("不能对自己发布的项目投标")
			}
			existing, err := tx.FindActiveProposal(ctx, in.ProjectID, in.BidderID)
			if err != nil {
				return err
			}
			if existing != nil {
				return Conflict("已对项目 %d 提交过投标", in.ProjectID)
			}
			return tx.CreateProposal(ctx, p)
		})
	})
	if err != nil {
		s.log.Warn("提交投标失败", "project_id", in.ProjectID, "bidder_id", in.BidderID, "error", err)
		return nil, err
	}
	s.log.Info("提交投标成功", "proposal_id", p.ID, "project_id", p.ProjectID, "bidder_id", p.BidderID)
	return p, nil
}

func (s *Service) GetProposal(ctx context.Context, id uint) (*model.Proposal, error) {
	return s.store.GetProposal(ctx, id)
}

// UpdateProposal 修改内容字段，非 pending 的投标返回 InvalidState
func (s *Service) UpdateProposal(ctx context.Context, id uint, in UpdateProposalInput) (*model.Proposal, error) {
	p, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.empty() {
		return p, nil
	}
	if !p.Status.Editable() {
		return nil, InvalidState("投标状态为 %s，不能修改内容", p.Status)
	}

	if in.CoverLetter != nil {
		if strings.TrimSpace(*in.CoverLetter) == "" {
			return nil, Validation("自荐信不能为空")
		}
		p.CoverLetter = *in.CoverLetter
	}
	if in.BidAmount != nil {
		if *in.BidAmount <= 0 {
			return nil, Validation("报价必须为正数")
		}
		p.BidAmount = *in.BidAmount
	}
	if in.EstimatedDays != nil {
		if *in.EstimatedDays < 1 {
			return nil, Validation("预计工期至少 1 天")
		}
		p.EstimatedDays = *in.EstimatedDays
	}
	if in.Attachments != nil {
		p.Attachments = *in.Attachments
	}

	ok, err := s.store.UpdatePendingProposal(ctx, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 读取之后状态被其他请求改变
		return nil, InvalidState("投标 %d 已不是 pending，不能修改内容", id)
	}
	s.log.Info("投标更新成功", "proposal_id", id)
	return s.store.GetProposal(ctx, id)
}

// ChangeProposalStatus 接受走级联流程，其余迁移只修改投标本身
func (s *Service) ChangeProposalStatus(ctx context.Context, id uint, target model.ProposalStatus) (*model.Proposal, error) {
	if !target.Valid() {
		return nil, Validation("未知的投标状态 %q", target)
	}
	p, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanTransitionTo(target) {
		err := InvalidTransition("投标", p.Status, target)
		recordFailure("proposal", err)
		s.log.Warn("投标状态变更失败", "proposal_id", id, "project_id", p.ProjectID, "from", p.Status, "to", target, "error", err)
		return nil, err
	}
	if target == model.ProposalStatusAccepted {
		return s.accept(ctx, p)
	}

	ok, err := s.store.CompareAndSwapProposalStatus(ctx, id, p.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		err := Conflict("投标 %d 状态已被修改，请刷新后重试", id)
		recordFailure("proposal", err)
		s.log.Warn("投标状态变更失败", "proposal_id", id, "project_id", p.ProjectID, "from", p.Status, "to", target, "error", err)
		return nil, err
	}
	metrics.Transitions.WithLabelValues("proposal", string(p.Status), string(target)).Inc()
	s.log.Info("投标状态变更成功", "proposal_id", id, "from", p.Status, "to", target)
	return s.store.GetProposal(ctx, id)
}

// DeleteProposal 软删除，同时释放 (项目, 投标人) 名额
func (s *Service) DeleteProposal(ctx context.Context, id uint) error {
	if err := s.store.DeleteProposal(ctx, id); err != nil {
		return err
	}
	s.log.Info("投标删除成功", "proposal_id", id)
	return nil
}
