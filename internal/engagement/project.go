package engagement

import (
	"context"
	"strings"

	"freelance-marketplace/internal/global/metrics"
	"freelance-marketplace/internal/model"
)

// CreateProject 新项目总是处于 draft
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.ClientID == 0 {
		return nil, Validation("缺少雇主")
	}
	if in.Title == "" || strings.TrimSpace(in.Description) == "" {
		return nil, Validation("标题和描述不能为空")
	}
	if in.Budget <= 0 {
		return nil, Validation("预算必须为正数")
	}
	if err := s.checkTaxonomy(ctx, &in.CategoryID, in.SkillIDs); err != nil {
		return nil, err
	}

	p := &model.Project{
		Title:       in.Title,
		Description: in.Description,
		ClientID:    in.ClientID,
		CategoryID:  in.CategoryID,
		SkillIDs:    dedupe(in.SkillIDs),
		Budget:      in.Budget,
		Deadline:    in.Deadline,
		Status:      model.ProjectStatusDraft,
		Attachments: in.Attachments,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("项目创建成功", "project_id", p.ID, "client_id", p.ClientID)
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id uint) (*model.Project, error) {
	return s.store.GetProject(ctx, id)
}

// UpdateProject 修改项目内容字段，不涉及状态
func (s *Service) UpdateProject(ctx context.Context, id uint, in UpdateProjectInput) (*model.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, Validation("标题不能为空")
		}
		p.Title = title
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, Validation("描述不能为空")
		}
		p.Description = *in.Description
	}
	if in.Budget != nil {
		if *in.Budget <= 0 {
			return nil, Validation("预算必须为正数")
		}
		p.Budget = *in.Budget
	}
	var skills []uint
	if in.SkillIDs != nil {
		skills = *in.SkillIDs
	}
	if err := s.checkTaxonomy(ctx, in.CategoryID, skills); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.SkillIDs != nil {
		p.SkillIDs = dedupe(*in.SkillIDs)
	}
	if in.Deadline != nil {
		p.Deadline = in.Deadline
	}
	if in.Attachments != nil {
		p.Attachments = *in.Attachments
	}

	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("项目更新成功", "project_id", p.ID)
	return p, nil
}

// ChangeProjectStatus 按状态表迁移项目；与接受投标共用项目锁
func (s *Service) ChangeProjectStatus(ctx context.Context, id uint, target model.ProjectStatus) (*model.Project, error) {
	if !target.Valid() {
		return nil, Validation("未知的项目状态 %q", target)
	}

	var from model.ProjectStatus
	err := s.withProjectLock(ctx, id, func() error {
		p, err := s.store.GetProject(ctx, id)
		if err != nil {
			return err
		}
		from = p.Status
		if !p.Status.CanTransitionTo(target) {
			return InvalidTransition("项目", p.Status, target)
		}
		ok, err := s.store.CompareAndSwapProjectStatus(ctx, id, p.Status, target)
		if err != nil {
			return err
		}
		if !ok {
			return Conflict("项目 %d 状态已被修改，请刷新后重试", id)
		}
		return nil
	})
	if err != nil {
		recordFailure("project", err)
		s.log.Warn("项目状态变更失败", "project_id", id, "from", from, "to", target, "error", err)
		return nil, err
	}

	metrics.Transitions.WithLabelValues("project", string(from), string(target)).Inc()
	s.log.Info("项目状态变更成功", "project_id", id, "from", from, "to", target)
	return s.store.GetProject(ctx, id)
}

// DeleteProject 软删除
func (s *Service) DeleteProject(ctx context.Context, id uint) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.log.Info("项目删除成功", "project_id", id)
	return nil
}

func (s *Service) RestoreProject(ctx context.Context, id uint) (*model.Project, error) {
	p, err := s.store.RestoreProject(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("项目还原成功", "project_id", id)
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context, f ProjectFilter, page Page) (*PageResult[model.Project], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, Validation("未知的项目状态 %q", f.Status)
	}
	if f.MinBudget != nil && f.MaxBudget != nil && *f.MinBudget > *f.MaxBudget {
		return nil, Validation("最低预算不能高于最高预算")
	}
	page, column, err := page.normalize(projectSortable, "createdAt")
	if err != nil {
		return nil, err
	}
	items, total, err := s.store.ListProjects(ctx, f, page, Sort{Column: column, Desc: page.Order == SortDesc})
	if err != nil {
		return nil, err
	}
	return &PageResult[model.Project]{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

// checkTaxonomy categoryID 为 nil 时跳过分类校验
func (s *Service) checkTaxonomy(ctx context.Context, categoryID *uint, skillIDs []uint) error {
	if categoryID != nil {
		ok, err := s.store.CategoryExists(ctx, *categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return NotFound("分类 %d 不存在", *categoryID)
		}
	}
	if len(skillIDs) > 0 {
		missing, err := s.store.MissingSkills(ctx, dedupe(skillIDs))
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return NotFound("技能 %v 不存在", missing)
		}
	}
	return nil
}

func dedupe(ids []uint) []uint {
	if ids == nil {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
