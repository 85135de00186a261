package engagement

import (
	"context"
	"strconv"

	"freelance-marketplace/internal/global/database"
	"freelance-marketplace/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	projectContentColumns  = []string{"title", "description", "category_id", "skill_ids", "budget", "deadline", "attachments"}
	proposalContentColumns = []string{"cover_letter", "bid_amount", "estimated_days", "attachments"}
)

// GormStore 基于 MySQL 的 Store 实现
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateProject(ctx context.Context, p *model.Project) error {
	return errors.WithStack(s.conn(ctx).Create(p).Error)
}

func (s *GormStore) GetProject(ctx context.Context, id uint) (*model.Project, error) {
	return s.findProject(s.conn(ctx), id)
}

func (s *GormStore) LockProject(ctx context.Context, id uint) (*model.Project, error) {
	return s.findProject(s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (s *GormStore) findProject(db *gorm.DB, id uint) (*model.Project, error) {
	var p model.Project
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("项目 %d 不存在", id)
		}
		return nil, errors.WithStack(err)
	}
	return &p, nil
}

func (s *GormStore) UpdateProject(ctx context.Context, p *model.Project) error {
	return errors.WithStack(s.conn(ctx).Model(p).Select(projectContentColumns).Updates(p).Error)
}

func (s *GormStore) CompareAndSwapProjectStatus(ctx context.Context, id uint, from, to model.ProjectStatus) (bool, error) {
	res := s.conn(ctx).Model(&model.Project{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, errors.WithStack(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) DeleteProject(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&model.Project{}, id)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("项目 %d 不存在", id)
	}
	return nil
}

func (s *GormStore) RestoreProject(ctx context.Context, id uint) (*model.Project, error) {
	var p model.Project
	if err := s.conn(ctx).Unscoped().First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("项目 %d 不存在", id)
		}
		return nil, errors.WithStack(err)
	}
	if p.IsActive() {
		return nil, InvalidState("项目 %d 未被删除", id)
	}
	if err := s.conn(ctx).Unscoped().Model(&p).Update("deleted_at", nil).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return s.GetProject(ctx, id)
}

func (s *GormStore) ListProjects(ctx context.Context, f ProjectFilter, page Page, sort Sort) ([]model.Project, int64, error) {
	q := s.conn(ctx).Model(&model.Project{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.SkillID != 0 {
		q = q.Where("JSON_CONTAINS(skill_ids, ?)", strconv.FormatUint(uint64(f.SkillID), 10))
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(title LIKE ? OR description LIKE ?)", like, like)
	}
	if f.MinBudget != nil {
		q = q.Where("budget >= ?", *f.MinBudget)
	}
	if f.MaxBudget != nil {
		q = q.Where("budget <= ?", *f.MaxBudget)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}
	var items []model.Project
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: sort.Column}, Desc: sort.Desc}).
		Offset(page.Offset()).Limit(page.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return items, total, nil
}

func (s *GormStore) CreateProposal(ctx context.Context, p *model.Proposal) error {
	if err := s.conn(ctx).Create(p).Error; err != nil {
		if database.IsDuplicate(err) {
			return Conflict("已对项目 %d 提交过投标", p.ProjectID)
		}
		return errors.WithStack(err)
	}
	return nil
}

func (s *GormStore) GetProposal(ctx context.Context, id uint) (*model.Proposal, error) {
	var p model.Proposal
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("投标 %d 不存在", id)
		}
		return nil, errors.WithStack(err)
	}
	return &p, nil
}

func (s *GormStore) FindActiveProposal(ctx context.Context, projectID, bidderID uint) (*model.Proposal, error) {
	var p model.Proposal
	err := s.conn(ctx).
		Where("project_id = ? AND bidder_id = ? AND status IN ?", projectID, bidderID,
			[]model.ProposalStatus{model.ProposalStatusPending, model.ProposalStatusAccepted}).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &p, nil
}

func (s *GormStore) UpdatePendingProposal(ctx context.Context, p *model.Proposal) (bool, error) {
	res := s.conn(ctx).Model(p).
		Where("status = ?", model.ProposalStatusPending).
		Select(proposalContentColumns).
		Updates(p)
	if res.Error != nil {
		return false, errors.WithStack(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// CompareAndSwapProposalStatus 迁移到非有效状态时同时释放唯一键
func (s *GormStore) CompareAndSwapProposalStatus(ctx context.Context, id uint, from, to model.ProposalStatus) (bool, error) {
	updates := map[string]any{"status": to}
	if !to.Active() {
		updates["active_key"] = nil
	}
	res := s.conn(ctx).Model(&model.Proposal{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, errors.WithStack(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) RejectPendingProposals(ctx context.Context, projectID, exceptID uint) ([]uint, error) {
	var ids []uint
	err := s.conn(ctx).Model(&model.Proposal{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("project_id = ? AND status = ? AND id <> ?", projectID, model.ProposalStatusPending, exceptID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	err = s.conn(ctx).Model(&model.Proposal{}).
		Where("id IN ? AND status = ?", ids, model.ProposalStatusPending).
		Updates(map[string]any{"status": model.ProposalStatusRejected, "active_key": nil}).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ids, nil
}

func (s *GormStore) CountProposals(ctx context.Context, projectID uint, status model.ProposalStatus) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&model.Proposal{}).
		Where("project_id = ? AND status = ?", projectID, status).
		Count(&n).Error
	return n, errors.WithStack(err)
}

func (s *GormStore) DeleteProposal(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Model(&model.Proposal{}).Where("id = ?", id).Update("active_key", nil).Error; err != nil {
			return errors.WithStack(err)
		}
		res := db.Delete(&model.Proposal{}, id)
		if res.Error != nil {
			return errors.WithStack(res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFound("投标 %d 不存在", id)
		}
		return nil
	})
}

func (s *GormStore) ListProposals(ctx context.Context, f ProposalFilter, page Page, sort Sort) ([]model.Proposal, int64, error) {
	q := s.conn(ctx).Model(&model.Proposal{})
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.BidderID != 0 {
		q = q.Where("bidder_id = ?", f.BidderID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}
	var items []model.Proposal
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: sort.Column}, Desc: sort.Desc}).
		Offset(page.Offset()).Limit(page.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return items, total, nil
}

func (s *GormStore) ProposalStatusBuckets(ctx context.Context, bidderID uint) ([]StatusBucket, error) {
	var buckets []StatusBucket
	err := s.conn(ctx).Model(&model.Proposal{}).
		Select("status, COUNT(*) AS count, AVG(bid_amount) AS avg_bid_amount").
		Where("bidder_id = ?", bidderID).
		Group("status").
		Scan(&buckets).Error
	return buckets, errors.WithStack(err)
}

func (s *GormStore) CategoryExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, errors.WithStack(err)
}

func (s *GormStore) MissingSkills(ctx context.Context, ids []uint) ([]uint, error) {
	var found []uint
	if err := s.conn(ctx).Model(&model.Skill{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	exists := make(map[uint]struct{}, len(found))
	for _, id := range found {
		exists[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := exists[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
