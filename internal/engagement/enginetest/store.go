// Package enginetest 提供 engagement.Store 的内存实现，供单元测试使用
package enginetest

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/model"

	"gorm.io/gorm"
)

type state struct {
	nextID     uint
	projects   map[uint]model.Project
	proposals  map[uint]model.Proposal
	categories map[uint]bool
	skills     map[uint]bool
}

func (st *state) clone() *state {
	c := &state{
		nextID:     st.nextID,
		projects:   make(map[uint]model.Project, len(st.projects)),
		proposals:  make(map[uint]model.Proposal, len(st.proposals)),
		categories: make(map[uint]bool, len(st.categories)),
		skills:     make(map[uint]bool, len(st.skills)),
	}
	for k, v := range st.projects {
		c.projects[k] = v
	}
	for k, v := range st.proposals {
		c.proposals[k] = v
	}
	for k, v := range st.categories {
		c.categories[k] = v
	}
	for k, v := range st.skills {
		c.skills[k] = v
	}
	return c
}

func (st *state) id() uint {
	st.nextID++
	return st.nextID
}

// Store 所有读写在同一把互斥锁下进行；Atomic 整个执行期间持锁，失败时恢复快照
type Store struct {
	mu     *sync.Mutex
	st     *state
	inTx   bool
	faults *faults
	now    func() time.Time
}

type faults struct {
	mu    sync.Mutex
	byOp  map[string]error
	calls map[string]int
}

func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		st: &state{
			projects:   make(map[uint]model.Project),
			proposals:  make(map[uint]model.Proposal),
			categories: make(map[uint]bool),
			skills:     make(map[uint]bool),
		},
		faults: &faults{byOp: make(map[string]error), calls: make(map[string]int)},
		now:    time.Now,
	}
}

var _ engagement.Store = (*Store)(nil)

// FailOn 之后对 op 的调用都返回 err，err 为 nil 时取消
func (s *Store) FailOn(op string, err error) {
	s.faults.mu.Lock()
	defer s.faults.mu.Unlock()
	if err == nil {
		delete(s.faults.byOp, op)
		return
	}
	s.faults.byOp[op] = err
}

// Calls 返回 op 被调用的次数
func (s *Store) Calls(op string) int {
	s.faults.mu.Lock()
	defer s.faults.mu.Unlock()
	return s.faults.calls[op]
}

func (s *Store) enter(op string) (func(), error) {
	s.faults.mu.Lock()
	s.faults.calls[op]++
	err := s.faults.byOp[op]
	s.faults.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if s.inTx {
		return func() {}, nil
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

// AddCategory 预置分类，返回 ID
func (s *Store) AddCategory() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.st.id()
	s.st.categories[id] = true
	return id
}

// AddSkill 预置技能，返回 ID
func (s *Store) AddSkill() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.st.id()
	s.st.skills[id] = true
	return id
}

// PutProject 直接写入项目，绕过状态机，用于构造测试场景
func (s *Store) PutProject(p model.Project) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.st.id()
	}
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	s.st.projects[p.ID] = p
	return p.ID
}

// PutProposal 直接写入投标，绕过状态机
func (s *Store) PutProposal(p model.Proposal) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.st.id()
	}
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	p.SyncActiveKey()
	s.st.proposals[p.ID] = p
	return p.ID
}

func (s *Store) Atomic(ctx context.Context, fn func(tx engagement.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	done, err := s.enter("Atomic")
	if err != nil {
		return err
	}
	defer done()

	snapshot := s.st.clone()
	tx := &Store{mu: s.mu, st: s.st, inTx: true, faults: s.faults, now: s.now}
	if err := fn(tx); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	done, err := s.enter("CreateProject")
	if err != nil {
		return err
	}
	defer done()
	p.ID = s.st.id()
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	s.st.projects[p.ID] = cloneProject(*p)
	return nil
}

func (s *Store) GetProject(ctx context.Context, id uint) (*model.Project, error) {
	done, err := s.enter("GetProject")
	if err != nil {
		return nil, err
	}
	defer done()
	return s.project(id)
}

func (s *Store) LockProject(ctx context.Context, id uint) (*model.Project, error) {
	done, err := s.enter("LockProject")
	if err != nil {
		return nil, err
	}
	defer done()
	return s.project(id)
}

func (s *Store) project(id uint) (*model.Project, error) {
	p, ok := s.st.projects[id]
	if !ok || !p.IsActive() {
		return nil, engagement.NotFound("项目 %d 不存在", id)
	}
	p = cloneProject(p)
	return &p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *model.Project) error {
	done, err := s.enter("UpdateProject")
	if err != nil {
		return err
	}
	defer done()
	cur, ok := s.st.projects[p.ID]
	if !ok || !cur.IsActive() {
		return engagement.NotFound("项目 %d 不存在", p.ID)
	}
	cur.Title, cur.Description = p.Title, p.Description
	cur.CategoryID, cur.SkillIDs = p.CategoryID, slices.Clone(p.SkillIDs)
	cur.Budget, cur.Deadline = p.Budget, p.Deadline
	cur.Attachments = slices.Clone(p.Attachments)
	cur.UpdatedAt = s.now()
	s.st.projects[p.ID] = cur
	return nil
}

func (s *Store) CompareAndSwapProjectStatus(ctx context.Context, id uint, from, to model.ProjectStatus) (bool, error) {
	done, err := s.enter("CompareAndSwapProjectStatus")
	if err != nil {
		return false, err
	}
	defer done()
	cur, ok := s.st.projects[id]
	if !ok || !cur.IsActive() || cur.Status != from {
		return false, nil
	}
	cur.Status = to
	cur.UpdatedAt = s.now()
	s.st.projects[id] = cur
	return true, nil
}

func (s *Store) DeleteProject(ctx context.Context, id uint) error {
	done, err := s.enter("DeleteProject")
	if err != nil {
		return err
	}
	defer done()
	cur, ok := s.st.projects[id]
	if !ok || !cur.IsActive() {
		return engagement.NotFound("项目 %d 不存在", id)
	}
	cur.DeletedAt = gorm.DeletedAt{Time: s.now(), Valid: true}
	s.st.projects[id] = cur
	return nil
}

func (s *Store) RestoreProject(ctx context.Context, id uint) (*model.Project, error) {
	done, err := s.enter("RestoreProject")
	if err != nil {
		return nil, err
	}
	defer done()
	cur, ok := s.st.projects[id]
	if !ok {
		return nil, engagement.NotFound("项目 %d 不存在", id)
	}
	if cur.IsActive() {
		return nil, engagement.InvalidState("项目 %d 未被删除", id)
	}
	cur.DeletedAt = gorm.DeletedAt{}
	s.st.projects[id] = cur
	return s.project(id)
}

func (s *Store) ListProjects(ctx context.Context, f engagement.ProjectFilter, page engagement.Page, sort engagement.Sort) ([]model.Project, int64, error) {
	done, err := s.enter("ListProjects")
	if err != nil {
		return nil, 0, err
	}
	defer done()
	var items []model.Project
	for _, p := range s.st.projects {
		if !p.IsActive() ||
			(f.Status != "" && p.Status != f.Status) ||
			(f.ClientID != 0 && p.ClientID != f.ClientID) ||
			(f.CategoryID != 0 && p.CategoryID != f.CategoryID) ||
			(f.SkillID != 0 && !slices.Contains(p.SkillIDs, f.SkillID)) ||
			(f.MinBudget != nil && p.Budget < *f.MinBudget) ||
			(f.MaxBudget != nil && p.Budget > *f.MaxBudget) {
			continue
		}
		if f.Search != "" && !strings.Contains(p.Title, f.Search) && !strings.Contains(p.Description, f.Search) {
			continue
		}
		items = append(items, cloneProject(p))
	}
	slices.SortFunc(items, func(a, b model.Project) int {
		var c int
		switch sort.Column {
		case "budget":
			c = cmp.Compare(a.Budget, b.Budget)
		case "deadline":
			c = cmp.Compare(unix(a.Deadline), unix(b.Deadline))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if sort.Desc {
			return -c
		}
		return c
	})
	return paginate(items, page), int64(len(items)), nil
}

func (s *Store) CreateProposal(ctx context.Context, p *model.Proposal) error {
	done, err := s.enter("CreateProposal")
	if err != nil {
		return err
	}
	defer done()
	p.SyncActiveKey()
	if p.ActiveKey != nil {
		for _, other := range s.st.proposals {
			if other.ActiveKey != nil && *other.ActiveKey == *p.ActiveKey {
				return engagement.Conflict("已对项目 %d 提交过投标", p.ProjectID)
			}
		}
	}
	p.ID = s.st.id()
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	s.st.proposals[p.ID] = cloneProposal(*p)
	return nil
}

func (s *Store) GetProposal(ctx context.Context, id uint) (*model.Proposal, error) {
	done, err := s.enter("GetProposal")
	if err != nil {
		return nil, err
	}
	defer done()
	p, ok := s.st.proposals[id]
	if !ok || !p.IsActive() {
		return nil, engagement.NotFound("投标 %d 不存在", id)
	}
	p = cloneProposal(p)
	return &p, nil
}

func (s *Store) FindActiveProposal(ctx context.Context, projectID, bidderID uint) (*model.Proposal, error) {
	done, err := s.enter("FindActiveProposal")
	if err != nil {
		return nil, err
	}
	defer done()
	for _, p := range s.st.proposals {
		if p.IsActive() && p.ProjectID == projectID && p.BidderID == bidderID && p.Status.Active() {
			p = cloneProposal(p)
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdatePendingProposal(ctx context.Context, p *model.Proposal) (bool, error) {
	done, err := s.enter("UpdatePendingProposal")
	if err != nil {
		return false, err
	}
	defer done()
	cur, ok := s.st.proposals[p.ID]
	if !ok || !cur.IsActive() || cur.Status != model.ProposalStatusPending {
		return false, nil
	}
	cur.CoverLetter, cur.BidAmount, cur.EstimatedDays = p.CoverLetter, p.BidAmount, p.EstimatedDays
	cur.Attachments = slices.Clone(p.Attachments)
	cur.UpdatedAt = s.now()
	s.st.proposals[p.ID] = cur
	return true, nil
}

func (s *Store) CompareAndSwapProposalStatus(ctx context.Context, id uint, from, to model.ProposalStatus) (bool, error) {
	done, err := s.enter("CompareAndSwapProposalStatus")
	if err != nil {
		return false, err
	}
	defer done()
	cur, ok := s.st.proposals[id]
	if !ok || !cur.IsActive() || cur.Status != from {
		return false, nil
	}
	cur.Status = to
	cur.UpdatedAt = s.now()
	cur.SyncActiveKey()
	s.st.proposals[id] = cur
	return true, nil
}

func (s *Store) RejectPendingProposals(ctx context.Context, projectID, exceptID uint) ([]uint, error) {
	done, err := s.enter("RejectPendingProposals")
	if err != nil {
		return nil, err
	}
	defer done()
	ids := []uint{}
	for id, p := range s.st.proposals {
		if id == exceptID || !p.IsActive() || p.ProjectID != projectID || p.Status != model.ProposalStatusPending {
			continue
		}
		p.Status = model.ProposalStatusRejected
		p.UpdatedAt = s.now()
		p.SyncActiveKey()
		s.st.proposals[id] = p
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) CountProposals(ctx context.Context, projectID uint, status model.ProposalStatus) (int64, error) {
	done, err := s.enter("CountProposals")
	if err != nil {
		return 0, err
	}
	defer done()
	var n int64
	for _, p := range s.st.proposals {
		if p.IsActive() && p.ProjectID == projectID && p.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteProposal(ctx context.Context, id uint) error {
	done, err := s.enter("DeleteProposal")
	if err != nil {
		return err
	}
	defer done()
	cur, ok := s.st.proposals[id]
	if !ok || !cur.IsActive() {
		return engagement.NotFound("投标 %d 不存在", id)
	}
	cur.DeletedAt = gorm.DeletedAt{Time: s.now(), Valid: true}
	cur.SyncActiveKey()
	s.st.proposals[id] = cur
	return nil
}

func (s *Store) ListProposals(ctx context.Context, f engagement.ProposalFilter, page engagement.Page, sort engagement.Sort) ([]model.Proposal, int64, error) {
	done, err := s.enter("ListProposals")
	if err != nil {
		return nil, 0, err
	}
	defer done()
	var items []model.Proposal
	for _, p := range s.st.proposals {
		if !p.IsActive() ||
			(f.ProjectID != 0 && p.ProjectID != f.ProjectID) ||
			(f.BidderID != 0 && p.BidderID != f.BidderID) ||
			(f.Status != "" && p.Status != f.Status) {
			continue
		}
		items = append(items, cloneProposal(p))
	}
	slices.SortFunc(items, func(a, b model.Proposal) int {
		var c int
		switch sort.Column {
		case "bid_amount":
			c = cmp.Compare(a.BidAmount, b.BidAmount)
		case "estimated_days":
			c = cmp.Compare(a.EstimatedDays, b.EstimatedDays)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if sort.Desc {
			return -c
		}
		return c
	})
	return paginate(items, page), int64(len(items)), nil
}

func (s *Store) ProposalStatusBuckets(ctx context.Context, bidderID uint) ([]engagement.StatusBucket, error) {
	done, err := s.enter("ProposalStatusBuckets")
	if err != nil {
		return nil, err
	}
	defer done()
	sums := make(map[model.ProposalStatus]float64)
	counts := make(map[model.ProposalStatus]int64)
	for _, p := range s.st.proposals {
		if p.IsActive() && p.BidderID == bidderID {
			sums[p.Status] += p.BidAmount
			counts[p.Status]++
		}
	}
	var buckets []engagement.StatusBucket
	for _, status := range model.ProposalStatuses() {
		if n := counts[status]; n > 0 {
			buckets = append(buckets, engagement.StatusBucket{Status: status, Count: n, AvgBidAmount: sums[status] / float64(n)})
		}
	}
	return buckets, nil
}

func (s *Store) CategoryExists(ctx context.Context, id uint) (bool, error) {
	done, err := s.enter("CategoryExists")
	if err != nil {
		return false, err
	}
	defer done()
	return s.st.categories[id], nil
}

func (s *Store) MissingSkills(ctx context.Context, ids []uint) ([]uint, error) {
	done, err := s.enter("MissingSkills")
	if err != nil {
		return nil, err
	}
	defer done()
	var missing []uint
	for _, id := range ids {
		if !s.st.skills[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func paginate[T any](items []T, page engagement.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+page.Limit, len(items))
	return items[start:end]
}

func unix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

func cloneProject(p model.Project) model.Project {
	p.SkillIDs = slices.Clone(p.SkillIDs)
	p.Attachments = slices.Clone(p.Attachments)
	return p
}

func cloneProposal(p model.Proposal) model.Proposal {
	p.Attachments = slices.Clone(p.Attachments)
	if p.ActiveKey != nil {
		key := *p.ActiveKey
		p.ActiveKey = &key
	}
	return p
}
