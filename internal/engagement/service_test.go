package engagement_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/engagement/enginetest"
	"freelance-marketplace/internal/global/lock"
	"freelance-marketplace/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientID uint = 100

type fixture struct {
	store    *enginetest.Store
	svc      *engagement.Service
	category uint
	skill    uint
}

func newFixture(t *testing.T, opts ...engagement.Option) *fixture {
	t.Helper()
	store := enginetest.NewStore()
	return newFixtureWith(t, store, lock.NewLocalLocker(lock.Options{Wait: 2 * time.Second}), opts...)
}

func newFixtureWith(t *testing.T, store *enginetest.Store, locker lock.Locker, opts ...engagement.Option) *fixture {
	t.Helper()
	opts = append([]engagement.Option{engagement.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return &fixture{
		store:    store,
		svc:      engagement.NewService(store, locker, opts...),
		category: store.AddCategory(),
		skill:    store.AddSkill(),
	}
}

func (f *fixture) draftProject(t *testing.T) *model.Project {
	t.Helper()
	p, err := f.svc.CreateProject(context.Background(), engagement.CreateProjectInput{
		ClientID:    clientID,
		Title:       "官网改版",
		Description: "重做公司官网首页",
		CategoryID:  f.category,
		SkillIDs:    []uint{f.skill},
		Budget:      5000,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) openProject(t *testing.T) *model.Project {
	t.Helper()
	p := f.draftProject(t)
	p, err := f.svc.ChangeProjectStatus(context.Background(), p.ID, model.ProjectStatusOpen)
	require.NoError(t, err)
	return p
}

func (f *fixture) submit(t *testing.T, projectID, bidderID uint, amount float64, days int) *model.Proposal {
	t.Helper()
	p, err := f.svc.SubmitProposal(context.Background(), engagement.SubmitProposalInput{
		BidderID:      bidderID,
		ProjectID:     projectID,
		CoverLetter:   "三年相关经验",
		BidAmount:     amount,
		EstimatedDays: days,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) proposalStatus(t *testing.T, id uint) model.ProposalStatus {
	t.Helper()
	p, err := f.svc.GetProposal(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

func (f *fixture) projectStatus(t *testing.T, id uint) model.ProjectStatus {
	t.Helper()
	p, err := f.svc.GetProject(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("should always start in draft", func(t *testing.T) {
		f := newFixture(t)
		p := f.draftProject(t)
		assert.Equal(t, model.ProjectStatusDraft, p.Status)
		assert.NotZero(t, p.ID)
		assert.Equal(t, []uint{f.skill}, p.SkillIDs)
	})

	t.Run("should reject empty title or non positive budget", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateProject(ctx, engagement.CreateProjectInput{
			ClientID: clientID, Title: " ", Description: "d", CategoryID: f.category, Budget: 10,
		})
		assert.ErrorIs(t, err, engagement.ErrValidation)

		_, err = f.svc.CreateProject(ctx, engagement.CreateProjectInput{
			ClientID: clientID, Title: "t", Description: "d", CategoryID: f.category, Budget: 0,
		})
		assert.ErrorIs(t, err, engagement.ErrValidation)
	})

	t.Run("should fail with not found for unknown category or skill", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateProject(ctx, engagement.CreateProjectInput{
			ClientID: clientID, Title: "t", Description: "d", CategoryID: 999, Budget: 10,
		})
		assert.ErrorIs(t, err, engagement.ErrNotFound)

		_, err = f.svc.CreateProject(ctx, engagement.CreateProjectInput{
			ClientID: clientID, Title: "t", Description: "d", CategoryID: f.category, SkillIDs: []uint{f.skill, 998}, Budget: 10,
		})
		assert.ErrorIs(t, err, engagement.ErrNotFound)
	})
}

func TestChangeProjectStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("should follow draft to open", func(t *testing.T) {
		f := newFixture(t)
		p := f.openProject(t)
		assert.Equal(t, model.ProjectStatusOpen, p.Status)
	})

	t.Run("should reject skipping in progress", func(t *testing.T) {
		f := newFixture(t)
		p := f.openProject(t)

		_, err := f.svc.ChangeProjectStatus(ctx, p.ID, model.ProjectStatusCompleted)
		require.ErrorIs(t, err, engagement.ErrInvalidTransition)
		var e *engagement.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "open", e.From)
		assert.Equal(t, "completed", e.To)
		assert.Equal(t, model.ProjectStatusOpen, f.projectStatus(t, p.ID))
	})

	t.Run("should reject same state moves", func(t *testing.T) {
		f := newFixture(t)
		p := f.draftProject(t)
		_, err := f.svc.ChangeProjectStatus(ctx, p.ID, model.ProjectStatusDraft)
		assert.ErrorIs(t, err, engagement.ErrInvalidTransition)
	})

	t.Run("should allow reopening a cancelled project as draft", func(t *testing.T) {
		f := newFixture(t)
		p := f.openProject(t)
		_, err := f.svc.ChangeProjectStatus(ctx, p.ID, model.ProjectStatusCancelled)
		require.NoError(t, err)
		p, err = f.svc.ChangeProjectStatus(ctx, p.ID, model.ProjectStatusDraft)
		require.NoError(t, err)
		assert.Equal(t, model.ProjectStatusDraft, p.Status)
	})

	t.Run("should never leave completed", func(t *testing.T) {
		f := newFixture(t)
		id := f.store.PutProject(model.Project{ClientID: clientID, Status: model.ProjectStatusCompleted})
		for _, to := range model.ProjectStatuses() {
			_, err := f.svc.ChangeProjectStatus(ctx, id, to)
			assert.ErrorIs(t, err, engagement.ErrInvalidTransition, to)
		}
	})

	t.Run("should reject unknown target with validation error", func(t *testing.T) {
		f := newFixture(t)
		p := f.draftProject(t)
		_, err := f.svc.ChangeProjectStatus(ctx, p.ID, "archived")
		assert.ErrorIs(t, err, engagement.ErrValidation)
	})

	t.Run("should fail with not found for deleted project", func(t *testing.T) {
		f := newFixture(t)
		p := f.draftProject(t)
		require.NoError(t, f.svc.DeleteProject(ctx, p.ID))
		_, err := f.svc.ChangeProjectStatus(ctx, p.ID, model.ProjectStatusOpen)
		assert.ErrorIs(t, err, engagement.ErrNotFound)
	})
}

func TestUpdateAndRestoreProject(t *testing.T) {
	ctx := context.Background()

	t.Run("should update content without touching status", func(t *testing.T) {
		f := newFixture(t)
		p := f.openProject(t)
		title, budget := "新标题", 8000.0
		updated, err := f.svc.UpdateProject(ctx, p.ID, engagement.UpdateProjectInput{Title: &title, Budget: &budget})
		require.NoError(t, err)
		assert.Equal(t, "新标题", updated.Title)
		assert.Equal(t, 8000.0, updated.Budget)
		assert.Equal(t, model.ProjectStatusOpen, updated.Status)
	})

	t.Run("should restore a soft deleted project", func(t *testing.T) {
		f := newFixture(t)
		p := f.draftProject(t)
		require.NoError(t, f.svc.DeleteProject(ctx, p.ID))
		_, err := f.svc.GetProject(ctx, p.ID)
		require.ErrorIs(t, err, engagement.ErrNotFound)

		restored, err := f.svc.RestoreProject(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, restored.IsActive())

		_, err = f.svc.RestoreProject(ctx, p.ID)
		assert.ErrorIs(t, err, engagement.ErrInvalidState)
	})
}

func TestSubmitProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("should create a pending proposal on an open project", func(t *testing.T) {
		f := newFixture(t)
		project := f.openProject(t)
		p := f.submit(t, project.ID, 1, 1000, 10)
		assert.Equal(t, model.ProposalStatusPending, p.Status)
		assert.Equal(t, project.ID, p.ProjectID)
	})

	t.Run("should fail with not found for missing project", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SubmitProposal(ctx, engagement.SubmitProposalInput{
			BidderID: 1, ProjectID: 404, CoverLetter: "c", BidAmount: 1, EstimatedDays: 1,
		})
		assert.ErrorIs(t, err, engagement.ErrNotFound)
	})

	t.Run("should fail with invalid state unless the project is open", func(t *testing.T) {
		f := newFixture(t)
		project := f.draftProject(t)
		_, err := f.svc.SubmitProposal(ctx, engagement.SubmitProposalInput{
			BidderID: 1, ProjectID: project.ID, CoverLetter: "c", BidAmount: 1, EstimatedDays: 1,
		})
		assert.ErrorIs(t, err, engagement.ErrInvalidState)
	})

	t.Run("should reject a second active proposal from the same bidder", func(t *testing.T) {
		f := newFixture(t)
		project := f.openProject(t)
		f.submit(t, project.ID, 1, 1000, 10)
		_, err := f.svc.SubmitProposal(ctx, engagement.SubmitProposalInput{
			BidderID: 1, ProjectID: project.ID, CoverLetter: "again", BidAmount: 900, EstimatedDays: 9,
		})
		assert.ErrorIs(t, err, engagement.ErrConflict)
	})

	t.Run("should allow bidding again after withdrawing", func(t *testing.T) {
		f := newFixture(t)
		project := f.openProject(t)
		first := f.submit(t, project.ID, 1, 1000, 10)
		_, err := f.svc.ChangeProposalStatus(ctx, first.ID, model.ProposalStatusWithdrawn)
		require.NoError(t, err)

		second := f.submit(t, project.ID, 1, 800, 8)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("should validate bid amount and duration", func(t *testing.T) {
		f := newFixture(t)
		project := f.openProject(t)
		_, err := f.svc.SubmitProposal(ctx, engagement.SubmitProposalInput{
			BidderID: 1, ProjectID: project.ID, CoverLetter: "c", BidAmount: -1, EstimatedDays: 1,
		})
		assert.ErrorIs(t, err, engagement.ErrValidation)
		_, err = f.svc.SubmitProposal(ctx, engagement.SubmitProposalInput{
			BidderID: 1, ProjectID: project.ID, CoverLetter: "c", BidAmount: 1, EstimatedDays: 0,
		})
		assert.ErrorIs(t, err, engagement.ErrValidation)
	})
}

func TestUpdateProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("should edit content while pending", func(t *testing.T) {
		f := newFixture(t)
		project := f.openProject(t)
		p := f.submit(t, project.ID, 1, 1000, 10)
		amount := 1200.0
		updated, err := f.svc.UpdateProposal(ctx, p.ID, engagement.UpdateProposalInput{BidAmount: &amount})
		require.NoError(t, err)
		assert.Equal(t, 1200.0, updated.BidAmount)
		assert.Equal(t, 10, updated.EstimatedDays)
	})

	t.Run("should refuse edits once accepted and leave the proposal unchanged", func(t *testing.T) {
		f := newFixture(t)
		project := f.openProject(t)
		p := f.submit(t, project.ID, 1, 1000, 10)
		_, err := f.svc.ChangeProposalStatus(ctx, p.ID, model.ProposalStatusAccepted)
		require.NoError(t, err)

		letter, days := "改了", 3
		_, err = f.svc.UpdateProposal(ctx, p.ID, engagement.UpdateProposalInput{CoverLetter: &letter, EstimatedDays: &days})
		require.ErrorIs(t, err, engagement.ErrInvalidState)

		got, err := f.svc.GetProposal(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "三年相关经验", got.CoverLetter)
		assert.Equal(t, 10, got.EstimatedDays)
	})
}

func TestChangeProposalStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject transitions out of terminal states", func(t *testing.T) {
		f := newFixture(t)
		project := f.openProject(t)
		p := f.submit(t, project.ID, 1, 1000, 10)
		_, err := f.svc.ChangeProposalStatus(ctx, p.ID, model.ProposalStatusRejected)
		require.NoError(t, err)

		_, err = f.svc.ChangeProposalStatus(ctx, p.ID, model.ProposalStatusAccepted)
		assert.ErrorIs(t, err, engagement.ErrInvalidTransition)
		assert.Equal(t, model.ProposalStatusRejected, f.proposalStatus(t, p.ID))
	})

	t.Run("should log refused transitions with both states", func(t *testing.T) {
		var buf bytes.Buffer
		f := newFixture(t, engagement.WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
		project := f.openProject(t)
		p := f.submit(t, project.ID, 1, 1000, 10)
		_, err := f.svc.ChangeProposalStatus(ctx, p.ID, model.ProposalStatusWithdrawn)
		require.NoError(t, err)
		buf.Reset()

		_, err = f.svc.ChangeProposalStatus(ctx, p.ID, model.ProposalStatusAccepted)
		require.ErrorIs(t, err, engagement.ErrInvalidTransition)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, float64(p.ID), entry["proposal_id"])
		assert.Equal(t, string(model.ProposalStatusWithdrawn), entry["from"])
		assert.Equal(t, string(model.ProposalStatusAccepted), entry["to"])
	})

	t.Run("should fail with not found for missing proposal", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ChangeProposalStatus(ctx, 404, model.ProposalStatusRejected)
		assert.ErrorIs(t, err, engagement.ErrNotFound)
	})

	t.Run("should not revert the project when an accepted proposal is rejected", func(t *testing.T) {
		f := newFixture(t)
		project := f.openProject(t)
		p := f.submit(t, project.ID, 1, 1000, 10)
		_, err := f.svc.ChangeProposalStatus(ctx, p.ID, model.ProposalStatusAccepted)
		require.NoError(t, err)

		got, err := f.svc.ChangeProposalStatus(ctx, p.ID, model.ProposalStatusRejected)
		require.NoError(t, err)
		assert.Equal(t, model.ProposalStatusRejected, got.Status)
		assert.Equal(t, model.ProjectStatusInProgress, f.projectStatus(t, project.ID))
	})
}

func TestListProposals(t *testing.T) {
	ctx := context.Background()

	t.Run("should filter by project and sort by bid amount", func(t *testing.T) {
		f := newFixture(t)
		project := f.openProject(t)
		other := f.openProject(t)
		f.submit(t, project.ID, 1, 3000, 10)
		f.submit(t, project.ID, 2, 1000, 10)
		f.submit(t, project.ID, 3, 2000, 10)
		f.submit(t, other.ID, 1, 500, 10)

		res, err := f.svc.ListProposals(ctx, engagement.ProposalFilter{ProjectID: project.ID},
			engagement.Page{SortBy: "bidAmount", Order: engagement.SortAsc, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.Total)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 2, res.Limit)
		require.Len(t, res.Items, 2)
		assert.Equal(t, 1000.0, res.Items[0].BidAmount)
		assert.Equal(t, 2000.0, res.Items[1].BidAmount)
	})

	t.Run("should default to page one and ten items", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.ListProposals(ctx, engagement.ProposalFilter{BidderID: 1}, engagement.Page{})
		require.NoError(t, err)
		assert.Equal(t, engagement.DefaultPage, res.Page)
		assert.Equal(t, engagement.DefaultLimit, res.Limit)
		assert.Empty(t, res.Items)
	})

	t.Run("should reject out of range limits and unknown sort keys", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ListProposals(ctx, engagement.ProposalFilter{}, engagement.Page{Limit: engagement.MaxLimit + 1})
		assert.ErrorIs(t, err, engagement.ErrValidation)
		_, err = f.svc.ListProposals(ctx, engagement.ProposalFilter{}, engagement.Page{SortBy: "password"})
		assert.ErrorIs(t, err, engagement.ErrValidation)
		_, err = f.svc.ListProposals(ctx, engagement.ProposalFilter{Status: "lost"}, engagement.Page{})
		assert.ErrorIs(t, err, engagement.ErrValidation)
	})
}

func TestProposalStats(t *testing.T) {
	ctx := context.Background()

	t.Run("should count by status and average bid amounts", func(t *testing.T) {
		f := newFixture(t)
		const bidder uint = 9
		a, b, c := f.openProject(t), f.openProject(t), f.openProject(t)
		f.submit(t, a.ID, bidder, 1000, 5)
		won := f.submit(t, b.ID, bidder, 2000, 5)
		lost := f.submit(t, c.ID, bidder, 3000, 5)
		_, err := f.svc.ChangeProposalStatus(ctx, won.ID, model.ProposalStatusAccepted)
		require.NoError(t, err)
		_, err = f.svc.ChangeProposalStatus(ctx, lost.ID, model.ProposalStatusRejected)
		require.NoError(t, err)

		stats, err := f.svc.ProposalStats(ctx, bidder)
		require.NoError(t, err)
		assert.Equal(t, engagement.ProposalStats{
			Total: 3, Pending: 1, Accepted: 1, Rejected: 1, Withdrawn: 0, AvgBidAmount: 2000,
		}, *stats)
	})

	t.Run("should return zeros for a bidder without proposals", func(t *testing.T) {
		f := newFixture(t)
		stats, err := f.svc.ProposalStats(ctx, 77)
		require.NoError(t, err)
		assert.Equal(t, engagement.ProposalStats{}, *stats)
	})
}
