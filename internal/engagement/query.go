package engagement

import (
	"context"

	"freelance-marketplace/internal/model"
)

func (s *Service) ListProposals(ctx context.Context, f ProposalFilter, page Page) (*PageResult[model.Proposal], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, Validation("未知的投标状态 %q", f.Status)
	}
	page, column, err := page.normalize(proposalSortable, "createdAt")
	if err != nil {
		return nil, err
	}
	items, total, err := s.store.ListProposals(ctx, f, page, Sort{Column: column, Desc: page.Order == SortDesc})
	if err != nil {
		return nil, err
	}
	return &PageResult[model.Proposal]{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

// ProposalStats 各状态数量以及按数量加权的平均报价
func (s *Service) ProposalStats(ctx context.Context, bidderID uint) (*ProposalStats, error) {
	buckets, err := s.store.ProposalStatusBuckets(ctx, bidderID)
	if err != nil {
		return nil, err
	}
	return summarize(buckets), nil
}

func summarize(buckets []StatusBucket) *ProposalStats {
	stats := &ProposalStats{}
	var sum float64
	for _, b := range buckets {
		stats.Total += b.Count
		sum += b.AvgBidAmount * float64(b.Count)
		switch b.Status {
		case model.ProposalStatusPending:
			stats.Pending = b.Count
		case model.ProposalStatusAccepted:
			stats.Accepted = b.Count
		case model.ProposalStatusRejected:
			stats.Rejected = b.Count
		case model.ProposalStatusWithdrawn:
			stats.Withdrawn = b.Count
		}
	}
	if stats.Total > 0 {
		stats.AvgBidAmount = sum / float64(stats.Total)
	}
	return stats
}
