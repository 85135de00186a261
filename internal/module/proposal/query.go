package proposal

import (
	"fmt"
	"time"

	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"
	"freelance-marketplace/tools"

	"github.com/gin-gonic/gin"
)

func list(c *gin.Context, set func(*ListQuery)) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if set != nil {
		set(&q)
	}
	res, err := svc.ListProposals(c.Request.Context(), q.filter(), q.page())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

func ListProposals(c *gin.Context) {
	list(c, nil)
}

func ListBidderProposals(c *gin.Context) {
	bidderID, ok := parseUint(c, "bidderId")
	if !ok {
		return
	}
	list(c, func(q *ListQuery) { q.BidderID = bidderID })
}

func ListProjectProposals(c *gin.Context) {
	projectID, ok := parseUint(c, "projectId")
	if !ok {
		return
	}
	list(c, func(q *ListQuery) { q.ProjectID = projectID })
}

func ProposalStats(c *gin.Context) {
	bidderID, ok := parseUint(c, "bidderId")
	if !ok {
		return
	}
	stats, err := svc.ProposalStats(c.Request.Context(), bidderID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, stats)
}

type exportRow struct {
	ID            uint                 `excel:"投标编号"`
	ProjectID     uint                 `excel:"项目编号"`
	BidAmount     float64              `excel:"报价"`
	EstimatedDays int                  `excel:"预计工期(天)"`
	Status        model.ProposalStatus `excel:"状态"`
	CreatedAt     string               `excel:"提交时间"`
}

// ExportProposals 导出当前用户的全部投标，管理员可通过 bidder_id 指定投标人
func ExportProposals(c *gin.Context) {
	payload, ok := caller(c)
	if !ok {
		return
	}
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	bidderID := payload.UserID
	if payload.Role == model.RoleAdmin && q.BidderID != 0 {
		bidderID = q.BidderID
	}

	ctx := c.Request.Context()
	filter := engagement.ProposalFilter{BidderID: bidderID, Status: q.Status}
	var rows []exportRow
	for page := 1; ; page++ {
		res, err := svc.ListProposals(ctx, filter, engagement.Page{Page: page, Limit: engagement.MaxLimit, SortBy: "createdAt", Order: engagement.SortAsc})
		if err != nil {
			fail(c, err)
			return
		}
		for _, p := range res.Items {
			rows = append(rows, exportRow{
				ID:            p.ID,
				ProjectID:     p.ProjectID,
				BidAmount:     p.BidAmount,
				EstimatedDays: p.EstimatedDays,
				Status:        p.Status,
				CreatedAt:     p.CreatedAt.Format(time.DateTime),
			})
		}
		if int64(page*engagement.MaxLimit) >= res.Total {
			break
		}
	}

	data, err := tools.ExcelBytes("投标", rows)
	if err != nil {
		log.Error("生成投标导出文件失败", "error", err, "bidder_id", bidderID)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	tools.SendAttachment(c, data, fmt.Sprintf("proposals_%d.xlsx", bidderID), tools.ExcelContentType)
}
