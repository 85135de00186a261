package proposal

import (
	"strconv"

	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/global/jwt"
	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

type SubmitReq struct {
	ProjectID     uint     `json:"project_id" binding:"required"`
	CoverLetter   string   `json:"cover_letter" binding:"required,max=5000"`
	BidAmount     float64  `json:"bid_amount" binding:"required,gt=0"`
	EstimatedDays int      `json:"estimated_days" binding:"required,min=1"`
	Attachments   []string `json:"attachments" binding:"max=10,dive,url"`
}

// UpdateReq 只能修改内容字段
type UpdateReq struct {
	CoverLetter   *string   `json:"cover_letter" binding:"omitempty,max=5000"`
	BidAmount     *float64  `json:"bid_amount" binding:"omitempty,gt=0"`
	EstimatedDays *int      `json:"estimated_days" binding:"omitempty,min=1"`
	Attachments   *[]string `json:"attachments" binding:"omitempty,max=10,dive,url"`
}

type StatusReq struct {
	Status model.ProposalStatus `json:"status" binding:"required,proposal_status"`
}

type ListQuery struct {
	Page      int                  `form:"page"`
	Limit     int                  `form:"limit"`
	SortBy    string               `form:"sort_by"`
	Order     string               `form:"order"`
	Status    model.ProposalStatus `form:"status" binding:"omitempty,proposal_status"`
	ProjectID uint                 `form:"project_id"`
	BidderID  uint                 `form:"bidder_id"`
}

func (q ListQuery) filter() engagement.ProposalFilter {
	return engagement.ProposalFilter{ProjectID: q.ProjectID, BidderID: q.BidderID, Status: q.Status}
}

func (q ListQuery) page() engagement.Page {
	return engagement.Page{Page: q.Page, Limit: q.Limit, SortBy: q.SortBy, Order: engagement.SortOrder(q.Order)}
}

func parseUint(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips(name+" 无效"))
		return 0, false
	}
	return uint(id), true
}

func fail(c *gin.Context, err error) {
	e := response.FromEngagement(err)
	if e.IsServerError() {
		log.Error("投标操作失败", "error", err, "path", c.FullPath())
	}
	response.Fail(c, e)
}

func caller(c *gin.Context) (*jwt.Claims, bool) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
	}
	return payload, ok
}

func SubmitProposal(c *gin.Context) {
	payload, ok := caller(c)
	if !ok {
		return
	}
	var req SubmitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定提交投标请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	p, err := svc.SubmitProposal(c.Request.Context(), engagement.SubmitProposalInput{
		BidderID:      payload.UserID,
		ProjectID:     req.ProjectID,
		CoverLetter:   req.CoverLetter,
		BidAmount:     req.BidAmount,
		EstimatedDays: req.EstimatedDays,
		Attachments:   req.Attachments,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

func GetProposal(c *gin.Context) {
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	p, err := svc.GetProposal(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// UpdateProposal 只有投标人本人可以修改
func UpdateProposal(c *gin.Context) {
	payload, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	current, err := svc.GetProposal(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if current.BidderID != payload.UserID {
		response.Fail(c, response.ErrForbidden)
		return
	}

	p, err := svc.UpdateProposal(c.Request.Context(), id, engagement.UpdateProposalInput{
		CoverLetter:   req.CoverLetter,
		BidAmount:     req.BidAmount,
		EstimatedDays: req.EstimatedDays,
		Attachments:   req.Attachments,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// ChangeProposalStatus 接受或拒绝由项目雇主操作，撤回由投标人操作；管理员不受限制
func ChangeProposalStatus(c *gin.Context) {
	payload, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	var req StatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	ctx := c.Request.Context()
	current, err := svc.GetProposal(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if payload.Role != model.RoleAdmin {
		switch req.Status {
		case model.ProposalStatusWithdrawn:
			if current.BidderID != payload.UserID {
				response.Fail(c, response.ErrForbidden.WithTips("只有投标人可以撤回"))
				return
			}
		default:
			project, err := svc.GetProject(ctx, current.ProjectID)
			if err != nil {
				fail(c, err)
				return
			}
			if project.ClientID != payload.UserID {
				response.Fail(c, response.ErrForbidden.WithTips("只有项目雇主可以处理投标"))
				return
			}
		}
	}

	p, err := svc.ChangeProposalStatus(ctx, id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

func DeleteProposal(c *gin.Context) {
	payload, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	current, err := svc.GetProposal(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if current.BidderID != payload.UserID && payload.Role != model.RoleAdmin {
		response.Fail(c, response.ErrForbidden)
		return
	}
	if err := svc.DeleteProposal(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c)
}
