package project

import (
	"strconv"
	"time"

	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/global/jwt"
	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

type ProjectCreateReq struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"required"`
	CategoryID  uint       `json:"category_id" binding:"required"`
	SkillIDs    []uint     `json:"skill_ids" binding:"max=20"`
	Budget      float64    `json:"budget" binding:"required,gt=0"`
	Deadline    *time.Time `json:"deadline"`
	Attachments []string   `json:"attachments" binding:"max=10,dive,url"`
}

// ProjectUpdateReq 指针字段支持部分更新，状态只能通过 /status 修改
type ProjectUpdateReq struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description"`
	CategoryID  *uint      `json:"category_id"`
	SkillIDs    *[]uint    `json:"skill_ids" binding:"omitempty,max=20"`
	Budget      *float64   `json:"budget" binding:"omitempty,gt=0"`
	Deadline    *time.Time `json:"deadline"`
	Attachments *[]string  `json:"attachments" binding:"omitempty,max=10,dive,url"`
}

type StatusReq struct {
	Status model.ProjectStatus `json:"status" binding:"required,project_status"`
}

type ListQuery struct {
	Page       int                 `form:"page"`
	Limit      int                 `form:"limit"`
	SortBy     string              `form:"sort_by"`
	Order      string              `form:"order"`
	Status     model.ProjectStatus `form:"status" binding:"omitempty,project_status"`
	ClientID   uint                `form:"client_id"`
	CategoryID uint                `form:"category_id"`
	SkillID    uint                `form:"skill_id"`
	Search     string              `form:"search" binding:"max=100"`
	MinBudget  *float64            `form:"min_budget"`
	MaxBudget  *float64            `form:"max_budget"`
}

func (q ListQuery) filter() engagement.ProjectFilter {
	return engagement.ProjectFilter{
		Status:     q.Status,
		ClientID:   q.ClientID,
		CategoryID: q.CategoryID,
		SkillID:    q.SkillID,
		Search:     q.Search,
		MinBudget:  q.MinBudget,
		MaxBudget:  q.MaxBudget,
	}
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
		log.Error("项目操作失败", "error", err, "path", c.FullPath())
	}
	response.Fail(c, e)
}

// ownedProject 调用者必须是项目雇主或管理员
func ownedProject(c *gin.Context, id uint) (*model.Project, bool) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return nil, false
	}
	p, err := svc.GetProject(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if p.ClientID != payload.UserID && payload.Role != model.RoleAdmin {
		log.Warn("非项目雇主尝试修改项目", "project_id", id, "user_id", payload.UserID)
		response.Fail(c, response.ErrForbidden)
		return nil, false
	}
	return p, true
}

func CreateProject(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req ProjectCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定创建项目请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	p, err := svc.CreateProject(c.Request.Context(), engagement.CreateProjectInput{
		ClientID:    payload.UserID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		SkillIDs:    req.SkillIDs,
		Budget:      req.Budget,
		Deadline:    req.Deadline,
		Attachments: req.Attachments,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

func GetProject(c *gin.Context) {
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	p, err := svc.GetProject(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

func ListProjects(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	res, err := svc.ListProjects(c.Request.Context(), q.filter(), q.page())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// ListClientProjects 某个雇主发布的项目，其余筛选条件同 ListProjects
func ListClientProjects(c *gin.Context) {
	clientID, ok := parseUint(c, "clientId")
	if !ok {
		return
	}
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	q.ClientID = clientID
	res, err := svc.ListProjects(c.Request.Context(), q.filter(), q.page())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

func UpdateProject(c *gin.Context) {
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	var req ProjectUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定更新项目请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if _, ok := ownedProject(c, id); !ok {
		return
	}

	p, err := svc.UpdateProject(c.Request.Context(), id, engagement.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		SkillIDs:    req.SkillIDs,
		Budget:      req.Budget,
		Deadline:    req.Deadline,
		Attachments: req.Attachments,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

func ChangeProjectStatus(c *gin.Context) {
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	var req StatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if _, ok := ownedProject(c, id); !ok {
		return
	}

	p, err := svc.ChangeProjectStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

func DeleteProject(c *gin.Context) {
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	if _, ok := ownedProject(c, id); !ok {
		return
	}
	if err := svc.DeleteProject(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c)
}

func RestoreProject(c *gin.Context) {
	id, ok := parseUint(c, "id")
	if !ok {
		return
	}
	p, err := svc.RestoreProject(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}
