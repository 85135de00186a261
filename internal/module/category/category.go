package category

import (
	"strconv"

	"freelance-marketplace/internal/global/database"
	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CategoryCreateReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=255"`
	ParentID    *uint  `json:"parent_id"`
	SortOrder   int    `json:"sort_order"`
}

// CategoryUpdateReq 指针字段支持部分更新
type CategoryUpdateReq struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=255"`
	ParentID    *uint   `json:"parent_id"`
	SortOrder   *int    `json:"sort_order"`
}

type ListQuery struct {
	IncludeInactive bool  `form:"include_inactive"`
	ParentID        *uint `form:"parent_id"`
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("分类 ID 无效"))
		return 0, false
	}
	return uint(id), true
}

// findCategory 查询失败时直接写响应
func findCategory(c *gin.Context, id uint) (*model.Category, bool) {
	var category model.Category
	err := database.DB.First(&category, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Fail(c, response.ErrNotFound.WithTips("分类不存在"))
		return nil, false
	case err != nil:
		log.Error("数据库查询失败", "error", err, "category_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return nil, false
	}
	return &category, true
}

func checkParent(c *gin.Context, self uint, parentID *uint) bool {
	if parentID == nil {
		return true
	}
	if *parentID == self {
		response.Fail(c, response.ErrValidation.WithTips("分类不能以自己为父级"))
		return false
	}
	_, ok := findCategory(c, *parentID)
	return ok
}

func CreateCategory(c *gin.Context) {
	var req CategoryCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定创建分类请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if !checkParent(c, 0, req.ParentID) {
		return
	}

	category := model.Category{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if err := database.DB.Create(&category).Error; err != nil {
		if database.IsDuplicate(err) {
			response.Fail(c, response.ErrAlreadyExists.WithTips("分类名称已存在"))
			return
		}
		log.Error("创建分类失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	log.Info("分类创建成功", "category_id", category.ID, "name", category.Name)
	response.Success(c, category)
}

// ListCategories 默认只返回启用的分类，按排序值升序
func ListCategories(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	db := database.DB.Model(&model.Category{})
	if !q.IncludeInactive {
		db = db.Where("is_active = ?", true)
	}
	if q.ParentID != nil {
		db = db.Where("parent_id = ?", *q.ParentID)
	}

	var categories []model.Category
	if err := db.Order("sort_order ASC, id ASC").Find(&categories).Error; err != nil {
		log.Error("查询分类列表失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, categories)
}

func GetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	category, ok := findCategory(c, id)
	if !ok {
		return
	}
	response.Success(c, category)
}

func UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CategoryUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定更新分类请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	category, ok := findCategory(c, id)
	if !ok {
		return
	}
	if !checkParent(c, id, req.ParentID) {
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ParentID != nil {
		updates["parent_id"] = *req.ParentID
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if len(updates) > 0 {
		if err := database.DB.Model(category).Updates(updates).Error; err != nil {
			if database.IsDuplicate(err) {
				response.Fail(c, response.ErrAlreadyExists.WithTips("分类名称已存在"))
				return
			}
			log.Error("更新分类失败", "error", err, "category_id", id)
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
	}
	log.Info("分类更新成功", "category_id", id)
	response.Success(c, category)
}

// SetCategoryActive 启用或停用分类，停用的分类不在默认列表中出现
func SetCategoryActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		category, ok := findCategory(c, id)
		if !ok {
			return
		}
		if err := database.DB.Model(category).Update("is_active", active).Error; err != nil {
			log.Error("修改分类状态失败", "error", err, "category_id", id)
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		log.Info("分类状态已修改", "category_id", id, "is_active", active)
		response.Success(c, category)
	}
}

// DeleteCategory 仍有项目引用时拒绝删除
func DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, ok := findCategory(c, id); !ok {
		return
	}

	var count int64
	if err := database.DB.Model(&model.Project{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		log.Error("数据库查询失败", "error", err, "category_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if count > 0 {
		response.Fail(c, response.ErrConflict.WithTips("分类下仍有项目"))
		return
	}

	if err := database.DB.Delete(&model.Category{}, id).Error; err != nil {
		log.Error("删除分类失败", "error", err, "category_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	log.Info("分类删除成功", "category_id", id)
	response.Success(c)
}
