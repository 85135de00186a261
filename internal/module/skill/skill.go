package skill

import (
	"strconv"

	"freelance-marketplace/internal/global/database"
	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type SkillReq struct {
	Name       string `json:"name" binding:"required,max=100"`
	CategoryID *uint  `json:"category_id"`
}

type ListQuery struct {
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search" binding:"max=100"`
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("技能 ID 无效"))
		return 0, false
	}
	return uint(id), true
}

func findSkill(c *gin.Context, id uint) (*model.Skill, bool) {
	var skill model.Skill
	err := database.DB.First(&skill, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Fail(c, response.ErrNotFound.WithTips("技能不存在"))
		return nil, false
	case err != nil:
		log.Error("数据库查询失败", "error", err, "skill_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return nil, false
	}
	return &skill, true
}

func checkCategory(c *gin.Context, id *uint) bool {
	if id == nil {
		return true
	}
	var count int64
	if err := database.DB.Model(&model.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return false
	}
	if count == 0 {
		response.Fail(c, response.ErrNotFound.WithTips("分类不存在"))
		return false
	}
	return true
}

func CreateSkill(c *gin.Context) {
	var req SkillReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定创建技能请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if !checkCategory(c, req.CategoryID) {
		return
	}

	skill := model.Skill{Name: req.Name, CategoryID: req.CategoryID}
	if err := database.DB.Create(&skill).Error; err != nil {
		if database.IsDuplicate(err) {
			response.Fail(c, response.ErrAlreadyExists.WithTips("技能名称已存在"))
			return
		}
		log.Error("创建技能失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	log.Info("技能创建成功", "skill_id", skill.ID, "name", skill.Name)
	response.Success(c, skill)
}

// ListSkills 按热度降序
func ListSkills(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	db := database.DB.Model(&model.Skill{})
	if q.CategoryID != 0 {
		db = db.Where("category_id = ?", q.CategoryID)
	}
	if q.Search != "" {
		db = db.Where("name LIKE ?", "%"+q.Search+"%")
	}
	var skills []model.Skill
	if err := db.Order("popularity DESC, id ASC").Find(&skills).Error; err != nil {
		log.Error("查询技能列表失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, skills)
}

func GetSkill(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	skill, ok := findSkill(c, id)
	if !ok {
		return
	}
	response.Success(c, skill)
}

func UpdateSkill(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req SkillReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定更新技能请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	skill, ok := findSkill(c, id)
	if !ok || !checkCategory(c, req.CategoryID) {
		return
	}

	skill.Name = req.Name
	skill.CategoryID = req.CategoryID
	if err := database.DB.Model(skill).Select("name", "category_id").Updates(skill).Error; err != nil {
		if database.IsDuplicate(err) {
			response.Fail(c, response.ErrAlreadyExists.WithTips("技能名称已存在"))
			return
		}
		log.Error("更新技能失败", "error", err, "skill_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	log.Info("技能更新成功", "skill_id", id)
	response.Success(c, skill)
}

func DeleteSkill(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res := database.DB.Delete(&model.Skill{}, id)
	if res.Error != nil {
		log.Error("删除技能失败", "error", res.Error, "skill_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		response.Fail(c, response.ErrNotFound.WithTips("技能不存在"))
		return
	}
	log.Info("技能删除成功", "skill_id", id)
	response.Success(c)
}
