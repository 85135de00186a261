package skill

import (
	"freelance-marketplace/internal/global/middleware"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleSkill) InitRouter(r *gin.RouterGroup) {
	g := r.Group("/skill")

	g.GET("", ListSkills)
	g.GET("/:id", GetSkill)

	admin := g.Group("", middleware.Auth(model.RoleAdmin))
	admin.POST("", CreateSkill)
	admin.PUT("/:id", UpdateSkill)
	admin.DELETE("/:id", DeleteSkill)
}
