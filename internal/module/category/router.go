package category

import (
	"freelance-marketplace/internal/global/middleware"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

func (m *ModuleCategory) InitRouter(r *gin.RouterGroup) {
	g := r.Group("/category")

	g.GET("", ListCategories)
	g.GET("/:id", GetCategory)

	admin := g.Group("", middleware.Auth(model.RoleAdmin))
	admin.POST("", CreateCategory)
	admin.PUT("/:id", UpdateCategory)
	admin.DELETE("/:id", DeleteCategory)
	admin.PUT("/:id/activate", SetCategoryActive(true))
	admin.PUT("/:id/deactivate", SetCategoryActive(false))
}
