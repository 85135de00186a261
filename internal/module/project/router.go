package project

import (
	"freelance-marketplace/internal/global/middleware"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

func (p *ModuleProject) InitRouter(r *gin.RouterGroup) {
	g := r.Group("/project")

	g.GET("", ListProjects)
	g.GET("/:id", GetProject)
	g.GET("/client/:clientId", ListClientProjects)

	g.POST("", middleware.Auth(model.RoleClient), CreateProject)
	g.PUT("/:id", middleware.Auth(model.RoleClient), UpdateProject)
	g.PATCH("/:id/status", middleware.Auth(model.RoleClient), ChangeProjectStatus)
	g.DELETE("/:id", middleware.Auth(model.RoleClient), DeleteProject)
	g.PUT("/:id/restore", middleware.Auth(model.RoleAdmin), RestoreProject)

	g.POST("/attachment/presign", middleware.Auth(), PresignAttachment)
}
