package module

import (
	"freelance-marketplace/internal/module/category"
	"freelance-marketplace/internal/module/ping"
	"freelance-marketplace/internal/module/project"
	"freelance-marketplace/internal/module/proposal"
	"freelance-marketplace/internal/module/skill"
	"freelance-marketplace/internal/module/user"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init()
	InitRouter(r *gin.RouterGroup)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// Register your module here
	registerModule([]Module{
		&ping.ModulePing{},
		&user.ModuleUser{},
		&category.ModuleCategory{},
		&skill.ModuleSkill{},
		&project.ModuleProject{},
		&proposal.ModuleProposal{},
	})
}
