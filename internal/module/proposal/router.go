package proposal

import (
	"freelance-marketplace/internal/global/middleware"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

func (p *ModuleProposal) InitRouter(r *gin.RouterGroup) {
	g := r.Group("/proposal", middleware.Auth())

	g.POST("", middleware.Auth(model.RoleFreelancer), SubmitProposal)
	g.GET("", ListProposals)
	g.GET("/export", ExportProposals)
	g.GET("/bidder/:bidderId", ListBidderProposals)
	g.GET("/project/:projectId", ListProjectProposals)
	g.GET("/stats/:bidderId", ProposalStats)
	g.GET("/:id", GetProposal)
	g.PUT("/:id", UpdateProposal)
	g.PATCH("/:id/status", ChangeProposalStatus)
	g.DELETE("/:id", DeleteProposal)
}
