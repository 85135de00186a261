package ping

import (
	"freelance-marketplace/internal/global/metrics"
	"freelance-marketplace/internal/global/response"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

func (p *ModulePing) InitRouter(r *gin.RouterGroup) {
	r.GET("/ping", Ping)
	r.GET("/metrics", metrics.Handler())
}

func Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "pong",
		"version": version,
	})
}
