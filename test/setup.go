package test

import (
	"freelance-marketplace/config"
	"freelance-marketplace/internal/global/jwt"
	"freelance-marketplace/internal/global/validate"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

// Setup 使用测试配置并注册自定义校验规则
func Setup() {
	gin.SetMode(gin.TestMode)
	c := config.Default()
	c.Mode = config.ModeDebug
	c.JWT.AccessSecret = "test-secret"
	c.Lock.Backend = config.LockBackendLocal
	config.Set(c)
	validate.Init()
}

func Token(userID uint, role model.Role) string {
	return jwt.CreateToken(jwt.Payload{UserID: userID, Role: role})
}
