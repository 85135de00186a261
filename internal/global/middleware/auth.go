package middleware

import (
	"strings"

	"freelance-marketplace/internal/global/jwt"
	"freelance-marketplace/internal/global/response"
	"freelance-marketplace/internal/model"

	"github.com/gin-gonic/gin"
)

// Auth 校验 Bearer token；roles 为空时只要求登录，否则要求调用者属于其中之一
func Auth(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取 Authorization 头
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Fail(c, response.ErrTokenInvalid)
			c.Abort()
			return
		}

		// 检查 Bearer 前缀并提取 token
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.ErrTokenInvalid)
			c.Abort()
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		// 解析 token
		payload, valid := jwt.ParseToken(token)
		if !valid {
			response.Fail(c, response.ErrTokenInvalid)
			c.Abort()
			return
		}
		// 管理员不受角色限制
		if len(roles) > 0 && !payload.HasRole(roles...) && payload.Role != model.RoleAdmin {
			response.Fail(c, response.ErrForbidden)
			c.Abort()
			return
		}
		c.Set(jwt.PayloadKey, payload)
		c.Next()
	}
}
