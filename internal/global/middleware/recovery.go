package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"freelance-marketplace/internal/global/response"

	"github.com/gin-gonic/gin"
)

// Recovery 记录 panic 堆栈后按内部错误返回
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			log.Error("请求处理 panic", "error", err, "path", c.Request.URL.Path, "stack", string(debug.Stack()))
			response.Fail(c, response.ErrServerInternal.WithOrigin(err))
			c.Abort()
		}()
		c.Next()
	}
}
