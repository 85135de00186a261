package middleware

import (
	"bytes"
	"log/slog"
	"time"

	"freelance-marketplace/internal/global/jwt"

	sentrylib "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 请求 ID，客户端未携带时生成
	RequestIDHeader = "X-Request-ID"
	// maxBodyLog 日志中记录的响应体上限
	maxBodyLog = 4 * 1024
)

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if room := maxBodyLog - w.body.Len(); room > 0 {
		w.body.Write(b[:min(len(b), room)])
	}
	return w.ResponseWriter.Write(b)
}

// Logger 记录每个请求；withBody 为 true 时附带截断后的响应体
func Logger(log *slog.Logger, withBody bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		var rec *bodyRecorder
		if withBody {
			rec = &bodyRecorder{ResponseWriter: c.Writer}
			c.Writer = rec
		}

		c.Next()

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if payload, ok := jwt.GetUserPayload(c); ok {
			attrs = append(attrs, "user_id", payload.UserID, "role", payload.Role)
		}
		if rec != nil {
			attrs = append(attrs, "response_body", rec.body.String())
		}
		log.Info("HTTP Request", attrs...)
	}
}

// SentryEnrichIP 放在 sentry 中间件之后，给后续上报带上客户端 IP
func SentryEnrichIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.ConfigureScope(func(scope *sentrylib.Scope) {
				ip := c.ClientIP()
				scope.SetUser(sentrylib.User{IPAddress: ip})
				scope.SetTag("client_ip", ip)
				if id := c.GetHeader(RequestIDHeader); id != "" {
					scope.SetTag("request_id", id)
				}
			})
		}
		c.Next()
	}
}
