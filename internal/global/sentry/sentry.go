package sentry

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/global/jwt"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

const release = "freelance-marketplace@1.0.0"

// CodedError 带错误码的错误，按错误码决定是否上报
type CodedError interface {
	error
	GetCode() int32
}

// Init 未配置 DSN 时不启用
func Init() error {
	cfg := config.Get()
	if cfg.Sentry.Dsn == "" {
		return nil
	}

	tracesSampleRate := cfg.Sentry.SampleRate
	if tracesSampleRate <= 0 {
		tracesSampleRate = 1.0
	}
	environment := cfg.Sentry.Environment
	if environment == "" {
		environment = string(cfg.Mode)
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.Dsn,
		Environment:      environment,
		Release:          release,
		SampleRate:       1.0, // 错误事件不采样
		EnableTracing:    true,
		TracesSampleRate: tracesSampleRate,
		EnableLogs:       true,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	return nil
}

// Middleware 未启用时返回空中间件
func Middleware() gin.HandlerFunc {
	if config.Get().Sentry.Dsn == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return sentrygin.New(sentrygin.Options{
		Repanic:         true, // 交给后面的 Recovery 处理
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// CaptureException 只上报服务器错误，业务错误（状态迁移失败、冲突等）不上报
func CaptureException(c *gin.Context, err error) {
	if config.Get().Sentry.Dsn == "" || !shouldReport(err) {
		return
	}
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		scope.SetTag("path", c.FullPath())
		scope.SetTag("method", c.Request.Method)
		if payload, ok := jwt.GetUserPayload(c); ok {
			scope.SetUser(sentry.User{ID: strconv.FormatUint(uint64(payload.UserID), 10)})
			scope.SetTag("role", string(payload.Role))
		}
		hub.CaptureException(err)
	})
}

func shouldReport(err error) bool {
	var e CodedError
	if errors.As(err, &e) {
		return e.GetCode() >= 50000 && e.GetCode() < 60000
	}
	return true
}

// Flush 退出前调用
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
