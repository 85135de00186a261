package tracing

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"freelance-marketplace/config"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
)

// maxPipelineNames pipeline span 描述里最多列出的命令数
const maxPipelineNames = 3

// RedisSentryHook 追踪项目锁用到的 SET NX / EVAL 等命令
type RedisSentryHook struct {
	slowThreshold time.Duration
}

func NewRedisSentryHook() *RedisSentryHook {
	ms := config.Get().Sentry.Tracing.RedisSlowThresholdMs
	return &RedisSentryHook{slowThreshold: time.Duration(ms) * time.Millisecond}
}

func (h *RedisSentryHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *RedisSentryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		return h.trace(ctx, "db.redis", strings.ToUpper(cmd.Name()), 1, func(ctx context.Context) error {
			return next(ctx, cmd)
		})
	}
}

func (h *RedisSentryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		return h.trace(ctx, "db.redis.pipeline", pipelineDescription(cmds), len(cmds), func(ctx context.Context) error {
			return next(ctx, cmds)
		})
	}
}

func (h *RedisSentryHook) trace(ctx context.Context, op, desc string, n int, run func(context.Context) error) error {
	parent := sentry.SpanFromContext(ctx)
	if parent == nil {
		return run(ctx)
	}
	span := parent.StartChild(op)
	span.Description = desc
	span.SetData("db.system", "redis")
	span.SetData("redis.commands", n)

	start := time.Now()
	err := run(span.Context())
	dropIfFast(span, h.slowThreshold, time.Since(start))
	if errors.Is(err, redis.Nil) {
		// 锁被占用时 SET NX 返回 nil，不算失败
		finish(span, nil)
	} else {
		finish(span, err)
	}
	return err
}

func pipelineDescription(cmds []redis.Cmder) string {
	if len(cmds) == 0 {
		return "PIPELINE (empty)"
	}
	names := make([]string, 0, maxPipelineNames)
	for i, cmd := range cmds {
		if i == maxPipelineNames {
			break
		}
		names = append(names, strings.ToUpper(cmd.Name()))
	}
	desc := "PIPELINE: " + strings.Join(names, ", ")
	if len(cmds) > maxPipelineNames {
		desc += "..."
	}
	return desc
}
