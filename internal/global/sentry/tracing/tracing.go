// Package tracing 把数据库、Redis、出站 HTTP 和撮合流程挂到 Sentry 的请求 transaction 下
package tracing

import (
	"context"
	"time"

	"freelance-marketplace/config"

	"github.com/getsentry/sentry-go"
)

func IsEnabled() bool {
	return config.Get().Sentry.Dsn != ""
}

// StartSpan 在 ctx 中的 span 下创建子 span，没有父 span 时返回原 ctx 和空的 finish
func StartSpan(ctx context.Context, operation, description string) (context.Context, func(err error)) {
	parent := sentry.SpanFromContext(ctx)
	if parent == nil {
		return ctx, func(error) {}
	}
	span := parent.StartChild(operation)
	span.Description = description
	return span.Context(), func(err error) {
		finish(span, err)
	}
}

func finish(span *sentry.Span, err error) {
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}

// dropIfFast 低于阈值的 span 不上报，阈值为 0 时全部上报
func dropIfFast(span *sentry.Span, threshold, elapsed time.Duration) {
	if threshold > 0 && elapsed < threshold {
		span.Sampled = sentry.SampledFalse
	}
}
