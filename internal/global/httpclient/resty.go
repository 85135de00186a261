package httpclient

import (
	"time"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/global/sentry/tracing"

	"github.com/go-resty/resty/v2"
)

// Client 对外 HTTP 调用共用的客户端
var Client *resty.Client

func Init() {
	timeout := 10 * time.Second
	if ms := config.Get().Notify.TimeoutMs; ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	Client = resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	if tracing.IsEnabled() {
		tracing.SetupRestyTracing(Client)
	}
}
