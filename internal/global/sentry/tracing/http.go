package tracing

import (
	"net/url"

	"freelance-marketplace/config"

	"github.com/getsentry/sentry-go"
	"github.com/go-resty/resty/v2"
)

// SetupRestyTracing 给 webhook 推送加上 span 并透传 sentry-trace 头
func SetupRestyTracing(client *resty.Client) {
	if !config.Get().Sentry.Tracing.TraceHTTPCalls {
		return
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		parent := sentry.SpanFromContext(req.Context())
		if parent == nil {
			return nil
		}
		target := sanitizeURL(req.URL)
		span := parent.StartChild("http.client")
		span.Description = req.Method + " " + target
		span.SetData("http.request.method", req.Method)
		span.SetData("url.full", target)

		req.SetHeader(sentry.SentryTraceHeader, span.ToSentryTrace())
		if baggage := span.ToBaggage(); baggage != "" {
			req.SetHeader(sentry.SentryBaggageHeader, baggage)
		}
		req.SetContext(span.Context())
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		span := sentry.SpanFromContext(resp.Request.Context())
		if span == nil {
			return nil
		}
		span.SetData("http.response.status_code", resp.StatusCode())
		if resp.StatusCode() >= 400 {
			span.Status = sentry.HTTPtoSpanStatus(resp.StatusCode())
		} else {
			span.Status = sentry.SpanStatusOK
		}
		span.Finish()
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		if req == nil {
			return
		}
		if span := sentry.SpanFromContext(req.Context()); span != nil {
			finish(span, err)
		}
	})
}

// sanitizeURL 去掉查询参数和用户信息，只保留 scheme://host/path
func sanitizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Host == "" && parsed.Path == "") {
		return "unknown"
	}
	clean := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: parsed.Path}
	return clean.String()
}
