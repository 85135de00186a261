// Package notify 把已提交的业务事件推送给外部 webhook
package notify

import (
	"context"
	"time"

	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/global/otel"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const EventProposalAccepted = "proposal.accepted"

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Webhook 以 JSON POST 推送事件，2xx 之外的响应视为失败
type Webhook struct {
	client  *resty.Client
	url     string
	timeout time.Duration
}

func NewWebhook(client *resty.Client, url string, timeout time.Duration) *Webhook {
	return &Webhook{client: client, url: url, timeout: timeout}
}

func (w *Webhook) ProposalAccepted(ctx context.Context, evt engagement.AcceptedEvent) error {
	return w.post(ctx, EventProposalAccepted, evt)
}

func (w *Webhook) post(ctx context.Context, event string, data any) (err error) {
	ctx, span := otel.Tracer().Start(ctx, "notify."+event,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("webhook.event", event)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Event", event).
		SetBody(envelope{Event: event, Data: data}).
		Post(w.url)
	if err != nil {
		return errors.Wrapf(err, "推送 %s 失败", event)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode()))
	if resp.IsError() {
		return errors.Errorf("推送 %s 失败: 状态码 %d", event, resp.StatusCode())
	}
	return nil
}
