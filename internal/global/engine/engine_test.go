package engine

import (
	"io"
	"log/slog"
	"testing"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/global/httpclient"
	"freelance-marketplace/internal/global/lock"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
)

func TestNewLocker(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("should fall back to the local locker without redis", func(t *testing.T) {
		l := NewLocker(config.Lock{Backend: config.LockBackendRedis}, log)
		assert.IsType(t, &lock.LocalLocker{}, l)
	})

	t.Run("should use the local locker when configured", func(t *testing.T) {
		l := NewLocker(config.Lock{Backend: config.LockBackendLocal, WaitMs: 100}, log)
		assert.IsType(t, &lock.LocalLocker{}, l)
	})
}

func TestOptions(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	prev := httpclient.Client
	t.Cleanup(func() { httpclient.Client = prev })

	t.Run("should skip the webhook when no url is set", func(t *testing.T) {
		config.Set(config.Default())
		assert.Len(t, Options(log), 1)
	})

	t.Run("should add the webhook notifier", func(t *testing.T) {
		c := config.Default()
		c.Notify.WebhookURL = "http://hooks.local/accepted"
		config.Set(c)
		httpclient.Client = resty.New()
		assert.Len(t, Options(log), 2)
	})
}
