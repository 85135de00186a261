package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestFanout(t *testing.T) {
	var info, errs bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	log := slog.New(h).With("module", "Engagement")

	t.Run("should only hand records to enabled handlers", func(t *testing.T) {
		log.Info("接受投标成功", "proposal_id", 1)
		assert.Contains(t, info.String(), "proposal_id=1")
		assert.Contains(t, info.String(), "module=Engagement")
		assert.Empty(t, errs.String())
	})

	t.Run("should deliver errors everywhere", func(t *testing.T) {
		log.Error("接受投标通知发送失败")
		assert.Contains(t, errs.String(), "接受投标通知发送失败")
		assert.Contains(t, errs.String(), "module=Engagement")
	})

	t.Run("should be disabled below every handler level", func(t *testing.T) {
		require.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	})
}
