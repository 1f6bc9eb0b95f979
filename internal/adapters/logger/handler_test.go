package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lander/internal/adapters/logger"
)

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	h := logger.NewPrettyHandler(&buf, nil)

	withAttrs := h.WithAttrs([]slog.Attr{slog.String("task", "styles")})
	grouped := withAttrs.WithGroup("tool")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "compiled", 0)
	r.AddAttrs(slog.Int("files", 2))
	require.NoError(t, grouped.Handle(context.Background(), r))

	assert.Equal(t, "compiled tool.task=styles tool.files=2\n", buf.String())
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_LevelPrefixes(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	h := logger.NewPrettyHandler(&buf, nil)

	for _, level := range []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		require.NoError(t, h.Handle(context.Background(), slog.NewRecord(time.Now(), level, "msg", 0)))
	}

	assert.Equal(t, "msg\n! msg\n✗ msg\n", buf.String())
}
