package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	log := Logger("test/output")
	log.Info("test message", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "test message")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "subsystem=test/output")
}

func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	log := Logger("test/level")
	SetLevel("test/level", slog.LevelWarn)

	log.Info("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	// 派生 Logger 共享级别
	log.With("k", "v").Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	SetLevel("test/level", slog.LevelDebug)
	log.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLoggerCached(t *testing.T) {
	assert.Same(t, Logger("test/cache"), Logger("test/cache"))
}

func TestParseConfig(t *testing.T) {
	t.Run("子系统与默认级别", func(t *testing.T) {
		cfg := parseConfig("survey/relay=debug, warn", "")
		assert.Equal(t, slog.LevelWarn, cfg.DefaultLevel)
		assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("survey/relay"))
		assert.Equal(t, slog.LevelWarn, cfg.LevelForSubsystem("survey/codec"))
		assert.Equal(t, FormatText, cfg.Format)
	})

	t.Run("非法级别被忽略", func(t *testing.T) {
		cfg := parseConfig("bogus,x=nope", "JSON")
		assert.Equal(t, slog.LevelInfo, cfg.DefaultLevel)
		assert.Empty(t, cfg.SubsystemLevels)
		assert.Equal(t, FormatJSON, cfg.Format)
	})
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("ignored")
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
