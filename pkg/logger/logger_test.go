package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, "ERROR", LevelError.String())
}

func TestNew_JSONOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo, Format: FormatJSON})

	log.Debug("hidden")
	log.With(Component("worker")).Info("batch finished", Int("students", 12), StudentID("abc"))
	require.NoError(t, log.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "batch finished", entry["message"])
	assert.Equal(t, "worker", entry["component"])
	assert.Equal(t, float64(12), entry["students"])
	assert.Equal(t, "abc", entry["student_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestObserverCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromCore(core).WithRequestID("req-1")

	log.Error("load failed", Err(errors.New("boom")), RiskLevel("HIGH"))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "load failed", e.Message)
	ctx := e.ContextMap()
	assert.Equal(t, "req-1", ctx[RequestIDKey])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "HIGH", ctx["risk_level"])
}

func TestContextPropagation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewFromCore(core)

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("hello")
	assert.Equal(t, 1, logs.Len())

	assert.NotNil(t, FromContext(context.Background()))
}
