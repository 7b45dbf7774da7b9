package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_LevelParsing(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		blocked zapcore.Level
	}{
		{"debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel, zapcore.WarnLevel},
		{"bogus", zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, "json")
			require.NotNil(t, l)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.blocked))
		})
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"taskType": "score-scholarship-matches"}).
		WithError(errors.New("boom")).
		Info("scored", map[string]interface{}{"matches": 3, "b": "x"})

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "score-scholarship-matches", ctx["taskType"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 3, ctx["matches"])
}

func TestZapWrapper_WithNilError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithError(nil).Warn("no error attached", nil)

	require.Len(t, logs.All(), 1)
	_, has := logs.All()[0].ContextMap()["error"]
	assert.False(t, has)
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.With(map[string]interface{}{"k": "v"}).Error("ignored", nil)
	})
}
