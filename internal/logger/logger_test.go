package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNewWritesToConfiguredPath(t *testing.T) {
	path := t.TempDir() + "/out.log"
	log, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.With(String("component", "test")).Info("hello", Int("n", 1))
	_ = log.Sync()
}

func TestNopDiscards(t *testing.T) {
	log := NewNop()
	log.Error("ignored", Error(assert.AnError))
	assert.NoError(t, log.With(Bool("x", true)).Sync())
}
