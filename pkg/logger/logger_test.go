package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestBuildWritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := build(Config{Level: "warn", Fields: map[string]string{"service": "adcontract"}}, zapcore.AddSync(&buf))

	log.Info("dropped")
	ctx := ContextWithRequestID(context.Background(), "req-7")
	WithRequestID(ctx, log).Warn("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "adcontract", entry["service"])
	assert.Equal(t, "req-7", entry["request_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := build(Config{Level: "chatty", Encoding: "console"}, zapcore.AddSync(&buf))
	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestRequestIDFrom(t *testing.T) {
	assert.Empty(t, RequestIDFrom(context.Background()))
	assert.Equal(t, "abc", RequestIDFrom(ContextWithRequestID(context.Background(), "abc")))
}
