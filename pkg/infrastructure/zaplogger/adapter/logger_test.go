package adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mateusmacedo/go-schedule/pkg/application"
	"github.com/mateusmacedo/go-schedule/pkg/infrastructure"
	"github.com/mateusmacedo/go-schedule/pkg/infrastructure/zaplogger/adapter"
)

func TestZapAppLoggerAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := adapter.NewFromZap(zap.New(core))

	ctx := infrastructure.WithRequestID(context.Background(), "req-1")
	application.LogError(ctx, logger, "Erro ao criar viagem", assert.AnError, map[string]interface{}{"voyage_id": 3})
	logger.Trace(context.Background(), "trace", nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, assert.AnError.Error(), fields["error"])
	assert.EqualValues(t, 3, fields["voyage_id"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestNewZapAppLoggerFallsBackToInfo(t *testing.T) {
	logger, err := adapter.NewZapAppLogger(adapter.Config{App: "test", Level: "loud"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
