package logger_test

import (
	"testing"

	axonetLogger "github.com/jaxron/axonet/pkg/client/logger"
	"github.com/robalyx/embedder/internal/setup/telemetry/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWithFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	l := logger.New(zap.New(core))

	l.WithFields(axonetLogger.String("url", "https://example.com"), axonetLogger.Int("status_code", 502)).
		Warn("Request failed")
	l.Debugf("attempt %d", 2)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "Request failed", entries[0].Message)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "https://example.com", entries[0].ContextMap()["url"])
	assert.EqualValues(t, 502, entries[0].ContextMap()["status_code"])

	assert.Equal(t, "attempt 2", entries[1].Message)
}
