package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitOTelDisabled(t *testing.T) {
	ctx := context.Background()
	logger := NewLogger(InfoLevel, &bytes.Buffer{})

	providers, err := InitOTel(ctx, OTelConfig{Enabled: false}, logger)

	assert.NoError(t, err)
	assert.Nil(t, providers)
}

func TestInitOTelCreatesProvider(t *testing.T) {
	ctx := context.Background()
	logger := NewLogger(InfoLevel, &bytes.Buffer{})

	// OTLP exporters do not dial at creation time, so an unreachable endpoint
	// still yields a working provider.
	cfg := OTelConfig{
		Enabled:        true,
		Endpoint:       "localhost:9999",
		ServiceName:    "insights-test",
		ServiceVersion: "0.0.0",
		Insecure:       true,
	}

	providers, err := InitOTel(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)
	assert.NotNil(t, providers.TracerProvider)

	_ = ShutdownOTel(context.Background(), providers, logger)
}

func TestShutdownOTelNilProviders(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})

	assert.NoError(t, ShutdownOTel(context.Background(), nil, logger))
	assert.NoError(t, ShutdownOTel(context.Background(), &OTelProviders{}, logger))
}

func TestLoggerWithTraceContextNoSpan(t *testing.T) {
	logger := NewLogger(InfoLevel, &bytes.Buffer{})

	enriched := LoggerWithTraceContext(context.Background(), logger)
	assert.Equal(t, logger, enriched)
}
