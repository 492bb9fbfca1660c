package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/docvault/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:             "error",
		SessionTTL:           30 * time.Minute,
		PreviewTTL:           10 * time.Minute,
		UnlockRequestsPerSec: 1.0,
		UnlockBurst:          5,
		Algorithm:            "aes-gcm",
		SegmentSize:          64 * 1024,
		KDFIterations:        600000,
		BucketURL:            "mem://",
		KeyParamsPath:        "keyparams.json",
		MetricsEnabled:       false,
		MetricsNamespace:     "docvault",
		MetricsHost:          "127.0.0.1",
		MetricsPort:          0,
	}
}

func TestContainer(t *testing.T) {
	ctx := context.Background()

	t.Run("logger is a singleton", func(t *testing.T) {
		container := NewContainer(testConfig())
		assert.Same(t, container.Logger(), container.Logger())
	})

	t.Run("wires the full document pipeline", func(t *testing.T) {
		container := NewContainer(testConfig())

		useCase, err := container.DocumentUseCase(ctx)
		require.NoError(t, err)
		assert.NotNil(t, useCase)

		decryptor, err := container.PreviewDecryptor()
		require.NoError(t, err)
		assert.NotNil(t, decryptor)

		assert.NoError(t, container.Shutdown(ctx))
	})

	t.Run("metrics disabled yields nil provider and server", func(t *testing.T) {
		container := NewContainer(testConfig())

		provider, err := container.MetricsProvider()
		require.NoError(t, err)
		assert.Nil(t, provider)

		server, err := container.MetricsServer()
		require.NoError(t, err)
		assert.Nil(t, server)

		// Business metrics fall back to a no-op recorder.
		businessMetrics, err := container.BusinessMetrics()
		require.NoError(t, err)
		assert.NotNil(t, businessMetrics)
	})

	t.Run("metrics enabled yields working provider", func(t *testing.T) {
		cfg := testConfig()
		cfg.MetricsEnabled = true
		container := NewContainer(cfg)

		provider, err := container.MetricsProvider()
		require.NoError(t, err)
		require.NotNil(t, provider)

		server, err := container.MetricsServer()
		require.NoError(t, err)
		assert.NotNil(t, server)

		assert.NoError(t, container.Shutdown(ctx))
	})

	t.Run("invalid algorithm fails use case construction", func(t *testing.T) {
		cfg := testConfig()
		cfg.Algorithm = "rot13"
		container := NewContainer(cfg)

		_, err := container.DocumentUseCase(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported encryption algorithm")

		// The error is sticky across accesses.
		_, err = container.DocumentUseCase(ctx)
		require.Error(t, err)
	})

	t.Run("invalid bucket URL fails store construction", func(t *testing.T) {
		cfg := testConfig()
		cfg.BucketURL = "bogus://nowhere"
		container := NewContainer(cfg)

		_, err := container.DocumentStore(ctx)
		require.Error(t, err)
	})
}
