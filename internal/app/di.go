// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/time/rate"

	"github.com/allisson/docvault/internal/config"
	cryptoDomain "github.com/allisson/docvault/internal/crypto/domain"
	cryptoService "github.com/allisson/docvault/internal/crypto/service"
	documentService "github.com/allisson/docvault/internal/document/service"
	"github.com/allisson/docvault/internal/document/storage"
	documentUsecase "github.com/allisson/docvault/internal/document/usecase"
	"github.com/allisson/docvault/internal/keyparams"
	"github.com/allisson/docvault/internal/metrics"
	previewService "github.com/allisson/docvault/internal/preview/service"
	sessionService "github.com/allisson/docvault/internal/session/service"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	metricsServer   *metrics.Server

	// Crypto services
	aeadManager cryptoService.AEADManager
	keyDeriver  cryptoService.KeyDeriver

	// Session
	keyParams      keyparams.Provider
	snapshotStore  sessionService.SnapshotStore
	snapshotKeys   sessionService.SnapshotKeyProvider
	sessionManager *sessionService.Manager

	// Documents and preview
	dekManager       documentService.DEKManager
	documentStore    *storage.BlobStore
	documentUseCase  documentUsecase.DocumentUseCase
	previewDecryptor previewService.PreviewDecryptor

	// Initialization flags and mutex for thread-safety
	mu                   sync.Mutex
	loggerInit           sync.Once
	metricsProviderInit  sync.Once
	businessMetricsInit  sync.Once
	metricsServerInit    sync.Once
	aeadManagerInit      sync.Once
	keyDeriverInit       sync.Once
	keyParamsInit        sync.Once
	snapshotStoreInit    sync.Once
	snapshotKeysInit     sync.Once
	sessionManagerInit   sync.Once
	dekManagerInit       sync.Once
	documentStoreInit    sync.Once
	documentUseCaseInit  sync.Once
	previewDecryptorInit sync.Once
	initErrors           map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op implementation
// is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			err = providerErr
			c.initErrors["businessMetrics"] = providerErr
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// MetricsServer returns the metrics HTTP server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*metrics.Server, error) {
	var err error
	c.metricsServerInit.Do(func() {
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			err = providerErr
			c.initErrors["metricsServer"] = providerErr
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = metrics.NewServer(c.config.MetricsHost, c.config.MetricsPort, c.Logger(), provider)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyDeriver returns the key derivation service.
func (c *Container) KeyDeriver() cryptoService.KeyDeriver {
	c.keyDeriverInit.Do(func() {
		c.keyDeriver = cryptoService.NewKeyDeriver()
	})
	return c.keyDeriver
}

// KeyParamsProvider returns the key-parameter provider backed by the local file.
func (c *Container) KeyParamsProvider() keyparams.Provider {
	c.keyParamsInit.Do(func() {
		c.keyParams = keyparams.NewFileProvider(c.config.KeyParamsPath)
	})
	return c.keyParams
}

// SnapshotStore returns the volatile session snapshot store.
func (c *Container) SnapshotStore() sessionService.SnapshotStore {
	c.snapshotStoreInit.Do(func() {
		c.snapshotStore = sessionService.NewMemorySnapshotStore()
	})
	return c.snapshotStore
}

// SnapshotKeyProvider returns the ephemeral environment key for snapshot wrapping.
func (c *Container) SnapshotKeyProvider() (sessionService.SnapshotKeyProvider, error) {
	var err error
	c.snapshotKeysInit.Do(func() {
		c.snapshotKeys, err = sessionService.NewEphemeralKeyProvider()
		if err != nil {
			c.initErrors["snapshotKeys"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["snapshotKeys"]; exists {
		return nil, storedErr
	}
	return c.snapshotKeys, nil
}

// SessionManager returns the key session manager.
func (c *Container) SessionManager() (*sessionService.Manager, error) {
	var err error
	c.sessionManagerInit.Do(func() {
		snapshotKeys, keysErr := c.SnapshotKeyProvider()
		if keysErr != nil {
			err = keysErr
			c.initErrors["sessionManager"] = keysErr
			return
		}
		c.sessionManager = sessionService.NewManager(
			c.KeyDeriver(),
			c.AEADManager(),
			c.KeyParamsProvider(),
			c.SnapshotStore(),
			snapshotKeys,
			sessionService.ManagerConfig{
				SessionTTL:  c.config.SessionTTL,
				UnlockRate:  rate.Limit(c.config.UnlockRequestsPerSec),
				UnlockBurst: c.config.UnlockBurst,
			},
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionManager"]; exists {
		return nil, storedErr
	}
	return c.sessionManager, nil
}

// DEKManager returns the DEK lifecycle service.
func (c *Container) DEKManager() documentService.DEKManager {
	c.dekManagerInit.Do(func() {
		c.dekManager = documentService.NewDEKManager(c.AEADManager())
	})
	return c.dekManager
}

// DocumentStore returns the blob-backed document store.
func (c *Container) DocumentStore(ctx context.Context) (*storage.BlobStore, error) {
	var err error
	c.documentStoreInit.Do(func() {
		c.documentStore, err = storage.OpenBlobStore(ctx, c.config.BucketURL)
		if err != nil {
			c.initErrors["documentStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentStore"]; exists {
		return nil, storedErr
	}
	return c.documentStore, nil
}

// DocumentUseCase returns the document encryption use case, wrapped with
// metrics instrumentation when metrics are enabled.
func (c *Container) DocumentUseCase(ctx context.Context) (documentUsecase.DocumentUseCase, error) {
	var err error
	c.documentUseCaseInit.Do(func() {
		sessionManager, smErr := c.SessionManager()
		if smErr != nil {
			err = smErr
			c.initErrors["documentUseCase"] = smErr
			return
		}
		store, storeErr := c.DocumentStore(ctx)
		if storeErr != nil {
			err = storeErr
			c.initErrors["documentUseCase"] = storeErr
			return
		}
		algorithm, algErr := c.algorithm()
		if algErr != nil {
			err = algErr
			c.initErrors["documentUseCase"] = algErr
			return
		}
		businessMetrics, bmErr := c.BusinessMetrics()
		if bmErr != nil {
			err = bmErr
			c.initErrors["documentUseCase"] = bmErr
			return
		}

		useCase := documentUsecase.NewDocumentUseCase(
			sessionManager,
			c.DEKManager(),
			c.AEADManager(),
			store,
			algorithm,
			c.config.SegmentSize,
		)
		c.documentUseCase = documentUsecase.NewDocumentUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["documentUseCase"]; exists {
		return nil, storedErr
	}
	return c.documentUseCase, nil
}

// PreviewDecryptor returns the streaming preview decryptor, wrapped with
// metrics instrumentation when metrics are enabled.
func (c *Container) PreviewDecryptor() (previewService.PreviewDecryptor, error) {
	var err error
	c.previewDecryptorInit.Do(func() {
		sessionManager, smErr := c.SessionManager()
		if smErr != nil {
			err = smErr
			c.initErrors["previewDecryptor"] = smErr
			return
		}
		businessMetrics, bmErr := c.BusinessMetrics()
		if bmErr != nil {
			err = bmErr
			c.initErrors["previewDecryptor"] = bmErr
			return
		}

		decryptor := previewService.NewStreamingDecryptor(
			sessionManager,
			c.DEKManager(),
			c.AEADManager(),
			nil,
			previewService.DecryptorConfig{PreviewTTL: c.config.PreviewTTL},
		)
		c.previewDecryptor = previewService.NewPreviewDecryptorWithMetrics(decryptor, businessMetrics)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["previewDecryptor"]; exists {
		return nil, storedErr
	}
	return c.previewDecryptor, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Scrub any live session key before teardown
	if c.sessionManager != nil {
		c.sessionManager.Clear()
	}

	if c.documentStore != nil {
		if err := c.documentStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("document store close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// algorithm parses the configured payload encryption algorithm.
func (c *Container) algorithm() (cryptoDomain.Algorithm, error) {
	switch c.config.Algorithm {
	case string(cryptoDomain.AESGCM):
		return cryptoDomain.AESGCM, nil
	case string(cryptoDomain.ChaCha20):
		return cryptoDomain.ChaCha20, nil
	default:
		return "", fmt.Errorf(
			"unsupported encryption algorithm: %s (valid options: aes-gcm, chacha20-poly1305)",
			c.config.Algorithm,
		)
	}
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
