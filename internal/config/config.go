// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// SessionTTL is the inactivity window after which the master key session expires.
	SessionTTL time.Duration
	// PreviewTTL is the lifetime of a single preview rendering session.
	PreviewTTL time.Duration

	// UnlockRequestsPerSec is the number of unlock attempts allowed per second.
	UnlockRequestsPerSec float64
	// UnlockBurst is the burst size for unlock attempt throttling.
	UnlockBurst int

	// Algorithm is the payload encryption algorithm ("aes-gcm" or "chacha20-poly1305").
	Algorithm string
	// SegmentSize is the plaintext segment size in bytes for payload encryption.
	SegmentSize int
	// KDFIterations is the PBKDF2 iteration count used when bootstrapping key
	// parameters. The client-side floor is enforced separately and is never
	// lowered by configuration.
	KDFIterations int

	// BucketURL is the document store bucket URL (e.g., "file:///var/lib/docvault", "mem://").
	BucketURL string
	// KeyParamsPath is the path of the local key-parameter file.
	KeyParamsPath string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsHost is the host address the metrics server binds to.
	MetricsHost string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Session policy
		SessionTTL: env.GetDuration("SESSION_TTL_MINUTES", 30, time.Minute),
		PreviewTTL: env.GetDuration("PREVIEW_TTL_MINUTES", 10, time.Minute),

		// Unlock throttling
		UnlockRequestsPerSec: env.GetFloat64("UNLOCK_REQUESTS_PER_SEC", 1.0),
		UnlockBurst:          env.GetInt("UNLOCK_BURST", 5),

		// Encryption
		Algorithm:     env.GetString("ENCRYPTION_ALGORITHM", "aes-gcm"),
		SegmentSize:   env.GetInt("SEGMENT_SIZE_BYTES", 64*1024),
		KDFIterations: env.GetInt("KDF_ITERATIONS", 600000),

		// Storage
		BucketURL:     env.GetString("BUCKET_URL", "mem://"),
		KeyParamsPath: env.GetString("KEY_PARAMS_PATH", "keyparams.json"),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "docvault"),
		MetricsHost:      env.GetString("METRICS_HOST", "0.0.0.0"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
