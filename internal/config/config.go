package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// Scanning uploads
	MaxUploadSize int64
	UploadDir     string

	// Generation limits
	MinSize         int
	MaxSize         int
	MaxBarcodeWidth int
	MaxDataLength   int
	BatchMaxItems   int
	Workers         int

	// Logo sources
	LogoDir          string
	LogoFetchTimeout time.Duration
	AzureAccount     string
	AzureKey         string

	StaticDir      string
	MetricsEnabled bool
	GinMode        string

	// TLS is enabled when both files are set
	TLSCertFile string
	TLSKeyFile  string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether azblob:// logo sources can be resolved.
func (c *Config) AzureEnabled() bool {
	return c.AzureAccount != "" && c.AzureKey != ""
}

// TLSEnabled reports whether the server should listen with HTTPS.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// LoadFromEnv reads the process environment, after merging an optional .env
// file from the working directory. Variables already set win over .env.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 1024*1024),     // 1MB of JSON
		MaxUploadSize:      parseIntOrDefault("MAX_UPLOAD_SIZE", 10*1024*1024),        // 10MB
		UploadDir:          getEnvOrDefault("UPLOAD_DIR", "uploads"),
		MinSize:            int(parseIntOrDefault("MIN_SIZE", 64)),
		MaxSize:            int(parseIntOrDefault("MAX_SIZE", 2048)),
		MaxBarcodeWidth:    int(parseIntOrDefault("MAX_BARCODE_WIDTH", 16384)),
		MaxDataLength:      int(parseIntOrDefault("MAX_DATA_LENGTH", 8192)),
		BatchMaxItems:      int(parseIntOrDefault("BATCH_MAX_ITEMS", 50)),
		Workers:            int(parseIntOrDefault("WORKERS", 0)),
		LogoDir:            getEnvOrDefault("LOGO_DIR", ""),
		LogoFetchTimeout:   parseDurationOrDefault("LOGO_FETCH_TIMEOUT", 5*time.Second),
		AzureAccount:       getEnvOrDefault("AZURE_STORAGE_ACCOUNT", ""),
		AzureKey:           getEnvOrDefault("AZURE_STORAGE_KEY", ""),
		StaticDir:          getEnvOrDefault("STATIC_DIR", "web"),
		MetricsEnabled:     parseBoolOrDefault("METRICS_ENABLED", true),
		GinMode:            getEnvOrDefault("GIN_MODE", "release"),
		TLSCertFile:        getEnvOrDefault("TLS_CERT_FILE", ""),
		TLSKeyFile:         getEnvOrDefault("TLS_KEY_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise surface as confusing runtime failures.
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", c.MaxUploadSize)
	}
	if c.MinSize <= 0 || c.MaxSize < c.MinSize {
		return fmt.Errorf("invalid size range: MIN_SIZE=%d MAX_SIZE=%d", c.MinSize, c.MaxSize)
	}
	if c.MaxBarcodeWidth <= 0 || c.MaxDataLength <= 0 {
		return fmt.Errorf("MAX_BARCODE_WIDTH and MAX_DATA_LENGTH must be > 0 (got %d, %d)",
			c.MaxBarcodeWidth, c.MaxDataLength)
	}
	if c.BatchMaxItems <= 0 {
		return fmt.Errorf("BATCH_MAX_ITEMS must be > 0 (got %d)", c.BatchMaxItems)
	}
	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must be >= 0 (got %d)", c.Workers)
	}
	if c.RequestTimeout <= 0 || c.LogoFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, logo=%s)",
			c.RequestTimeout, c.LogoFetchTimeout)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test (got %q)", c.GinMode)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
