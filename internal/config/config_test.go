package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MAX_UPLOAD_SIZE", "")
	t.Setenv("LOGO_FETCH_TIMEOUT", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MaxUploadSize != 10*1024*1024 {
		t.Errorf("Expected 10MB upload limit, got %d", cfg.MaxUploadSize)
	}
	if cfg.LogoFetchTimeout != 5*time.Second {
		t.Errorf("Expected 5s logo timeout, got %s", cfg.LogoFetchTimeout)
	}
	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("Unexpected server address %s", cfg.ServerAddress())
	}
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "99999")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("Expected error for out of range port")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BATCH_MAX_ITEMS", "5")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "acct")
	t.Setenv("AZURE_STORAGE_KEY", "a2V5")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.BatchMaxItems != 5 {
		t.Errorf("Expected 5 batch items, got %d", cfg.BatchMaxItems)
	}
	if cfg.MetricsEnabled {
		t.Error("Expected metrics disabled")
	}
	if !cfg.AzureEnabled() {
		t.Error("Expected azure to be enabled with account and key")
	}
}

func TestValidate_SizeRange(t *testing.T) {
	t.Setenv("MIN_SIZE", "512")
	t.Setenv("MAX_SIZE", "128")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("Expected error for inverted size range")
	}
}

func TestValidate_TLSPair(t *testing.T) {
	t.Setenv("TLS_CERT_FILE", "certs/cert.pem")
	t.Setenv("TLS_KEY_FILE", "")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("Expected error when only the certificate is set")
	}

	t.Setenv("TLS_KEY_FILE", "certs/key.pem")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cfg.TLSEnabled() {
		t.Error("Expected TLS to be enabled with cert and key")
	}
}

func TestValidate_OutputLimits(t *testing.T) {
	t.Setenv("MAX_BARCODE_WIDTH", "")
	t.Setenv("MAX_DATA_LENGTH", "")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.MaxBarcodeWidth != 16384 || cfg.MaxDataLength != 8192 {
		t.Errorf("Unexpected defaults: width=%d data=%d", cfg.MaxBarcodeWidth, cfg.MaxDataLength)
	}

	t.Setenv("MAX_BARCODE_WIDTH", "0")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("Expected error for a zero barcode width limit")
	}
}

func TestValidate_GinMode(t *testing.T) {
	t.Setenv("GIN_MODE", "bogus")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("Expected error for an unknown GIN_MODE")
	}
}
