package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SYNC_CONCURRENCY", "")
	t.Setenv("PLAID_COUNTRY_CODES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port == "" {
		t.Error("expected default port")
	}
	if cfg.SyncConcurrency != 4 {
		t.Errorf("SyncConcurrency = %d, want 4", cfg.SyncConcurrency)
	}
	if len(cfg.PlaidCountryCodes) != 1 || cfg.PlaidCountryCodes[0] != "US" {
		t.Errorf("PlaidCountryCodes = %v, want [US]", cfg.PlaidCountryCodes)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("UpstreamTimeout = %s, want 30s", cfg.UpstreamTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SYNC_CONCURRENCY", "8")
	t.Setenv("SYNC_RETRY_BASE_DELAY", "250ms")
	t.Setenv("PLAID_COUNTRY_CODES", "US, CA ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SyncConcurrency != 8 {
		t.Errorf("SyncConcurrency = %d, want 8", cfg.SyncConcurrency)
	}
	if cfg.SyncRetryBaseDelay != 250*time.Millisecond {
		t.Errorf("SyncRetryBaseDelay = %s, want 250ms", cfg.SyncRetryBaseDelay)
	}
	if len(cfg.PlaidCountryCodes) != 2 || cfg.PlaidCountryCodes[1] != "CA" {
		t.Errorf("PlaidCountryCodes = %v, want [US CA]", cfg.PlaidCountryCodes)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SYNC_MAX_ATTEMPTS", "many")
	t.Setenv("UPSTREAM_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SyncMaxAttempts != 3 {
		t.Errorf("SyncMaxAttempts = %d, want 3", cfg.SyncMaxAttempts)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("UpstreamTimeout = %s, want 30s", cfg.UpstreamTimeout)
	}
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	tests := []struct {
		name    string
		jwt     string
		credKey string
		wantErr bool
	}{
		{name: "missing_jwt_secret", jwt: "", credKey: "k", wantErr: true},
		{name: "missing_credential_key", jwt: "s3cret", credKey: "", wantErr: true},
		{name: "both_set", jwt: "s3cret", credKey: "k", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "production")
			t.Setenv("JWT_SECRET", tt.jwt)
			t.Setenv("CREDENTIAL_ENCRYPTION_KEY", tt.credKey)

			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
