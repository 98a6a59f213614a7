package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %v, want 0.0.0.0", cfg.Host)
	}
	if cfg.Port != 8431 {
		t.Errorf("Port = %v, want 8431", cfg.Port)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("MaxBodyBytes = %v, want 1MiB", cfg.MaxBodyBytes)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "percolate.yaml")
	content := `server:
  host: 127.0.0.1
  port: 9000
  request_timeout: 5s
  database_url: sqlite:///tmp/test.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %v, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %v, want 9000", cfg.Port)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.DatabaseURL != "sqlite:///tmp/test.db" {
		t.Errorf("DatabaseURL = %v, want sqlite:///tmp/test.db", cfg.DatabaseURL)
	}
}

func TestLoadConfig_RejectsSecretsInFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "percolate.yaml")
	content := `server:
  hmac_secret: supersecret
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Errorf("LoadConfig() accepted a secret in a config file")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port too large", "server:\n  port: 70000\n"},
		{"zero timeout", "server:\n  request_timeout: 0s\n"},
		{"empty database url", "server:\n  database_url: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "percolate.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("writing config file: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("LoadConfig() accepted invalid config %q", tt.content)
			}
		})
	}
}

func TestParseHMACSecretWithID(t *testing.T) {
	validID := strings.Repeat("a", 32)
	validSecret := base64.StdEncoding.EncodeToString(make([]byte, 32))

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", validID + ":" + validSecret, false},
		{"missing separator", validID + validSecret, true},
		{"short secret_id", "abc:" + validSecret, true},
		{"uppercase secret_id", strings.Repeat("A", 32) + ":" + validSecret, true},
		{"bad base64", validID + ":!!!", true},
		{"short secret", validID + ":" + base64.StdEncoding.EncodeToString(make([]byte, 8)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, secret, err := ParseHMACSecretWithID(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHMACSecretWithID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if id != validID {
					t.Errorf("secretID = %v, want %v", id, validID)
				}
				if len(secret) != 32 {
					t.Errorf("secret length = %d, want 32", len(secret))
				}
			}
		})
	}
}

func TestHMACSecrets_FromEnvironment(t *testing.T) {
	validSecret := base64.StdEncoding.EncodeToString(make([]byte, 32))
	t.Setenv("PERC_HMAC_SECRET", strings.Repeat("a", 32)+":"+validSecret)
	t.Setenv("PERC_HMAC_SECRET_1", strings.Repeat("b", 32)+":"+validSecret)

	secrets, err := HMACSecrets()
	if err != nil {
		t.Fatalf("HMACSecrets() error = %v, want nil", err)
	}
	if len(secrets) != 2 {
		t.Errorf("len(secrets) = %d, want 2", len(secrets))
	}
}
