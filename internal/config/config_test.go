package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("POKIDO_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.NearNumberTolerance != 5 {
		t.Errorf("NearNumberTolerance = %d, want 5", cfg.NearNumberTolerance)
	}
	if cfg.EURRate != 4 || cfg.USDRate != 3.5 {
		t.Errorf("rates = %v/%v, want 4/3.5", cfg.EURRate, cfg.USDRate)
	}
	if cfg.VisionTimeout() != 10*time.Second {
		t.Errorf("VisionTimeout() = %v, want 10s", cfg.VisionTimeout())
	}
	if cfg.FallbackTimeout() != 5*time.Second {
		t.Errorf("FallbackTimeout() = %v, want 5s", cfg.FallbackTimeout())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
port = "9000"
near_number_tolerance = 3
eur_rate = 4.2
album_persistence = "file"
cors_allowed_origins = ["https://pokido.example"]
`)
	t.Setenv("POKIDO_CONFIG", path)
	t.Setenv("PORT", "9100")
	t.Setenv("USD_RATE", "3.7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Environment beats the file
	if cfg.Port != "9100" {
		t.Errorf("Port = %s, want 9100", cfg.Port)
	}
	// File beats defaults
	if cfg.NearNumberTolerance != 3 {
		t.Errorf("NearNumberTolerance = %d, want 3", cfg.NearNumberTolerance)
	}
	if cfg.EURRate != 4.2 {
		t.Errorf("EURRate = %v, want 4.2", cfg.EURRate)
	}
	if cfg.USDRate != 3.7 {
		t.Errorf("USDRate = %v, want 3.7", cfg.USDRate)
	}
	if cfg.AlbumPersistence != "file" {
		t.Errorf("AlbumPersistence = %s, want file", cfg.AlbumPersistence)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://pokido.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadAPIKeyFile(t *testing.T) {
	t.Setenv("POKIDO_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("GOOGLE_API_KEY", "")

	keyPath := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(keyPath, []byte("  secret-key\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOOGLE_API_KEY_FILE", keyPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GoogleAPIKey != "secret-key" {
		t.Errorf("GoogleAPIKey = %q, want secret-key", cfg.GoogleAPIKey)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `album_persistence = "redis"`)
	t.Setenv("POKIDO_CONFIG", path)
	t.Setenv("ALBUM_PERSISTENCE", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown album persistence")
	}
}

func TestLoadIgnoresBadNumbers(t *testing.T) {
	t.Setenv("POKIDO_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("NEAR_NUMBER_TOLERANCE", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.NearNumberTolerance != 5 {
		t.Errorf("NearNumberTolerance = %d, want default 5", cfg.NearNumberTolerance)
	}
}
