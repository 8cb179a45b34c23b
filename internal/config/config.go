// Package config loads Pokido settings. Values come from built-in defaults,
// then an optional TOML file, then environment variables (highest priority).
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Port             string   `toml:"port"`
	DBPath           string   `toml:"db_path"`
	FrontendDistPath string   `toml:"frontend_dist_path"`
	CORSOrigins      []string `toml:"cors_allowed_origins"`
	ScratchDir       string   `toml:"scratch_dir"`

	// Album persistence backend: "sqlite" or "file"
	AlbumPersistence string `toml:"album_persistence"`
	AlbumDir         string `toml:"album_dir"`

	GoogleAPIKey     string `toml:"google_api_key"`
	GeminiModel      string `toml:"gemini_model"`
	PokemonTCGAPIKey string `toml:"pokemon_tcg_api_key"`

	VisionTimeoutSeconds   int `toml:"vision_timeout_seconds"`
	CatalogTimeoutSeconds  int `toml:"catalog_timeout_seconds"`
	FallbackTimeoutSeconds int `toml:"image_fallback_timeout_seconds"`

	// Largest distance between a misread card number and an accepted
	// alternative when no exact local number matches
	NearNumberTolerance int `toml:"near_number_tolerance"`

	Currency      string  `toml:"currency"`
	EURRate       float64 `toml:"eur_rate"`
	USDRate       float64 `toml:"usd_rate"`
	DefaultLocale string  `toml:"default_locale"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Port:                   "8080",
		DBPath:                 "./pokido.db",
		CORSOrigins:            []string{"http://localhost:5173", "http://localhost:3000"},
		ScratchDir:             filepath.Join(os.TempDir(), "pokido-uploads"),
		AlbumPersistence:       "sqlite",
		AlbumDir:               "./data/albums",
		GeminiModel:            "gemini-2.0-flash",
		VisionTimeoutSeconds:   10,
		CatalogTimeoutSeconds:  10,
		FallbackTimeoutSeconds: 5,
		NearNumberTolerance:    5,
		Currency:               "ILS",
		EURRate:                4,
		USDRate:                3.5,
		DefaultLocale:          "he",
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	if p := os.Getenv("POKIDO_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(GetXDGConfigHome(), "pokido", "config.toml")
}

// Load builds the configuration. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path := GetConfigFilePath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
		}
		log.Printf("Config: loaded %s", path)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.FrontendDistPath, "FRONTEND_DIST_PATH")
	setString(&c.ScratchDir, "SCANNED_IMAGES_DIR")
	setString(&c.AlbumPersistence, "ALBUM_PERSISTENCE")
	setString(&c.AlbumDir, "ALBUM_DIR")
	setString(&c.GeminiModel, "GEMINI_MODEL")
	setString(&c.PokemonTCGAPIKey, "POKEMON_TCG_API_KEY")
	setString(&c.Currency, "CURRENCY")
	setString(&c.DefaultLocale, "DEFAULT_LOCALE")

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORSOrigins = strings.Split(origins, ",")
	}

	setString(&c.GoogleAPIKey, "GOOGLE_API_KEY")
	if c.GoogleAPIKey == "" {
		if keyPath := os.Getenv("GOOGLE_API_KEY_FILE"); keyPath != "" {
			if data, err := os.ReadFile(keyPath); err == nil {
				c.GoogleAPIKey = strings.TrimSpace(string(data))
			} else {
				log.Printf("Config: could not read GOOGLE_API_KEY_FILE: %v", err)
			}
		}
	}

	setInt(&c.VisionTimeoutSeconds, "VISION_TIMEOUT_SECONDS")
	setInt(&c.CatalogTimeoutSeconds, "CATALOG_TIMEOUT_SECONDS")
	setInt(&c.FallbackTimeoutSeconds, "IMAGE_FALLBACK_TIMEOUT_SECONDS")
	setInt(&c.NearNumberTolerance, "NEAR_NUMBER_TOLERANCE")
	setFloat(&c.EURRate, "EUR_RATE")
	setFloat(&c.USDRate, "USD_RATE")
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	switch c.AlbumPersistence {
	case "sqlite", "file":
	default:
		return fmt.Errorf("album_persistence must be 'sqlite' or 'file', got %q", c.AlbumPersistence)
	}
	if c.NearNumberTolerance < 0 {
		return fmt.Errorf("near_number_tolerance must not be negative")
	}
	if c.EURRate < 0 || c.USDRate < 0 {
		return fmt.Errorf("currency rates must not be negative")
	}
	return nil
}

func (c *Config) VisionTimeout() time.Duration {
	return seconds(c.VisionTimeoutSeconds, 10)
}

func (c *Config) CatalogTimeout() time.Duration {
	return seconds(c.CatalogTimeoutSeconds, 10)
}

func (c *Config) FallbackTimeout() time.Duration {
	return seconds(c.FallbackTimeoutSeconds, 5)
}

func seconds(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		} else {
			log.Printf("Config: ignoring %s=%q: %v", key, v, err)
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		} else {
			log.Printf("Config: ignoring %s=%q: %v", key, v, err)
		}
	}
}
