// Package config loads RIA Builder service configuration from a JSON file
// in the data directory, with environment variable overrides for secrets
// and endpoint URLs. A missing config file is not an error; defaults plus
// environment are enough to run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration.
type Config struct {
	// DataDir is where the SQLite store, logs and config live.
	DataDir string `json:"data_dir"`

	// Addr is the HTTP listen address.
	Addr string `json:"addr"`

	// Model configures the Gemini client.
	Model ModelConfig `json:"model"`

	// Integrations configures the external collaborators.
	Integrations IntegrationsConfig `json:"integrations"`

	// Logging mirrors the structure read by internal/logging.
	Logging LoggingConfig `json:"logging"`
}

// ModelConfig configures the language model client.
type ModelConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
	Timeout string `json:"timeout"`
}

// IntegrationsConfig configures external service endpoints.
// Empty values mean the integration is not configured; the corresponding
// tools report a configuration error instead of failing hard.
type IntegrationsConfig struct {
	SlackSendURL         string `json:"slack_send_url"`
	WebResearchURL       string `json:"web_research_url"`
	IntegrationStatusURL string `json:"integration_status_url"`
	TranscribeURL        string `json:"transcribe_url"`
	GoogleAccessToken    string `json:"google_access_token"`
	DriveBaseURL         string `json:"drive_base_url"`
	DocsBaseURL          string `json:"docs_base_url"`
}

// LoggingConfig controls the categorized debug logging.
type LoggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories,omitempty"`
	Level      string          `json:"level"`
}

// Default returns the baseline configuration before file/env overlays.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".riabuilder"),
		Addr:    ":8787",
		Model: ModelConfig{
			Model:   "gemini-2.0-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Timeout: "2m",
		},
		Integrations: IntegrationsConfig{
			DriveBaseURL: "https://www.googleapis.com/drive/v3",
			DocsBaseURL:  "https://docs.googleapis.com/v1",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds the effective config: defaults, then <data-dir>/config.json
// if present, then environment variables. A .env file in the working
// directory is loaded first so local development secrets apply.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if dir := os.Getenv("RIA_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	path := filepath.Join(cfg.DataDir, "config.json")
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values.
func applyEnvOverrides(cfg *Config) {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfPresent(&cfg.Addr, "RIA_ADDR")
	setIfPresent(&cfg.Model.APIKey, "GEMINI_API_KEY")
	setIfPresent(&cfg.Model.Model, "GEMINI_MODEL")
	setIfPresent(&cfg.Model.BaseURL, "GEMINI_BASE_URL")
	setIfPresent(&cfg.Integrations.SlackSendURL, "SLACK_SEND_URL")
	setIfPresent(&cfg.Integrations.WebResearchURL, "WEB_RESEARCH_URL")
	setIfPresent(&cfg.Integrations.IntegrationStatusURL, "INTEGRATION_STATUS_URL")
	setIfPresent(&cfg.Integrations.TranscribeURL, "TRANSCRIBE_URL")
	setIfPresent(&cfg.Integrations.GoogleAccessToken, "GOOGLE_ACCESS_TOKEN")
}

// ModelTimeout parses the model timeout, falling back to two minutes.
func (c Config) ModelTimeout() time.Duration {
	d, err := time.ParseDuration(c.Model.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// DatabasePath is where the SQLite store lives.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "riabuilder.db")
}
