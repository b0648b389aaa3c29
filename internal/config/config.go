// Package config loads the application configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the configuration.
const (
	DefaultListenAddr      = "127.0.0.1:8474"
	DefaultCameraID        = 0
	DefaultDatabasePath    = "blinkwell.db"
	DefaultCatalogPath     = "countries.csv"
	DefaultNotifierDir     = "notifiers"
	DefaultNotifierTimeout = 5 * time.Second
	DefaultAPIKeyEnv       = "GEMINI_API_KEY"
)

// Config holds all application settings.
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `yaml:"listen_addr"`

	// CameraID selects the capture device, as understood by OpenCV.
	CameraID int `yaml:"camera_id"`

	// StaticDir overrides the embedded web assets when set. Useful during
	// UI development.
	StaticDir string `yaml:"static_dir"`

	// DatabasePath is the SQLite file holding the report archive.
	DatabasePath string `yaml:"database_path"`

	// CatalogPath is the demographics CSV backing the analysis dropdowns.
	CatalogPath string `yaml:"catalog_path"`

	// Notifiers configures external reminder hooks.
	Notifiers NotifierConfig `yaml:"notifiers"`

	// Gemini configures the analysis model.
	Gemini GeminiConfig `yaml:"gemini"`
}

// NotifierConfig configures external reminder hook execution.
type NotifierConfig struct {
	// Dir is the directory scanned for notifier manifests.
	Dir string `yaml:"dir"`

	// Timeout bounds a single notifier invocation. Default: 5s.
	Timeout time.Duration `yaml:"timeout"`
}

// GeminiConfig configures the hosted analysis model.
type GeminiConfig struct {
	// Model is the model name. Empty selects the package default.
	Model string `yaml:"model"`

	// APIKeyEnv is the name of the environment variable that holds the API
	// key. Defaults to GEMINI_API_KEY.
	APIKeyEnv string `yaml:"api_key_env"`
}

// APIKey returns the API key resolved from the environment.
func (g GeminiConfig) APIKey() string {
	if g.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(g.APIKeyEnv)
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation. A missing file is not an error: the
// defaults are returned, so the binary runs without any configuration.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		ListenAddr:   DefaultListenAddr,
		CameraID:     DefaultCameraID,
		DatabasePath: DefaultDatabasePath,
		CatalogPath:  DefaultCatalogPath,
		Notifiers: NotifierConfig{
			Dir:     DefaultNotifierDir,
			Timeout: DefaultNotifierTimeout,
		},
		Gemini: GeminiConfig{
			APIKeyEnv: DefaultAPIKeyEnv,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if cfg.CameraID < 0 {
		return fmt.Errorf("camera_id %d must not be negative", cfg.CameraID)
	}
	if cfg.Notifiers.Timeout < 0 {
		return fmt.Errorf("notifiers.timeout must not be negative")
	}
	return nil
}
