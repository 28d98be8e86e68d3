package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPath returns the default configuration file path: ~/.conversebank/config.json.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// DataDir returns the conversebank data directory: ~/.conversebank.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".conversebank"
	}
	return filepath.Join(home, ".conversebank")
}

// LoadEnv reads KEY=VALUE pairs from an env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads and parses the config file at path, then applies environment
// overrides. If path is empty, ConfigPath() is used. Files ending in .yaml
// or .yml are parsed as YAML.
// On parse failure it prints a warning and falls back to DefaultConfig().
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if perr := parse(path, data, &cfg); perr != nil {
			fmt.Printf("Warning: failed to parse config %s: %v\n", path, perr)
			fmt.Println("Using default configuration.")
			cfg = DefaultConfig()
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func parse(path string, data []byte, cfg *Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return json.Unmarshal(data, cfg)
	}
	// YAML is decoded generically and re-encoded so the json tags stay the
	// single source of key names.
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(js, cfg)
}

// applyEnv overlays the deployment environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	setString(&cfg.NLU.AccessToken, "APIAI_ACCESS_TOKEN")
	setString(&cfg.NLU.Lang, "APIAI_LANG")
	setString(&cfg.Messenger.VerifyToken, "FB_VERIFY_TOKEN")
	setString(&cfg.Messenger.PageAccessToken, "FB_PAGE_ACCESS_TOKEN")
	setString(&cfg.Gateway.AppURL, "APP_URL")
	setString(&cfg.Alert.SlackWebhookURL, "SLACK_WEBHOOK_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports missing credentials and out-of-range settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes cfg to path as indented JSON.
// If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
