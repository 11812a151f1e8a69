package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr     string `yaml:"listen_addr"`
	DBPath         string `yaml:"db_path"`
	PhotoPath      string `yaml:"photo_path"`
	InstallKey     string `yaml:"install_key"`
	SessionSecret  string `yaml:"session_secret"`
	AnthropicKey   string `yaml:"anthropic_api_key"`
	AnthropicModel string `yaml:"anthropic_model"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	LogFile        string `yaml:"log_file"`
}

// Load reads the optional YAML file named by CONFIG_PATH, then applies
// environment variables on top. Every field has a usable default except the
// Anthropic key, which stays empty until the operator configures it.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     ":8080",
		DBPath:         "/data/brokersite.db",
		PhotoPath:      "/data/photos",
		InstallKey:     "MR-ADMIN-2025",
		AnthropicModel: "claude-sonnet-4-20250514",
		LogLevel:       "info",
		LogFormat:      "json",
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg.ListenAddr, "LISTEN_ADDR")
	applyEnv(&cfg.DBPath, "DB_PATH")
	applyEnv(&cfg.PhotoPath, "PHOTO_PATH")
	applyEnv(&cfg.InstallKey, "INSTALL_KEY")
	applyEnv(&cfg.SessionSecret, "SESSION_SECRET")
	applyEnv(&cfg.AnthropicKey, "ANTHROPIC_API_KEY")
	applyEnv(&cfg.AnthropicModel, "ANTHROPIC_MODEL")
	applyEnv(&cfg.LogLevel, "LOG_LEVEL")
	applyEnv(&cfg.LogFormat, "LOG_FORMAT")
	applyEnv(&cfg.LogFile, "LOG_FILE")

	return cfg, nil
}

func applyEnv(dst *string, key string) {
	if val, exists := os.LookupEnv(key); exists {
		*dst = val
	}
}
