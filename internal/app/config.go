package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the user settings that travel with export/import plus the
// chat endpoint tuning.
type Config struct {
	Theme                 string `yaml:"theme"`
	PromptProfile         string `yaml:"prompt_profile"`
	HistoryLimit          int    `yaml:"history_limit"`
	BackupIntervalMinutes int    `yaml:"backup_interval_minutes"`
	Model                 string `yaml:"model"`
	BaseURL               string `yaml:"base_url"`
	MaxTokens             int    `yaml:"max_tokens"`
}

func DefaultConfig() Config {
	return Config{
		Theme:                 "midnight",
		PromptProfile:         string(ProfileConcise),
		HistoryLimit:          6,
		BackupIntervalMinutes: 10,
		Model:                 defaultChatModel,
		BaseURL:               defaultChatBaseURL,
		MaxTokens:             defaultMaxTokens,
	}
}

// LoadConfig reads the yaml settings file, filling gaps and clamping
// out-of-range values. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Theme == "" {
		cfg.Theme = "midnight"
	}
	cfg.PromptProfile = string(ParseProfile(cfg.PromptProfile))
	cfg.HistoryLimit = clampHistoryLimit(cfg.HistoryLimit)
	if cfg.Model == "" {
		cfg.Model = defaultChatModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultChatBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "studyboard", "config.yml")
}
