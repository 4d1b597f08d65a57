package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds server settings
type Config struct {
	Port        string `yaml:"port" json:"port"`                   // HTTP listen port
	Token       string `yaml:"-" json:"-"`                         // GitHub API token, env only
	TargetLabel string `yaml:"target_label" json:"target_label"`   // Label that drives board sync
	APIBaseURL  string `yaml:"api_base_url" json:"api_base_url"`   // GitHub API base URL
	JournalPath string `yaml:"journal_path" json:"journal_path"`   // Delivery journal database path

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DefaultConfig returns default settings, with environment overrides applied
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	journalPath := ""
	if home != "" {
		journalPath = filepath.Join(home, ".boardbot", "deliveries.db")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Token:       os.Getenv("BOARDBOT_TOKEN"),
		TargetLabel: getEnv("BOARDBOT_LABEL", "bug"),
		APIBaseURL:  getEnv("BOARDBOT_API_URL", "https://api.github.com"),
		JournalPath: getEnv("BOARDBOT_JOURNAL", journalPath),
		LogLevel:    getEnv("BOARDBOT_LOG_LEVEL", "INFO"),
		LogFile:     getEnv("BOARDBOT_LOG_FILE", ""),
		LogConsole:  getEnv("BOARDBOT_LOG_CONSOLE", "true") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load loads config from ~/.boardbot/config.yaml, after reading an optional
// .env file in the working directory. Environment variables win over the file.
func Load() (*Config, error) {
	// Missing .env is fine
	godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".boardbot", "config.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// File sets the base, environment and defaults fill the gaps
	defaults := DefaultConfig()
	if cfg.Port == "" || os.Getenv("PORT") != "" {
		cfg.Port = defaults.Port
	}
	if cfg.TargetLabel == "" || os.Getenv("BOARDBOT_LABEL") != "" {
		cfg.TargetLabel = defaults.TargetLabel
	}
	if cfg.APIBaseURL == "" || os.Getenv("BOARDBOT_API_URL") != "" {
		cfg.APIBaseURL = defaults.APIBaseURL
	}
	if cfg.JournalPath == "" || os.Getenv("BOARDBOT_JOURNAL") != "" {
		cfg.JournalPath = defaults.JournalPath
	}
	if cfg.LogLevel == "" || os.Getenv("BOARDBOT_LOG_LEVEL") != "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if os.Getenv("BOARDBOT_LOG_FILE") != "" {
		cfg.LogFile = defaults.LogFile
	}
	cfg.Token = defaults.Token

	return cfg, nil
}

// Validate checks that serving is possible with this config
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("BOARDBOT_TOKEN is required")
	}
	if c.TargetLabel == "" {
		return fmt.Errorf("target label must not be empty")
	}
	return nil
}

// Save saves config to ~/.boardbot/config.yaml
func (c *Config) Save() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".boardbot")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
