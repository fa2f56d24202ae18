// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the SMTP-to-Telegram bridge.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported Telegram parse modes.
const (
	ParseModeMarkdownV2 = "MarkdownV2"
	ParseModeHTML       = "HTML"
)

// defaultAPIURL is the public Telegram Bot API endpoint.
const defaultAPIURL = "https://api.telegram.org"

// Config holds the complete application configuration. It is constructed
// once at startup and shared read-only by every session.
type Config struct {
	SMTP     SMTPConfig     `yaml:"smtp"`
	Telegram TelegramConfig `yaml:"telegram"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Notifier selects the delivery backend ("telegram" or "stdout").
	// Empty means auto-detect: telegram if credentials are set, else stdout.
	Notifier string `yaml:"notifier"`
}

// SMTPConfig holds SMTP listener configuration.
type SMTPConfig struct {
	Listen   string `yaml:"listen"`
	Hostname string `yaml:"hostname"`
}

// TelegramConfig holds Telegram Bot API configuration.
type TelegramConfig struct {
	Token     string `yaml:"token"`
	ChatID    string `yaml:"chat_id"`
	ParseMode string `yaml:"parse_mode"`
	APIURL    string `yaml:"api_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// TelegramConfigured returns true if both the bot token and chat ID are set.
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable. It must pass before the
// listener starts; a failure here terminates the process.
func (c *Config) Validate() error {
	switch c.Notifier {
	case "", "telegram", "stdout":
	default:
		return fmt.Errorf("unknown notifier %q", c.Notifier)
	}

	if c.Notifier == "telegram" && !c.TelegramConfigured() {
		return fmt.Errorf("telegram notifier requires TELEGRAM_TOKEN and TELEGRAM_CHAT_ID")
	}

	switch c.Telegram.ParseMode {
	case ParseModeMarkdownV2, ParseModeHTML:
	default:
		return fmt.Errorf("unknown parse mode %q (must be %s or %s)",
			c.Telegram.ParseMode, ParseModeMarkdownV2, ParseModeHTML)
	}

	return nil
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.SMTP.Listen = ":2525"
	c.SMTP.Hostname = "smtp2tg"
	c.Telegram.ParseMode = ParseModeMarkdownV2
	c.Telegram.APIURL = defaultAPIURL
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("SMTP_LISTEN"); v != "" {
		c.SMTP.Listen = v
	}
	if v := os.Getenv("SMTP_HOSTNAME"); v != "" {
		c.SMTP.Hostname = v
	}

	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("TELEGRAM_PARSE_MODE"); v != "" {
		c.Telegram.ParseMode = v
	}
	if v := os.Getenv("TELEGRAM_API_URL"); v != "" {
		c.Telegram.APIURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("NOTIFIER"); v != "" {
		c.Notifier = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
