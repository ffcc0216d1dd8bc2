// Package config provides configuration management for the trading daemon.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Trader        TraderConfig       `mapstructure:"trader"`
	Store         StoreConfig        `mapstructure:"store"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	UI            UIConfig           `mapstructure:"ui"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

// TraderConfig holds scheduler configuration.
type TraderConfig struct {
	Mode            string   `mapstructure:"mode"`               // "live", "paper"
	TickIntervalMs  int      `mapstructure:"tick_interval_ms"`   // scheduler tick period
	MaxTradesPerDay int      `mapstructure:"max_trades_per_day"` // daily trade ceiling
	DryRun          bool     `mapstructure:"dry_run"`
	Watchlist       []string `mapstructure:"watchlist"`
}

// TickInterval returns the tick period as a duration.
func (t TraderConfig) TickInterval() time.Duration {
	return time.Duration(t.TickIntervalMs) * time.Millisecond
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"` // SQLite database path
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Level    string         `mapstructure:"level"` // all, briefings_only, errors_only
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/zoe-trader"
	}
	return filepath.Join(home, ".config", "zoe-trader")
}

// DefaultStorePath returns the default SQLite database path.
func DefaultStorePath() string {
	return filepath.Join(DefaultConfigDir(), "zoe.db")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	// Defaults per recognized options
	v.SetDefault("trader.mode", "paper")
	v.SetDefault("trader.tick_interval_ms", 60000)
	v.SetDefault("trader.max_trades_per_day", 3)
	v.SetDefault("trader.dry_run", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.time_format", "15:04:05")
	v.SetDefault("notifications.level", "all")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ZOE_TRADING_MODE"); v != "" {
		cfg.Trader.Mode = v
	}
	if v := os.Getenv("ZOE_DRY_RUN"); v != "" {
		cfg.Trader.DryRun = v == "1" || v == "true"
	}
	if v := os.Getenv("ZOE_MAX_TRADES_PER_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Trader.MaxTradesPerDay = n
		}
	}
	if v := os.Getenv("ZOE_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("ZOE_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Webhook.URL = v
		cfg.Notifications.Webhook.Enabled = true
	}
	if v := os.Getenv("ZOE_TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv("ZOE_TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notifications.Telegram.ChatID = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Trader.Mode != "" && c.Trader.Mode != "live" && c.Trader.Mode != "paper" {
		return fmt.Errorf("invalid trading mode: %s (must be 'live' or 'paper')", c.Trader.Mode)
	}

	if c.Trader.TickIntervalMs <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive")
	}
	if c.Trader.MaxTradesPerDay < 0 {
		return fmt.Errorf("max_trades_per_day must be non-negative")
	}

	switch c.Notifications.Level {
	case "", "all", "briefings_only", "errors_only":
	default:
		return fmt.Errorf("invalid notification level: %s", c.Notifications.Level)
	}

	return nil
}

// IsPaperMode returns true if paper trading mode is enabled.
func (c *Config) IsPaperMode() bool {
	return c.Trader.Mode == "paper"
}
