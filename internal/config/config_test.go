package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return dir
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, "[trader]\nmode = \"paper\"\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Trader.TickIntervalMs != 60000 {
		t.Errorf("tick_interval_ms = %d, want default 60000", cfg.Trader.TickIntervalMs)
	}
	if cfg.Trader.MaxTradesPerDay != 3 {
		t.Errorf("max_trades_per_day = %d, want default 3", cfg.Trader.MaxTradesPerDay)
	}
	if cfg.Trader.TickInterval() != time.Minute {
		t.Errorf("TickInterval = %v, want 1m", cfg.Trader.TickInterval())
	}
	if cfg.Notifications.Level != "all" {
		t.Errorf("notification level = %q, want all", cfg.Notifications.Level)
	}
	if cfg.Store.Path == "" {
		t.Error("Store path should fall back to the default")
	}
	if !cfg.IsPaperMode() {
		t.Error("Expected paper mode")
	}
}

func TestLoadReadsValues(t *testing.T) {
	dir := writeConfig(t, `
[trader]
mode = "paper"
tick_interval_ms = 30000
max_trades_per_day = 5
watchlist = ["AAPL", "NVDA"]

[store]
path = "/tmp/zoe-test.db"

[notifications]
level = "briefings_only"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Trader.TickInterval() != 30*time.Second {
		t.Errorf("TickInterval = %v, want 30s", cfg.Trader.TickInterval())
	}
	if cfg.Trader.MaxTradesPerDay != 5 {
		t.Errorf("max_trades_per_day = %d, want 5", cfg.Trader.MaxTradesPerDay)
	}
	if len(cfg.Trader.Watchlist) != 2 {
		t.Errorf("watchlist = %v", cfg.Trader.Watchlist)
	}
	if cfg.Store.Path != "/tmp/zoe-test.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Notifications.Level != "briefings_only" {
		t.Errorf("notification level = %q", cfg.Notifications.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := writeConfig(t, "[trader]\nmode = \"paper\"\n")

	t.Setenv("ZOE_MAX_TRADES_PER_DAY", "7")
	t.Setenv("ZOE_DRY_RUN", "true")
	t.Setenv("ZOE_DB_PATH", "/tmp/zoe-env.db")
	t.Setenv("ZOE_WEBHOOK_URL", "https://hooks.example.com/zoe")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Trader.MaxTradesPerDay != 7 {
		t.Errorf("max_trades_per_day = %d, want env override 7", cfg.Trader.MaxTradesPerDay)
	}
	if !cfg.Trader.DryRun {
		t.Error("ZOE_DRY_RUN=true should enable dry run")
	}
	if cfg.Store.Path != "/tmp/zoe-env.db" {
		t.Errorf("store path = %q, want env override", cfg.Store.Path)
	}
	if !cfg.Notifications.Webhook.Enabled || cfg.Notifications.Webhook.URL == "" {
		t.Error("ZOE_WEBHOOK_URL should enable the webhook channel")
	}
}

func TestLoadCreatesTemplateWhenMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	if err == nil {
		t.Fatal("Load should report that a template was created")
	}
	if !strings.Contains(err.Error(), "config") {
		t.Errorf("Error = %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "config.toml")); statErr != nil {
		t.Errorf("Template config.toml should exist: %v", statErr)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{
			name: "bad mode",
			cfg: Config{Trader: TraderConfig{Mode: "margin", TickIntervalMs: 1000}},
		},
		{
			name: "zero tick interval",
			cfg: Config{Trader: TraderConfig{Mode: "paper", TickIntervalMs: 0}},
		},
		{
			name: "negative trade ceiling",
			cfg: Config{Trader: TraderConfig{Mode: "paper", TickIntervalMs: 1000, MaxTradesPerDay: -1}},
		},
		{
			name: "bad notification level",
			cfg: Config{
				Trader:        TraderConfig{Mode: "paper", TickIntervalMs: 1000},
				Notifications: NotificationConfig{Level: "loud"},
			},
		},
	}

	for _, c := range cases {
		if err := c.cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}

	good := Config{Trader: TraderConfig{Mode: "paper", TickIntervalMs: 60000, MaxTradesPerDay: 3}}
	if err := good.Validate(); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}
}
