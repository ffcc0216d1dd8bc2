package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Zoe Trader Configuration

[trader]
# Trading mode: "live" or "paper"
mode = "paper"
# Scheduler tick period in milliseconds
tick_interval_ms = 60000
# Daily trade ceiling for the market-open scan guard
max_trades_per_day = 3
# When true, downstream execution logs instead of acting
dry_run = false
# Informational watchlist for briefings and status output
watchlist = []

[store]
# SQLite database path (defaults to ~/.config/zoe-trader/zoe.db)
path = ""

[logging]
# Log level: debug, info, warn, error
level = "info"
# Write logs to the console
console = true
# Write rotated logs to file
file = true

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Time format
time_format = "15:04:05"

[notifications]
# Enable notifications
enabled = false
# Notification level: all, briefings_only, errors_only
level = "all"

[notifications.webhook]
enabled = false
url = ""

[notifications.telegram]
enabled = false
bot_token = ""
chat_id = ""
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}
