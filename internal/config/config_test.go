package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BridgeCommand != "skedge-bridge" {
		t.Errorf("Wrong default bridge command: %s", cfg.BridgeCommand)
	}

	if cfg.WeekStartDay != time.Monday {
		t.Errorf("Wrong default week start day: %v", cfg.WeekStartDay)
	}

	if cfg.SlotIncrement != 60 {
		t.Errorf("Wrong default slot increment: %d", cfg.SlotIncrement)
	}

	if cfg.TimeFormat != "15:04" {
		t.Errorf("Wrong default time format: %s", cfg.TimeFormat)
	}

	if cfg.DateFormat != "Jan 2, 2006" {
		t.Errorf("Wrong default date format: %s", cfg.DateFormat)
	}

	if !cfg.AutoRefresh {
		t.Error("Auto refresh should be enabled by default")
	}

	if cfg.RefreshRate != 30*time.Second {
		t.Errorf("Wrong default refresh rate: %v", cfg.RefreshRate)
	}

	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("Wrong default cache TTL: %v", cfg.CacheTTL)
	}

	if cfg.PreloadDays != 30 {
		t.Errorf("Wrong default preload days: %d", cfg.PreloadDays)
	}

	if len(cfg.KeyBindings) == 0 {
		t.Error("Default key bindings should not be empty")
	}

	if cfg.KeyBindings["quit"] != "q" {
		t.Errorf("Wrong quit key binding: %s", cfg.KeyBindings["quit"])
	}
}

func TestParseLine(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		line     string
		check    func(*Config) bool
		expected bool
		hasError bool
	}{
		{
			line: "set bridge_command /usr/bin/skedge-bridge",
			check: func(c *Config) bool {
				return c.BridgeCommand == "/usr/bin/skedge-bridge"
			},
			expected: true,
			hasError: false,
		},
		{
			line: "set week_start_day sunday",
			check: func(c *Config) bool {
				return c.WeekStartDay == time.Sunday
			},
			expected: true,
			hasError: false,
		},
		{
			line: "set auto_refresh false",
			check: func(c *Config) bool {
				return !c.AutoRefresh
			},
			expected: true,
			hasError: false,
		},
		{
			line: "set refresh_rate 60",
			check: func(c *Config) bool {
				return c.RefreshRate == 60*time.Second
			},
			expected: true,
			hasError: false,
		},
		{
			line: "bind j next_day",
			check: func(c *Config) bool {
				return c.KeyBindings["next_day"] == "j"
			},
			expected: true,
			hasError: false,
		},
		{
			line: "color today yellow",
			check: func(c *Config) bool {
				return c.Colors["today"] == "yellow"
			},
			expected: true,
			hasError: false,
		},
		{
			line:     "invalid command",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := cfg.parseLine(tt.line)

			if tt.hasError && err == nil {
				t.Error("Expected error but got none")
			}

			if !tt.hasError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if tt.check != nil {
				result := tt.check(cfg)
				if result != tt.expected {
					t.Errorf("Check failed for line: %s", tt.line)
				}
			}
		})
	}
}

func TestSetVariable(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		value    string
		check    func(*Config) bool
		hasError bool
	}{
		{
			name:  "accounts_file",
			value: "~/accounts.yaml",
			check: func(c *Config) bool {
				return strings.HasSuffix(c.AccountsFile, "accounts.yaml") &&
					!strings.HasPrefix(c.AccountsFile, "~")
			},
			hasError: false,
		},
		{
			name:  "editor",
			value: "vim",
			check: func(c *Config) bool {
				return c.Editor == "vim"
			},
			hasError: false,
		},
		{
			name:  "slot_increment",
			value: "30",
			check: func(c *Config) bool {
				return c.SlotIncrement == 30
			},
			hasError: false,
		},
		{
			name:     "slot_increment",
			value:    "45",
			hasError: true,
		},
		{
			name:  "startup_view",
			value: "week",
			check: func(c *Config) bool {
				return c.StartupView == "week"
			},
			hasError: false,
		},
		{
			name:     "startup_view",
			value:    "year",
			hasError: true,
		},
		{
			name:  "confirm_delete",
			value: "true",
			check: func(c *Config) bool {
				return c.ConfirmDelete
			},
			hasError: false,
		},
		{
			name:  "refresh_rate",
			value: "5m",
			check: func(c *Config) bool {
				return c.RefreshRate == 5*time.Minute
			},
			hasError: false,
		},
		{
			name:  "cache_ttl",
			value: "10m",
			check: func(c *Config) bool {
				return c.CacheTTL == 10*time.Minute
			},
			hasError: false,
		},
		{
			name:  "preload_days",
			value: "14",
			check: func(c *Config) bool {
				return c.PreloadDays == 14
			},
			hasError: false,
		},
		{
			name:     "preload_days",
			value:    "nope",
			hasError: true,
		},
		{
			name:     "unknown_variable",
			value:    "something",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.setVariable(tt.name, tt.value)

			if tt.hasError && err == nil {
				t.Error("Expected error but got none")
			}

			if !tt.hasError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Check failed for %s = %s", tt.name, tt.value)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skedgerc")
	content := "set slot_increment 30\nset preload_days 14\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.SlotIncrement != 30 {
		t.Errorf("Wrong slot increment: %d", cfg.SlotIncrement)
	}
	if cfg.PreloadDays != 14 {
		t.Errorf("Wrong preload days: %d", cfg.PreloadDays)
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Missing explicit config file should fail")
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "test_skedgerc")

	content := `# Test config file
set bridge_command /usr/local/bin/skedge-bridge
set accounts_file ~/calendars.yaml
set editor emacs
set week_start_day sunday
set slot_increment 30
set auto_refresh false
set refresh_rate 120
set cache_ttl 2m

bind q quit
bind n new_event
bind ? help

color today cyan
color selected reverse
`

	err := os.WriteFile(configFile, []byte(content), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := DefaultConfig()
	err = cfg.loadFromFile(configFile)
	if err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	// Verify loaded values
	if cfg.BridgeCommand != "/usr/local/bin/skedge-bridge" {
		t.Errorf("Wrong bridge command: %s", cfg.BridgeCommand)
	}

	if !strings.HasSuffix(cfg.AccountsFile, "calendars.yaml") {
		t.Errorf("Wrong accounts file: %s", cfg.AccountsFile)
	}

	if cfg.Editor != "emacs" {
		t.Errorf("Wrong editor: %s", cfg.Editor)
	}

	if cfg.WeekStartDay != time.Sunday {
		t.Errorf("Wrong week start day: %v", cfg.WeekStartDay)
	}

	if cfg.SlotIncrement != 30 {
		t.Errorf("Wrong slot increment: %d", cfg.SlotIncrement)
	}

	if cfg.AutoRefresh {
		t.Error("Auto refresh should be disabled")
	}

	if cfg.RefreshRate != 120*time.Second {
		t.Errorf("Wrong refresh rate: %v", cfg.RefreshRate)
	}

	if cfg.CacheTTL != 2*time.Minute {
		t.Errorf("Wrong cache TTL: %v", cfg.CacheTTL)
	}

	if cfg.KeyBindings["quit"] != "q" {
		t.Errorf("Wrong quit binding: %s", cfg.KeyBindings["quit"])
	}

	if cfg.Colors["today"] != "cyan" {
		t.Errorf("Wrong today color: %s", cfg.Colors["today"])
	}
}

func TestGetDefaultEditor(t *testing.T) {
	// Save original env vars
	origEditor := os.Getenv("EDITOR")
	origVisual := os.Getenv("VISUAL")
	defer func() {
		os.Setenv("EDITOR", origEditor)
		os.Setenv("VISUAL", origVisual)
	}()

	// Test EDITOR env var
	os.Setenv("EDITOR", "nano")
	os.Setenv("VISUAL", "")
	editor := getDefaultEditor()
	if editor != "nano" {
		t.Errorf("Expected nano, got %s", editor)
	}

	// Test VISUAL env var
	os.Setenv("EDITOR", "")
	os.Setenv("VISUAL", "code")
	editor = getDefaultEditor()
	if editor != "code" {
		t.Errorf("Expected code, got %s", editor)
	}

	// Test default
	os.Setenv("EDITOR", "")
	os.Setenv("VISUAL", "")
	editor = getDefaultEditor()
	if editor != "vi" {
		t.Errorf("Expected vi, got %s", editor)
	}
}
