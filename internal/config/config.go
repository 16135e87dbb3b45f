package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Account settings
	AccountsFile  string
	BridgeCommand string
	Editor        string

	// Display settings
	WeekStartDay  time.Weekday
	SlotIncrement int // minutes per row in week and day views
	TimeFormat    string
	DateFormat    string

	// UI settings
	Colors      map[string]string
	KeyBindings map[string]string
	StartupView string

	// Behavior settings
	AutoRefresh   bool
	RefreshRate   time.Duration
	ConfirmDelete bool
	WrapText      bool

	// Cache settings
	PreloadDays int
	CacheTTL    time.Duration
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		AccountsFile:  filepath.Join(home, ".config", "skedge", "accounts.yaml"),
		BridgeCommand: "skedge-bridge",
		Editor:        getDefaultEditor(),

		WeekStartDay:  time.Monday,
		SlotIncrement: 60,
		TimeFormat:    "15:04",
		DateFormat:    "Jan 2, 2006",

		Colors: map[string]string{
			"normal":   "default",
			"today":    "yellow",
			"selected": "reverse",
			"weekend":  "blue",
			"event":    "green",
			"meeting":  "cyan",
			"ghost":    "magenta",
			"header":   "bold",
		},

		KeyBindings: map[string]string{
			"quit":         "q",
			"help":         "?",
			"today":        "t",
			"refresh":      "r",
			"new_event":    "n",
			"edit_event":   "e",
			"delete_event": "x",
			"meeting_link": "M",
			"next_day":     "l",
			"prev_day":     "h",
			"next_week":    "j",
			"prev_week":    "k",
			"next_month":   ">",
			"prev_month":   "<",
			"goto_date":    "g",
			"search":       "/",
			"month_view":   "m",
			"week_view":    "w",
			"day_view":     "d",
		},

		StartupView:   "month",
		AutoRefresh:   true,
		RefreshRate:   30 * time.Second,
		ConfirmDelete: true,
		WrapText:      true,

		PreloadDays: 30,
		CacheTTL:    5 * time.Minute,
	}
}

func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	// Try multiple config file locations
	configPaths := []string{
		os.Getenv("SKEDGE_CONFIG"),
		filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "skedge", "skedgerc"),
		filepath.Join(os.Getenv("HOME"), ".config", "skedge", "skedgerc"),
		filepath.Join(os.Getenv("HOME"), ".skedgerc"),
	}

	for _, path := range configPaths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err == nil {
			if err := config.loadFromFile(path); err != nil {
				return nil, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			break
		}
	}

	return config, nil
}

// LoadConfigFile loads defaults overlaid with one explicit config file,
// skipping the search path.
func LoadConfigFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.loadFromFile(path); err != nil {
		return nil, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := c.parseLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

func (c *Config) parseLine(line string) error {
	// Handle set commands: set variable value
	setRe := regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.setVariable(matches[1], matches[2])
	}

	// Handle bind commands: bind key action
	bindRe := regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		c.KeyBindings[matches[2]] = matches[1]
		return nil
	}

	// Handle color commands: color element color_spec
	colorRe := regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = matches[2]
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

func (c *Config) setVariable(name, value string) error {
	// Remove quotes if present
	value = strings.Trim(value, `"'`)

	switch name {
	case "accounts_file":
		if strings.HasPrefix(value, "~/") {
			home, _ := os.UserHomeDir()
			value = filepath.Join(home, value[2:])
		}
		c.AccountsFile = value

	case "bridge_command":
		c.BridgeCommand = value

	case "editor":
		c.Editor = value

	case "week_start_day":
		switch strings.ToLower(value) {
		case "sunday", "sun", "0":
			c.WeekStartDay = time.Sunday
		case "monday", "mon", "1":
			c.WeekStartDay = time.Monday
		default:
			return fmt.Errorf("invalid week_start_day: %s", value)
		}

	case "slot_increment":
		minutes, err := strconv.Atoi(value)
		if err != nil || (minutes != 30 && minutes != 60) {
			return fmt.Errorf("invalid slot_increment: %s (want 30 or 60)", value)
		}
		c.SlotIncrement = minutes

	case "time_format":
		c.TimeFormat = value

	case "date_format":
		c.DateFormat = value

	case "startup_view":
		switch value {
		case "month", "week", "day":
			c.StartupView = value
		default:
			return fmt.Errorf("invalid startup_view: %s", value)
		}

	case "auto_refresh":
		c.AutoRefresh = strings.ToLower(value) == "true" || value == "1"

	case "refresh_rate":
		rate, err := time.ParseDuration(value)
		if err != nil {
			// Try parsing as seconds
			if seconds, err2 := strconv.Atoi(value); err2 == nil {
				rate = time.Duration(seconds) * time.Second
			} else {
				return fmt.Errorf("invalid refresh_rate: %s", value)
			}
		}
		c.RefreshRate = rate

	case "confirm_delete":
		c.ConfirmDelete = strings.ToLower(value) == "true" || value == "1"

	case "wrap_text":
		c.WrapText = strings.ToLower(value) == "true" || value == "1"

	case "preload_days":
		days, err := strconv.Atoi(value)
		if err != nil || days < 0 {
			return fmt.Errorf("invalid preload_days: %s", value)
		}
		c.PreloadDays = days

	case "cache_ttl":
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid cache_ttl: %s", value)
		}
		c.CacheTTL = ttl

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

func getDefaultEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	return "vi"
}
