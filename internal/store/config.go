package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the floor settings of the spa. Values come from
// <ConfigDir>/config.yaml and ROSTER_* environment variables.
type Config struct {
	DayStart    string `json:"dayStart" mapstructure:"dayStart"`
	DayEnd      string `json:"dayEnd" mapstructure:"dayEnd"`
	SlotMinutes int    `json:"slotMinutes" mapstructure:"slotMinutes"`
	WindowDays  int    `json:"windowDays" mapstructure:"windowDays"`
	// DebugLog is a file path; empty disables logging.
	DebugLog string `json:"debugLog,omitempty" mapstructure:"debugLog"`
}

func DefaultConfig() Config {
	return Config{DayStart: "09:00", DayEnd: "17:00", SlotMinutes: 15, WindowDays: 3}
}

// ConfigDir is ~/.roster unless ROSTER_CONFIG_DIR overrides it.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("ROSTER_CONFIG_DIR")); v != "" {
		return filepath.Clean(v), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".roster"), nil
}

// LoadConfig reads the config. A missing file is not an error.
func LoadConfig() (Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return Config{}, err
	}
	return loadConfigFrom(dir)
}

func loadConfigFrom(dir string) (Config, error) {
	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("dayStart", def.DayStart)
	v.SetDefault("dayEnd", def.DayEnd)
	v.SetDefault("slotMinutes", def.SlotMinutes)
	v.SetDefault("windowDays", def.WindowDays)
	v.SetDefault("debugLog", "")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		DayStart:    strings.TrimSpace(v.GetString("dayStart")),
		DayEnd:      strings.TrimSpace(v.GetString("dayEnd")),
		SlotMinutes: v.GetInt("slotMinutes"),
		WindowDays:  v.GetInt("windowDays"),
		DebugLog:    strings.TrimSpace(v.GetString("debugLog")),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	start, err := ParseClock(c.DayStart)
	if err != nil {
		return fmt.Errorf("dayStart: %w", err)
	}
	end, err := ParseClock(c.DayEnd)
	if err != nil {
		return fmt.Errorf("dayEnd: %w", err)
	}
	if end <= start {
		return errors.New("dayEnd must be after dayStart")
	}
	if c.SlotMinutes <= 0 || c.SlotMinutes > 60 {
		return fmt.Errorf("slotMinutes must be within 1..60 (got %d)", c.SlotMinutes)
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("windowDays must be positive (got %d)", c.WindowDays)
	}
	return nil
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q (expected HH:MM)", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
