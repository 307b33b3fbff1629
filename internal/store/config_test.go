package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ROSTER_CONFIG_DIR", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_ReadsYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROSTER_CONFIG_DIR", dir)
	yaml := "dayStart: \"10:00\"\nslotMinutes: 30\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ROSTER_WINDOWDAYS", "5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DayStart != "10:00" || cfg.SlotMinutes != 30 || cfg.DayEnd != "17:00" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.WindowDays != 5 {
		t.Fatalf("expected env override for windowDays, got %d", cfg.WindowDays)
	}
}

func TestLoadConfig_RejectsInvalidHours(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROSTER_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("dayStart: \"18:00\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected dayEnd before dayStart to fail")
	}
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("09:45")
	if err != nil || d != 9*time.Hour+45*time.Minute {
		t.Fatalf("unexpected: %v %v", d, err)
	}
	if _, err := ParseClock("9am"); err == nil {
		t.Fatalf("expected error")
	}
}
