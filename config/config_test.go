package config

import (
	"errors"
	"testing"

	"github.com/yllada/nordvpn-gui/common"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Theme != common.ThemeAuto {
		t.Errorf("Theme = %q, want %q", cfg.Theme, common.ThemeAuto)
	}
	if !cfg.ShowNotifications {
		t.Error("ShowNotifications should default to true")
	}
	if cfg.PollIntervalSeconds != 5 {
		t.Errorf("PollIntervalSeconds = %d, want 5", cfg.PollIntervalSeconds)
	}
}

func TestParse(t *testing.T) {
	data := []byte("theme: dark\nshow_notifications: false\npoll_interval_seconds: 10\nlast_server: Germany\n")

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Theme != common.ThemeDark {
		t.Errorf("Theme = %q, want dark", cfg.Theme)
	}
	if cfg.ShowNotifications {
		t.Error("ShowNotifications should be false")
	}
	if cfg.PollIntervalSeconds != 10 {
		t.Errorf("PollIntervalSeconds = %d, want 10", cfg.PollIntervalSeconds)
	}
	if cfg.LastServer != "Germany" {
		t.Errorf("LastServer = %q, want Germany", cfg.LastServer)
	}
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("theme: light\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Theme != common.ThemeLight {
		t.Errorf("Theme = %q, want light", cfg.Theme)
	}
	if cfg.PollIntervalSeconds != 5 {
		t.Errorf("PollIntervalSeconds = %d, want default 5", cfg.PollIntervalSeconds)
	}
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("them: dark\n"))
	if !errors.Is(err, common.ErrConfigLoad) {
		t.Errorf("error = %v, want ErrConfigLoad for unknown key", err)
	}
}

func TestParseInvalidTheme(t *testing.T) {
	_, err := Parse([]byte("theme: neon\n"))
	if !errors.Is(err, common.ErrConfigLoad) {
		t.Errorf("error = %v, want ErrConfigLoad for invalid theme", err)
	}
}

func TestValidateNormalizesPollInterval(t *testing.T) {
	cfg, err := Parse([]byte("poll_interval_seconds: 0\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.PollIntervalSeconds != 5 {
		t.Errorf("PollIntervalSeconds = %d, want normalized 5", cfg.PollIntervalSeconds)
	}
}
