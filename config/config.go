// Package config handles loading and saving the application
// configuration as YAML under ~/.config/nordvpn-gui/.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yllada/nordvpn-gui/common"
)

// Config holds the user-facing application settings. VPN behavior
// itself (kill switch, protocol, etc.) lives in the nordvpn client;
// this only covers the GUI.
type Config struct {
	// Theme selects the color scheme: auto, light, or dark.
	Theme string `yaml:"theme"`
	// ShowNotifications enables desktop notifications on state
	// changes.
	ShowNotifications bool `yaml:"show_notifications"`
	// MinimizeToTray keeps the application in the system tray when
	// the window is closed.
	MinimizeToTray bool `yaml:"minimize_to_tray"`
	// PollIntervalSeconds is how often the status poller re-reads
	// the connection state.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	// ReconnectOnDrop re-connects to the last server when the
	// connection drops unexpectedly.
	ReconnectOnDrop bool `yaml:"reconnect_on_drop"`
	// LastServer is the most recent connect target, used for
	// quick-connect and reconnection.
	LastServer string `yaml:"last_server,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Theme:               common.ThemeAuto,
		ShowNotifications:   true,
		MinimizeToTray:      true,
		PollIntervalSeconds: 5,
		ReconnectOnDrop:     false,
	}
}

// configPath returns the full path to the config file.
func configPath() (string, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.ConfigFileName), nil
}

// Load reads the configuration from disk. A missing file is not an
// error; defaults are returned and written on the next Save.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			common.LogDebug("no config file, using defaults")
			return DefaultConfig(), nil
		}
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}

	return Parse(data)
}

// Parse decodes YAML configuration data. Unknown keys are rejected so
// typos surface instead of silently doing nothing.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks field values and normalizes where possible.
func (c *Config) validate() error {
	switch c.Theme {
	case common.ThemeAuto, common.ThemeLight, common.ThemeDark:
	case "":
		c.Theme = common.ThemeAuto
	default:
		return common.WrapError(common.ErrConfigLoad,
			fmt.Sprintf("invalid theme %q", c.Theme))
	}

	if c.PollIntervalSeconds < 1 {
		c.PollIntervalSeconds = 5
	}
	return nil
}

// Save writes the configuration to disk with owner-only permissions.
func (c *Config) Save() error {
	if err := c.validate(); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return common.WrapError(common.ErrConfigSave, err.Error())
	}

	common.LogDebug("config saved to %s", path)
	return nil
}
