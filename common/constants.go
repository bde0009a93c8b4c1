// Package common provides shared constants, types, and utilities
// used across the NordVPN GUI application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.nordvpngui.app"
	// AppName is the display name of the application.
	AppName = "NordVPN GUI"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "nordvpn-gui"
	// NordVPNBinary is the name of the wrapped command-line client.
	NordVPNBinary = "nordvpn"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	CacheFileName       = "cache.db"
	CredentialsFileName = ".credentials"
	LogFileName         = "nordvpn-gui.log"
)

// Default timeouts and intervals.
const (
	// CommandTimeout is the maximum time to wait for a query command
	// (status, countries, settings) to complete.
	CommandTimeout = 10 * time.Second
	// ConnectTimeout is the maximum time to wait for connect/disconnect.
	ConnectTimeout = 45 * time.Second
	// LoginPollInterval is how often to re-check the account state
	// while the browser login flow is pending.
	LoginPollInterval = 2 * time.Second
	// LoginTimeout bounds the whole browser login flow.
	LoginTimeout = 3 * time.Minute
	// StatusPollInterval is how often the poller re-reads `nordvpn status`.
	StatusPollInterval = 5 * time.Second
	// HistoryRetention is how long connection history entries are kept
	// before startup pruning removes them.
	HistoryRetention = 90 * 24 * time.Hour
)

// UI constants.
const (
	// DefaultWindowWidth is the default main window width.
	DefaultWindowWidth = 560
	// DefaultWindowHeight is the default main window height.
	DefaultWindowHeight = 640
	// DialogMargin is the standard margin for dialog content.
	DialogMargin = 24
	// TrayIconSize is the size of the system tray icon.
	TrayIconSize = 22
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)
