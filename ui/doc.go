// Package ui provides the GTK4 graphical interface for NordVPN GUI.
//
// The interface is a thin shell over the nordvpn package: every button
// runs a client command in a background goroutine and the widgets
// re-render from the resulting session snapshot via glib.IdleAdd. The
// UI never holds connection state of its own.
//
// Components:
//
//   - Application: GTK application lifecycle, theme, status poller
//   - MainWindow: status card, country list, and menu
//   - CountryList: searchable list of connect targets
//   - PreferencesDialog: application and client settings
//   - LoginDialog: browser and access-token login flows
//   - TrayIndicator: system tray icon and quick actions
package ui
