// Package ui provides the graphical user interface for NordVPN GUI.
// This file contains the system tray indicator functionality.
package ui

import (
	"fmt"
	"time"

	"fyne.io/systray"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/yllada/nordvpn-gui/common"
	"github.com/yllada/nordvpn-gui/nordvpn"
)

// Pre-generated icons for performance.
var (
	iconConnected    = GenerateConnectedIcon()
	iconDisconnected = GenerateDisconnectedIcon()
)

// maxRecentItems is how many recent-connection entries the tray menu
// shows.
const maxRecentItems = 3

// TrayIndicator manages the system tray icon and menu.
// It provides quick access to the VPN without opening the main window.
type TrayIndicator struct {
	app              *Application
	statusItem       *systray.MenuItem
	connectionInfo   *systray.MenuItem
	uptimeItem       *systray.MenuItem
	disconnectItem   *systray.MenuItem
	quickConnectItem *systray.MenuItem
	lastServerItem   *systray.MenuItem
	recentItems      []*systray.MenuItem
	recentTargets    []string
	connectedServer  string
	connectTime      time.Time
	uptimeTicker     *time.Ticker
	uptimeStop       chan bool
}

// NewTrayIndicator creates a new system tray indicator.
func NewTrayIndicator(app *Application) *TrayIndicator {
	return &TrayIndicator{
		app:        app,
		uptimeStop: make(chan bool),
	}
}

// Run starts the system tray indicator.
// This should be called from a goroutine as it blocks.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the systray is ready.
func (t *TrayIndicator) onReady() {
	systray.SetIcon(iconDisconnected)
	systray.SetTitle(common.AppName)
	systray.SetTooltip(common.AppName + " - Disconnected")

	// Status section
	t.statusItem = systray.AddMenuItem("○  Not Connected", "Current VPN status")
	t.statusItem.Disable()

	t.connectionInfo = systray.AddMenuItem("    IP: ---", "Connection details")
	t.connectionInfo.Disable()
	t.connectionInfo.Hide()

	t.uptimeItem = systray.AddMenuItem("    Uptime: --:--:--", "Connection duration")
	t.uptimeItem.Disable()
	t.uptimeItem.Hide()

	systray.AddSeparator()

	// Quick actions
	t.quickConnectItem = systray.AddMenuItem("Quick Connect", "Connect to the best server")
	go func() {
		for range t.quickConnectItem.ClickedCh {
			glib.IdleAdd(func() {
				t.app.Connect("")
			})
		}
	}()

	t.lastServerItem = systray.AddMenuItem("Reconnect Last", "Connect to the previous target")
	if t.app.config.LastServer == "" {
		t.lastServerItem.Hide()
	} else {
		t.lastServerItem.SetTitle("Connect: " + nordvpn.DisplayName(t.app.config.LastServer))
	}
	go func() {
		for range t.lastServerItem.ClickedCh {
			target := t.app.config.LastServer
			glib.IdleAdd(func() {
				t.app.Connect(target)
			})
		}
	}()

	t.recentItems = make([]*systray.MenuItem, maxRecentItems)
	for i := range t.recentItems {
		item := systray.AddMenuItem("", "Reconnect to a recent target")
		item.Hide()
		t.recentItems[i] = item

		idx := i
		go func() {
			for range item.ClickedCh {
				glib.IdleAdd(func() {
					if idx < len(t.recentTargets) {
						t.app.Connect(t.recentTargets[idx])
					}
				})
			}
		}()
	}
	go t.app.loadRecentTargets()

	t.disconnectItem = systray.AddMenuItem("Disconnect", "Disconnect from VPN")
	t.disconnectItem.Hide()
	go func() {
		for range t.disconnectItem.ClickedCh {
			glib.IdleAdd(func() {
				t.app.Disconnect()
			})
		}
	}()

	systray.AddSeparator()

	// App section
	showItem := systray.AddMenuItem("Open "+common.AppName, "Show main window")
	go func() {
		for range showItem.ClickedCh {
			glib.IdleAdd(func() {
				t.app.showWindow()
			})
		}
	}()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Close "+common.AppName)
	go func() {
		for range quitItem.ClickedCh {
			glib.IdleAdd(func() {
				t.app.Quit()
			})
			systray.Quit()
		}
	}()
}

// onExit is called when the systray is about to exit.
func (t *TrayIndicator) onExit() {
	t.stopUptimeCounter()
	common.LogDebug("tray indicator stopped")
}

// Render updates the tray from a session snapshot. Safe to call from
// the GTK thread; systray item updates are thread-safe.
func (t *TrayIndicator) Render(snap nordvpn.SessionSnapshot) {
	switch snap.Connection {
	case nordvpn.StateConnected:
		t.setConnected(snap.Status.Server.Label(), snap.Status.IP)
	default:
		t.setDisconnected()
	}

	if t.lastServerItem != nil {
		if t.app.config.LastServer == "" {
			t.lastServerItem.Hide()
		} else {
			t.lastServerItem.SetTitle("Connect: " + nordvpn.DisplayName(t.app.config.LastServer))
			t.lastServerItem.Show()
		}
	}
}

// SetRecent fills the recent-connection entries. Must be called from
// the GTK thread; the click handlers read the same slice there.
func (t *TrayIndicator) SetRecent(targets []string) {
	t.recentTargets = targets
	for i, item := range t.recentItems {
		if item == nil {
			continue
		}
		if i < len(targets) {
			item.SetTitle("Recent: " + nordvpn.DisplayName(targets[i]))
			item.Show()
		} else {
			item.Hide()
		}
	}
}

// setConnected updates the tray to show connected state.
func (t *TrayIndicator) setConnected(serverLabel, ip string) {
	if t.connectedServer == serverLabel {
		return
	}

	systray.SetIcon(iconConnected)
	systray.SetTooltip(fmt.Sprintf("%s - Connected to %s", common.AppName, serverLabel))
	t.connectedServer = serverLabel
	t.connectTime = time.Now()

	if t.statusItem != nil {
		t.statusItem.SetTitle("●  Connected: " + serverLabel)
	}
	if t.connectionInfo != nil {
		if ip != "" {
			t.connectionInfo.SetTitle("    IP: " + ip)
		} else {
			t.connectionInfo.SetTitle("    Secure Connection")
		}
		t.connectionInfo.Show()
	}
	if t.uptimeItem != nil {
		t.uptimeItem.SetTitle("    Uptime: 00:00:00")
		t.uptimeItem.Show()
		t.startUptimeCounter()
	}
	if t.disconnectItem != nil {
		t.disconnectItem.Show()
	}
	if t.quickConnectItem != nil {
		t.quickConnectItem.Hide()
	}
}

// setDisconnected updates the tray to show disconnected state.
func (t *TrayIndicator) setDisconnected() {
	if t.connectedServer == "" && t.statusItem != nil {
		return
	}

	systray.SetIcon(iconDisconnected)
	systray.SetTooltip(common.AppName + " - Disconnected")
	t.connectedServer = ""

	if t.statusItem != nil {
		t.statusItem.SetTitle("○  Not Connected")
	}
	if t.connectionInfo != nil {
		t.connectionInfo.Hide()
	}
	if t.uptimeItem != nil {
		t.uptimeItem.Hide()
		t.stopUptimeCounter()
	}
	if t.disconnectItem != nil {
		t.disconnectItem.Hide()
	}
	if t.quickConnectItem != nil {
		t.quickConnectItem.Show()
	}
}

// startUptimeCounter starts the uptime display ticker.
func (t *TrayIndicator) startUptimeCounter() {
	t.stopUptimeCounter() // Stop any existing ticker

	t.uptimeTicker = time.NewTicker(1 * time.Second)
	go func() {
		for {
			select {
			case <-t.uptimeTicker.C:
				uptime := time.Since(t.connectTime)
				hours := int(uptime.Hours())
				minutes := int(uptime.Minutes()) % 60
				seconds := int(uptime.Seconds()) % 60
				if t.uptimeItem != nil {
					t.uptimeItem.SetTitle(fmt.Sprintf("    Uptime: %02d:%02d:%02d", hours, minutes, seconds))
				}
			case <-t.uptimeStop:
				return
			}
		}
	}()
}

// stopUptimeCounter stops the uptime display ticker.
func (t *TrayIndicator) stopUptimeCounter() {
	if t.uptimeTicker != nil {
		t.uptimeTicker.Stop()
		t.uptimeTicker = nil
	}
	// Non-blocking send to stop goroutine
	select {
	case t.uptimeStop <- true:
	default:
	}
}
