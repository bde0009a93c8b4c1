package ui

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/nordvpn-gui/cache"
	"github.com/yllada/nordvpn-gui/common"
	"github.com/yllada/nordvpn-gui/config"
	"github.com/yllada/nordvpn-gui/keyring"
	"github.com/yllada/nordvpn-gui/nordvpn"
)

// contextWithCommandTimeout returns a context for one query command.
func contextWithCommandTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), common.CommandTimeout)
}

// Application represents the main application
type Application struct {
	app     *gtk.Application
	window  *MainWindow
	client  *nordvpn.Client
	poller  *nordvpn.StatusPoller
	config  *config.Config
	cache   *cache.Store
	tokens  common.TokenStore
	tray    *TrayIndicator
	version string
}

// NewApplication creates a new application
func NewApplication(version string) (*Application, error) {
	app := gtk.NewApplication(common.AppID, gio.ApplicationFlagsNone)

	cfg, err := config.Load()
	if err != nil {
		common.LogWarn("failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	store, err := cache.Open()
	if err != nil {
		common.LogWarn("cache unavailable: %v", err)
		store = nil
	}
	if store != nil {
		go func() {
			ctx, cancel := contextWithCommandTimeout()
			defer cancel()
			if err := store.PruneHistory(ctx, common.HistoryRetention); err != nil {
				common.LogWarn("failed to prune connection history: %v", err)
			}
		}()
	}

	client := nordvpn.NewClient()

	application := &Application{
		app:     app,
		client:  client,
		poller:  nordvpn.NewStatusPoller(client),
		config:  cfg,
		cache:   store,
		tokens:  keyring.NewStore(),
		version: version,
	}

	app.ConnectActivate(application.onActivate)
	app.ConnectShutdown(application.onShutdown)

	return application, nil
}

// Run runs the application and returns the process exit code.
func (a *Application) Run() int {
	return a.app.Run(os.Args[:1])
}

// onActivate is called when the application is activated
func (a *Application) onActivate() {
	adw.Init()
	a.ApplyTheme(a.config.Theme)
	a.setupAppIcon()
	LoadStyles()

	a.window = NewMainWindow(a)
	a.window.Show()

	a.tray = NewTrayIndicator(a)
	go a.tray.Run()

	a.setupPoller()

	// Initial state load in the background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
		defer cancel()
		snap, err := a.client.Refresh(ctx)
		glib.IdleAdd(func() {
			if err != nil {
				common.LogWarn("initial refresh failed: %v", err)
			}
			a.window.Render(snap)
			a.tray.Render(snap)
		})
	}()
}

// onShutdown cleans up background resources.
func (a *Application) onShutdown() {
	a.poller.Stop()
	if a.cache != nil {
		a.cache.Close()
	}
}

// setupAppIcon sets up the application icon
func (a *Application) setupAppIcon() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	iconTheme := gtk.IconThemeGetForDisplay(display)
	if iconTheme == nil {
		return
	}

	// GTK4 looks for theme subdirectories (like "hicolor") inside
	// these paths
	if execPath, err := os.Executable(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(filepath.Dir(execPath), "assets", "icons"))
	}
	if cwd, err := os.Getwd(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(cwd, "assets", "icons"))
	}

	gtk.WindowSetDefaultIconName("nordvpn-gui")
}

// ApplyTheme applies the specified theme to the application.
// Supported values: "auto" (system default), "light", "dark"
func (a *Application) ApplyTheme(theme string) {
	manager := adw.StyleManagerGetDefault()
	if manager == nil {
		return
	}

	switch theme {
	case common.ThemeLight:
		manager.SetColorScheme(adw.ColorSchemeForceLight)
	case common.ThemeDark:
		manager.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		manager.SetColorScheme(adw.ColorSchemeDefault)
	}
}

// setupPoller wires the status poller to the window, the tray, and
// the notification hooks, then starts it.
func (a *Application) setupPoller() {
	a.poller.SetInterval(time.Duration(a.config.PollIntervalSeconds) * time.Second)

	a.poller.OnChange = func(snap nordvpn.SessionSnapshot) {
		glib.IdleAdd(func() {
			if a.window != nil {
				a.window.Render(snap)
			}
			if a.tray != nil {
				a.tray.Render(snap)
			}
		})

		if a.config.ShowNotifications && snap.Connection == nordvpn.StateConnected {
			NotifyConnected(snap.Status.Server.Label())
		}
	}

	a.poller.OnDrop = func(last nordvpn.ServerRef) {
		if a.config.ShowNotifications {
			NotifyError("Connection lost", "The connection to "+last.Label()+" dropped")
		}
		if a.config.ReconnectOnDrop {
			go a.reconnect(a.config.LastServer)
		}
	}

	a.poller.Start()
}

// reconnect re-establishes a dropped connection.
func (a *Application) reconnect(target string) {
	common.LogInfo("reconnecting after drop")
	ctx, cancel := context.WithTimeout(context.Background(), common.ConnectTimeout)
	defer cancel()

	status, err := a.client.Connect(ctx, target)
	glib.IdleAdd(func() {
		if a.window == nil {
			return
		}
		if err != nil {
			a.window.SetStatus("Reconnect failed")
			if a.config.ShowNotifications {
				NotifyError("Reconnect failed", err.Error())
			}
			return
		}
		a.window.SetStatus("Reconnected to " + status.Server.Label())
		a.window.Render(a.client.Session().Snapshot())
	})
}

// GetClient returns the nordvpn client.
func (a *Application) GetClient() *nordvpn.Client {
	return a.client
}

// GetConfig returns the configuration
func (a *Application) GetConfig() *config.Config {
	return a.config
}

// GetVersion returns the application version
func (a *Application) GetVersion() string {
	return a.version
}

// showWindow shows the main window
func (a *Application) showWindow() {
	if a.window != nil {
		a.window.window.Present()
	}
}

// Quit closes the application
func (a *Application) Quit() {
	a.app.Quit()
}

// Connect starts a connection in the background and updates the UI
// when it finishes. An empty target means quick connect.
func (a *Application) Connect(target string) {
	if a.window != nil {
		a.window.SetBusy(true)
		if target == "" {
			a.window.SetStatus("Connecting to the best server...")
		} else {
			a.window.SetStatus("Connecting to " + nordvpn.DisplayName(target) + "...")
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), common.ConnectTimeout)
		defer cancel()

		status, err := a.client.Connect(ctx, target)
		if err == nil {
			a.recordConnection(target, status)
			a.config.LastServer = target
			if saveErr := a.config.Save(); saveErr != nil {
				common.LogWarn("failed to save config: %v", saveErr)
			}
		}

		glib.IdleAdd(func() {
			if a.window == nil {
				return
			}
			a.window.SetBusy(false)
			if err != nil {
				a.window.ShowCommandError("Connection failed", err)
				return
			}
			a.window.SetStatus("Connected to " + status.Server.Label())
			snap := a.client.Session().Snapshot()
			a.window.Render(snap)
			if a.tray != nil {
				a.tray.Render(snap)
			}
			go a.loadRecentTargets()
			if a.config.ShowNotifications {
				NotifyConnected(status.Server.Label())
			}
		})
	}()
}

// Disconnect tears down the connection in the background.
func (a *Application) Disconnect() {
	if a.window != nil {
		a.window.SetBusy(true)
		a.window.SetStatus("Disconnecting...")
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), common.ConnectTimeout)
		defer cancel()

		_, err := a.client.Disconnect(ctx)

		glib.IdleAdd(func() {
			if a.window == nil {
				return
			}
			a.window.SetBusy(false)
			if err != nil {
				a.window.ShowCommandError("Disconnect failed", err)
				return
			}
			a.window.SetStatus("Disconnected")
			snap := a.client.Session().Snapshot()
			a.window.Render(snap)
			if a.tray != nil {
				a.tray.Render(snap)
			}
			if a.config.ShowNotifications {
				NotifyDisconnected()
			}
		})
	}()
}

// loadRecentTargets reads the connection history and publishes it to
// the tray's recent-connections entries.
func (a *Application) loadRecentTargets() {
	if a.cache == nil {
		return
	}

	ctx, cancel := contextWithCommandTimeout()
	defer cancel()

	targets, err := a.cache.RecentTargets(ctx, maxRecentItems)
	if err != nil {
		common.LogWarn("failed to load recent targets: %v", err)
		return
	}

	glib.IdleAdd(func() {
		if a.tray != nil {
			a.tray.SetRecent(targets)
		}
	})
}

func (a *Application) recordConnection(target string, status nordvpn.Status) {
	if a.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
	defer cancel()
	if err := a.cache.RecordConnection(ctx, target, status.Server.ID, status.Server.Country); err != nil {
		common.LogWarn("failed to record connection: %v", err)
	}
}
