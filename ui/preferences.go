// Package ui provides the graphical user interface for NordVPN GUI.
// This file contains the PreferencesDialog component for application
// and client settings. Designed following GTK4/libadwaita HIG.
package ui

import (
	"strconv"
	"time"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/nordvpn-gui/common"
	"github.com/yllada/nordvpn-gui/config"
	"github.com/yllada/nordvpn-gui/nordvpn"
)

// PreferencesDialog represents the preferences dialog. The
// application section edits the local config file; the VPN section
// drives `nordvpn set` directly, so those switches apply immediately.
type PreferencesDialog struct {
	window          *gtk.Window
	mainWindow      *MainWindow
	config          *config.Config
	minimizeSwitch  *gtk.Switch
	notifySwitch    *gtk.Switch
	reconnectSwitch *gtk.Switch
	themeDropDown   *gtk.DropDown
	themeIDs        []string
	pollSpin        *gtk.SpinButton
	vpnCard         *gtk.Box
	vpnSwitches     map[string]*gtk.Switch
	vpnGuard        *toggleGuard
}

// toggleGuard remembers the last known value of each client toggle.
// Reverting a switch with SetActive re-emits state-set, so the handler
// must be able to tell a user change from its own programmatic one.
type toggleGuard struct {
	known map[string]bool
}

func newToggleGuard() *toggleGuard {
	return &toggleGuard{known: make(map[string]bool)}
}

// ShouldApply reports whether a state-set represents a user change.
func (g *toggleGuard) ShouldApply(cliName string, state bool) bool {
	known, ok := g.known[cliName]
	return !ok || known != state
}

// Record stores the confirmed value of a toggle.
func (g *toggleGuard) Record(cliName string, state bool) {
	g.known[cliName] = state
}

// NewPreferencesDialog creates a new preferences dialog.
func NewPreferencesDialog(mainWindow *MainWindow) *PreferencesDialog {
	pd := &PreferencesDialog{
		mainWindow:  mainWindow,
		config:      mainWindow.app.config,
		vpnSwitches: make(map[string]*gtk.Switch),
		vpnGuard:    newToggleGuard(),
	}

	pd.build()
	pd.loadVPNSettings()
	return pd
}

// build constructs the dialog UI.
func (pd *PreferencesDialog) build() {
	pd.window = gtk.NewWindow()
	pd.window.SetTitle("Settings")
	pd.window.SetTransientFor(&pd.mainWindow.window.Window)
	pd.window.SetModal(true)
	pd.window.SetDefaultSize(500, 600)
	pd.window.SetResizable(false)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 20)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(16)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)

	// Application section
	appSection := pd.createSection("Application", "preferences-system-symbolic")
	appCard := pd.createCard()

	pd.minimizeSwitch = gtk.NewSwitch()
	pd.minimizeSwitch.SetActive(pd.config.MinimizeToTray)
	pd.minimizeSwitch.SetVAlign(gtk.AlignCenter)
	appCard.Append(pd.createSettingRow(
		"Minimize to Tray",
		"Keep running in the system tray when the window is closed",
		pd.minimizeSwitch,
	))

	appCard.Append(pd.createSeparator())

	pd.notifySwitch = gtk.NewSwitch()
	pd.notifySwitch.SetActive(pd.config.ShowNotifications)
	pd.notifySwitch.SetVAlign(gtk.AlignCenter)
	appCard.Append(pd.createSettingRow(
		"Connection Alerts",
		"Show notifications when the VPN connects or disconnects",
		pd.notifySwitch,
	))

	appCard.Append(pd.createSeparator())

	pd.reconnectSwitch = gtk.NewSwitch()
	pd.reconnectSwitch.SetActive(pd.config.ReconnectOnDrop)
	pd.reconnectSwitch.SetVAlign(gtk.AlignCenter)
	appCard.Append(pd.createSettingRow(
		"Reconnect on Drop",
		"Reconnect to the last server if the connection is lost",
		pd.reconnectSwitch,
	))

	appCard.Append(pd.createSeparator())

	adjustment := gtk.NewAdjustment(float64(pd.config.PollIntervalSeconds), 1, 120, 1, 5, 0)
	pd.pollSpin = gtk.NewSpinButton(adjustment, 1, 0)
	pd.pollSpin.SetVAlign(gtk.AlignCenter)
	appCard.Append(pd.createSettingRow(
		"Status Poll Interval",
		"Seconds between connection status checks",
		pd.pollSpin,
	))

	appSection.Append(appCard)
	mainBox.Append(appSection)

	// Appearance section
	appearSection := pd.createSection("Appearance", "preferences-desktop-theme-symbolic")
	appearCard := pd.createCard()

	pd.themeIDs = []string{common.ThemeAuto, common.ThemeLight, common.ThemeDark}
	themeModel := gtk.NewStringList([]string{"System Default", "Light", "Dark"})
	pd.themeDropDown = gtk.NewDropDown(themeModel, nil)
	pd.themeDropDown.SetSelected(pd.findThemeIndex(pd.config.Theme))
	pd.themeDropDown.SetVAlign(gtk.AlignCenter)
	pd.themeDropDown.AddCSSClass("flat")
	appearCard.Append(pd.createSettingRow(
		"Theme",
		"Choose the visual appearance of the application",
		pd.themeDropDown,
	))

	appearSection.Append(appearCard)
	mainBox.Append(appearSection)

	// VPN section, populated asynchronously from `nordvpn settings`
	vpnSection := pd.createSection("VPN", "network-vpn-symbolic")
	pd.vpnCard = pd.createCard()

	loadingLabel := gtk.NewLabel("Loading client settings...")
	loadingLabel.AddCSSClass("dim-label")
	loadingLabel.SetMarginTop(14)
	loadingLabel.SetMarginBottom(14)
	pd.vpnCard.Append(loadingLabel)

	vpnSection.Append(pd.vpnCard)
	mainBox.Append(vpnSection)

	scrolled.SetChild(mainBox)
	rootBox.Append(scrolled)

	// Action buttons
	buttonBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBar.SetHAlign(gtk.AlignEnd)
	buttonBar.SetMarginTop(16)
	buttonBar.SetMarginBottom(20)
	buttonBar.SetMarginStart(common.DialogMargin)
	buttonBar.SetMarginEnd(common.DialogMargin)

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.ConnectClicked(func() {
		pd.window.Close()
	})
	buttonBar.Append(cancelBtn)

	saveBtn := gtk.NewButtonWithLabel("Save")
	saveBtn.AddCSSClass("suggested-action")
	saveBtn.ConnectClicked(func() {
		pd.savePreferences()
		pd.window.Close()
	})
	buttonBar.Append(saveBtn)

	rootBox.Append(buttonBar)

	pd.window.SetChild(rootBox)
}

// loadVPNSettings fetches the client toggles and builds their rows.
func (pd *PreferencesDialog) loadVPNSettings() {
	go func() {
		ctx, cancel := contextWithCommandTimeout()
		defer cancel()

		toggles, err := pd.mainWindow.app.client.Settings(ctx)

		glib.IdleAdd(func() {
			pd.clearVPNCard()
			if err != nil {
				errLabel := gtk.NewLabel("Client settings unavailable")
				errLabel.AddCSSClass("dim-label")
				errLabel.SetMarginTop(14)
				errLabel.SetMarginBottom(14)
				pd.vpnCard.Append(errLabel)
				common.LogWarn("failed to load client settings: %v", err)
				return
			}
			pd.buildVPNRows(toggles)
		})
	}()
}

func (pd *PreferencesDialog) clearVPNCard() {
	for child := pd.vpnCard.FirstChild(); child != nil; child = pd.vpnCard.FirstChild() {
		pd.vpnCard.Remove(child)
	}
	pd.vpnSwitches = make(map[string]*gtk.Switch)
	pd.vpnGuard = newToggleGuard()
}

func (pd *PreferencesDialog) buildVPNRows(toggles []nordvpn.SettingToggle) {
	for i, toggle := range toggles {
		if i > 0 {
			pd.vpnCard.Append(pd.createSeparator())
		}

		sw := gtk.NewSwitch()
		sw.SetActive(toggle.Enabled)
		sw.SetVAlign(gtk.AlignCenter)
		pd.vpnSwitches[toggle.CLIName] = sw
		pd.vpnGuard.Record(toggle.CLIName, toggle.Enabled)

		cliName := toggle.CLIName
		sw.ConnectStateSet(func(state bool) bool {
			if pd.vpnGuard.ShouldApply(cliName, state) {
				pd.applyVPNSetting(cliName, state)
			}
			return false
		})

		pd.vpnCard.Append(pd.createSettingRow(
			toggle.Name,
			"Applied immediately via the nordvpn client",
			sw,
		))
	}
}

// applyVPNSetting runs `nordvpn set` and reverts the switch if it
// fails.
func (pd *PreferencesDialog) applyVPNSetting(cliName string, enabled bool) {
	go func() {
		ctx, cancel := contextWithCommandTimeout()
		defer cancel()

		err := pd.mainWindow.app.client.SetSetting(ctx, cliName, enabled)

		glib.IdleAdd(func() {
			if err != nil {
				common.LogWarn("failed to set %s: %v", cliName, err)
				// The guard still holds the old value, so the
				// state-set this revert emits is filtered out.
				if sw, ok := pd.vpnSwitches[cliName]; ok {
					sw.SetActive(!enabled)
				}
				pd.mainWindow.SetStatus("Failed to change " + cliName)
				return
			}
			pd.vpnGuard.Record(cliName, enabled)
			pd.mainWindow.SetStatus("Setting applied")
		})
	}()
}

// createSection creates a section with icon and title.
func (pd *PreferencesDialog) createSection(title string, iconName string) *gtk.Box {
	section := gtk.NewBox(gtk.OrientationVertical, 8)

	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 8)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(18)
	icon.AddCSSClass("dim-label")
	headerBox.Append(icon)

	label := gtk.NewLabel(title)
	label.SetXAlign(0)
	label.AddCSSClass("heading")
	label.AddCSSClass("dim-label")
	headerBox.Append(label)

	section.Append(headerBox)

	return section
}

// createCard creates a styled card container for settings.
func (pd *PreferencesDialog) createCard() *gtk.Box {
	card := gtk.NewBox(gtk.OrientationVertical, 0)
	card.AddCSSClass("card")
	card.AddCSSClass("preferences-card")
	return card
}

// createSettingRow creates a row with title, description, and widget.
func (pd *PreferencesDialog) createSettingRow(title string, description string, widget gtk.Widgetter) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(14)
	row.SetMarginBottom(14)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)

	textBox := gtk.NewBox(gtk.OrientationVertical, 4)
	textBox.SetHExpand(true)

	titleLabel := gtk.NewLabel(title)
	titleLabel.SetXAlign(0)
	titleLabel.AddCSSClass("settings-title")
	textBox.Append(titleLabel)

	descLabel := gtk.NewLabel(description)
	descLabel.SetXAlign(0)
	descLabel.AddCSSClass("dim-label")
	descLabel.AddCSSClass("caption")
	descLabel.SetWrap(true)
	descLabel.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
	textBox.Append(descLabel)

	row.Append(textBox)
	row.Append(widget)

	return row
}

// createSeparator creates a styled separator for cards.
func (pd *PreferencesDialog) createSeparator() *gtk.Separator {
	sep := gtk.NewSeparator(gtk.OrientationHorizontal)
	sep.SetMarginStart(16)
	sep.SetMarginEnd(16)
	return sep
}

// findThemeIndex returns the index of a theme ID, or 0 if not found.
func (pd *PreferencesDialog) findThemeIndex(themeID string) uint {
	for i, id := range pd.themeIDs {
		if id == themeID {
			return uint(i)
		}
	}
	return 0
}

// savePreferences saves the application preferences to the config
// file and applies them.
func (pd *PreferencesDialog) savePreferences() {
	pd.config.MinimizeToTray = pd.minimizeSwitch.Active()
	pd.config.ShowNotifications = pd.notifySwitch.Active()
	pd.config.ReconnectOnDrop = pd.reconnectSwitch.Active()
	pd.config.PollIntervalSeconds = int(pd.pollSpin.Value())

	themeIdx := pd.themeDropDown.Selected()
	if int(themeIdx) < len(pd.themeIDs) {
		pd.config.Theme = pd.themeIDs[themeIdx]
	}

	if err := pd.config.Save(); err != nil {
		pd.mainWindow.showError("Error", "Could not save preferences: "+err.Error())
		return
	}

	pd.mainWindow.app.ApplyTheme(pd.config.Theme)
	pd.mainWindow.window.SetHideOnClose(pd.config.MinimizeToTray)
	pd.mainWindow.app.poller.Stop()
	pd.mainWindow.app.poller.SetInterval(
		time.Duration(pd.config.PollIntervalSeconds) * time.Second)
	pd.mainWindow.app.poller.Start()

	pd.mainWindow.SetStatus("Settings saved (poll every " +
		strconv.Itoa(pd.config.PollIntervalSeconds) + "s)")
}

// Show displays the preferences dialog.
func (pd *PreferencesDialog) Show() {
	pd.window.Show()
}
