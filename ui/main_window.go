package ui

import (
	"errors"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/nordvpn-gui/common"
	"github.com/yllada/nordvpn-gui/nordvpn"
)

// MainWindow represents the main application window.
type MainWindow struct {
	app       *Application
	window    *gtk.ApplicationWindow
	headerBar *gtk.HeaderBar

	statusCard     *gtk.Box
	statusIcon     *gtk.Image
	statusTitle    *gtk.Label
	statusDetail   *gtk.Label
	quickBtn       *gtk.Button
	disconnectBtn  *gtk.Button
	loginBanner    *gtk.Box
	loginBtn       *gtk.Button
	countryList    *CountryList
	statusBar      *gtk.Box
	statusLabel    *gtk.Label
	busySpinner    *gtk.Spinner
}

// NewMainWindow creates a new main window.
func NewMainWindow(app *Application) *MainWindow {
	mw := &MainWindow{
		app: app,
	}

	mw.window = gtk.NewApplicationWindow(app.app)
	mw.window.SetTitle(common.AppName)
	mw.window.SetDefaultSize(common.DefaultWindowWidth, common.DefaultWindowHeight)
	mw.window.SetIconName("nordvpn-gui")

	// Clicking X hides the window, app continues running in the tray
	mw.window.SetHideOnClose(app.config.MinimizeToTray)

	mw.createLayout()

	return mw
}

// createLayout creates the window layout.
func (mw *MainWindow) createLayout() {
	mw.headerBar = gtk.NewHeaderBar()

	mw.quickBtn = gtk.NewButton()
	mw.quickBtn.SetIconName("network-vpn-symbolic")
	mw.quickBtn.SetTooltipText("Quick connect to the best server")
	mw.quickBtn.ConnectClicked(func() {
		mw.app.Connect("")
	})
	mw.headerBar.PackStart(mw.quickBtn)

	mw.disconnectBtn = gtk.NewButton()
	mw.disconnectBtn.SetIconName("process-stop-symbolic")
	mw.disconnectBtn.SetTooltipText("Disconnect")
	mw.disconnectBtn.SetVisible(false)
	mw.disconnectBtn.ConnectClicked(func() {
		mw.app.Disconnect()
	})
	mw.headerBar.PackStart(mw.disconnectBtn)

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetTooltipText("Menu")
	mw.headerBar.PackEnd(menuButton)

	menuButton.SetMenuModel(mw.createMenu())
	mw.window.SetTitlebar(mw.headerBar)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 0)

	// Login banner, shown only when logged out
	mw.createLoginBanner()
	mainBox.Append(mw.loginBanner)

	// Status card
	mw.createStatusCard()
	mainBox.Append(mw.statusCard)

	// Country list with search
	mw.countryList = NewCountryList(mw)
	mainBox.Append(mw.countryList.GetWidget())

	// Status bar
	mw.createStatusBar()
	mainBox.Append(mw.statusBar)

	mw.window.SetChild(mainBox)

	mw.countryList.Load()
}

// createMenu creates the application menu.
func (mw *MainWindow) createMenu() *gio.Menu {
	menu := gio.NewMenu()

	accountSection := gio.NewMenu()
	accountSection.Append("Log In...", "app.login")
	accountSection.Append("Log Out", "app.logout")
	menu.AppendSection("", &accountSection.MenuModel)

	settingsSection := gio.NewMenu()
	settingsSection.Append("Refresh", "app.refresh")
	settingsSection.Append("Preferences", "app.preferences")
	menu.AppendSection("", &settingsSection.MenuModel)

	appSection := gio.NewMenu()
	appSection.Append("About", "app.about")
	appSection.Append("Quit", "app.quit")
	menu.AppendSection("", &appSection.MenuModel)

	mw.setupActions()

	return menu
}

// setupActions configures menu actions.
func (mw *MainWindow) setupActions() {
	// Preferences action (Ctrl+,)
	preferencesAction := gio.NewSimpleAction("preferences", nil)
	preferencesAction.ConnectActivate(func(_ *glib.Variant) {
		mw.onPreferences()
	})
	mw.app.app.AddAction(preferencesAction)
	mw.app.app.SetAccelsForAction("app.preferences", []string{"<Control>comma"})

	// Login action
	loginAction := gio.NewSimpleAction("login", nil)
	loginAction.ConnectActivate(func(_ *glib.Variant) {
		mw.onLogin()
	})
	mw.app.app.AddAction(loginAction)

	// Logout action
	logoutAction := gio.NewSimpleAction("logout", nil)
	logoutAction.ConnectActivate(func(_ *glib.Variant) {
		mw.onLogout()
	})
	mw.app.app.AddAction(logoutAction)

	// Refresh action (F5)
	refreshAction := gio.NewSimpleAction("refresh", nil)
	refreshAction.ConnectActivate(func(_ *glib.Variant) {
		mw.onRefresh()
	})
	mw.app.app.AddAction(refreshAction)
	mw.app.app.SetAccelsForAction("app.refresh", []string{"F5"})

	// About action
	aboutAction := gio.NewSimpleAction("about", nil)
	aboutAction.ConnectActivate(func(_ *glib.Variant) {
		mw.onAbout()
	})
	mw.app.app.AddAction(aboutAction)

	// Quit action (Ctrl+Q)
	quitAction := gio.NewSimpleAction("quit", nil)
	quitAction.ConnectActivate(func(_ *glib.Variant) {
		mw.app.Quit()
	})
	mw.app.app.AddAction(quitAction)
	mw.app.app.SetAccelsForAction("app.quit", []string{"<Control>q"})
}

// createLoginBanner builds the logged-out hint bar.
func (mw *MainWindow) createLoginBanner() {
	mw.loginBanner = gtk.NewBox(gtk.OrientationHorizontal, 12)
	mw.loginBanner.AddCSSClass("login-banner")
	mw.loginBanner.SetMarginTop(12)
	mw.loginBanner.SetMarginStart(12)
	mw.loginBanner.SetMarginEnd(12)
	mw.loginBanner.SetVisible(false)

	icon := gtk.NewImage()
	icon.SetFromIconName("dialog-password-symbolic")
	icon.SetPixelSize(16)
	mw.loginBanner.Append(icon)

	label := gtk.NewLabel("You are not logged in")
	label.SetXAlign(0)
	label.SetHExpand(true)
	mw.loginBanner.Append(label)

	mw.loginBtn = gtk.NewButtonWithLabel("Log In")
	mw.loginBtn.AddCSSClass("suggested-action")
	mw.loginBtn.ConnectClicked(func() {
		mw.onLogin()
	})
	mw.loginBanner.Append(mw.loginBtn)
}

// createStatusCard builds the connection status card.
func (mw *MainWindow) createStatusCard() {
	mw.statusCard = gtk.NewBox(gtk.OrientationHorizontal, 16)
	mw.statusCard.AddCSSClass("card")
	mw.statusCard.AddCSSClass("status-card")
	mw.statusCard.SetMarginTop(12)
	mw.statusCard.SetMarginBottom(6)
	mw.statusCard.SetMarginStart(12)
	mw.statusCard.SetMarginEnd(12)

	mw.statusIcon = gtk.NewImage()
	mw.statusIcon.SetFromIconName("network-vpn-disconnected-symbolic")
	mw.statusIcon.SetPixelSize(32)
	mw.statusCard.Append(mw.statusIcon)

	textBox := gtk.NewBox(gtk.OrientationVertical, 4)
	textBox.SetHExpand(true)
	textBox.SetVAlign(gtk.AlignCenter)

	mw.statusTitle = gtk.NewLabel("Disconnected")
	mw.statusTitle.SetXAlign(0)
	mw.statusTitle.AddCSSClass("status-title")
	textBox.Append(mw.statusTitle)

	mw.statusDetail = gtk.NewLabel("Pick a country below or use quick connect")
	mw.statusDetail.SetXAlign(0)
	mw.statusDetail.AddCSSClass("dim-label")
	textBox.Append(mw.statusDetail)

	mw.statusCard.Append(textBox)
}

// createStatusBar creates the status bar.
func (mw *MainWindow) createStatusBar() {
	mw.statusBar = gtk.NewBox(gtk.OrientationHorizontal, 12)
	mw.statusBar.AddCSSClass("status-bar")
	mw.statusBar.SetMarginTop(6)
	mw.statusBar.SetMarginBottom(6)
	mw.statusBar.SetMarginStart(12)
	mw.statusBar.SetMarginEnd(12)

	mw.statusLabel = gtk.NewLabel("Ready")
	mw.statusLabel.SetXAlign(0)
	mw.statusLabel.SetHExpand(true)
	mw.statusBar.Append(mw.statusLabel)

	mw.busySpinner = gtk.NewSpinner()
	mw.statusBar.Append(mw.busySpinner)
}

// Show displays the window.
func (mw *MainWindow) Show() {
	mw.window.Show()
}

// SetStatus updates the status text.
func (mw *MainWindow) SetStatus(text string) {
	if mw.statusLabel != nil {
		mw.statusLabel.SetText(text)
	}
}

// SetBusy disables the mutating controls while a command runs.
// The adapter refuses overlapping commands anyway; this keeps the
// interface honest about it.
func (mw *MainWindow) SetBusy(busy bool) {
	mw.quickBtn.SetSensitive(!busy)
	mw.disconnectBtn.SetSensitive(!busy)
	mw.loginBtn.SetSensitive(!busy)
	mw.countryList.SetSensitive(!busy)

	if busy {
		mw.busySpinner.Start()
	} else {
		mw.busySpinner.Stop()
	}
}

// Render updates every widget from a session snapshot.
func (mw *MainWindow) Render(snap nordvpn.SessionSnapshot) {
	mw.loginBanner.SetVisible(snap.Login == nordvpn.LoggedOut)

	switch snap.Connection {
	case nordvpn.StateConnected:
		mw.statusIcon.SetFromIconName("network-vpn-symbolic")
		mw.statusTitle.SetText("Connected to " + snap.Status.Server.Label())
		detail := snap.Status.IP
		if snap.Status.Uptime != "" {
			detail += "  -  up " + snap.Status.Uptime
		}
		mw.statusDetail.SetText(detail)
		mw.statusCard.AddCSSClass("connected")
		mw.disconnectBtn.SetVisible(true)
	default:
		mw.statusIcon.SetFromIconName("network-vpn-disconnected-symbolic")
		mw.statusTitle.SetText("Disconnected")
		mw.statusDetail.SetText("Pick a country below or use quick connect")
		mw.statusCard.RemoveCSSClass("connected")
		mw.disconnectBtn.SetVisible(false)
	}

	mw.countryList.SetConnectedCountry(snap.Status.Server.Country)
}

// ShowCommandError surfaces an adapter error to the user.
func (mw *MainWindow) ShowCommandError(title string, err error) {
	switch {
	case errors.Is(err, common.ErrNotLoggedIn):
		mw.SetStatus("Not logged in")
		mw.loginBanner.SetVisible(true)
	case errors.Is(err, common.ErrBusy):
		mw.SetStatus("Another command is still running")
	case errors.Is(err, common.ErrTimeout):
		mw.showError(title, "The nordvpn client did not respond in time.")
		mw.SetStatus("Ready")
	default:
		mw.showError(title, err.Error())
		mw.SetStatus("Ready")
	}
}

// Event handlers

func (mw *MainWindow) onRefresh() {
	mw.SetStatus("Refreshing...")
	go func() {
		ctx, cancel := contextWithCommandTimeout()
		defer cancel()
		snap, err := mw.app.client.Refresh(ctx)
		glib.IdleAdd(func() {
			if err != nil {
				mw.SetStatus("Refresh failed")
				return
			}
			mw.Render(snap)
			mw.SetStatus("Ready")
		})
	}()
	mw.countryList.Load()
}

func (mw *MainWindow) onLogin() {
	NewLoginDialog(mw).Show()
}

func (mw *MainWindow) onLogout() {
	mw.SetBusy(true)
	mw.SetStatus("Logging out...")
	go func() {
		ctx, cancel := contextWithCommandTimeout()
		defer cancel()
		err := mw.app.client.Logout(ctx)
		glib.IdleAdd(func() {
			mw.SetBusy(false)
			if err != nil {
				mw.ShowCommandError("Logout failed", err)
				return
			}
			mw.SetStatus("Logged out")
			mw.Render(mw.app.client.Session().Snapshot())
		})
	}()
}

func (mw *MainWindow) onPreferences() {
	NewPreferencesDialog(mw).Show()
}

func (mw *MainWindow) onAbout() {
	about := gtk.NewAboutDialog()
	about.SetTransientFor(&mw.window.Window)
	about.SetModal(true)

	about.SetProgramName(common.AppName)
	about.SetLogoIconName("nordvpn-gui")
	about.SetVersion(mw.app.version)
	about.SetComments("Desktop front-end for the official NordVPN Linux client.\nAll connections are handled by the nordvpn command-line tool.")

	about.SetWebsite("https://github.com/yllada/nordvpn-gui")
	about.SetWebsiteLabel("GitHub Repository")

	about.Show()
}

// showError displays an error dialog.
func (mw *MainWindow) showError(title, message string) {
	window := gtk.NewWindow()
	window.SetTitle(title)
	window.SetTransientFor(&mw.window.Window)
	window.SetModal(true)
	window.SetDefaultSize(350, 150)
	window.SetResizable(false)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 12)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(common.DialogMargin)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)
	mainBox.SetHAlign(gtk.AlignCenter)

	icon := gtk.NewImage()
	icon.SetFromIconName("dialog-error-symbolic")
	icon.SetPixelSize(48)
	mainBox.Append(icon)

	titleLabel := gtk.NewLabel(title)
	titleLabel.AddCSSClass("heading")
	mainBox.Append(titleLabel)

	msgLabel := gtk.NewLabel(message)
	msgLabel.SetWrap(true)
	msgLabel.SetMaxWidthChars(40)
	mainBox.Append(msgLabel)

	okBtn := gtk.NewButtonWithLabel("OK")
	okBtn.SetHAlign(gtk.AlignCenter)
	okBtn.SetMarginTop(12)
	okBtn.ConnectClicked(func() {
		window.Close()
	})
	mainBox.Append(okBtn)

	window.SetChild(mainBox)
	window.Show()
}
