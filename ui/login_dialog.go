package ui

import (
	"context"
	"os/exec"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/nordvpn-gui/common"
)

// LoginDialog offers the two login flows: the browser OAuth flow and
// a direct access-token entry.
type LoginDialog struct {
	window     *gtk.Window
	mainWindow *MainWindow
	tokenEntry *gtk.PasswordEntry
	browserBtn *gtk.Button
	tokenBtn   *gtk.Button
	infoLabel  *gtk.Label
}

// NewLoginDialog creates a new login dialog.
func NewLoginDialog(mainWindow *MainWindow) *LoginDialog {
	ld := &LoginDialog{
		mainWindow: mainWindow,
	}

	ld.build()
	return ld
}

func (ld *LoginDialog) build() {
	ld.window = gtk.NewWindow()
	ld.window.SetTitle("Log In - " + common.AppName)
	ld.window.SetTransientFor(&ld.mainWindow.window.Window)
	ld.window.SetModal(true)
	ld.window.SetDefaultSize(420, 320)
	ld.window.SetResizable(false)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 16)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(common.DialogMargin)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)

	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 12)
	headerBox.SetHAlign(gtk.AlignCenter)

	lockIcon := gtk.NewImage()
	lockIcon.SetFromIconName("security-high-symbolic")
	lockIcon.SetPixelSize(32)
	headerBox.Append(lockIcon)

	titleLabel := gtk.NewLabel("Log in to NordVPN")
	titleLabel.AddCSSClass("title-3")
	headerBox.Append(titleLabel)
	mainBox.Append(headerBox)

	ld.infoLabel = gtk.NewLabel("Use your browser, or paste an access token\nfrom your Nord Account dashboard.")
	ld.infoLabel.AddCSSClass("dim-label")
	ld.infoLabel.SetJustify(gtk.JustifyCenter)
	mainBox.Append(ld.infoLabel)

	// Browser flow
	ld.browserBtn = gtk.NewButtonWithLabel("Log In with Browser")
	ld.browserBtn.AddCSSClass("suggested-action")
	ld.browserBtn.ConnectClicked(func() {
		ld.startBrowserLogin()
	})
	mainBox.Append(ld.browserBtn)

	separator := gtk.NewSeparator(gtk.OrientationHorizontal)
	separator.SetMarginTop(8)
	separator.SetMarginBottom(8)
	mainBox.Append(separator)

	// Token flow
	tokenLabel := gtk.NewLabel("Access token")
	tokenLabel.SetXAlign(0)
	tokenLabel.AddCSSClass("dim-label")
	mainBox.Append(tokenLabel)

	ld.tokenEntry = gtk.NewPasswordEntry()
	ld.tokenEntry.SetShowPeekIcon(true)
	mainBox.Append(ld.tokenEntry)

	ld.tokenBtn = gtk.NewButtonWithLabel("Log In with Token")
	ld.tokenBtn.ConnectClicked(func() {
		ld.startTokenLogin()
	})
	mainBox.Append(ld.tokenBtn)

	ld.window.SetChild(mainBox)
}

// setBusy disables both flows while one runs.
func (ld *LoginDialog) setBusy(busy bool) {
	ld.browserBtn.SetSensitive(!busy)
	ld.tokenBtn.SetSensitive(!busy)
	ld.tokenEntry.SetSensitive(!busy)
}

func (ld *LoginDialog) startBrowserLogin() {
	ld.setBusy(true)
	ld.infoLabel.SetText("Complete the login in your browser...")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), common.LoginTimeout)
		defer cancel()

		err := ld.mainWindow.app.client.Login(ctx, func(url string) error {
			return exec.Command("xdg-open", url).Start()
		})

		glib.IdleAdd(func() {
			ld.setBusy(false)
			if err != nil {
				ld.infoLabel.SetText("Login failed. Try again or use a token.")
				common.LogWarn("browser login failed: %v", err)
				return
			}
			ld.onLoggedIn()
		})
	}()
}

func (ld *LoginDialog) startTokenLogin() {
	token := ld.tokenEntry.Text()
	if token == "" {
		ld.infoLabel.SetText("Paste an access token first.")
		return
	}

	ld.setBusy(true)
	ld.infoLabel.SetText("Logging in...")

	go func() {
		ctx, cancel := contextWithCommandTimeout()
		defer cancel()

		err := ld.mainWindow.app.client.LoginWithToken(ctx, token)
		if err == nil {
			if storeErr := ld.mainWindow.app.tokens.Store(token); storeErr != nil {
				common.LogWarn("failed to save token: %v", storeErr)
			}
		}

		glib.IdleAdd(func() {
			ld.setBusy(false)
			if err != nil {
				ld.infoLabel.SetText("Token login failed. Check the token and try again.")
				common.LogWarn("token login failed: %v", err)
				return
			}
			ld.onLoggedIn()
		})
	}()
}

// onLoggedIn closes the dialog and refreshes the main window.
func (ld *LoginDialog) onLoggedIn() {
	ld.mainWindow.SetStatus("Logged in")
	ld.mainWindow.Render(ld.mainWindow.app.client.Session().Snapshot())
	ld.mainWindow.onRefresh()
	ld.window.Close()
}

// Show displays the login dialog.
func (ld *LoginDialog) Show() {
	ld.window.Show()
	ld.tokenEntry.GrabFocus()
}
