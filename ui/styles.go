// Package ui provides the graphical user interface for NordVPN GUI.
// This file contains the CSS styles and theming.
package ui

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Theme-aware styles that work with system dark/light mode
const appCSS = `
/* Status Card */
.status-card {
    border-radius: 12px;
    margin: 6px 12px;
    padding: 16px;
    border: 1px solid alpha(currentColor, 0.15);
}

.status-card.connected {
    border-left: 4px solid #2ec27e;
    background-color: alpha(#2ec27e, 0.1);
}

.status-title {
    font-weight: 600;
    font-size: 15px;
}

/* Login Banner */
.login-banner {
    border-radius: 8px;
    padding: 10px 14px;
    background-color: alpha(#e5a50a, 0.15);
    border: 1px solid alpha(#e5a50a, 0.3);
}

/* Country Rows */
.country-row {
    border-radius: 8px;
    margin: 2px 12px;
}

.country-row:hover {
    background-color: alpha(currentColor, 0.05);
}

.country-row.connected {
    background-color: alpha(#2ec27e, 0.1);
}

.country-name {
    font-size: 13px;
}

.city-button {
    padding: 2px 8px;
    font-size: 12px;
}

.country-icon {
    color: #3584e4;
    -gtk-icon-style: symbolic;
}

/* Preferences Cards */
.preferences-card {
    border-radius: 12px;
    border: 1px solid alpha(currentColor, 0.15);
}

.settings-title {
    font-weight: 600;
    font-size: 13px;
}

/* Status Bar */
.status-bar {
    border-top: 1px solid alpha(currentColor, 0.15);
    padding: 6px 12px;
    opacity: 0.8;
}

/* Entry fields */
entry {
    border-radius: 6px;
    min-height: 34px;
}

/* List styling - transparent to inherit theme background */
list {
    background-color: transparent;
}

list > row {
    background-color: transparent;
}

/* Flat button */
button.flat {
    background-color: transparent;
}

button.flat:hover {
    background-color: alpha(currentColor, 0.1);
}
`

// LoadStyles loads the custom CSS styles for the application.
// Should be called during application startup.
func LoadStyles() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(appCSS)

	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}
