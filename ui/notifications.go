// Package ui provides the graphical user interface for NordVPN GUI.
// This file contains the notification system for connection events.
package ui

import (
	"os/exec"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/nordvpn-gui/common"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationSuccess
	NotificationWarning
	NotificationError
)

// Notification represents a system notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	Icon    string
}

const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyInterface = "org.freedesktop.Notifications.Notify"
)

// ShowNotification displays a desktop notification. It talks to the
// freedesktop notification service over D-Bus and falls back to
// notify-send when the bus is unavailable.
func ShowNotification(n Notification) {
	icon := n.Icon
	if icon == "" {
		switch n.Type {
		case NotificationWarning:
			icon = "dialog-warning"
		case NotificationError:
			icon = "dialog-error"
		default:
			icon = "network-vpn"
		}
	}

	if err := notifyDBus(n, icon); err != nil {
		common.LogDebug("dbus notification failed, using notify-send: %v", err)
		notifyFallback(n, icon)
	}
}

// notifyDBus sends the notification via the session bus.
func notifyDBus(n Notification, icon string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return err
	}

	urgency := byte(1) // normal
	switch n.Type {
	case NotificationError:
		urgency = 2 // critical
	case NotificationInfo, NotificationSuccess:
		urgency = 0 // low
	}

	obj := conn.Object(notifyService, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyInterface, 0,
		common.AppName,          // app_name
		uint32(0),               // replaces_id
		icon,                    // app_icon
		n.Title,                 // summary
		n.Message,               // body
		[]string{},              // actions
		map[string]dbus.Variant{ // hints
			"urgency": dbus.MakeVariant(urgency),
		},
		int32(5000), // expire_timeout ms
	)
	return call.Err
}

// notifyFallback shells out to notify-send.
func notifyFallback(n Notification, icon string) {
	urgency := "normal"
	switch n.Type {
	case NotificationError:
		urgency = "critical"
	case NotificationInfo, NotificationSuccess:
		urgency = "low"
	}

	cmd := exec.Command("notify-send",
		"--app-name="+common.AppName,
		"--icon="+icon,
		"--urgency="+urgency,
		n.Title,
		n.Message,
	)

	if err := cmd.Run(); err != nil {
		common.LogWarn("failed to show notification: %v", err)
	}
}

// NotifyConnected shows a notification when the VPN connects
func NotifyConnected(serverLabel string) {
	ShowNotification(Notification{
		Title:   "VPN Connected",
		Message: "Connected to " + serverLabel,
		Type:    NotificationSuccess,
		Icon:    "network-vpn",
	})
}

// NotifyDisconnected shows a notification when the VPN disconnects
func NotifyDisconnected() {
	ShowNotification(Notification{
		Title:   "VPN Disconnected",
		Message: "Your traffic is no longer routed through NordVPN",
		Type:    NotificationInfo,
		Icon:    "network-vpn-disconnected",
	})
}

// NotifyError shows a notification for connection errors
func NotifyError(title, errorMsg string) {
	ShowNotification(Notification{
		Title:   title,
		Message: errorMsg,
		Type:    NotificationError,
		Icon:    "network-vpn-error",
	})
}
