// Package common provides shared constants, types, and utilities
// used across the NordVPN GUI application.
package common

import "context"

// CommandRunner is the boundary between the application and the
// external nordvpn client. Implementations spawn exactly one child
// process per call and never interpret the output themselves.
type CommandRunner interface {
	// Run executes the nordvpn client with the given arguments and
	// waits for it to finish or for the context to expire.
	Run(ctx context.Context, args ...string) (CommandResult, error)
}

// CommandResult is the raw outcome of one nordvpn invocation.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// TokenStore defines the interface for access-token storage.
// Implementations may use the system keyring, encrypted files, etc.
type TokenStore interface {
	// Store saves the NordVPN access token.
	Store(token string) error
	// Get retrieves the stored access token.
	Get() (string, error)
	// Delete removes the stored access token.
	Delete() error
}

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// Notify sends a notification with the given title and message.
	Notify(title, message string) error
	// NotifyWithIcon sends a notification with a custom icon.
	NotifyWithIcon(title, message, icon string) error
}

// Logger defines the interface for structured logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}
