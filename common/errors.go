// Package common provides shared constants, types, and utilities
// used across the NordVPN GUI application.
package common

import "errors"

// Sentinel errors for adapter operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// CLI adapter errors.
	ErrCommandFailed    = errors.New("command failed")
	ErrTimeout          = errors.New("command timed out")
	ErrBusy             = errors.New("another command is in flight")
	ErrUnexpectedOutput = errors.New("unexpected command output")
	ErrNotInstalled     = errors.New("nordvpn client is not installed")

	// Session errors.
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrNotConnected = errors.New("no active connection")

	// Credential errors.
	ErrTokenNotFound = errors.New("access token not found")
	ErrTokenStorage  = errors.New("failed to store access token")
	ErrEncryption    = errors.New("encryption error")
	ErrDecryption    = errors.New("decryption error")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
