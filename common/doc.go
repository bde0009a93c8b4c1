// Package common provides shared constants, types, utilities, and interfaces
// used throughout the NordVPN GUI application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: timeouts for nordvpn invocations, file names, and UI dimensions
//   - Errors: sentinel errors for consistent error handling across packages
//   - Interfaces: abstractions for command execution, token storage, and logging
//   - Logger: leveled logging to stdout and a rotated file
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/yllada/nordvpn-gui/common"
//
//	// Use constants
//	timeout := common.CommandTimeout
//
//	// Use logger
//	common.LogInfo("connecting to %s", target)
//
//	// Check errors
//	if errors.Is(err, common.ErrNotLoggedIn) {
//	    // Prompt for login
//	}
//
// Nothing in this package imports the rest of the application, so any
// other package may depend on it freely.
package common
