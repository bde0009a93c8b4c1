// Package common provides shared constants, types, and utilities
// used across the NordVPN GUI application.
package common

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns the application configuration directory,
// creating it with owner-only permissions if needed. The config file,
// the cache database, and the credentials fallback all live here.
func GetConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", WrapError(err, "failed to resolve config directory")
	}

	dir := filepath.Join(base, ConfigDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", WrapError(err, "failed to create config directory")
	}
	return dir, nil
}
