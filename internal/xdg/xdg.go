// Package xdg resolves the per-user directories tenantgate writes to,
// following the XDG base directory convention.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "tenantgate"

// ConfigDir returns the directory the configuration lives in. It honors
// $XDG_CONFIG_HOME and falls back to ~/.config. The directory is not
// created here.
func ConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDir), nil
}
