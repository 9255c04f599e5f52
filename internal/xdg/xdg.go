// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

// Package xdg resolves XDG Base Directory paths for scanqueryd.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "scanquery"

// homeDir returns the user's home directory, preferring $HOME and
// falling back to os.UserHomeDir.
func homeDir() (string, error) {
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return home, nil
}

// ConfigDir returns the XDG config directory for scanqueryd, where
// serve looks for a default scanqueryd.yaml when --config is unset.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DataDir returns the XDG data directory for scanqueryd.
// Checks XDG_DATA_HOME first, falls back to ~/.local/share.
func DataDir() (string, error) {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// EnsureDir creates a directory and all parent directories if they
// don't exist. Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
