// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDir_EnvVar(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/scanquery", got)
}

func TestConfigDir_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/testuser")
	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/testuser/.config/scanquery", got)
}

func TestDataDir_EnvVar(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	got, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/data/scanquery", got)
}

func TestDataDir_Default(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/testuser")
	got, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/testuser/.local/share/scanquery", got)
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "nested", "dir")

	err := EnsureDir(testPath)
	require.NoError(t, err)

	info, err := os.Stat(testPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "Expected directory, got file")
}

func TestEnsureDir_Permissions(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "secure", "dir")

	err := EnsureDir(testPath)
	require.NoError(t, err)

	info, err := os.Stat(testPath)
	require.NoError(t, err)

	perm := info.Mode().Perm()
	assert.Equal(t, os.FileMode(0o700), perm, "EnsureDir() permissions mismatch")
}

func TestEnsureDir_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "idempotent")

	err := EnsureDir(testPath)
	require.NoError(t, err, "First EnsureDir() failed")
	err = EnsureDir(testPath)
	require.NoError(t, err, "Second EnsureDir() failed")
}

func TestEnsureDir_Error(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "afile")

	err := os.WriteFile(filePath, []byte("content"), 0o600)
	require.NoError(t, err)

	invalidPath := filepath.Join(filePath, "subdir")
	err = EnsureDir(invalidPath)
	assert.Error(t, err, "EnsureDir() expected error")
}

func TestHomeDir_Fallback(t *testing.T) {
	t.Setenv("HOME", "")

	got, err := homeDir()
	if err != nil {
		assert.Empty(t, got, "homeDir() returned non-empty string with error")
		return
	}

	assert.NotEmpty(t, got, "homeDir() returned empty string")
}

func TestConfigDir_HomeDirError(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	_, _ = ConfigDir()
}

func TestDataDir_HomeDirError(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	_, _ = DataDir()
}
