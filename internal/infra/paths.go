package infra

import (
	"os"
	"path/filepath"
)

const AppName = "arb-go"

// ResolveConfigPath attempts to find the config.yaml.
// Priority: 1. Current dir, 2. OS config dir.
func ResolveConfigPath() string {
	defaultPath := filepath.Join("configs", "config.yaml")

	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}

	configRoot, err := os.UserConfigDir()
	if err == nil {
		osPath := filepath.Join(configRoot, AppName, "config.yaml")
		if _, err := os.Stat(osPath); err == nil {
			return osPath
		}
	}

	// Return default and let LoadConfig surface the "file not found" error.
	return defaultPath
}

// EnsureDir creates the directory if it doesn't exist with safe permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
