package config

import (
	"fmt"
	"os"

	"github.com/xdg/sslexec/internal/pathutil"
)

// Dir returns the sslexec configuration directory path.
// By default, this is ~/.config/sslexec/. If the XDG_CONFIG_HOME
// environment variable is set, it uses $XDG_CONFIG_HOME/sslexec/ instead.
// The returned path always has a trailing slash.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = "~/.config"
	}
	return pathutil.ExpandHome(base) + "/sslexec/"
}

// EnsureDir creates the configuration directory with user-only permissions.
func EnsureDir() error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return nil
}

// DefaultPath returns the full path to the default configuration file.
// This is Dir() + "config.yaml".
func DefaultPath() string {
	return Dir() + "config.yaml"
}
