// Package pathutil provides path manipulation utilities.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading ~ in path with the user's home directory.
// If the home directory cannot be determined, the path is returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Resolve expands ~ in path and makes a relative result absolute against
// base. An empty path stays empty. A "-" path (stdin/stdout) is returned as is.
func Resolve(base, path string) string {
	if path == "" || path == "-" {
		return path
	}
	path = ExpandHome(path)
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(ExpandHome(base), path)
}
