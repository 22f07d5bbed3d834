package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xdg/sslexec/internal/clog"
	"github.com/xdg/sslexec/internal/pathutil"
)

// Load reads the configuration at path, or DefaultPath() when path is empty.
// A missing file yields DefaultConfig(). The file format follows the
// extension. Defaults fill empty fields, the result is validated, and
// all paths containing ~ are expanded to the actual home directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	clog.Debug("config: loading %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			clog.Debug("config: file not found, using defaults")
			cfg := DefaultConfig()
			expandPaths(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	expandPaths(cfg)
	return cfg, nil
}

// expandPaths expands ~ to the home directory in all path fields.
// The binary is expanded only when it is written as a path.
func expandPaths(cfg *Config) {
	cfg.OpenSSL.Binary = pathutil.ExpandHome(cfg.OpenSSL.Binary)
	cfg.OpenSSL.Workdir = pathutil.ExpandHome(cfg.OpenSSL.Workdir)
	cfg.Server.TokenFile = pathutil.ExpandHome(cfg.Server.TokenFile)
	if sock, ok := strings.CutPrefix(cfg.Server.Listen, "unix:"); ok {
		cfg.Server.Listen = "unix:" + pathutil.ExpandHome(sock)
	}
	cfg.Log.File = pathutil.ExpandHome(cfg.Log.File)
	cfg.Audit.File = pathutil.ExpandHome(cfg.Audit.File)
}
