package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultYAMLTemplate = `# sslexec configuration

openssl:
  # Executable name or path.
  binary: openssl
  # Calls running longer than this are killed. "0s" disables the limit.
  timeout: 30s
  # Relative file options (in, out, CAfile, ...) resolve against workdir.
  # workdir: ~/pki
  # env:
  #   OPENSSL_CONF: /etc/ssl/openssl.cnf

# Expected stderr patterns, matched case-insensitively at the start of
# stderr when openssl exits 0. An empty value removes a built-in entry.
# patterns:
#   ca: "using configuration from"

server:
  # host:port, or unix:/path/to/socket.
  listen: 127.0.0.1:8420
  max_connections: 16
  max_body_bytes: 10485760
  # Clients must send this token; create it with "sslexec token".
  # token_file: ~/.config/sslexec/api.token

log:
  file: ~/.local/state/sslexec/sslexec.log
  level: info

audit:
  # file: ~/.local/state/sslexec/audit.log
`

const defaultTOMLTemplate = `# sslexec configuration

[openssl]
binary = "openssl"
timeout = "30s"
# workdir = "~/pki"

# [openssl.env]
# OPENSSL_CONF = "/etc/ssl/openssl.cnf"

# [patterns]
# ca = "using configuration from"

[server]
# host:port, or unix:/path/to/socket.
listen = "127.0.0.1:8420"
max_connections = 16
max_body_bytes = 10485760
# token_file = "~/.config/sslexec/api.token"

[log]
file = "~/.local/state/sslexec/sslexec.log"
level = "info"

[audit]
# file = "~/.local/state/sslexec/audit.log"
`

// Template returns the commented default configuration for format.
func Template(format Format) (string, error) {
	switch format {
	case FormatYAML:
		return defaultYAMLTemplate, nil
	case FormatTOML:
		return defaultTOMLTemplate, nil
	}
	return "", fmt.Errorf("unknown format %q", format)
}

// WriteDefault creates a commented default configuration file at path, or
// at DefaultPath() when path is empty. The format follows the extension.
// If the file already exists and overwrite is false, it returns
// os.ErrExist wrapped. The file is written with 0600 permissions.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return "", err
	}
	tmpl, err := Template(format)
	if err != nil {
		return "", err
	}

	_, err = os.Stat(path)
	if err == nil && !overwrite {
		return path, fmt.Errorf("write default config: %s: %w", path, os.ErrExist)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return path, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return path, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(tmpl), 0o600); err != nil {
		return path, fmt.Errorf("write default config: %w", err)
	}
	return path, nil
}
