// Package config provides the sslexec configuration file types, loaded
// from YAML or TOML.
package config

import "time"

// Config is the top-level sslexec configuration.
// It is typically stored at ~/.config/sslexec/config.yaml.
type Config struct {
	OpenSSL  OpenSSLConfig     `yaml:"openssl,omitempty" toml:"openssl,omitempty"`
	Patterns map[string]string `yaml:"patterns,omitempty" toml:"patterns,omitempty"`
	Server   ServerConfig      `yaml:"server,omitempty" toml:"server,omitempty"`
	Log      LogConfig         `yaml:"log,omitempty" toml:"log,omitempty"`
	Audit    AuditConfig       `yaml:"audit,omitempty" toml:"audit,omitempty"`
}

// OpenSSLConfig controls how the openssl binary is run.
type OpenSSLConfig struct {
	Binary  string            `yaml:"binary,omitempty" toml:"binary,omitempty"`
	Timeout string            `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	Workdir string            `yaml:"workdir,omitempty" toml:"workdir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`
}

// TimeoutDuration returns Timeout parsed. An empty or invalid value
// yields zero (no timeout); Validate rejects invalid values at load time.
func (c OpenSSLConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// ServerConfig contains the HTTP API settings used by "sslexec serve".
type ServerConfig struct {
	Listen         string `yaml:"listen,omitempty" toml:"listen,omitempty"`
	MaxConnections int    `yaml:"max_connections,omitempty" toml:"max_connections,omitempty"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes,omitempty" toml:"max_body_bytes,omitempty"`

	// TokenFile holds the API token. Empty leaves the API unauthenticated.
	TokenFile string `yaml:"token_file,omitempty" toml:"token_file,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	File  string `yaml:"file,omitempty" toml:"file,omitempty"`
	Level string `yaml:"level,omitempty" toml:"level,omitempty"`
}

// AuditConfig names the audit log file. Empty disables auditing.
type AuditConfig struct {
	File string `yaml:"file,omitempty" toml:"file,omitempty"`
}
