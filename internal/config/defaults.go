package config

import "maps"

// Default values applied to fields left empty in a config file.
const (
	DefaultBinary         = "openssl"
	DefaultTimeout        = "30s"
	DefaultListen         = "127.0.0.1:8420"
	DefaultMaxConnections = 16
	DefaultMaxBodyBytes   = 10 << 20 // 10MB
	DefaultLogFile        = "~/.local/state/sslexec/sslexec.log"
	DefaultLogLevel       = "info"
)

// DefaultConfig returns a Config with all defaults populated.
func DefaultConfig() *Config {
	return &Config{
		OpenSSL: OpenSSLConfig{
			Binary:  DefaultBinary,
			Timeout: DefaultTimeout,
		},
		Server: ServerConfig{
			Listen:         DefaultListen,
			MaxConnections: DefaultMaxConnections,
			MaxBodyBytes:   DefaultMaxBodyBytes,
		},
		Log: LogConfig{
			File:  DefaultLogFile,
			Level: DefaultLogLevel,
		},
	}
}

// applyDefaults fills zero-valued fields of cfg from DefaultConfig.
// Log.File and Audit.File are left alone so a config can turn them off.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.OpenSSL.Binary == "" {
		cfg.OpenSSL.Binary = def.OpenSSL.Binary
	}
	if cfg.OpenSSL.Timeout == "" {
		cfg.OpenSSL.Timeout = def.OpenSSL.Timeout
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = def.Server.Listen
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = def.Server.MaxConnections
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// Clone returns a deep copy of cfg.
func (c *Config) Clone() *Config {
	out := *c
	out.Patterns = maps.Clone(c.Patterns)
	out.OpenSSL.Env = maps.Clone(c.OpenSSL.Env)
	return &out
}
