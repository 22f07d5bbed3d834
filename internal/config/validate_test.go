package config

import (
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("Validate(DefaultConfig()) error = %v", err)
	}
	if err := Validate(&Config{}); err != nil {
		t.Errorf("Validate(zero config) error = %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"bad timeout", func(c *Config) { c.OpenSSL.Timeout = "soon" }, "openssl.timeout"},
		{"negative timeout", func(c *Config) { c.OpenSSL.Timeout = "-1s" }, "non-negative"},
		{"bad pattern", func(c *Config) { c.Patterns = map[string]string{"ca": "("} }, "patterns.ca"},
		{"empty action", func(c *Config) { c.Patterns = map[string]string{"": "x"} }, "empty action"},
		{"listen without port", func(c *Config) { c.Server.Listen = "localhost" }, "server.listen"},
		{"listen bad port", func(c *Config) { c.Server.Listen = ":http" }, "invalid port"},
		{"listen port range", func(c *Config) { c.Server.Listen = ":70000" }, "1-65535"},
		{"empty socket path", func(c *Config) { c.Server.Listen = "unix:" }, "empty socket path"},
		{"negative connections", func(c *Config) { c.Server.MaxConnections = -1 }, "server.max_connections"},
		{"negative body", func(c *Config) { c.Server.MaxBodyBytes = -1 }, "server.max_body_bytes"},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_EmptyPatternRemovesEntry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Patterns = map[string]string{"genrsa": ""}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_UnixListen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Listen = "unix:/run/sslexec/api.sock"
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
