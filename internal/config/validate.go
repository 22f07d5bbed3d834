package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xdg/sslexec/internal/openssl"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks that all fields of a parsed Config contain valid values:
//   - openssl.timeout is a non-negative duration
//   - patterns compile as expected-stderr patterns
//   - server.listen is host:port or :port with a valid port
//   - server limits are non-negative
//   - log.level is one of: debug, info, warn, error (if non-empty)
//
// Returns nil if the config is valid, or an error naming the invalid field.
func Validate(cfg *Config) error {
	if cfg.OpenSSL.Timeout != "" {
		if err := validateDuration(cfg.OpenSSL.Timeout, "openssl.timeout"); err != nil {
			return err
		}
	}

	for _, action := range sortedKeys(cfg.Patterns) {
		if action == "" {
			return errors.New("patterns: empty action name")
		}
		pattern := cfg.Patterns[action]
		if pattern == "" {
			continue
		}
		if _, err := openssl.CompilePattern(pattern); err != nil {
			return fmt.Errorf("patterns.%s: invalid regex %q: %v", action, pattern, err)
		}
	}

	if cfg.Server.Listen != "" {
		if err := validateListenAddr(cfg.Server.Listen, "server.listen"); err != nil {
			return err
		}
	}
	if cfg.Server.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections: must be non-negative, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes: must be non-negative, got %d", cfg.Server.MaxBodyBytes)
	}

	if cfg.Log.Level != "" && !slices.Contains(validLogLevels, cfg.Log.Level) {
		return fmt.Errorf("log.level: invalid value %q, must be one of: %s",
			cfg.Log.Level, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// validateListenAddr validates a listen address in the format ":port",
// "host:port" or "unix:/path/to/socket". Port must be in the range 1-65535.
func validateListenAddr(addr, field string) error {
	if path, ok := strings.CutPrefix(addr, "unix:"); ok {
		if path == "" {
			return fmt.Errorf("%s: empty socket path in %q", field, addr)
		}
		return nil
	}

	colonIdx := strings.LastIndex(addr, ":")
	if colonIdx == -1 {
		return fmt.Errorf("%s: invalid format %q, expected host:port or :port", field, addr)
	}

	portStr := addr[colonIdx+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%s: invalid port %q in %q", field, portStr, addr)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s: invalid port number %d, must be 1-65535", field, port)
	}
	return nil
}

// validateDuration validates that d parses and is not negative.
func validateDuration(d, field string) error {
	v, err := time.ParseDuration(d)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", field, d)
	}
	if v < 0 {
		return fmt.Errorf("%s: must be non-negative, got %q", field, d)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
