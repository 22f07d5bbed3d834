package token //nolint:revive // intentional: does not conflict at import path level

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmpty is returned by ReadFile when the file holds no token.
var ErrEmpty = errors.New("token file is empty")

// ReadFile reads a token from path, ignoring surrounding whitespace.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return tok, nil
}

// WriteFile stores tok at path with user-only permissions, creating the
// parent directory. An existing file is replaced.
func WriteFile(path, tok string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(tok+"\n"), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}
