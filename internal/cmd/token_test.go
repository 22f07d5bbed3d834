package cmd

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestToken_Prints(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := executeCommand(t, "token")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}
	if tok := strings.TrimSpace(stdout); !hexToken.MatchString(tok) {
		t.Errorf("token = %q, want 64 hex characters", tok)
	}
}

func TestToken_Write(t *testing.T) {
	isolateEnv(t)
	tokenPath := filepath.Join(t.TempDir(), "secrets", "token")
	cfg := writeConfig(t, "server:\n  token_file: "+tokenPath+"\n")

	stdout, _, err := executeCommand(t, "--config", cfg, "token", "--write")
	if err != nil {
		t.Fatalf("token --write error = %v", err)
	}

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		t.Fatalf("read token file: %v", err)
	}
	saved := strings.TrimSpace(string(data))
	if !hexToken.MatchString(saved) {
		t.Fatalf("saved token = %q", saved)
	}
	if !strings.Contains(stdout, saved) {
		t.Errorf("stdout = %q, want it to include the saved token", stdout)
	}
	if !strings.Contains(stdout, "Saved token to "+tokenPath) {
		t.Errorf("stdout = %q, want confirmation", stdout)
	}
}

func TestToken_WriteWithoutTokenFile(t *testing.T) {
	isolateEnv(t)

	_, stderr, err := executeCommand(t, "token", "--write")
	if err == nil {
		t.Fatal("expected error when server.token_file is unset")
	}
	if !strings.Contains(stderr, "server.token_file") {
		t.Errorf("stderr = %q", stderr)
	}
}
