package cmd

import (
	"strings"
	"testing"
)

func TestActions_ListsDefaultPatterns(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := executeCommand(t, "actions")
	if err != nil {
		t.Fatalf("actions error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 9 {
		t.Fatalf("got %d lines, want header + 8 actions:\n%s", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "ACTION") || !strings.Contains(lines[0], "PATTERN") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "cms.verify") || !strings.Contains(lines[1], `"verification successful"`) {
		t.Errorf("first row = %q, want cms.verify sorted first", lines[1])
	}
	if !strings.HasPrefix(lines[8], "x509.req") {
		t.Errorf("last row = %q, want x509.req", lines[8])
	}
}

func TestActions_RejectsArgs(t *testing.T) {
	isolateEnv(t)

	if _, _, err := executeCommand(t, "actions", "extra"); err == nil {
		t.Fatal("expected error for extra argument")
	}
}
