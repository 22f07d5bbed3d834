package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestRealExecutorInterface verifies RealExecutor implements Executor.
func TestRealExecutorInterface(_ *testing.T) {
	var _ Executor = &RealExecutor{}
	var _ Executor = NewRealExecutor()
}

func run(t *testing.T, req ExecuteRequest) ExecuteResponse {
	t.Helper()
	p, err := NewRealExecutor().Start(context.Background(), req)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	return p.Wait()
}

// TestRealExecutorEchoHello verifies basic command execution.
func TestRealExecutorEchoHello(t *testing.T) {
	resp := run(t, ExecuteRequest{
		Command: "echo",
		Args:    []string{"hello"},
	})

	if resp.Status != StatusCompleted {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	if resp.ExitCode != 0 {
		t.Errorf("ExitCode: got %d, want 0", resp.ExitCode)
	}
	if string(resp.Stdout) != "hello\n" {
		t.Errorf("Stdout: got %q, want %q", resp.Stdout, "hello\n")
	}
	if resp.Error != "" {
		t.Errorf("Error should be empty, got: %q", resp.Error)
	}
}

// TestRealExecutorNonexistentCommand verifies Start reports missing executables.
func TestRealExecutorNonexistentCommand(t *testing.T) {
	p, err := NewRealExecutor().Start(context.Background(), ExecuteRequest{
		Command: "this-command-definitely-does-not-exist-anywhere",
	})
	if err == nil {
		p.Wait()
		t.Fatal("Start() should fail for a missing executable")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error should wrap ErrNotFound, got: %v", err)
	}
}

func TestRealExecutorMissingAbsolutePath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := NewRealExecutor().Start(context.Background(), ExecuteRequest{Command: missing})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error should wrap ErrNotFound, got: %v", err)
	}
}

func TestRealExecutorPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can execute files without the execute bit")
	}
	path := filepath.Join(t.TempDir(), "noexec")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	_, err := NewRealExecutor().Start(context.Background(), ExecuteRequest{Command: path})
	if err == nil {
		t.Fatal("Start() should fail for a non-executable file")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("permission error should not wrap ErrNotFound: %v", err)
	}
}

// TestRealExecutorTimeout verifies timeout handling.
func TestRealExecutorTimeout(t *testing.T) {
	resp := run(t, ExecuteRequest{
		Command: "sleep",
		Args:    []string{"10"},
		Timeout: 100 * time.Millisecond,
	})

	if resp.Status != StatusTimeout {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusTimeout)
	}
	if resp.ExitCode != -1 {
		t.Errorf("ExitCode: got %d, want -1", resp.ExitCode)
	}
	if !strings.Contains(resp.Error, "timed out") {
		t.Errorf("Error should contain 'timed out', got: %q", resp.Error)
	}
}

// TestRealExecutorWorkdir verifies working directory is set correctly.
func TestRealExecutorWorkdir(t *testing.T) {
	tmpDir := t.TempDir()

	resp := run(t, ExecuteRequest{
		Command: "pwd",
		Workdir: tmpDir,
	})

	if resp.Status != StatusCompleted {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	// On macOS, /tmp is a symlink to /private/tmp, so resolve both
	expectedDir, _ := filepath.EvalSymlinks(tmpDir)
	actualDir, _ := filepath.EvalSymlinks(strings.TrimSpace(string(resp.Stdout)))
	if actualDir != expectedDir {
		t.Errorf("Workdir: got %q, want %q", actualDir, expectedDir)
	}
}

// TestRealExecutorEnv verifies extra variables are added to the inherited environment.
func TestRealExecutorEnv(t *testing.T) {
	t.Setenv("EXECUTOR_TEST_INHERITED", "inherited_value")

	resp := run(t, ExecuteRequest{
		Command: "sh",
		Args:    []string{"-c", "echo $EXECUTOR_TEST_INHERITED $TEST_CUSTOM"},
		Env:     map[string]string{"TEST_CUSTOM": "custom_value"},
	})

	if got := strings.TrimSpace(string(resp.Stdout)); got != "inherited_value custom_value" {
		t.Errorf("Stdout: got %q, want %q", got, "inherited_value custom_value")
	}
}

// TestRealExecutorExitCode verifies non-zero exit codes are captured.
func TestRealExecutorExitCode(t *testing.T) {
	resp := run(t, ExecuteRequest{
		Command: "sh",
		Args:    []string{"-c", "echo partial; echo bad >&2; exit 42"},
	})

	if resp.Status != StatusCompleted {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusCompleted)
	}
	if resp.ExitCode != 42 {
		t.Errorf("ExitCode: got %d, want 42", resp.ExitCode)
	}
	if string(resp.Stdout) != "partial\n" {
		t.Errorf("Stdout: got %q, want %q", resp.Stdout, "partial\n")
	}
	if string(resp.Stderr) != "bad\n" {
		t.Errorf("Stderr: got %q, want %q", resp.Stderr, "bad\n")
	}
}

func TestRealExecutorStdinRoundTrip(t *testing.T) {
	input := bytes.Repeat([]byte("0123456789abcdef"), 64*1024) // 1 MiB, larger than a pipe buffer

	resp := run(t, ExecuteRequest{
		Command: "cat",
		Stdin:   input,
	})

	if !bytes.Equal(resp.Stdout, input) {
		t.Errorf("Stdout: got %d bytes, want %d identical bytes", len(resp.Stdout), len(input))
	}
}

func TestRealExecutorEmptyStdinIsClosed(t *testing.T) {
	for _, stdin := range [][]byte{nil, {}} {
		resp := run(t, ExecuteRequest{
			Command: "wc",
			Args:    []string{"-c"},
			Stdin:   stdin,
			Timeout: 5 * time.Second,
		})
		if resp.Status != StatusCompleted {
			t.Fatalf("Status: got %q, want %q (stdin left open?)", resp.Status, StatusCompleted)
		}
		if got := strings.TrimSpace(string(resp.Stdout)); got != "0" {
			t.Errorf("wc -c: got %q, want 0", got)
		}
	}
}

func TestRealExecutorStdinIgnoredByCommand(t *testing.T) {
	// The command exits without reading; the writer must not hang.
	resp := run(t, ExecuteRequest{
		Command: "true",
		Stdin:   bytes.Repeat([]byte("x"), 1<<20),
		Timeout: 5 * time.Second,
	})
	if resp.Status != StatusCompleted || resp.ExitCode != 0 {
		t.Errorf("got status %q exit %d, want completed/0", resp.Status, resp.ExitCode)
	}
}

func TestRealExecutorTeeWriters(t *testing.T) {
	var stdout, stderr bytes.Buffer
	resp := run(t, ExecuteRequest{
		Command: "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
		Stdout:  &stdout,
		Stderr:  &stderr,
	})

	if stdout.String() != "out\n" || string(resp.Stdout) != "out\n" {
		t.Errorf("stdout tee %q, accumulated %q, want both %q", stdout.String(), resp.Stdout, "out\n")
	}
	if stderr.String() != "err\n" || string(resp.Stderr) != "err\n" {
		t.Errorf("stderr tee %q, accumulated %q, want both %q", stderr.String(), resp.Stderr, "err\n")
	}
}

// TestRealExecutorContextCancelled verifies context cancellation is handled.
func TestRealExecutorContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p, err := NewRealExecutor().Start(ctx, ExecuteRequest{
		Command: "sleep",
		Args:    []string{"10"},
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	cancel()

	resp := p.Wait()
	if resp.Status != StatusTerminated {
		t.Errorf("Status: got %q, want %q", resp.Status, StatusTerminated)
	}
}

func TestProcessTerminate(t *testing.T) {
	p, err := NewRealExecutor().Start(context.Background(), ExecuteRequest{
		Command: "sleep",
		Args:    []string{"10"},
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if p.Pid() <= 0 {
		t.Errorf("Pid() = %d, want positive", p.Pid())
	}

	select {
	case <-p.Done():
		t.Fatal("Done() closed before the command finished")
	default:
	}

	p.Terminate()

	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done() not closed after Terminate")
	}
	if resp := p.Wait(); resp.Status != StatusTerminated || resp.ExitCode != -1 {
		t.Errorf("got status %q exit %d, want terminated/-1", resp.Status, resp.ExitCode)
	}
}

func TestProcessTerminateAfterExit(t *testing.T) {
	p, err := NewRealExecutor().Start(context.Background(), ExecuteRequest{Command: "true"})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	resp := p.Wait()
	p.Terminate()

	if again := p.Wait(); again.Status != resp.Status || resp.Status != StatusCompleted {
		t.Errorf("status changed after Terminate: %q -> %q", resp.Status, again.Status)
	}
}

func TestMergeEnvSorted(t *testing.T) {
	got := mergeEnv([]string{"A=1"}, map[string]string{"Z": "26", "B": "2"})
	want := []string{"A=1", "B=2", "Z=26"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("mergeEnv() = %v, want %v", got, want)
	}
}
