package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"sort"
	"time"
)

// DefaultWaitDelay bounds how long output is drained after the command exits
// while a descendant still holds the output pipes open.
const DefaultWaitDelay = 5 * time.Second

// RealExecutor executes commands using os/exec.
type RealExecutor struct {
	WaitDelay time.Duration
}

// NewRealExecutor creates a new RealExecutor.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{WaitDelay: DefaultWaitDelay}
}

// Process is a handle to a started command.
type Process struct {
	pid    int
	done   chan struct{}
	resp   ExecuteResponse
	cancel context.CancelFunc
}

// Pid returns the operating system process ID.
func (p *Process) Pid() int {
	return p.pid
}

// Done is closed once the command has exited and its output is drained.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the command finishes and returns its response.
func (p *Process) Wait() ExecuteResponse {
	<-p.done
	return p.resp
}

// Terminate kills the command. The response status becomes
// StatusTerminated unless the command had already finished.
func (p *Process) Terminate() {
	p.cancel()
}

// Start launches the command and returns immediately.
func (e *RealExecutor) Start(ctx context.Context, req ExecuteRequest) (*Process, error) {
	ctx, cancel := context.WithCancel(ctx)
	runCtx, stop := ctx, context.CancelFunc(func() {})
	if req.Timeout > 0 {
		runCtx, stop = context.WithTimeout(ctx, req.Timeout)
	}

	cmd := exec.CommandContext(runCtx, req.Command, req.Args...)
	cmd.WaitDelay = e.WaitDelay
	if req.Workdir != "" {
		cmd.Dir = req.Workdir
	}
	if len(req.Env) > 0 {
		cmd.Env = mergeEnv(cmd.Environ(), req.Env)
	}

	var stdout, stderr Buffer
	cmd.Stdout = tee(&stdout, req.Stdout)
	cmd.Stderr = tee(&stderr, req.Stderr)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		stop()
		cancel()
		return nil, fmt.Errorf("stdin pipe for %s: %w", req.Command, err)
	}

	if err := cmd.Start(); err != nil {
		stop()
		cancel()
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, req.Command, err)
		}
		return nil, fmt.Errorf("start %s: %w", req.Command, err)
	}

	p := &Process{
		pid:    cmd.Process.Pid,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	written := make(chan struct{})
	go func() {
		defer close(written)
		// Write errors mean the command exited or closed stdin early; its
		// exit status reports what happened.
		if len(req.Stdin) > 0 {
			_, _ = stdin.Write(req.Stdin)
		}
		_ = stdin.Close()
	}()

	go func() {
		waitErr := cmd.Wait()
		<-written
		p.resp = response(runCtx, cmd, waitErr, stdout.Bytes(), stderr.Bytes())
		stop()
		cancel()
		close(p.done)
	}()

	return p, nil
}

// response classifies the outcome of cmd.Wait.
func response(ctx context.Context, cmd *exec.Cmd, err error, stdout, stderr []byte) ExecuteResponse {
	resp := ExecuteResponse{
		Status: StatusCompleted,
		Stdout: stdout,
		Stderr: stderr,
	}
	if err == nil {
		return resp
	}

	// Check if context was canceled or timed out
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		resp.Status = StatusTimeout
		resp.ExitCode = -1
		resp.Error = "command timed out"
		return resp
	case errors.Is(ctx.Err(), context.Canceled):
		resp.Status = StatusTerminated
		resp.ExitCode = -1
		resp.Error = "command terminated"
		return resp
	}

	// The process exited but a descendant kept the pipes open past WaitDelay.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		resp.ExitCode = cmd.ProcessState.ExitCode()
		return resp
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		resp.ExitCode = exitErr.ExitCode()
		return resp
	}

	resp.Status = StatusError
	resp.ExitCode = -1
	resp.Error = err.Error()
	return resp
}

func tee(buf *Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

// mergeEnv appends extra to base in sorted key order so that the resulting
// environment is deterministic.
func mergeEnv(base []string, extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		base = append(base, k+"="+extra[k])
	}
	return base
}
