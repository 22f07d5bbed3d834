// Package executor starts external commands and collects their output.
//
// A started command is represented by a Process handle that is returned
// before the command finishes. Output is accumulated in the background and
// published once the command has exited and both output streams are drained.
package executor

import (
	"context"
	"errors"
	"io"
	"time"
)

// Executor starts commands on the host system.
type Executor interface {
	Start(ctx context.Context, req ExecuteRequest) (*Process, error)
}

// ExecuteRequest contains the command execution parameters.
type ExecuteRequest struct {
	Command string
	Args    []string
	Workdir string
	Env     map[string]string

	// Stdin is written to the command's standard input, which is then closed.
	// A nil or empty Stdin closes standard input without writing.
	Stdin []byte

	// Timeout kills the command once elapsed. Zero means no timeout.
	Timeout time.Duration

	// Stdout and Stderr, when set, receive output as it arrives in addition
	// to the accumulated copy in ExecuteResponse.
	Stdout io.Writer
	Stderr io.Writer
}

// ExecuteResponse contains the result of command execution.
type ExecuteResponse struct {
	Status   string // "completed", "timeout", "terminated", "error"
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Error    string
}

// Status constants for ExecuteResponse.Status.
const (
	StatusCompleted  = "completed"
	StatusTimeout    = "timeout"
	StatusTerminated = "terminated"
	StatusError      = "error"
)

// ErrNotFound is wrapped by Start when the executable cannot be located.
var ErrNotFound = errors.New("executable not found")

// NewFinishedProcess returns a handle for a command that already finished
// with resp. Executors that do not spawn real processes use it.
func NewFinishedProcess(resp ExecuteResponse) *Process {
	p := &Process{
		done:   make(chan struct{}),
		resp:   resp,
		cancel: func() {},
	}
	close(p.done)
	return p
}
