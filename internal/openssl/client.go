package openssl

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/xdg/sslexec/internal/audit"
	"github.com/xdg/sslexec/internal/clog"
	"github.com/xdg/sslexec/internal/executor"
)

// DefaultBinary is the tool invoked when no binary is configured.
const DefaultBinary = "openssl"

// Client invokes openssl. The zero value is not usable; use NewClient.
// A Client holds no per-call state and may be shared between goroutines.
type Client struct {
	binary   string
	exec     executor.Executor
	patterns *Patterns
	timeout  time.Duration
	workdir  string
	env      map[string]string
	audit    *audit.Logger
	source   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBinary sets the openssl executable name or path.
func WithBinary(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.binary = path
		}
	}
}

// WithExecutor replaces the process executor.
func WithExecutor(e executor.Executor) ClientOption {
	return func(c *Client) {
		c.exec = e
	}
}

// WithPatterns replaces the expected-pattern table.
func WithPatterns(p *Patterns) ClientOption {
	return func(c *Client) {
		c.patterns = p
	}
}

// WithTimeout kills every call that runs longer than d. Zero disables it.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithWorkdir runs openssl in dir, which relative file options resolve against.
func WithWorkdir(dir string) ClientOption {
	return func(c *Client) {
		c.workdir = dir
	}
}

// WithEnv adds environment variables to every call.
func WithEnv(env map[string]string) ClientOption {
	return func(c *Client) {
		c.env = maps.Clone(env)
	}
}

// WithAuditLogger records every call to l.
func WithAuditLogger(l *audit.Logger) ClientOption {
	return func(c *Client) {
		c.audit = l
	}
}

// WithSource labels audit events, e.g. "cli".
func WithSource(source string) ClientOption {
	return func(c *Client) {
		c.source = source
	}
}

// NewClient returns a Client that runs the openssl found on PATH with the
// default expected-pattern table.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		binary:   DefaultBinary,
		exec:     executor.NewRealExecutor(),
		patterns: DefaultPatterns(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the executable the client runs.
func (c *Client) Binary() string {
	return c.binary
}

// Patterns returns the expected-pattern table used for classification.
func (c *Client) Patterns() *Patterns {
	return c.patterns
}

// Call holds the optional parts of an invocation.
type Call struct {
	// Input is written to openssl's stdin, which is then closed.
	// Nil or empty input closes stdin without writing.
	Input []byte

	Options *Options

	// OnComplete, if set, is called once with the classified error and the
	// full stdout after openssl has exited and its output is drained.
	OnComplete func(err error, stdout []byte)

	// Stdout and Stderr receive output as it arrives.
	Stdout io.Writer
	Stderr io.Writer

	// Env adds environment variables for this call only.
	Env map[string]string

	// Source overrides the client's audit source for this call.
	Source string
}

// Result is the outcome of one invocation.
type Result struct {
	Stdout   []byte
	Stderr   string
	ExitCode int
	Duration time.Duration
	// Err is nil on success and an *Error otherwise.
	Err error
}

// Process is a running openssl invocation.
type Process struct {
	action Action
	args   []string
	proc   *executor.Process
	done   chan struct{}
	result Result
}

// Action returns the invoked action.
func (p *Process) Action() Action { return p.action }

// Args returns the argv passed to openssl, excluding the binary.
func (p *Process) Args() []string { return slices.Clone(p.args) }

// Pid returns the operating system process ID.
func (p *Process) Pid() int { return p.proc.Pid() }

// Done is closed once the result is available.
func (p *Process) Done() <-chan struct{} { return p.done }

// Wait blocks until openssl finishes and returns the classified result.
func (p *Process) Wait() Result {
	<-p.done
	return p.result
}

// Terminate kills openssl. The result error has kind ErrorTerminated
// unless openssl had already finished.
func (p *Process) Terminate() { p.proc.Terminate() }

// Invoke starts openssl for action and returns without waiting for it.
//
// If openssl cannot be started, Invoke returns an *Error of kind
// ErrorSpawn and also passes it to call.OnComplete.
func (c *Client) Invoke(ctx context.Context, action Action, call Call) (*Process, error) {
	args := BuildArgs(action, call.Options)
	source := call.Source
	if source == "" {
		source = c.source
	}

	logged := redactArgs(args)
	clog.Debug("openssl: exec %s %s", c.binary, strings.Join(logged, " "))
	if err := c.audit.LogInvoke(source, string(action), logged); err != nil {
		clog.Warn("openssl: %v", err)
	}

	env := maps.Clone(c.env)
	if len(call.Env) > 0 {
		if env == nil {
			env = make(map[string]string, len(call.Env))
		}
		maps.Copy(env, call.Env)
	}

	start := time.Now()
	proc, err := c.exec.Start(ctx, executor.ExecuteRequest{
		Command: c.binary,
		Args:    args,
		Workdir: c.workdir,
		Env:     env,
		Stdin:   call.Input,
		Timeout: c.timeout,
		Stdout:  call.Stdout,
		Stderr:  call.Stderr,
	})
	if err != nil {
		spawnErr := &Error{
			Action:  action,
			Kind:    ErrorSpawn,
			Code:    -1,
			Message: fmt.Sprintf("start %s: %v", c.binary, err),
			Err:     err,
		}
		clog.Warn("openssl: %s: %v", action, err)
		c.logResult(source, action, Result{ExitCode: -1, Err: spawnErr, Duration: time.Since(start)})
		if call.OnComplete != nil {
			call.OnComplete(spawnErr, nil)
		}
		return nil, spawnErr
	}

	p := &Process{
		action: action,
		args:   args,
		proc:   proc,
		done:   make(chan struct{}),
	}

	go func() {
		resp := proc.Wait()
		p.result = c.classify(action, resp)
		p.result.Duration = time.Since(start)
		c.logResult(source, action, p.result)
		close(p.done)

		if call.OnComplete != nil {
			call.OnComplete(p.result.Err, p.result.Stdout)
		}
	}()

	return p, nil
}

// Run invokes openssl and waits for it, returning stdout and the
// classified error.
func (c *Client) Run(ctx context.Context, action Action, call Call) ([]byte, error) {
	p, err := c.Invoke(ctx, action, call)
	if err != nil {
		return nil, err
	}
	r := p.Wait()
	return r.Stdout, r.Err
}

func (c *Client) classify(action Action, resp executor.ExecuteResponse) Result {
	r := Result{
		Stdout:   resp.Stdout,
		Stderr:   strings.ToValidUTF8(string(resp.Stderr), "\uFFFD"),
		ExitCode: resp.ExitCode,
	}

	switch resp.Status {
	case executor.StatusCompleted:
		r.Err = Classify(action, resp.ExitCode, r.Stderr, c.patterns)
	case executor.StatusTimeout, executor.StatusTerminated:
		r.Err = &Error{
			Action:  action,
			Kind:    ErrorTerminated,
			Code:    resp.ExitCode,
			Message: joinMessage(resp.Error, r.Stderr),
		}
	default:
		r.Err = &Error{
			Action:  action,
			Kind:    ErrorExit,
			Code:    resp.ExitCode,
			Message: joinMessage(resp.Error, r.Stderr),
		}
	}
	return r
}

func (c *Client) logResult(source string, action Action, r Result) {
	var err error
	if e, ok := r.Err.(*Error); ok {
		clog.Warn("openssl: %s failed (%s, exit %d): %s", action, e.Kind, e.Code, firstLine(e.Message))
		err = c.audit.LogFail(source, string(action), e.Kind.String(), r.ExitCode, r.Duration, e.Message)
	} else {
		clog.Debug("openssl: %s completed in %s", action, r.Duration)
		err = c.audit.LogComplete(source, string(action), r.ExitCode, r.Duration)
	}
	if err != nil {
		clog.Warn("openssl: %v", err)
	}
}

func joinMessage(reason, stderr string) string {
	if stderr == "" {
		return reason
	}
	return reason + ": " + stderr
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	line, _, _ := strings.Cut(s, "\n")
	return line
}
