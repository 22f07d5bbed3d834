// Package term provides user-facing terminal output for the sslexec CLI.
// This is distinct from operational logging (see internal/clog).
//
// Output functions:
//   - Print/Printf/Println: informational output to stdout (suppressed with --silent)
//   - Output: openssl's own output, written verbatim (never suppressed)
//   - Warn/Error: diagnostics to stderr (never suppressed)
//
// The package-level functions act on a process-wide Terminal.
package term

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Terminal holds the streams used for user-facing I/O.
type Terminal struct {
	mu     sync.Mutex
	in     io.Reader
	out    io.Writer
	err    io.Writer
	silent bool
}

// New returns a Terminal on the process's standard streams.
func New() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stdout, err: os.Stderr}
}

var std = New()

// info returns the writer for informational output, or nil when silent.
func (t *Terminal) info() io.Writer {
	if t.silent {
		return nil
	}
	return t.out
}

// Printf writes informational output unless silent.
func (t *Terminal) Printf(format string, a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if w := t.info(); w != nil {
		_, _ = fmt.Fprintf(w, format, a...)
	}
}

// Output writes data to stdout unchanged, regardless of silent mode.
func (t *Terminal) Output(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.out.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Diagnose writes a prefixed line to stderr.
func (t *Terminal) Diagnose(prefix, format string, a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.err, "%s: %s\n", prefix, fmt.Sprintf(format, a...))
}

// SetSilent enables or disables silent mode.
// When silent, Print/Printf/Println are suppressed.
// Warn and Error are NOT suppressed (users should always see these).
func SetSilent(s bool) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.silent = s
}

// IsSilent returns whether silent mode is enabled.
func IsSilent() bool {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.silent
}

// SetOutput sets the writer for stdout output. Pass nil to use os.Stdout.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.out = orDefault(w, os.Stdout)
}

// SetErrOutput sets the writer for stderr output. Pass nil to use os.Stderr.
func SetErrOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.err = orDefault(w, os.Stderr)
}

// SetInput sets the reader returned by Stdin. Pass nil to use os.Stdin.
func SetInput(r io.Reader) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if r == nil {
		r = os.Stdin
	}
	std.in = r
}

func orDefault(w io.Writer, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// Print and its variants write informational output unless silent.
func Print(a ...any)                 { std.Printf("%s", fmt.Sprint(a...)) }
func Printf(format string, a ...any) { std.Printf(format, a...) }
func Println(a ...any)               { std.Printf("%s", fmt.Sprintln(a...)) }

// Output writes data to stdout unchanged. It is used for openssl's output,
// which callers pipe onward, so silent mode does not apply.
func Output(data []byte) error { return std.Output(data) }

// Warn writes "Warning: <msg>" to stderr.
func Warn(format string, a ...any) { std.Diagnose("Warning", format, a...) }

// Error writes "Error: <msg>" to stderr.
func Error(format string, a ...any) { std.Diagnose("Error", format, a...) }

// Stdout returns the writer for informational output, for libraries such
// as tabwriter. It is io.Discard in silent mode.
func Stdout() io.Writer {
	std.mu.Lock()
	defer std.mu.Unlock()
	if w := std.info(); w != nil {
		return w
	}
	return io.Discard
}

// Stdin returns the current stdin reader.
func Stdin() io.Reader {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.in
}

// Stderr returns the current stderr writer.
func Stderr() io.Writer {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.err
}

// Reset restores the standard streams and clears silent mode.
// Primarily useful for testing.
func Reset() {
	fresh := New()
	std.mu.Lock()
	defer std.mu.Unlock()
	std.in, std.out, std.err, std.silent = fresh.in, fresh.out, fresh.err, false
}

// Discard drops all output. Useful for silencing output in tests.
func Discard() {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.out = io.Discard
	std.err = io.Discard
}
