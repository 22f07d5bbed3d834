// Package audit records one line per openssl invocation event.
// Lines use a key=value format suitable for grep and log shippers.
package audit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EventType is the kind of invocation event.
type EventType string

const (
	EventInvoke   EventType = "INVOKE"
	EventComplete EventType = "COMPLETE"
	EventFail     EventType = "FAIL"
)

// Event is a single audit log entry.
type Event struct {
	Timestamp time.Time
	Type      EventType

	// Source identifies the caller, e.g. "cli" or "api:<request id>".
	Source string

	Action string
	Args   []string

	// ExitCode and Duration are set for COMPLETE and FAIL events.
	ExitCode int
	Duration time.Duration

	// Kind and Reason are set for FAIL events.
	Kind   string
	Reason string
}

// Format renders the event as a single line, e.g.
//
//	2026-01-15T14:32:05Z OPENSSL COMPLETE source=cli action="req.new" exit=0 duration=12.5ms
func (e *Event) Format() string {
	var b strings.Builder

	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(" OPENSSL ")
	b.WriteString(string(e.Type))
	writeField(&b, "source", e.Source)
	b.WriteString(" action=")
	b.WriteString(strconv.Quote(e.Action))

	switch e.Type {
	case EventInvoke:
		b.WriteString(" args=")
		b.WriteString(strconv.Quote(strings.Join(e.Args, " ")))
	case EventComplete:
		writeExit(&b, e)
	case EventFail:
		writeField(&b, "kind", e.Kind)
		writeExit(&b, e)
		if e.Reason != "" {
			b.WriteString(" reason=")
			b.WriteString(strconv.Quote(firstLine(e.Reason)))
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(value)
}

func writeExit(b *strings.Builder, e *Event) {
	b.WriteString(" exit=")
	b.WriteString(strconv.Itoa(e.ExitCode))
	b.WriteString(" duration=")
	b.WriteString(formatDuration(e.Duration))
}

// firstLine keeps multi-line openssl diagnostics on one audit line.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// formatDuration formats a duration as e.g. "2.3ms", "1.5s" or "1m30s".
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

// Logger writes audit events to an io.Writer. A nil *Logger discards events.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLogger creates an audit logger that writes to w.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Log writes an event, stamping it with the current time if unset.
func (l *Logger) Log(e *Event) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	if _, err := io.WriteString(l.w, e.Format()+"\n"); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// LogInvoke logs an INVOKE event.
func (l *Logger) LogInvoke(source, action string, args []string) error {
	return l.Log(&Event{Type: EventInvoke, Source: source, Action: action, Args: args})
}

// LogComplete logs a COMPLETE event.
func (l *Logger) LogComplete(source, action string, exitCode int, d time.Duration) error {
	return l.Log(&Event{Type: EventComplete, Source: source, Action: action, ExitCode: exitCode, Duration: d})
}

// LogFail logs a FAIL event.
func (l *Logger) LogFail(source, action, kind string, exitCode int, d time.Duration, reason string) error {
	return l.Log(&Event{
		Type:     EventFail,
		Source:   source,
		Action:   action,
		Kind:     kind,
		ExitCode: exitCode,
		Duration: d,
		Reason:   reason,
	})
}
