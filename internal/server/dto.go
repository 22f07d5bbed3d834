package server

import (
	"errors"
	"fmt"

	"github.com/xdg/sslexec/internal/openssl"
)

// Entry is one openssl option on the wire. Exactly one of Flag, Value and
// Values must be set. Entries are applied in order, so the list keeps the
// argument order that an object would lose.
type Entry struct {
	Name   string   `json:"name" cbor:"name"`
	Flag   *bool    `json:"flag,omitempty" cbor:"flag,omitempty"`
	Value  *string  `json:"value,omitempty" cbor:"value,omitempty"`
	Values []string `json:"values,omitempty" cbor:"values,omitempty"`
}

// ExecRequest is the body of POST /v1/exec.
type ExecRequest struct {
	Action  string  `json:"action" cbor:"action"`
	Input   []byte  `json:"input,omitempty" cbor:"input,omitempty"`
	Options []Entry `json:"options,omitempty" cbor:"options,omitempty"`
	// Timeout is a Go duration string such as "30s". It can only shorten
	// the server's configured timeout.
	Timeout string `json:"timeout,omitempty" cbor:"timeout,omitempty"`
}

// ExecResponse reports a finished openssl invocation.
type ExecResponse struct {
	OK       bool   `json:"ok" cbor:"ok"`
	ExitCode int    `json:"exit_code" cbor:"exit_code"`
	Stdout   []byte `json:"stdout,omitempty" cbor:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty" cbor:"stderr,omitempty"`
	Error    string `json:"error,omitempty" cbor:"error,omitempty"`
	Kind     string `json:"kind,omitempty" cbor:"kind,omitempty"`
}

// ActionPattern is one row of the expected-pattern table.
type ActionPattern struct {
	Action  string `json:"action" cbor:"action"`
	Pattern string `json:"pattern" cbor:"pattern"`
}

// ActionsResponse is the body of GET /v1/actions.
type ActionsResponse struct {
	Actions []ActionPattern `json:"actions" cbor:"actions"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status" cbor:"status"`
	Version string `json:"version,omitempty" cbor:"version,omitempty"`
	Binary  string `json:"binary,omitempty" cbor:"binary,omitempty"`
}

// ErrorResponse is returned for requests that never reached openssl.
type ErrorResponse struct {
	Error string `json:"error" cbor:"error"`
}

// FlagEntry builds a flag entry.
func FlagEntry(name string, on bool) Entry { return Entry{Name: name, Flag: &on} }

// ValueEntry builds a scalar entry.
func ValueEntry(name, value string) Entry { return Entry{Name: name, Value: &value} }

// ValuesEntry builds a repeated entry.
func ValuesEntry(name string, values ...string) Entry {
	if values == nil {
		values = []string{}
	}
	return Entry{Name: name, Values: values}
}

// OptionsFromEntries converts wire entries to openssl options.
func OptionsFromEntries(entries []Entry) (*openssl.Options, error) {
	opts := openssl.NewOptions()
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("options[%d]: missing name", i)
		}
		set := 0
		if e.Flag != nil {
			set++
		}
		if e.Value != nil {
			set++
		}
		if e.Values != nil {
			set++
		}
		if set != 1 {
			return nil, fmt.Errorf("options[%d] %q: exactly one of flag, value or values is required", i, e.Name)
		}

		switch {
		case e.Flag != nil:
			opts.Set(e.Name, openssl.Flag(*e.Flag))
		case e.Value != nil:
			opts.Set(e.Name, openssl.Scalar(*e.Value))
		default:
			opts.Set(e.Name, openssl.Repeated(e.Values...))
		}
	}
	return opts, nil
}

var errMissingAction = errors.New("action is required")
