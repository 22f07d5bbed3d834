// Package prompt provides interactive prompts for the sslexec CLI,
// designed for testability with mock implementations.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// SecretReader reads a secret such as a key passphrase without echoing it.
type SecretReader interface {
	// ReadSecret displays prompt and returns the entered secret with any
	// trailing line ending removed.
	ReadSecret(prompt string) (string, error)
}

// TerminalSecretReader implements SecretReader using golang.org/x/term.
// When In is not a terminal, a single line is read instead so secrets can
// be piped in.
type TerminalSecretReader struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalSecretReader creates a TerminalSecretReader that reads from in
// (typically os.Stdin) and writes prompts to out.
func NewTerminalSecretReader(in *os.File, out io.Writer) *TerminalSecretReader {
	return &TerminalSecretReader{In: in, Out: out}
}

// ReadSecret displays the prompt and reads input with echoing disabled.
func (r *TerminalSecretReader) ReadSecret(prompt string) (string, error) {
	fd := int(r.In.Fd())
	if !term.IsTerminal(fd) {
		return readLine(r.In)
	}

	_, _ = fmt.Fprint(r.Out, prompt)
	secret, err := term.ReadPassword(fd)
	// ReadPassword swallows the newline.
	_, _ = fmt.Fprintln(r.Out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(secret), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read secret: %w", err)
	}
	if line == "" && errors.Is(err, io.EOF) {
		return "", errors.New("read secret: no input")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// MockSecretReader implements SecretReader for testing, returning
// pre-configured secrets.
type MockSecretReader struct {
	// Secrets is a queue of secrets to return for successive calls.
	Secrets []string
	// Err, if set, is returned by every call.
	Err error
	// Calls records all prompts passed to ReadSecret.
	Calls []string

	callIndex int
}

// NewMockSecretReader creates a MockSecretReader with the given secrets.
func NewMockSecretReader(secrets ...string) *MockSecretReader {
	return &MockSecretReader{Secrets: secrets}
}

// ReadSecret returns the next pre-configured secret or error.
func (m *MockSecretReader) ReadSecret(prompt string) (string, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if m.callIndex < len(m.Secrets) {
		s := m.Secrets[m.callIndex]
		m.callIndex++
		return s, nil
	}
	return "", nil
}

// YesNoPrompter asks for a yes/no confirmation.
type YesNoPrompter interface {
	// PromptYesNo displays a yes/no prompt and returns the user's response.
	// If the user presses Enter without input, defaultYes determines the result.
	PromptYesNo(prompt string, defaultYes bool) (bool, error)
}

// StdinYesNoPrompter implements YesNoPrompter using stdin/stdout.
type StdinYesNoPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewStdinYesNoPrompter creates a StdinYesNoPrompter that reads from r and writes to w.
func NewStdinYesNoPrompter(r io.Reader, w io.Writer) *StdinYesNoPrompter {
	return &StdinYesNoPrompter{In: r, Out: w}
}

// PromptYesNo displays the prompt and reads user input.
// Accepts "y" and "yes" as true and "n" and "no" as false, in any case.
// Empty input returns defaultYes.
func (p *StdinYesNoPrompter) PromptYesNo(prompt string, defaultYes bool) (bool, error) {
	hint := " [y/N] "
	if defaultYes {
		hint = " [Y/n] "
	}
	_, _ = fmt.Fprint(p.Out, prompt+hint)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read input: %w", err)
	}

	switch input := strings.ToLower(strings.TrimSpace(line)); input {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid input %q: expected y/n", input)
	}
}

// MockYesNoPrompter implements YesNoPrompter for testing.
type MockYesNoPrompter struct {
	// Responses is a queue of responses to return for successive calls.
	// When exhausted, the default is returned.
	Responses []bool
	// Calls records all prompts passed to PromptYesNo.
	Calls []string

	callIndex int
}

// NewMockYesNoPrompter creates a MockYesNoPrompter with the given responses.
func NewMockYesNoPrompter(responses ...bool) *MockYesNoPrompter {
	return &MockYesNoPrompter{Responses: responses}
}

// PromptYesNo returns the next pre-configured response.
func (m *MockYesNoPrompter) PromptYesNo(prompt string, defaultYes bool) (bool, error) {
	m.Calls = append(m.Calls, prompt)
	if m.callIndex < len(m.Responses) {
		r := m.Responses[m.callIndex]
		m.callIndex++
		return r, nil
	}
	return defaultYes, nil
}
