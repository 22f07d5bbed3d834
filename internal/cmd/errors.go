package cmd

import (
	"errors"
	"fmt"

	"github.com/xdg/sslexec/internal/openssl"
)

// ExitCodeError makes the process exit with Code without printing anything.
// The cause has already been reported to the user.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError creates an ExitCodeError.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// Exit codes for failures that carry no openssl exit status.
const (
	exitFailure    = 1
	exitNotFound   = 127
	exitTerminated = 124
)

// exitCodeFor maps a classified openssl error to a process exit code.
// A non-zero openssl exit is passed through; a pattern mismatch exits 1.
func exitCodeFor(err error) int {
	var e *openssl.Error
	if !errors.As(err, &e) {
		return exitFailure
	}
	switch e.Kind {
	case openssl.ErrorExit:
		if e.Code > 0 {
			return e.Code
		}
	case openssl.ErrorSpawn:
		return exitNotFound
	case openssl.ErrorTerminated:
		return exitTerminated
	}
	return exitFailure
}
