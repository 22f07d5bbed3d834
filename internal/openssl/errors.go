package openssl

import "errors"

// ErrorKind classifies a failed invocation.
type ErrorKind int

const (
	// ErrorExit means openssl exited with a non-zero status.
	ErrorExit ErrorKind = iota + 1
	// ErrorPattern means openssl exited zero but its stderr did not match
	// the expected pattern for the action.
	ErrorPattern
	// ErrorSpawn means openssl could not be started.
	ErrorSpawn
	// ErrorTerminated means the run was cancelled, timed out or terminated.
	ErrorTerminated
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorExit:
		return "exit"
	case ErrorPattern:
		return "pattern"
	case ErrorSpawn:
		return "spawn"
	case ErrorTerminated:
		return "terminated"
	}
	return "unknown"
}

// Sentinels matched by *Error through errors.Is.
var (
	ErrNonZeroExit     = errors.New("openssl exited with non-zero status")
	ErrPatternMismatch = errors.New("openssl stderr did not match expected pattern")
	ErrSpawn           = errors.New("openssl could not be started")
	ErrTerminated      = errors.New("openssl was terminated")
)

// Error describes a failed invocation. Message holds openssl's stderr for
// exit and pattern failures.
type Error struct {
	Action  Action
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNonZeroExit:
		return e.Kind == ErrorExit
	case ErrPatternMismatch:
		return e.Kind == ErrorPattern
	case ErrSpawn:
		return e.Kind == ErrorSpawn
	case ErrTerminated:
		return e.Kind == ErrorTerminated
	}
	return false
}

// ExitCode returns the exit code carried by err, or 0 if err is nil or
// not an *Error.
func ExitCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
