package clog

import (
	"io"
	"sync"
)

var (
	stdMu sync.RWMutex
	std   = NewLogger()
	// closer is the file opened by Configure, if any.
	closer io.Closer
)

func global() *Logger {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

// Options configures the global logger.
type Options struct {
	// File is the log file path. Empty disables file logging.
	File   string
	Level  Level
	Daemon bool
}

// Configure applies opts to the global logger, opening the log file if
// one is named. A previously opened log file is closed.
func Configure(opts Options) error {
	l := global()
	l.SetLevel(opts.Level)
	l.SetDaemonMode(opts.Daemon)

	if opts.File == "" {
		return nil
	}
	f, err := OpenLogFile(opts.File)
	if err != nil {
		return err
	}
	if err := Close(); err != nil {
		l.Warn("close previous log file: %v", err)
	}
	l.SetFileOutput(f)

	stdMu.Lock()
	closer = f
	stdMu.Unlock()
	return nil
}

// Close closes the log file opened by Configure.
func Close() error {
	stdMu.Lock()
	c := closer
	closer = nil
	stdMu.Unlock()

	if c == nil {
		return nil
	}
	global().SetFileOutput(nil)
	return c.Close()
}

// ReplaceGlobal swaps the global logger and returns the previous one.
// Tests use it to capture output.
func ReplaceGlobal(l *Logger) *Logger {
	stdMu.Lock()
	defer stdMu.Unlock()
	old := std
	std = l
	return old
}

// Discard silences the global logger.
func Discard() {
	l := global()
	l.SetFileOutput(nil)
	l.SetErrOutput(nil)
}

func Debug(format string, args ...any) { global().Debug(format, args...) }
func Info(format string, args ...any)  { global().Info(format, args...) }
func Warn(format string, args ...any)  { global().Warn(format, args...) }
func Error(format string, args ...any) { global().Error(format, args...) }

// Writer returns an io.Writer that logs each write as one message at level.
// It lets net/http and other libraries log through clog.
func Writer(level Level) io.Writer {
	return levelWriter(level)
}

type levelWriter Level

func (w levelWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	global().log(Level(w), "%s", msg)
	return len(p), nil
}
