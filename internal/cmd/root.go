// Package cmd implements the CLI commands for sslexec.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xdg/sslexec/internal/audit"
	"github.com/xdg/sslexec/internal/clog"
	"github.com/xdg/sslexec/internal/config"
	"github.com/xdg/sslexec/internal/openssl"
	"github.com/xdg/sslexec/internal/term"
	"github.com/xdg/sslexec/internal/version"
)

// Command annotations read by the root pre-run hook.
const (
	// annotationNoConfig skips loading the configuration file.
	annotationNoConfig = "sslexec.no-config"
	// annotationDaemon keeps log output off stderr.
	annotationDaemon = "sslexec.daemon"
)

var (
	configFile string
	debug      bool
	silent     bool
)

var (
	// loadedConfig is set by the root pre-run hook.
	loadedConfig *config.Config
	auditLog     *audit.Logger
	auditCloser  io.Closer
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sslexec",
	Short: "Run openssl operations with classified results",
	Long: `sslexec drives the openssl command-line tool.

An action such as "req.new" or "x509.req" names an openssl subcommand and its
leading flags. Options are rendered into argv, input is streamed to openssl's
stdin, and the run is classified: a non-zero exit fails, and so does a zero
exit whose stderr does not match the expected pattern for the action.

Runs can be made from the command line (sslexec run) or over HTTP
(sslexec serve).`,
	Version:           version.String(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.BoolVar(&debug, "debug", false, "log at debug level")
	flags.BoolVarP(&silent, "silent", "s", false, "suppress informational output")
}

// setup loads the configuration and wires logging and auditing for the
// command about to run.
func setup(cmd *cobra.Command, _ []string) error {
	term.SetSilent(silent)

	if cmd.Annotations[annotationNoConfig] != "" {
		return nil
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	level, err := clog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if debug {
		level = clog.LevelDebug
	}
	err = clog.Configure(clog.Options{
		File:   cfg.Log.File,
		Level:  level,
		Daemon: cmd.Annotations[annotationDaemon] != "",
	})
	if err != nil {
		term.Warn("file logging disabled: %v", err)
	}

	if cfg.Audit.File != "" {
		f, err := clog.OpenLogFile(cfg.Audit.File)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		auditLog = audit.NewLogger(f)
		auditCloser = f
	}

	loadedConfig = cfg
	return nil
}

// teardown closes files opened by setup.
func teardown() {
	if auditCloser != nil {
		if err := auditCloser.Close(); err != nil {
			clog.Warn("close audit log: %v", err)
		}
	}
	auditLog = nil
	auditCloser = nil
	loadedConfig = nil
	if err := clog.Close(); err != nil {
		term.Warn("close log file: %v", err)
	}
}

// newClient builds an openssl client from the loaded configuration.
func newClient(source string) (*openssl.Client, error) {
	cfg := loadedConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	patterns, err := openssl.DefaultPatterns().With(cfg.Patterns)
	if err != nil {
		return nil, fmt.Errorf("patterns: %w", err)
	}
	return openssl.NewClient(
		openssl.WithBinary(cfg.OpenSSL.Binary),
		openssl.WithPatterns(patterns),
		openssl.WithTimeout(cfg.OpenSSL.TimeoutDuration()),
		openssl.WithWorkdir(cfg.OpenSSL.Workdir),
		openssl.WithEnv(cfg.OpenSSL.Env),
		openssl.WithAuditLogger(auditLog),
		openssl.WithSource(source),
	), nil
}

// Execute runs the root command and returns any error.
// Errors other than *ExitCodeError are reported on stderr.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a context that stops long-running
// commands when cancelled.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	teardown()
	if err != nil {
		var exitErr *ExitCodeError
		if !errors.As(err, &exitErr) {
			term.Error("%v", err)
		}
	}
	return err
}
