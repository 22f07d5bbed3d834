package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xdg/sslexec/internal/clog"
	"github.com/xdg/sslexec/internal/openssl"
	"github.com/xdg/sslexec/internal/prompt"
	"github.com/xdg/sslexec/internal/term"
)

// auditSourceCLI labels command-line calls in the audit log.
const auditSourceCLI = "cli"

var runFlags struct {
	in          string
	out         string
	optionsFile string
	timeout     time.Duration
	askPass     string
	printArgs   bool
}

// secretReader reads the passphrase for --ask-pass. Tests replace it.
var secretReader prompt.SecretReader = prompt.NewTerminalSecretReader(os.Stdin, os.Stderr)

var runCmd = &cobra.Command{
	Use:   "run [flags] <action> [option...]",
	Short: "Run an openssl action",
	Long: `Run one openssl action and classify the result.

The action is split on ".": the first part is the openssl subcommand and each
later part becomes a flag, so "req.new" runs "openssl req -new".

Options are words of the form:

  name          flag, rendered as -name
  ~name         rendered as the bare word name after all other options, which
                is how positional arguments such as numbits are passed
  name=value    scalar, rendered as "name value"
  name[]=value  repeated, rendered as "-name value" once per occurrence

Scalar names are passed through verbatim, so include the dash when openssl
expects one (e.g. -passin=env:PASS). Options given on the command line
override those read from --options-file. Flags for sslexec itself must come
before the action; every word after it is an option.

openssl's stdout is written to --out or to standard output; its stderr is
passed through. When the run fails, sslexec exits with openssl's exit code,
or 1 when stderr did not match the pattern expected for the action.`,
	Example: `  sslexec run genrsa -out=key.pem ~2048
  sslexec run --out req.pem req.new -key=key.pem -subj=/CN=example nodes
  sslexec run --in req.pem x509.req -signkey=key.pem -days=30
  sslexec run --in key.pem --ask-pass KEYPASS rsa -passin=env:KEYPASS`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	flags := runCmd.Flags()
	flags.SetInterspersed(false)
	flags.StringVar(&runFlags.in, "in", "", `file written to openssl's stdin ("-" for standard input)`)
	flags.StringVarP(&runFlags.out, "out", "o", "", "write openssl's stdout to this file")
	flags.StringVarP(&runFlags.optionsFile, "options-file", "f", "", "read options from a YAML or JSON file")
	flags.DurationVar(&runFlags.timeout, "timeout", 0, "kill openssl after this long (overrides openssl.timeout)")
	flags.StringVar(&runFlags.askPass, "ask-pass", "", "prompt for a passphrase and pass it in this environment variable")
	flags.BoolVar(&runFlags.printArgs, "print-args", false, "print the openssl command line without running it")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	action := openssl.Action(args[0])

	opts, err := loadRunOptions(runFlags.optionsFile, args[1:])
	if err != nil {
		return err
	}

	client, err := newClient(auditSourceCLI)
	if err != nil {
		return err
	}

	if runFlags.printArgs {
		line := append([]string{client.Binary()}, openssl.BuildArgs(action, opts)...)
		return term.Output([]byte(quoteArgs(line) + "\n"))
	}

	env, err := askPassEnv(runFlags.askPass, runFlags.in)
	if err != nil {
		return err
	}

	input, err := readInput(runFlags.in)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runFlags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runFlags.timeout)
		defer cancel()
	}

	stdout, err := client.Run(ctx, action, openssl.Call{
		Input:   input,
		Options: opts,
		Env:     env,
		Stderr:  term.Stderr(),
	})
	if err != nil {
		if len(stdout) > 0 && runFlags.out == "" {
			_ = term.Output(stdout)
		}
		return reportRunFailure(client, action, err)
	}

	return writeOutput(runFlags.out, stdout)
}

// loadRunOptions reads the options file, if any, and applies option words
// over it.
func loadRunOptions(path string, words []string) (*openssl.Options, error) {
	opts := openssl.NewOptions()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read options file: %w", err)
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			opts, err = openssl.ParseOptionsJSON(data)
		} else {
			opts, err = openssl.ParseOptionsYAML(data)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	fromWords, err := openssl.ParseOptionWords(words)
	if err != nil {
		return nil, err
	}
	fromWords.Each(func(name string, v openssl.Value) {
		opts.Set(name, v)
	})
	return opts, nil
}

func readInput(path string) ([]byte, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		data, err := io.ReadAll(term.Stdin())
		if err != nil {
			return nil, fmt.Errorf("read standard input: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// askPassEnv prompts for a passphrase and returns it as the environment
// variable name.
func askPassEnv(name, in string) (map[string]string, error) {
	if name == "" {
		return nil, nil
	}
	if strings.ContainsAny(name, "= ") {
		return nil, fmt.Errorf("invalid environment variable name %q", name)
	}
	if in == "-" {
		return nil, errors.New("--ask-pass cannot be combined with --in -")
	}
	secret, err := secretReader.ReadSecret(fmt.Sprintf("Passphrase (%s): ", name))
	if err != nil {
		return nil, err
	}
	return map[string]string{name: secret}, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		return term.Output(data)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	clog.Debug("run: wrote %d bytes to %s", len(data), path)
	term.Printf("Wrote %s\n", path)
	return nil
}

// reportRunFailure prints a one-line summary of a failed run. openssl's own
// stderr has already been passed through.
func reportRunFailure(client *openssl.Client, action openssl.Action, err error) error {
	var e *openssl.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case openssl.ErrorSpawn:
			term.Error("%v", err)
		case openssl.ErrorTerminated:
			term.Error("openssl %s was terminated", action)
		case openssl.ErrorPattern:
			term.Error("openssl %s exited 0 but its output did not match %q", action, client.Patterns().Source(action))
		default:
			term.Error("openssl %s failed with exit code %d", action, e.Code)
		}
	} else {
		term.Error("openssl %s: %v", action, err)
	}
	return NewExitCodeError(exitCodeFor(err))
}

// quoteArgs joins args for display, quoting those a shell would split.
func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'\\$") {
			quoted[i] = strconv.Quote(a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}
