package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xdg/sslexec/internal/term"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List expected stderr patterns",
	Long: `List the actions that have an expected stderr pattern.

openssl reports some successes on stderr. For a listed action, a run that
exits 0 with non-empty stderr fails unless stderr matches the pattern
(case-insensitive, anchored at the start). Actions not listed only fail on a
non-zero exit.

Patterns can be added, replaced or removed in the "patterns" section of the
config file.`,
	Args: cobra.NoArgs,
	RunE: runActions,
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}

func runActions(_ *cobra.Command, _ []string) error {
	client, err := newClient(auditSourceCLI)
	if err != nil {
		return err
	}
	patterns := client.Patterns()

	w := tabwriter.NewWriter(term.Stdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ACTION\tPATTERN")
	for _, action := range patterns.Actions() {
		_, _ = fmt.Fprintf(w, "%s\t%q\n", action, patterns.Source(action))
	}
	return w.Flush()
}
