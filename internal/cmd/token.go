package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xdg/sslexec/internal/clog"
	"github.com/xdg/sslexec/internal/term"
	"github.com/xdg/sslexec/internal/token"
)

var tokenWrite bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate an API token",
	Long: `Generate a random API token and print it.

With --write, the token is also saved to server.token_file, which "sslexec
serve" reads at startup. Clients pass it in an "Authorization: Bearer" or
X-Sslexec-Token header.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().BoolVarP(&tokenWrite, "write", "w", false, "save the token to server.token_file")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	tok := token.Generate()

	if tokenWrite {
		path := loadedConfig.Server.TokenFile
		if path == "" {
			return errors.New("server.token_file is not set in the config")
		}
		if err := token.WriteFile(path, tok); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		clog.Info("token: wrote new token to %s", path)
		term.Printf("Saved token to %s\n", path)
	}

	return term.Output([]byte(tok + "\n"))
}
