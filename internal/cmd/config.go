package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xdg/sslexec/internal/config"
	"github.com/xdg/sslexec/internal/prompt"
	"github.com/xdg/sslexec/internal/term"
)

var (
	configShowFormat string
	configInitTOML   bool
	configInitForce  bool
)

// yesNoPrompter confirms overwriting an existing config. Tests replace it.
var yesNoPrompter prompt.YesNoPrompter = prompt.NewStdinYesNoPrompter(os.Stdin, os.Stderr)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage sslexec's configuration.

The configuration file is stored at ~/.config/sslexec/config.yaml
(or $XDG_CONFIG_HOME/sslexec/config.yaml if XDG_CONFIG_HOME is set).
A .toml file may be used instead by passing --config.

Use the subcommands to view or initialize the configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective config",
	Long: `Print the effective configuration, with defaults filled in.

If no config file exists, shows the default configuration.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print config file path",
	Long:        `Print the path to the configuration file.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE:        runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	Long: `Create a fully-commented configuration file with all default values.

If the file already exists you are asked before it is replaced, unless
--force is given.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE:        runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "format", "yaml", "output format (yaml or toml)")
	configInitCmd.Flags().BoolVar(&configInitTOML, "toml", false, "write TOML instead of YAML")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "replace an existing file without asking")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	format := config.Format(configShowFormat)
	if format != config.FormatYAML && format != config.FormatTOML {
		return fmt.Errorf("unknown format %q (want yaml or toml)", configShowFormat)
	}

	data, err := config.Marshal(loadedConfig, format)
	if err != nil {
		return err
	}
	return term.Output(data)
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	return term.Output([]byte(configPath() + "\n"))
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := configPath()
	if configFile == "" && configInitTOML {
		path = filepath.Join(config.Dir(), "config.toml")
	}

	_, err := config.WriteDefault(path, configInitForce)
	if errors.Is(err, os.ErrExist) {
		ok, perr := yesNoPrompter.PromptYesNo(fmt.Sprintf("%s already exists. Replace it?", path), false)
		if perr != nil {
			return perr
		}
		if !ok {
			term.Println("Left existing config unchanged")
			return nil
		}
		_, err = config.WriteDefault(path, true)
	}
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}

	term.Printf("Created default config at: %s\n", path)
	return nil
}

// configPath returns the --config path or the default location.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	return config.DefaultPath()
}
