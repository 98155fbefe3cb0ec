package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/timmattison/gitinfo/internal"
	"github.com/timmattison/gitinfo/internal/config"
)

var (
	initOutput string
	initForce  bool
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Commands for managing the gitinfo configuration.`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Check the configuration file for errors.

Examples:
  gitinfo config validate
  gitinfo config validate --config ci/gitinfo.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetConfig()
		if c == nil {
			return fmt.Errorf("configuration not loaded")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Configuration is valid")
		for _, field := range c.Fields() {
			fmt.Fprintf(out, "   %s: %s\n", field.Name, field.Value)
		}

		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Long: `Display the current configuration with all defaults applied.

Examples:
  gitinfo config show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetConfig()
		if c == nil {
			return fmt.Errorf("configuration not loaded")
		}

		data, err := config.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "# Current gitinfo configuration")
		fmt.Fprintln(out, "# (with defaults applied)")
		fmt.Fprintln(out)
		fmt.Fprint(out, string(data))

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an example configuration",
	Long: `Print an annotated example configuration, or write it to a file.

Examples:
  # Print example config to stdout
  gitinfo config init

  # Save example config next to the package
  gitinfo config init --output gitinfo.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if initOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), config.Example)
			return nil
		}

		if internal.FileExists(initOutput) && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite it", initOutput)
		}

		if err := os.WriteFile(initOutput, []byte(config.Example), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", initOutput, err)
		}

		log.Info("Wrote example configuration", "path", initOutput)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().StringVarP(&initOutput, "output", "o", "", "write the example to this file instead of stdout")
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}
