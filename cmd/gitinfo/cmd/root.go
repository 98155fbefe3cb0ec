// Package cmd contains the gitinfo CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/timmattison/gitinfo/internal/config"
	"github.com/timmattison/gitinfo/internal/version"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Loaded configuration (available to subcommands)
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gitinfo",
	Short: "Generate Go constants from git metadata",
	Long: `gitinfo reads the commit, branch, tag and dirty state of a working tree
and writes them as Go constants, along with a version derived from the
nearest tag.

Typical use is a go:generate directive in the package that should carry
the constants:

  //go:generate go run github.com/timmattison/gitinfo/cmd/gitinfo generate`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configureLogging()

		// Skip config loading for certain commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" && cmd.Name() == "init" {
			return nil
		}

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		cfg = loaded

		return nil
	},
}

// Execute runs the root command and logs any error it returns.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		log.Error(err)
	}

	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		fmt.Sprintf("config file (default: $%s or ./gitinfo.yaml)", config.EnvConfig))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.SetVersionTemplate(`{{printf "gitinfo %s\n" .Version}}`)
}

func configureLogging() {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)
	log.SetLevel(log.InfoLevel)

	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// GetConfig returns the loaded configuration.
// Returns nil if config hasn't been loaded yet.
func GetConfig() *config.Config {
	return cfg
}

// SetConfig sets the configuration (useful for testing).
func SetConfig(c *config.Config) {
	cfg = c
}
