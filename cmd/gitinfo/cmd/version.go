package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timmattison/gitinfo/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gitinfo version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String("gitinfo"))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
