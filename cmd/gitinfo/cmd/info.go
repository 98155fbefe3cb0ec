package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/spf13/cobra"

	"github.com/timmattison/gitinfo/internal/config"
	"github.com/timmattison/gitinfo/internal/generator"
	"github.com/timmattison/gitinfo/internal/records"
)

const (
	infoLabelWidth = 22
	infoValueWidth = 64
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle     = lipgloss.NewStyle().Width(infoLabelWidth)
	versionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dirtyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")) // darker grey
)

var infoRecords string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the git facts and derived version without writing files",
	Long: `Collect the same facts a generate pass would and print them.

Examples:
  gitinfo info
  gitinfo info --dir ../service
  gitinfo info --records release.records`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetConfig()
		if c == nil {
			return fmt.Errorf("configuration not loaded")
		}

		if cmd.Flags().Changed("dir") {
			c.ProjectDir = genOpts.dir
		}

		if cmd.Flags().Changed("records") {
			c.Records = infoRecords
		}

		result, err := generate(cmd.Context(), c)
		if err != nil {
			return err
		}

		writeInfo(cmd.OutOrStdout(), c, result)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&genOpts.dir, "dir", "C", "", "project directory git runs in")
	infoCmd.Flags().StringVarP(&infoRecords, "records", "r", "", "file of Name|Type|Value records")
}

// writeInfo prints the facts and the records exactly as the generation pass
// used them.
func writeInfo(w io.Writer, c *config.Config, result *generator.Result) {
	var output strings.Builder

	line := func(label, value string) {
		wrapped := wrap.String(value, infoValueWidth)
		output.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label+":"), wrapped))
		output.WriteString("\n")
	}

	separator := separatorStyle.Render(strings.Repeat("─", infoLabelWidth+infoValueWidth))

	output.WriteString(headerStyle.Render("gitinfo "+c.ProjectDir) + "\n")
	output.WriteString(separator + "\n")

	if facts := result.Facts; facts != nil {
		line("Root", facts.Root)
		line("Branch", facts.Branch)
		line("Commit", facts.CommitHash)
		line("Short hash", facts.ShortHash)
		line("Commit date", facts.CommitDate)
		line("Tag", facts.Tag)

		dirty := facts.Dirty()
		if facts.IsDirty {
			dirty = dirtyStyle.Render(dirty)
		}
		line("Dirty", dirty)

		tool := strings.TrimSpace(facts.ToolPath + " " + facts.ToolVersion)
		if tool == "" {
			tool = "not found"
		}
		line("Git", tool)
	} else {
		line("Backend", "none")
	}

	output.WriteString(separator + "\n")
	line("Version", versionStyle.Render(result.Version.String()))

	if len(result.Records) > 0 {
		line("Records", strings.TrimSuffix(records.Format(result.Records), "\n"))
	}

	fmt.Fprint(w, output.String())
}
