package cmd

import (
	"context"
	"fmt"
	"go/format"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/timmattison/gitinfo/internal"
	"github.com/timmattison/gitinfo/internal/config"
	"github.com/timmattison/gitinfo/internal/generator"
	"github.com/timmattison/gitinfo/internal/watch"
)

// generateOptions holds flags that override the configuration file.
type generateOptions struct {
	namespace    string
	dir          string
	output       string
	debugOutput  string
	template     string
	records      string
	backend      string
	gitBin       string
	tagPattern   string
	debug        bool
	versionAttrs bool

	stdout        bool
	watch         bool
	watchWorkTree bool
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the generated constants file",
	Long: `Collect git metadata for the project directory and write the generated
Go source. Files are only rewritten when their content changes.

Examples:
  gitinfo generate
  gitinfo generate --namespace buildinfo --output internal/buildinfo/gitinfo.go
  gitinfo generate --backend none --records release.records
  gitinfo generate --watch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetConfig()
		if c == nil {
			return fmt.Errorf("configuration not loaded")
		}

		if err := genOpts.apply(cmd.Flags(), c); err != nil {
			return err
		}

		if genOpts.stdout {
			return generateTo(cmd.Context(), c, cmd.OutOrStdout())
		}

		if err := generateFiles(cmd.Context(), c); err != nil {
			return err
		}

		if !genOpts.watch {
			return nil
		}

		return watchAndGenerate(cmd.Context(), c)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	bindGenerateFlags(generateCmd.Flags(), &genOpts)
}

func bindGenerateFlags(flags *pflag.FlagSet, o *generateOptions) {
	flags.StringVarP(&o.namespace, "namespace", "n", "", "Go package name of the generated files")
	flags.StringVarP(&o.dir, "dir", "C", "", "project directory git runs in")
	flags.StringVarP(&o.output, "output", "o", "", "path of the generated constants file")
	flags.StringVar(&o.debugOutput, "debug-output", "", "path of the generated debug file")
	flags.StringVarP(&o.template, "template", "t", "", "custom template file using $(Name) placeholders")
	flags.StringVarP(&o.records, "records", "r", "", "file of Name|Type|Value records")
	flags.StringVar(&o.backend, "backend", "", "git backend: exec, go-git, auto or none")
	flags.StringVar(&o.gitBin, "git", "", "git executable name or absolute path")
	flags.StringVar(&o.tagPattern, "tag-pattern", "", "regular expression with MAJOR, MINOR and PATCH groups")
	flags.BoolVar(&o.debug, "debug", false, "also write the debug file with the full generator context")
	flags.BoolVar(&o.versionAttrs, "version-attrs", false, "emit Version, FileVersion and InformationalVersion")
	flags.BoolVar(&o.stdout, "stdout", false, "print the constants file instead of writing it")
	flags.BoolVarP(&o.watch, "watch", "w", false, "regenerate whenever HEAD, the index, branches or tags change")
	flags.BoolVar(&o.watchWorkTree, "watch-worktree", false, "with --watch, also regenerate on working tree edits")
}

// apply copies every flag the user set onto c and revalidates it.
func (o *generateOptions) apply(flags *pflag.FlagSet, c *config.Config) error {
	overrides := []struct {
		flag   string
		source string
		target *string
	}{
		{"namespace", o.namespace, &c.Namespace},
		{"dir", o.dir, &c.ProjectDir},
		{"output", o.output, &c.Output},
		{"debug-output", o.debugOutput, &c.DebugOutput},
		{"template", o.template, &c.Template},
		{"records", o.records, &c.Records},
		{"backend", o.backend, &c.Backend},
		{"git", o.gitBin, &c.GitBin},
		{"tag-pattern", o.tagPattern, &c.TagPattern},
	}

	for _, s := range overrides {
		if flags.Changed(s.flag) {
			*s.target = s.source
		}
	}

	if flags.Changed("debug") {
		c.GenerateDebug = o.debug
	}

	if flags.Changed("version-attrs") {
		c.GenerateVersion = o.versionAttrs
	}

	if o.watchWorkTree && !o.watch {
		return fmt.Errorf("--watch-worktree requires --watch")
	}

	if o.watch && o.stdout {
		return fmt.Errorf("--watch cannot be combined with --stdout")
	}

	config.ApplyDefaults(c)

	if err := config.Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

func generate(ctx context.Context, c *config.Config) (*generator.Result, error) {
	raw, err := readRecords(c.Records)
	if err != nil {
		return nil, err
	}

	result, err := generator.Generate(ctx, c.ProjectDir, raw, c)
	if err != nil {
		return nil, err
	}

	log.Debug("Derived version", "version", result.Version)

	return result, nil
}

func generateTo(ctx context.Context, c *config.Config, w io.Writer) error {
	result, err := generate(ctx, c)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, formatSource(c.Output, result.Source))

	return err
}

func generateFiles(ctx context.Context, c *config.Config) error {
	result, err := generate(ctx, c)
	if err != nil {
		return err
	}

	if err := writeOutput(c.Output, result.Source); err != nil {
		return err
	}

	if c.GenerateDebug {
		if err := writeOutput(c.DebugOutput, result.Debug); err != nil {
			return err
		}
	}

	return nil
}

func readRecords(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read records %s: %w", path, err)
	}

	return string(data), nil
}

func writeOutput(path, source string) error {
	n, written, err := internal.WriteFileIfChanged(path, []byte(formatSource(path, source)))
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if !written {
		log.Info("Up to date", "path", path)
		return nil
	}

	log.Info("Wrote", "path", path, "size", internal.PrettyPrintBytes(uint64(n)))

	return nil
}

// formatSource gofmts generated Go. Custom templates are not required to
// produce Go, so anything that does not parse is written as rendered.
func formatSource(path, source string) string {
	formatted, err := format.Source([]byte(source))
	if err != nil {
		log.Debug("Generated source is not gofmt-able, writing it as rendered", "path", path, "err", err)
		return source
	}

	return string(formatted)
}

func watchAndGenerate(ctx context.Context, c *config.Config) error {
	gitDir, err := internal.FindGitDir(c.ProjectDir)
	if err != nil {
		return fmt.Errorf("--watch needs a git repository above %s: %w", c.ProjectDir, err)
	}

	opts := watch.Options{
		GitDir: gitDir,
		Ignore: []string{c.Output, c.DebugOutput},
	}

	if genOpts.watchWorkTree {
		opts.WorkTree = c.ProjectDir
	}

	w, err := watch.New(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Watching for repository changes", "gitDir", gitDir)

	return w.Run(ctx, func(ctx context.Context) error {
		return generateFiles(ctx, c)
	})
}
