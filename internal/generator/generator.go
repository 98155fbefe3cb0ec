// Package generator turns repository facts and data records into Go source.
//
// Generate is the whole pipeline: it queries the repository, derives the
// version from the Tag record and renders the templates. Build is the pure
// part of it and is what tests and other drivers use when they already have
// the facts.
package generator

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/timmattison/gitinfo/internal/config"
	"github.com/timmattison/gitinfo/internal/records"
	"github.com/timmattison/gitinfo/internal/render"
	"github.com/timmattison/gitinfo/internal/semver"
	"github.com/timmattison/gitinfo/internal/vcs"
)

var (
	//go:embed templates/gitinfo.go.tpl
	DefaultTemplate string

	//go:embed templates/gitinfo_debug.go.tpl
	DebugTemplate string
)

// Result is the output of one generation pass.
type Result struct {
	Source  string
	Debug   string
	Version semver.Version
	// Facts is nil when the pass ran without a VCS backend.
	Facts   *vcs.Facts
	// Context holds the raw, unescaped values the templates were rendered from.
	Context *render.Context
	// Records is the deduplicated record list, Tag included.
	Records []records.Record
}

// Generate runs a full pass for workingDir. rawRecords holds extra
// Name|Type|Value lines. Failed git queries end up as values in the output;
// only a missing Tag record or an invalid configuration is an error.
func Generate(ctx context.Context, workingDir, rawRecords string, cfg *config.Config) (*Result, error) {
	template := DefaultTemplate

	if cfg.Template != "" {
		data, err := os.ReadFile(cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", cfg.Template, err)
		}
		template = string(data)
	}

	var facts *vcs.Facts

	if cfg.Backend != vcs.BackendNone {
		querier, tool, err := vcs.Open(ctx, cfg.Backend, cfg.GitBin, workingDir)
		if err != nil {
			return nil, err
		}

		if tool == (vcs.Tool{}) {
			log.Debug("git not found", "bin", cfg.GitBin, "backend", cfg.Backend)
		}

		if inProcess, ok := querier.(*vcs.InProcessClient); ok && inProcess.Err() != nil {
			log.Warn("Repository could not be opened, git facts will carry the error", "dir", workingDir, "err", inProcess.Err())
		}

		collected := vcs.Collect(ctx, querier, tool)
		facts = &collected

		log.Debug("Collected git facts", "root", facts.Root, "tag", facts.Tag, "dirty", facts.IsDirty)
	}

	return Build(facts, records.Parse(rawRecords), cfg, template)
}

// quotedFacts are the facts the default template places between double
// quotes. Their values are escaped only when the template is rendered.
var quotedFacts = []string{
	"GitPath",
	"GitVersion",
	"GitRoot",
	"GitBranch",
	"GitCommitHash",
	"GitCommitShortHash",
	"GitCommitDate",
	"GitTag",
}

// versionNames are declared by the version attribute block.
var versionNames = []string{"Version", "FileVersion", "InformationalVersion"}

// Build renders template from already collected facts. With facts present
// the describe label supplies the Tag record unless the records carry one.
// Without facts the records must contain Tag.
func Build(facts *vcs.Facts, list []records.Record, cfg *config.Config, template string) (*Result, error) {
	pattern, err := semver.Compile(cfg.TagPattern)
	if err != nil {
		return nil, err
	}

	if facts != nil {
		list = records.Merge([]records.Record{{Name: records.TagName, Type: records.TypeDebug, Value: facts.Tag}}, list...)
	} else {
		list = records.Merge(nil, list...)
	}

	tag, err := records.Find(list, records.TagName)
	if err != nil {
		return nil, fmt.Errorf("derive version: %w", err)
	}

	version := semver.Derive(tag.Value, pattern)

	log.Debug("Derived version", "tag", tag.Value, "version", version)

	// ctx holds raw values. Escaping happens once, where a value is written
	// into a string literal or a comment.
	ctx := render.NewContext()

	for _, field := range cfg.Fields() {
		ctx.Set(field.Name, field.Value)
	}

	if facts != nil {
		setFacts(ctx, facts)
	} else {
		// Zero facts keep the default template compilable; records can
		// still supply real values.
		setFacts(ctx, &vcs.Facts{})
	}

	ctx.Set("GitTag", tag.Value)

	for _, record := range list {
		ctx.Set(record.Name, record.Value)
	}

	ctx.Set("Version", version.String())
	ctx.Set("Context", contextComment(cfg, facts))
	ctx.Set("VersionAttributes", "")

	if cfg.GenerateVersion {
		ctx.Set("VersionAttributes", "\n"+versionAttributes(version, tag.Value))
	}

	ctx.Set("Constants", "")

	if constants := render.Constants(list, declared(template, cfg)...); constants != "" {
		ctx.Set("Constants", "\n"+constants)
	}

	ctx.Set("DebugProps", render.Indent(render.PropertyDump(ctx)))

	for _, name := range render.Placeholders(template) {
		if _, ok := ctx.Get(name); !ok {
			log.Warn("Template references an unknown placeholder", "name", name, "renders", render.Unknown)
		}
	}

	result := &Result{
		Source:  render.Render(template, quoted(ctx)),
		Version: version,
		Facts:   facts,
		Context: ctx,
		Records: list,
	}

	if cfg.GenerateDebug {
		result.Debug = render.Render(DebugTemplate, ctx)
	}

	return result, nil
}

// declared lists the record names that template or the version block
// already declare. A record with one of these names overrides the value
// through the context instead of getting a const of its own.
func declared(template string, cfg *config.Config) []string {
	var names []string

	referenced := map[string]bool{}
	for _, name := range render.Placeholders(template) {
		referenced[name] = true
	}

	for _, name := range append([]string{"GitIsDirty"}, quotedFacts...) {
		if referenced[name] {
			names = append(names, name)
		}
	}

	if cfg.GenerateVersion {
		names = append(names, versionNames...)
	}

	return names
}

// quoted returns a copy of ctx with the quoted facts escaped, so error
// text from a failed query still yields a valid string literal.
func quoted(ctx *render.Context) *render.Context {
	out := ctx.Clone()

	for _, name := range quotedFacts {
		if value, ok := out.Get(name); ok {
			out.Set(name, render.Escape(value))
		}
	}

	return out
}

func setFacts(ctx *render.Context, facts *vcs.Facts) {
	ctx.Set("GitPath", facts.ToolPath)
	ctx.Set("GitVersion", facts.ToolVersion)
	ctx.Set("GitRoot", facts.Root)
	ctx.Set("GitIsDirty", facts.Dirty())
	ctx.Set("GitBranch", facts.Branch)
	ctx.Set("GitCommitHash", facts.CommitHash)
	ctx.Set("GitCommitShortHash", facts.ShortHash)
	ctx.Set("GitCommitDate", facts.CommitDate)
}

// contextComment is the comment block describing how the file was made.
// It carries no timestamp so unchanged input renders identical output.
func contextComment(cfg *config.Config, facts *vcs.Facts) string {
	header := render.NewContext()

	for _, field := range cfg.Fields() {
		header.Set(field.Name, field.Value)
	}

	if facts != nil {
		header.Set("GitPath", facts.ToolPath)
		header.Set("GitVersion", facts.ToolVersion)
	}

	return "// Generator Context\n" + render.CommentDump(header)
}

func versionAttributes(v semver.Version, tag string) string {
	var sb strings.Builder

	sb.WriteString("// Version is derived from GitTag as major.minor.patch.revision.\n")
	sb.WriteString("const (\n")
	fmt.Fprintf(&sb, "\tVersion              = \"%s\"\n", v)
	fmt.Fprintf(&sb, "\tFileVersion          = \"%s\"\n", v)
	fmt.Fprintf(&sb, "\tInformationalVersion = \"%s\"\n", render.Escape(tag))
	sb.WriteString(")\n")

	return sb.String()
}
