// Package config holds the generator configuration.
package config

import (
	"errors"
	"fmt"
	"go/token"
	"strconv"

	"github.com/timmattison/gitinfo/internal/semver"
	"github.com/timmattison/gitinfo/internal/vcs"
)

var (
	ErrInvalidBackend   = errors.New("invalid backend")
	ErrInvalidNamespace = errors.New("invalid namespace")
)

// Config controls a generation pass. Zero values are replaced by
// ApplyDefaults.
type Config struct {
	// Namespace is the Go package name of the generated files.
	Namespace string `yaml:"namespace"`
	// ProjectDir is the working directory git is scoped to.
	ProjectDir string `yaml:"project_dir"`
	// Output is the path of the generated constants file.
	Output string `yaml:"output"`
	// DebugOutput is the path of the generated debug file.
	DebugOutput string `yaml:"debug_output"`
	// Template overrides the embedded constants template.
	Template string `yaml:"template,omitempty"`
	// Records is a path to a Name|Type|Value data file.
	Records string `yaml:"records,omitempty"`
	// GenerateVersion adds Version, FileVersion and InformationalVersion.
	GenerateVersion bool `yaml:"generate_version"`
	// GenerateDebug writes the debug file containing the full context.
	GenerateDebug bool `yaml:"generate_debug"`
	// TagPattern parses the describe label; see semver.DefaultPattern.
	TagPattern string `yaml:"tag_pattern"`
	// Backend is one of exec, go-git, auto or none.
	Backend string `yaml:"backend"`
	// GitBin is the git executable, either a name or an absolute path.
	GitBin string `yaml:"git_bin"`
}

// Field is one named configuration value as it appears in the generator
// context.
type Field struct {
	Name  string
	Value string
}

// Fields lists the values exposed to templates, in a fixed order.
func (c *Config) Fields() []Field {
	return []Field{
		{"Namespace", c.Namespace},
		{"ProjectDir", c.ProjectDir},
		{"GenerateVersion", strconv.FormatBool(c.GenerateVersion)},
		{"GenerateDebug", strconv.FormatBool(c.GenerateDebug)},
		{"TagPattern", c.TagPattern},
		{"Backend", c.Backend},
		{"GitBin", c.GitBin},
	}
}

// Validate checks values that would otherwise fail late or produce
// uncompilable output.
func Validate(cfg *Config) error {
	if !token.IsIdentifier(cfg.Namespace) {
		return fmt.Errorf("%w: %q is not a Go package name", ErrInvalidNamespace, cfg.Namespace)
	}

	switch cfg.Backend {
	case vcs.BackendExec, vcs.BackendGoGit, vcs.BackendAuto, vcs.BackendNone:
	default:
		return fmt.Errorf("%w: %q (valid: exec, go-git, auto, none)", ErrInvalidBackend, cfg.Backend)
	}

	if _, err := semver.Compile(cfg.TagPattern); err != nil {
		return fmt.Errorf("tag_pattern: %w", err)
	}

	if cfg.Output == "" {
		return errors.New("output path is required")
	}

	if cfg.GenerateDebug && cfg.DebugOutput == "" {
		return errors.New("debug_output is required when generate_debug is set")
	}

	return nil
}
