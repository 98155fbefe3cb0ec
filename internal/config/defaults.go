package config

import (
	"github.com/timmattison/gitinfo/internal/semver"
	"github.com/timmattison/gitinfo/internal/vcs"
)

const (
	DefaultNamespace   = "gitinfo"
	DefaultOutput      = "gitinfo.go"
	DefaultDebugOutput = "gitinfo_debug.go"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)

	return cfg
}

// ApplyDefaults fills in unset values.
func ApplyDefaults(cfg *Config) {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	if cfg.ProjectDir == "" {
		cfg.ProjectDir = "."
	}

	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}

	if cfg.DebugOutput == "" {
		cfg.DebugOutput = DefaultDebugOutput
	}

	if cfg.TagPattern == "" {
		cfg.TagPattern = semver.DefaultPattern
	}

	if cfg.Backend == "" {
		cfg.Backend = vcs.BackendAuto
	}

	if cfg.GitBin == "" {
		cfg.GitBin = vcs.DefaultBin
	}
}
