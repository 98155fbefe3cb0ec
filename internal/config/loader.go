package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "GITINFO_CONFIG"

// DefaultConfigPaths are searched when no path is given.
var DefaultConfigPaths = []string{
	"./gitinfo.yaml",
	"./gitinfo.yml",
	"./.gitinfo.yaml",
}

// Load reads the configuration. The file is optional: when no explicit
// path or GITINFO_CONFIG is set and no default file exists, the defaults
// are returned.
func Load(path string) (*Config, error) {
	configPath, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// resolveConfigPath picks the config file to read.
// Priority: explicit path > GITINFO_CONFIG env > default paths > none
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file not found: %s", path)
		}
		return path, nil
	}

	if envPath := os.Getenv(EnvConfig); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config file from %s not found: %s", EnvConfig, envPath)
		}
		return envPath, nil
	}

	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// Marshal renders the configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Example is the annotated file written by "gitinfo config init".
const Example = `# gitinfo configuration

# Go package name of the generated files
namespace: gitinfo

# Directory git runs in (relative to the working directory of go generate)
project_dir: .

# Generated files
output: gitinfo.go
debug_output: gitinfo_debug.go

# Optional: custom template using $(Name) placeholders
# template: gitinfo.go.tpl

# Optional: extra constants, one Name|Type|Value per line
# records: gitinfo.records

# Emit Version, FileVersion and InformationalVersion constants
generate_version: true

# Emit gitinfo_debug.go with the full generator context
generate_debug: false

# How the describe label is parsed. Requires MAJOR, MINOR and PATCH groups.
tag_pattern: '^v?(?P<MAJOR>\d+)\.(?P<MINOR>\d+)\.(?P<PATCH>\d+)(?:-(?P<LABEL>.+))?$'

# exec (git binary), go-git (in-process), auto (exec, falling back to go-git)
# or none (records only; a Tag record is then required)
backend: auto

# git executable name or absolute path
git_bin: git
`
