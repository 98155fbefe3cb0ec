// Package version reports how the gitinfo binary itself was built.
//
// Release builds stamp the values with ldflags:
//
//	go build -ldflags "-X github.com/timmattison/gitinfo/internal/version.GitHash=$(git rev-parse --short=7 HEAD) \
//	                   -X github.com/timmattison/gitinfo/internal/version.GitDirty=$(if git diff --quiet 2>/dev/null; then echo clean; else echo dirty; fi) \
//	                   -X github.com/timmattison/gitinfo/internal/version.Version=0.1.0" ./cmd/gitinfo
//
// Plain "go build" and "go install" binaries fall back to the VCS stamp the
// Go toolchain embeds in the build info.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

const shortHashLength = 7

var (
	// Version is the semantic version (e.g., "0.1.0").
	Version = "0.1.0"
	// GitHash is the short git commit hash (e.g., "abc1234").
	GitHash = "unknown"
	// GitDirty is "dirty", "clean", or "unknown".
	GitDirty = "unknown"
)

var resolveOnce sync.Once

// String returns a formatted version string for the given tool name.
// Format: "toolname 0.1.0 (abc1234, clean)"
func String(toolName string) string {
	return fmt.Sprintf("%s %s", toolName, Short())
}

// Short returns just the version info without tool name.
// Format: "0.1.0 (abc1234, clean)"
func Short() string {
	resolveOnce.Do(resolve)

	return fmt.Sprintf("%s (%s, %s)", Version, GitHash, GitDirty)
}

func resolve() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	GitHash, GitDirty = fromSettings(info.Settings, GitHash, GitDirty)
}

// fromSettings fills in values still at "unknown" from the vcs.* build
// settings. Values set with ldflags win.
func fromSettings(settings []debug.BuildSetting, hash, dirty string) (string, string) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if hash == "unknown" && setting.Value != "" {
				hash = setting.Value
				if len(hash) > shortHashLength {
					hash = hash[:shortHashLength]
				}
			}
		case "vcs.modified":
			if dirty == "unknown" {
				switch setting.Value {
				case "true":
					dirty = "dirty"
				case "false":
					dirty = "clean"
				}
			}
		}
	}

	return hash, dirty
}
