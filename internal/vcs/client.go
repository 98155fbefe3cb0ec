// Package vcs collects version-control facts about a working tree.
//
// Two backends answer the same queries: Client shells out to the git binary
// and InProcessClient reads the repository with go-git. Neither returns
// errors from its queries. A failed query yields the error text as its
// value so that generation still completes and the problem is visible in
// the generated output.
package vcs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultBin is the git executable looked up on the search path.
const DefaultBin = "git"

// Result is the outcome of a single git invocation.
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// Value returns stdout for a successful invocation and the error text otherwise.
func (r Result) Value() string {
	if r.Success {
		return r.Stdout
	}

	return r.Stderr
}

// Tool describes the git executable in use. Both fields are empty when git
// could not be found.
type Tool struct {
	Path    string
	Version string
}

// Found reports whether the tool was located.
func (t Tool) Found() bool {
	return t.Path != ""
}

// Client runs git subcommands scoped to one working directory. It holds no
// mutable state, so clients for different directories can be used
// concurrently.
type Client struct {
	bin string
	dir string
}

// NewClient returns a client for dir. An empty bin means DefaultBin.
func NewClient(bin, dir string) *Client {
	if bin == "" {
		bin = DefaultBin
	}

	return &Client{bin: bin, dir: dir}
}

// Tool locates git and asks it for its version. An absolute bin is trusted
// as-is; otherwise the platform lookup command is used and only its first
// line of output is considered.
func (c *Client) Tool(ctx context.Context) Tool {
	if filepath.IsAbs(c.bin) {
		return Tool{Path: c.bin, Version: c.run(ctx, false, "--version").Value()}
	}

	lookup := "which"
	if runtime.GOOS == "windows" {
		lookup = "where"
	}

	result := execute(ctx, lookup, c.bin)
	if !result.Success {
		return Tool{}
	}

	// where can print several matches, one per line
	binPath := firstLine(result.Stdout)
	if binPath == "" {
		return Tool{}
	}

	return Tool{Path: binPath, Version: c.run(ctx, false, "--version").Value()}
}

func (c *Client) RepositoryRoot(ctx context.Context) string {
	return c.Output(ctx, "rev-parse", "--show-toplevel")
}

func (c *Client) CommitShortHash(ctx context.Context) string {
	return c.Output(ctx, "rev-parse", "--short", "HEAD")
}

func (c *Client) CommitHash(ctx context.Context) string {
	return c.Output(ctx, "rev-parse", "HEAD")
}

func (c *Client) BranchName(ctx context.Context) string {
	return c.Output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// Tag returns the describe label. Without any reachable tag git prints the
// short hash instead, which callers treat as a valid label.
func (c *Client) Tag(ctx context.Context) string {
	return c.Output(ctx, "describe", "--tags", "--always")
}

// CommitDate returns the committer date of HEAD in strict ISO-8601.
func (c *Client) CommitDate(ctx context.Context) string {
	return c.Output(ctx, "show", "-s", "--format=%cI")
}

// IsDirty reports whether tracked files differ from HEAD.
func (c *Client) IsDirty(ctx context.Context) bool {
	return c.Run(ctx, "diff", "--quiet", "HEAD").ExitCode != 0
}

// Output runs a subcommand in the client's directory and returns its value.
func (c *Client) Output(ctx context.Context, args ...string) string {
	return c.Run(ctx, args...).Value()
}

// Run runs a subcommand in the client's directory.
func (c *Client) Run(ctx context.Context, args ...string) Result {
	return c.run(ctx, true, args...)
}

func (c *Client) run(ctx context.Context, scoped bool, args ...string) Result {
	if scoped && c.dir != "" {
		args = append([]string{"-C", trimSeparators(c.dir)}, args...)
	}

	return execute(ctx, c.bin, args...)
}

func execute(ctx context.Context, name string, args ...string) Result {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	var exitErr *exec.ExitError

	switch {
	case err == nil:
		result.Success = true
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		// The process never started (missing binary, bad directory)
		result.ExitCode = -1
		if result.Stderr == "" {
			result.Stderr = err.Error()
		}
	}

	return result
}

// trimSeparators strips trailing path separators but never reduces a root
// path to the empty string.
func trimSeparators(dir string) string {
	trimmed := strings.TrimRight(dir, `/\`)
	if trimmed == "" {
		return dir[:1]
	}

	if strings.HasSuffix(trimmed, ":") {
		// C:\ must keep its separator to stay a root
		return dir[:len(trimmed)+1]
	}

	return trimmed
}

func firstLine(s string) string {
	scanner := bufio.NewScanner(strings.NewReader(s))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}

	return ""
}
