package vcs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Backend names accepted by Open.
const (
	BackendExec    = "exec"
	BackendGoGit   = "go-git"
	BackendAuto    = "auto"
	BackendNone    = "none"
	InProcessLabel = "go-git (in-process)"
)

var ErrUnknownBackend = errors.New("unknown vcs backend")

// Querier answers the repository questions a generation pass needs.
type Querier interface {
	RepositoryRoot(ctx context.Context) string
	CommitShortHash(ctx context.Context) string
	CommitHash(ctx context.Context) string
	BranchName(ctx context.Context) string
	Tag(ctx context.Context) string
	CommitDate(ctx context.Context) string
	IsDirty(ctx context.Context) bool
}

// Facts is the set of values collected from the repository in one pass.
type Facts struct {
	Root        string
	IsDirty     bool
	Branch      string
	CommitHash  string
	ShortHash   string
	CommitDate  string
	Tag         string
	ToolPath    string
	ToolVersion string
}

// Dirty renders the dirty flag as a lowercase Go boolean literal.
func (f Facts) Dirty() string {
	return strconv.FormatBool(f.IsDirty)
}

// Collect runs every query once, in a fixed order.
func Collect(ctx context.Context, q Querier, tool Tool) Facts {
	return Facts{
		Root:        q.RepositoryRoot(ctx),
		IsDirty:     q.IsDirty(ctx),
		Branch:      q.BranchName(ctx),
		CommitHash:  q.CommitHash(ctx),
		ShortHash:   q.CommitShortHash(ctx),
		CommitDate:  q.CommitDate(ctx),
		Tag:         q.Tag(ctx),
		ToolPath:    tool.Path,
		ToolVersion: tool.Version,
	}
}

// Open picks a backend for dir and reports which tool answers the queries.
// With BackendAuto the git binary is preferred and go-git is used only when
// git cannot be found.
func Open(ctx context.Context, backend, bin, dir string) (Querier, Tool, error) {
	switch backend {
	case BackendExec:
		client := NewClient(bin, dir)
		return client, client.Tool(ctx), nil
	case BackendGoGit:
		return OpenInProcess(dir), Tool{Version: InProcessLabel}, nil
	case BackendAuto, "":
		client := NewClient(bin, dir)
		if tool := client.Tool(ctx); tool.Found() {
			return client, tool, nil
		}

		return OpenInProcess(dir), Tool{Version: InProcessLabel}, nil
	default:
		return nil, Tool{}, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
