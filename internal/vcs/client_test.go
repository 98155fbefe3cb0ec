package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimSeparators(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/home/user/project", "/home/user/project"},
		{"/home/user/project/", "/home/user/project"},
		{`C:\src\project\`, `C:\src\project`},
		{`C:\src\project\\`, `C:\src\project`},
		{"/", "/"},
		{`C:\`, `C:\`},
		{"relative/dir//", "relative/dir"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, trimSeparators(tt.input))
		})
	}
}

func TestResultValue(t *testing.T) {
	ok := Result{Success: true, Stdout: "out", Stderr: "warning"}
	failed := Result{Stdout: "usage: git ...", Stderr: "fatal: not a git repository", ExitCode: 128}

	assert.Equal(t, "out", ok.Value())
	assert.Equal(t, "fatal: not a git repository", failed.Value())
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, `C:\Program Files\Git\cmd\git.exe`, firstLine("C:\\Program Files\\Git\\cmd\\git.exe\r\nC:\\other\\git.exe"))
	assert.Equal(t, "/usr/bin/git", firstLine("/usr/bin/git"))
	assert.Equal(t, "", firstLine(""))
}

func TestToolNotFound(t *testing.T) {
	client := NewClient("definitely-not-a-real-git-binary", t.TempDir())

	tool := client.Tool(context.Background())

	assert.False(t, tool.Found())
	assert.Empty(t, tool.Path)
	assert.Empty(t, tool.Version)
}

func TestMissingBinaryFailsSoft(t *testing.T) {
	client := NewClient("/nonexistent/bin/git", t.TempDir())

	result := client.Run(context.Background(), "rev-parse", "HEAD")

	assert.False(t, result.Success)
	assert.Equal(t, -1, result.ExitCode)
	assert.NotEmpty(t, result.Value())
	assert.True(t, client.IsDirty(context.Background()))
}

// gitCmd runs git in dir and fails the test on error.
func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_DATE=2024-03-01T12:00:00+02:00",
		"GIT_COMMITTER_DATE=2024-03-01T12:00:00+02:00",
	)

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
}

func setupGitRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q")
	gitCmd(t, dir, "config", "user.name", "Test User")
	gitCmd(t, dir, "config", "user.email", "test@example.com")
	gitCmd(t, dir, "config", "commit.gpgsign", "false")
	gitCmd(t, dir, "config", "tag.gpgsign", "false")
	gitCmd(t, dir, "checkout", "-q", "-b", "main")

	commitFile(t, dir, "test content")

	return dir
}

func commitFile(t *testing.T, dir, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte(content), 0o644))
	gitCmd(t, dir, "add", "test.txt")
	gitCmd(t, dir, "commit", "-q", "-m", content)
}

func TestClientQueries(t *testing.T) {
	requireGit(t)

	dir := setupGitRepo(t)
	ctx := context.Background()
	client := NewClient("", dir+string(filepath.Separator))

	tool := client.Tool(ctx)
	require.True(t, tool.Found())
	assert.True(t, strings.HasPrefix(tool.Version, "git version"), tool.Version)

	facts := Collect(ctx, client, tool)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.ToSlash(resolved), facts.Root)
	assert.Equal(t, "main", facts.Branch)
	assert.Len(t, facts.CommitHash, 40)
	assert.True(t, strings.HasPrefix(facts.CommitHash, facts.ShortHash))
	assert.Equal(t, "2024-03-01T12:00:00+02:00", facts.CommitDate)
	assert.Equal(t, facts.ShortHash, facts.Tag, "describe --always falls back to the short hash")
	assert.Equal(t, "false", facts.Dirty())
	assert.Equal(t, tool.Path, facts.ToolPath)
}

func TestClientDescribe(t *testing.T) {
	requireGit(t)

	dir := setupGitRepo(t)
	ctx := context.Background()
	client := NewClient("", dir)

	gitCmd(t, dir, "tag", "v2.3.1")
	assert.Equal(t, "v2.3.1", client.Tag(ctx))

	commitFile(t, dir, "second")
	commitFile(t, dir, "third")

	assert.Equal(t, "v2.3.1-2-g"+client.CommitShortHash(ctx), client.Tag(ctx))
}

func TestClientDirty(t *testing.T) {
	requireGit(t)

	dir := setupGitRepo(t)
	client := NewClient("", dir)
	ctx := context.Background()

	assert.False(t, client.IsDirty(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("unstaged"), 0o644))

	facts := Collect(ctx, client, Tool{})
	assert.True(t, facts.IsDirty)
	assert.Equal(t, "true", facts.Dirty())
}

func TestClientOutsideRepository(t *testing.T) {
	requireGit(t)

	client := NewClient("", t.TempDir())
	ctx := context.Background()

	result := client.Run(ctx, "rev-parse", "HEAD")
	assert.False(t, result.Success)
	assert.NotZero(t, result.ExitCode)
	assert.Contains(t, result.Value(), "not a git repository")
	assert.True(t, client.IsDirty(ctx))
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	q, tool, err := Open(ctx, BackendGoGit, "", dir)
	require.NoError(t, err)
	assert.IsType(t, &InProcessClient{}, q)
	assert.Equal(t, InProcessLabel, tool.Version)

	q, _, err = Open(ctx, BackendAuto, "definitely-not-a-real-git-binary", dir)
	require.NoError(t, err)
	assert.IsType(t, &InProcessClient{}, q, "auto falls back to go-git when git is missing")

	q, _, err = Open(ctx, BackendExec, "definitely-not-a-real-git-binary", dir)
	require.NoError(t, err)
	assert.IsType(t, &Client{}, q)

	_, _, err = Open(ctx, "svn", "", dir)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
