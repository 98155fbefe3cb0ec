package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var fixtureTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("", 2*60*60))

// fixtureRepo builds repositories with go-git so tests do not depend on a
// git binary.
type fixtureRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	n    int
}

func newFixtureRepo(t *testing.T) *fixtureRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	return &fixtureRepo{t: t, dir: dir, repo: repo}
}

func (f *fixtureRepo) signature() *object.Signature {
	return &object.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  fixtureTime.Add(time.Duration(f.n) * time.Minute),
	}
}

// commit writes a new file and commits it on top of HEAD.
func (f *fixtureRepo) commit() plumbing.Hash {
	f.t.Helper()

	return f.commitOn()
}

// commitOn commits with the given parents instead of HEAD and moves HEAD to
// the new commit. Branches and merges are built this way without checkouts.
func (f *fixtureRepo) commitOn(parents ...plumbing.Hash) plumbing.Hash {
	f.t.Helper()

	f.n++
	name := filepath.Join(f.dir, "file.txt")
	require.NoError(f.t, os.WriteFile(name, []byte(strconv.Itoa(f.n)), 0o644))

	wt, err := f.repo.Worktree()
	require.NoError(f.t, err)

	_, err = wt.Add("file.txt")
	require.NoError(f.t, err)

	hash, err := wt.Commit("commit", &git.CommitOptions{Author: f.signature(), Committer: f.signature(), Parents: parents})
	require.NoError(f.t, err)

	return hash
}

func (f *fixtureRepo) tag(name string, hash plumbing.Hash) {
	f.t.Helper()

	_, err := f.repo.CreateTag(name, hash, nil)
	require.NoError(f.t, err)
}

func (f *fixtureRepo) annotatedTag(name string, hash plumbing.Hash) {
	f.t.Helper()

	_, err := f.repo.CreateTag(name, hash, &git.CreateTagOptions{Tagger: f.signature(), Message: name})
	require.NoError(f.t, err)
}

// requireGit skips tests that need the git binary.
func requireGit(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping git integration test in short mode")
	}

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}
}
