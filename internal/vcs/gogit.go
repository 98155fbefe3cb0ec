package vcs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ShortHashLength matches git's default abbreviation.
const ShortHashLength = 7

// commitDateLayout is git's %cI format, which always spells out the offset.
const commitDateLayout = "2006-01-02T15:04:05-07:00"

// describeCandidates matches git describe's default --candidates.
const describeCandidates = 10

// InProcessClient answers queries with go-git instead of the git binary. An
// open failure is remembered and returned as the value of every query.
type InProcessClient struct {
	repo *git.Repository
	err  error
}

// OpenInProcess opens the repository containing dir, searching parent
// directories for .git like git itself does.
func OpenInProcess(dir string) *InProcessClient {
	if dir == "" {
		dir = "."
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return &InProcessClient{err: fmt.Errorf("open repository %s: %w", dir, err)}
	}

	return &InProcessClient{repo: repo}
}

// Err returns the error that prevented the repository from opening.
func (c *InProcessClient) Err() error {
	return c.err
}

func (c *InProcessClient) RepositoryRoot(context.Context) string {
	if c.err != nil {
		return c.err.Error()
	}

	wt, err := c.repo.Worktree()
	if err != nil {
		return err.Error()
	}

	return filepath.ToSlash(wt.Filesystem.Root())
}

func (c *InProcessClient) CommitShortHash(context.Context) string {
	hash, err := c.head()
	if err != nil {
		return err.Error()
	}

	return shorten(hash)
}

func (c *InProcessClient) CommitHash(context.Context) string {
	hash, err := c.head()
	if err != nil {
		return err.Error()
	}

	return hash.String()
}

// BranchName mirrors rev-parse --abbrev-ref: a detached HEAD is "HEAD".
func (c *InProcessClient) BranchName(context.Context) string {
	if c.err != nil {
		return c.err.Error()
	}

	ref, err := c.repo.Head()
	if err != nil {
		return err.Error()
	}

	if ref.Name().IsBranch() {
		return ref.Name().Short()
	}

	return "HEAD"
}

// Tag computes a describe label: the nearest tag reachable from HEAD, with
// a -N-gSHORT suffix when N commits are reachable from HEAD but not from the
// tag, or the short hash alone when no tag is reachable. Like git describe,
// the first describeCandidates tags met in committer-time order are
// considered and the one with the fewest such commits wins.
func (c *InProcessClient) Tag(context.Context) string {
	hash, err := c.head()
	if err != nil {
		return err.Error()
	}

	tags, err := c.tagsByCommit()
	if err != nil {
		return err.Error()
	}

	if len(tags) == 0 {
		return shorten(hash)
	}

	iter, err := c.repo.Log(&git.LogOptions{From: hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return err.Error()
	}
	defer iter.Close()

	var candidates []plumbing.Hash

	err = iter.ForEach(func(commit *object.Commit) error {
		if _, ok := tags[commit.Hash]; ok {
			candidates = append(candidates, commit.Hash)
		}

		if len(candidates) == describeCandidates {
			return storer.ErrStop
		}

		return nil
	})
	if err != nil {
		return err.Error()
	}

	if len(candidates) == 0 {
		return shorten(hash)
	}

	var name string
	distance := -1

	for _, candidate := range candidates {
		n, err := c.ahead(hash, candidate)
		if err != nil {
			return err.Error()
		}

		if distance < 0 || n < distance {
			name, distance = tags[candidate], n
		}
	}

	if distance == 0 {
		return name
	}

	return fmt.Sprintf("%s-%d-g%s", name, distance, shorten(hash))
}

// ahead counts the commits reachable from head but not from base.
func (c *InProcessClient) ahead(head, base plumbing.Hash) (int, error) {
	baseCommit, err := c.repo.CommitObject(base)
	if err != nil {
		return 0, err
	}

	behind := map[plumbing.Hash]bool{}

	err = object.NewCommitPreorderIter(baseCommit, nil, nil).ForEach(func(commit *object.Commit) error {
		behind[commit.Hash] = true
		return nil
	})
	if err != nil {
		return 0, err
	}

	headCommit, err := c.repo.CommitObject(head)
	if err != nil {
		return 0, err
	}

	count := 0

	// Commits in behind are treated as already seen, so the walk stops there
	err = object.NewCommitPreorderIter(headCommit, behind, nil).ForEach(func(*object.Commit) error {
		count++
		return nil
	})

	return count, err
}

func (c *InProcessClient) CommitDate(context.Context) string {
	hash, err := c.head()
	if err != nil {
		return err.Error()
	}

	commit, err := c.repo.CommitObject(hash)
	if err != nil {
		return err.Error()
	}

	return commit.Committer.When.Format(commitDateLayout)
}

// IsDirty ignores untracked files, like diff --quiet HEAD. Anything that
// prevents the check counts as dirty, as a failing diff would.
func (c *InProcessClient) IsDirty(context.Context) bool {
	if c.err != nil {
		return true
	}

	wt, err := c.repo.Worktree()
	if err != nil {
		return true
	}

	status, err := wt.Status()
	if err != nil {
		return true
	}

	for _, file := range status {
		if file.Staging == git.Untracked && file.Worktree == git.Untracked {
			continue
		}

		if file.Staging != git.Unmodified || file.Worktree != git.Unmodified {
			return true
		}
	}

	return false
}

func (c *InProcessClient) head() (plumbing.Hash, error) {
	if c.err != nil {
		return plumbing.ZeroHash, c.err
	}

	ref, err := c.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	return ref.Hash(), nil
}

// tagsByCommit maps each tagged commit to its tag name. Annotated tags are
// peeled to their commit. When several tags point at one commit the
// lexically greatest name wins so the result is stable.
func (c *InProcessClient) tagsByCommit() (map[plumbing.Hash]string, error) {
	refs, err := c.repo.Tags()
	if err != nil {
		return nil, err
	}

	tags := map[plumbing.Hash]string{}

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()

		annotated, err := c.repo.TagObject(target)
		switch {
		case err == nil:
			commit, err := annotated.Commit()
			if err != nil {
				// Tags on trees or blobs are not describable
				return nil
			}
			target = commit.Hash
		case !errors.Is(err, plumbing.ErrObjectNotFound):
			return err
		}

		name := ref.Name().Short()
		if existing, ok := tags[target]; !ok || name > existing {
			tags[target] = name
		}

		return nil
	})

	return tags, err
}

func shorten(hash plumbing.Hash) string {
	return hash.String()[:ShortHashLength]
}
