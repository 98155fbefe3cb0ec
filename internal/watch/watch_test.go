package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitPathRelevant(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"HEAD", true},
		{"index", true},
		{"packed-refs", true},
		{"refs/heads/main", true},
		{"refs/heads/feature/login", true},
		{"refs/tags/v1.2.3", true},
		{"refs/heads/main.lock", false},
		{"index.lock", false},
		{"refs/remotes/origin/main", false},
		{"objects/ab/cdef", false},
		{"logs/HEAD", false},
		{"FETCH_HEAD", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, gitPathRelevant(tt.path))
		})
	}
}

func TestNewRequiresGitDir(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func fakeGitDir(t *testing.T) string {
	t.Helper()

	gitDir := filepath.Join(t.TempDir(), ".git")
	require.NoError(t, os.MkdirAll(filepath.Join(gitDir, "refs", "heads"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(gitDir, "refs", "tags"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/main\n"), 0o644))

	return gitDir
}

func startWatcher(t *testing.T, opts Options) *atomic.Int32 {
	t.Helper()

	w, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	calls := &atomic.Int32{}

	go func() {
		defer close(done)
		_ = w.Run(ctx, func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return calls
}

func TestRunCoalescesTagWrites(t *testing.T) {
	gitDir := fakeGitDir(t)
	calls := startWatcher(t, Options{GitDir: gitDir, Debounce: 200 * time.Millisecond})

	for _, tag := range []string{"v1.0.0", "v1.0.1", "v1.0.2"} {
		require.NoError(t, os.WriteFile(filepath.Join(gitDir, "refs", "tags", tag), []byte("0123456789abcdef\n"), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunIgnoresIrrelevantChanges(t *testing.T) {
	gitDir := fakeGitDir(t)
	calls := startWatcher(t, Options{GitDir: gitDir, Debounce: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "FETCH_HEAD"), []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "index.lock"), []byte("x\n"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestRunWatchesWorkTreeButNotIgnoredOutputs(t *testing.T) {
	gitDir := fakeGitDir(t)
	workTree := filepath.Dir(gitDir)
	output := filepath.Join(workTree, "gitinfo.go")

	calls := startWatcher(t, Options{
		GitDir:   gitDir,
		WorkTree: workTree,
		Ignore:   []string{output},
		Debounce: 50 * time.Millisecond,
	})

	require.NoError(t, os.WriteFile(output, []byte("package gitinfo\n"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(workTree, "main.go"), []byte("package main\n"), 0o644))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
}

func TestRunPicksUpNewRefDirectories(t *testing.T) {
	gitDir := fakeGitDir(t)
	calls := startWatcher(t, Options{GitDir: gitDir, Debounce: 50 * time.Millisecond})

	feature := filepath.Join(gitDir, "refs", "heads", "feature")
	require.NoError(t, os.MkdirAll(feature, 0o755))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	before := calls.Load()

	// Give the watcher a moment to register the new directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(feature, "login"), []byte("0123456789abcdef\n"), 0o644))

	assert.Eventually(t, func() bool { return calls.Load() > before }, 5*time.Second, 20*time.Millisecond)
}
