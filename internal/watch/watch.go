// Package watch reruns a callback whenever the repository state that feeds
// the generated files changes: the checked out branch, the index, refs and
// tags, and optionally the working tree.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

// Options controls what a Watcher observes.
type Options struct {
	// GitDir is the repository's git directory, usually <root>/.git.
	GitDir string
	// WorkTree is watched recursively when set. Hidden directories are skipped.
	WorkTree string
	// Ignore lists files whose changes never trigger a pass, typically the
	// generated outputs themselves.
	Ignore []string
	// Debounce is how long the watcher waits for events to settle.
	Debounce time.Duration
}

type Watcher struct {
	opts    Options
	ignore  map[string]struct{}
	watcher *fsnotify.Watcher
}

func New(opts Options) (*Watcher, error) {
	if opts.GitDir == "" {
		return nil, fmt.Errorf("watch: git directory is required")
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		opts:    opts,
		ignore:  make(map[string]struct{}, len(opts.Ignore)),
		watcher: watcher,
	}

	for _, path := range opts.Ignore {
		if abs, err := filepath.Abs(path); err == nil {
			w.ignore[abs] = struct{}{}
		}
	}

	if err := w.addGitDir(); err != nil {
		watcher.Close()
		return nil, err
	}

	if opts.WorkTree != "" {
		if err := w.addRecursive(opts.WorkTree); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return w, nil
}

// Run blocks until ctx is cancelled, calling fn once per settled burst of
// relevant events. Passes never overlap. Errors from fn are logged and do not
// stop the watcher.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			w.handleCreate(event)

			if !w.relevant(event) {
				continue
			}

			log.Debug("Repository changed", "path", event.Name, "op", event.Op.String())

			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}

			timer.Reset(w.opts.Debounce)
			pending = true
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}

			log.Warn("Watcher error", "err", err)
		case <-timer.C:
			pending = false

			if err := fn(ctx); err != nil {
				log.Error("Regeneration failed", "err", err)
			}
		}
	}
}

func (w *Watcher) addGitDir() error {
	if err := w.watcher.Add(w.opts.GitDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.GitDir, err)
	}

	refs := filepath.Join(w.opts.GitDir, "refs")
	if _, err := os.Stat(refs); err != nil {
		return nil
	}

	return w.addRecursive(refs)
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Warn("Failed to watch directory", "path", path, "err", err)
		}

		return nil
	})
}

// New ref directories, e.g. refs/heads/feature/, have to be added as they appear.
func (w *Watcher) handleCreate(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}

	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	if rel, err := filepath.Rel(w.opts.GitDir, event.Name); err == nil && !strings.HasPrefix(rel, "..") {
		// Inside the git directory only ref namespaces matter
		if !strings.HasPrefix(filepath.ToSlash(rel), "refs/") {
			return
		}
	} else if w.opts.WorkTree == "" {
		return
	}

	_ = w.addRecursive(event.Name)
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Name == "" || event.Op == fsnotify.Chmod {
		return false
	}

	if abs, err := filepath.Abs(event.Name); err == nil {
		if _, ignored := w.ignore[abs]; ignored {
			return false
		}
	}

	rel, err := filepath.Rel(w.opts.GitDir, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		// Outside the git directory, so it is a working tree change
		return w.opts.WorkTree != ""
	}

	return gitPathRelevant(filepath.ToSlash(rel))
}

// gitPathRelevant reports whether a path inside the git directory affects
// the branch, commit, tag or dirty state.
func gitPathRelevant(rel string) bool {
	if strings.HasSuffix(rel, ".lock") {
		return false
	}

	switch rel {
	case "HEAD", "index", "packed-refs":
		return true
	}

	return strings.HasPrefix(rel, "refs/heads/") || strings.HasPrefix(rel, "refs/tags/")
}
