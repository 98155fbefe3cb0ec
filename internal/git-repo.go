package internal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindGitDir walks up from start until it finds a .git entry and returns the
// git directory. A .git file, as used by worktrees and submodules, is
// followed to the directory named by its gitdir line.
func FindGitDir(start string) (string, error) {
	basePath, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	// Make sure we don't end up in a loop by checking if our last path is the same as the current path
	lastPath := ""

	// Make sure we don't end up in a loop by checking to see if we do too many iterations
	maximumIterations := 50
	iterationCount := 0

	for {
		gitPath := filepath.Join(basePath, ".git")

		info, err := os.Stat(gitPath)
		if err == nil {
			if info.IsDir() {
				return gitPath, nil
			}

			return readGitFile(gitPath)
		}

		if !os.IsPermission(err) && !os.IsNotExist(err) {
			// If permission is denied or the file doesn't exist we can just ignore it but anything else is a legit error
			return "", err
		}

		// Go up one level
		basePath = filepath.Dir(basePath)

		iterationCount++

		if iterationCount >= maximumIterations {
			break
		}

		if lastPath == basePath {
			// Ended up in the same place we came from
			break
		}

		lastPath = basePath
	}

	return "", os.ErrNotExist
}

// readGitFile resolves a "gitdir: <path>" file.
func readGitFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		target, ok := strings.CutPrefix(line, "gitdir:")
		if !ok {
			continue
		}

		target = strings.TrimSpace(target)
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}

		return filepath.Clean(target), nil
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	return "", fmt.Errorf("%s does not name a git directory", path)
}
