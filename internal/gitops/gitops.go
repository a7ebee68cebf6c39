// Package gitops shells out to git to keep an auditable history of
// workspace configuration and generated reports.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Init initializes a git repository at dir and records the commit
// identity in its local config.
func Init(dir, authorName, authorEmail string) error {
	if _, err := run(dir, "init"); err != nil {
		return err
	}
	if _, err := run(dir, "config", "user.name", authorName); err != nil {
		return err
	}
	if _, err := run(dir, "config", "user.email", authorEmail); err != nil {
		return err
	}
	return nil
}

// CommitAll stages everything under dir and commits. Returns the short
// commit hash.
func CommitAll(dir, message string) (string, error) {
	if _, err := run(dir, "add", "-A"); err != nil {
		return "", err
	}
	return commit(dir, message)
}

// CommitPaths stages only the given paths, relative to dir, and commits.
// Returns the short commit hash.
func CommitPaths(dir, message string, paths ...string) (string, error) {
	args := append([]string{"add", "--"}, paths...)
	if _, err := run(dir, args...); err != nil {
		return "", err
	}
	return commit(dir, message)
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func commit(dir, message string) (string, error) {
	if _, err := run(dir, "commit", "-m", message); err != nil {
		return "", err
	}
	out, err := run(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
