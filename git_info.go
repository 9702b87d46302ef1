package main

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// CurrentGitCommit returns the short commit hash of the git repository
// containing path, or "" if path is not inside one (or git is unavailable).
// It is used to stamp the debug database with the provenance of the
// directory the analyzed .ll file came from.
func CurrentGitCommit(path string) string {
	dir := filepath.Dir(path)
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
