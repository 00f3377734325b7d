package config

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitTopLevel returns the top-level directory of the git work tree that
// contains dir.
func GitTopLevel(dir string) (string, error) {
	cmd := exec.Command("git", "-C", dir, "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	top := strings.TrimSpace(string(output))
	if top == "" {
		return "", fmt.Errorf("git returned an empty top-level for %s", dir)
	}
	return top, nil
}

// ResolveRoot prefers the git top-level of workspace and falls back to the
// absolute form of workspace itself.
func ResolveRoot(workspace string, gitTopLevel func(string) (string, error)) (string, error) {
	if gitTopLevel != nil {
		if top, err := gitTopLevel(workspace); err == nil {
			return filepath.Clean(top), nil
		}
	}

	abs, err := filepath.Abs(workspace)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace %s: %w", workspace, err)
	}
	return abs, nil
}
