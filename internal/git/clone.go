// Package git shells out to the git binary to ingest remote
// repositories as projects.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Clone shallow-clones url into destDir, which must exist and be empty.
// An empty branch clones the remote default branch.
func Clone(ctx context.Context, url, branch, destDir string) error {
	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, destDir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git clone %s: %w: %s", url, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// CurrentCommit returns the HEAD commit hash of a cloned repository.
func CurrentCommit(ctx context.Context, repoDir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = repoDir

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD in %s: %w", repoDir, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// RepoName derives a project name from a clone URL, handling both HTTPS
// and SSH forms.
func RepoName(url string) string {
	url = strings.TrimSuffix(url, ".git")

	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		parts := strings.Split(url, "/")
		return parts[len(parts)-1]
	}

	if _, path, ok := strings.Cut(url, ":"); ok {
		parts := strings.Split(path, "/")
		return parts[len(parts)-1]
	}

	return url
}
