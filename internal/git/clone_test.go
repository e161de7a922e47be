package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRepoName(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://github.com/owner/repo", "repo"},
		{"https://github.com/owner/repo.git", "repo"},
		{"git@github.com:owner/repo.git", "repo"},
		{"http://gitlab.com/group/project", "project"},
	}

	for _, tt := range tests {
		got := RepoName(tt.url)
		if got != tt.expected {
			t.Errorf("RepoName(%s) = %s, want %s", tt.url, got, tt.expected)
		}
	}
}

func TestClone(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	// Use a small public repo for testing
	repoURL := "https://github.com/kelseyhightower/nocode"

	tmpDir := t.TempDir()
	dest := filepath.Join(tmpDir, "nocode")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("Failed to create dest dir: %v", err)
	}

	if err := Clone(context.Background(), repoURL, "master", dest); err != nil {
		t.Fatalf("Failed to clone: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dest, "README.md")); os.IsNotExist(err) {
		t.Error("Expected README.md to exist")
	}

	commit, err := CurrentCommit(context.Background(), dest)
	if err != nil {
		t.Fatalf("Failed to resolve HEAD: %v", err)
	}
	if len(commit) != 40 {
		t.Errorf("Expected full commit hash, got %q", commit)
	}
}
