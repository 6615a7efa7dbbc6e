package repository

import (
	"testing"
	"time"

	"github.com/KostasZigo/vx/utils"
)

// initTestRepo initializes a repository in a temp dir and returns its path.
func initTestRepo(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	if err := InitRepository(repoPath); err != nil {
		t.Fatalf("InitRepository failed: %v", err)
	}
	return repoPath
}

// openTestRepo opens repoPath and closes it on cleanup.
func openTestRepo(t *testing.T, repoPath string) *Repository {
	t.Helper()

	repo, err := OpenRepository(repoPath)
	if err != nil {
		t.Fatalf("OpenRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// commitAt commits the worktree with a fixed author and time.
func commitAt(t *testing.T, repo *Repository, message string, unix int64) utils.Hash {
	t.Helper()

	hash, err := repo.Commit(t.Context(), CommitOptions{
		Message: message,
		Author:  "Test Author",
		Time:    time.Unix(unix, 0),
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return hash
}
