package cmd

import (
	"strings"
	"testing"

	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/testutils"
)

// TestLogCommand_History verifies commits are listed newest first.
func TestLogCommand_History(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	testutils.CreateTestFile(t, repoPath, "a.txt", []byte("a"))
	first := mustRunCommand(t, commitCmd, constants.CommitCmdName, "-m", "first")
	second := mustRunCommand(t, commitCmd, constants.CommitCmdName, "-m", "second\n\nbody", "--author", "Ada")

	out := mustRunCommand(t, logCmd, constants.LogCmdName)

	firstAt := strings.Index(out, "commit "+first)
	secondAt := strings.Index(out, "commit "+second)
	if firstAt < 0 || secondAt < 0 {
		t.Fatalf("Expected both commits in log, got:\n%s", out)
	}
	if secondAt > firstAt {
		t.Errorf("Expected newest commit first, got:\n%s", out)
	}
	for _, want := range []string{"Author: Ada", "    second\n    \n    body"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got:\n%s", want, out)
		}
	}
}

// TestLogCommand_MaxCount verifies -n limits the output.
func TestLogCommand_MaxCount(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	testutils.CreateTestFile(t, repoPath, "a.txt", []byte("a"))
	mustRunCommand(t, commitCmd, constants.CommitCmdName, "-m", "first")
	mustRunCommand(t, commitCmd, constants.CommitCmdName, "-m", "second")
	third := mustRunCommand(t, commitCmd, constants.CommitCmdName, "-m", "third")

	out := mustRunCommand(t, logCmd, constants.LogCmdName, "-n", "1")

	if n := strings.Count(out, "commit "); n != 1 {
		t.Fatalf("Expected 1 commit, got %d:\n%s", n, out)
	}
	if !strings.HasPrefix(out, "commit "+third) {
		t.Errorf("Expected latest commit %s, got:\n%s", third, out)
	}
}

// TestLogCommand_Unborn verifies an empty repository prints nothing.
func TestLogCommand_Unborn(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	if out := mustRunCommand(t, logCmd, constants.LogCmdName); out != "" {
		t.Errorf("Expected empty log, got %q", out)
	}
}
