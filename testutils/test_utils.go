package testutils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/utils"
)

// RandomString generates a random hex string of n bytes
func RandomString(n int) string {
	return hex.EncodeToString(RandomBytes(n))
}

// RandomBytes generates n random bytes
func RandomBytes(n int) []byte {
	bytes := make([]byte, n)
	rand.Read(bytes)
	return bytes
}

// RandomHash generates a random 32-byte hash that no stored object has
func RandomHash() utils.Hash {
	var h utils.Hash
	rand.Read(h[:])
	return h
}

// SetupTestRepoWithVxDir creates a temporary directory with .vx/objects structure.
// This is useful for tests that need the repository structure but not full initialization.
func SetupTestRepoWithVxDir(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	objectsDir := filepath.Join(repoPath, constants.Vx, constants.Objects)

	if err := os.MkdirAll(objectsDir, constants.DirPerms); err != nil {
		t.Fatalf("Failed to create %s/%s: %v", constants.Vx, constants.Objects, err)
	}

	return repoPath
}

// SetupTestRepoWithInit creates a .vx repository structure equivalent to init.
// This includes objects/, refs/heads/ and HEAD file; config falls back to defaults.
func SetupTestRepoWithInit(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	vxDir := filepath.Join(repoPath, constants.Vx)

	// Create directory structure
	dirs := []string{
		filepath.Join(vxDir, constants.Objects),
		filepath.Join(vxDir, constants.Refs, constants.Heads),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, constants.DirPerms); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	// Create HEAD file
	headPath := filepath.Join(vxDir, constants.Head)
	headContent := []byte(constants.DefaultRefPrefix + constants.DefaultBranch + "\n")
	if err := os.WriteFile(headPath, headContent, constants.FilePerms); err != nil {
		t.Fatalf("Failed to create %s file: %v", constants.Head, err)
	}

	return repoPath
}

// CreateTestFile creates a file with given content in the specified directory.
// Missing parent directories of filename are created.
// Returns the full path to the created file.
func CreateTestFile(t *testing.T, dir, filename string, content []byte) string {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(filePath), constants.DirPerms); err != nil {
		t.Fatalf("Failed to create parent directory for %s: %v", filename, err)
	}
	if err := os.WriteFile(filePath, content, constants.FilePerms); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filename, err)
	}

	return filePath
}

// AssertFileExists checks that a file exists at the given path.
// Fails the test if the file doesn't exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected file to exist at %s", path)
	}
}

// AssertFileNotExists checks that a file does NOT exist at the given path.
// Fails the test if the file exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to NOT exist at %s", path)
	}
}

// AssertDirExists checks that a directory exists at the given path.
// Fails the test if the directory doesn't exist.
func AssertDirExists(t *testing.T, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected directory to exist at %s", path)
		return
	}
	if err != nil {
		t.Errorf("Failed to stat directory %s: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("Expected %s to be a directory, but it's a file", path)
	}
}

// AssertRepositoryStructure validates complete .vx directory structure.
// Verifies objects/ with its store files, refs/heads/, config and HEAD pointing at main.
func AssertRepositoryStructure(t *testing.T, repoPath string) {
	t.Helper()

	vxDir := filepath.Join(repoPath, constants.Vx)
	AssertDirExists(t, vxDir)

	expectedDirs := []string{
		constants.Objects,
		constants.Refs,
		filepath.Join(constants.Refs, constants.Heads),
	}
	for _, dir := range expectedDirs {
		AssertDirExists(t, filepath.Join(vxDir, dir))
	}

	AssertFileExists(t, filepath.Join(vxDir, constants.Objects, constants.PackFile))
	AssertFileExists(t, filepath.Join(vxDir, constants.Objects, constants.IndexFile))
	AssertFileExists(t, filepath.Join(vxDir, constants.ConfigFile))

	headPath := filepath.Join(vxDir, constants.Head)
	AssertFileExists(t, headPath)

	content, err := os.ReadFile(headPath)
	if err != nil {
		t.Fatalf("Failed to read %s file: %v", constants.Head, err)
	}

	expectedContent := constants.DefaultRefPrefix + constants.DefaultBranch + "\n"
	if string(content) != expectedContent {
		t.Errorf("%s content = %q, want %q", constants.Head, content, expectedContent)
	}
}
