package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/testutils"
	"github.com/KostasZigo/vx/utils"
	"github.com/agiledragon/gomonkey/v2"
)

// openTestStore opens the object store of repoPath and closes it on cleanup.
func openTestStore(t *testing.T, repoPath string) *objects.ObjectStore {
	t.Helper()

	store, err := objects.OpenObjectStore(filepath.Join(repoPath, constants.Vx, constants.Objects), objects.DefaultStoreOptions())
	if err != nil {
		t.Fatalf("Failed to open object store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestHashObjectCommand_Success_NoStorage verifies hash computation without storage.
func TestHashObjectCommand_Success_NoStorage(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	testFileName := "test.txt"
	testFileContent := []byte("hello world\nHave a nice day")
	testutils.CreateTestFile(t, repoPath, testFileName, testFileContent)

	outputHash := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName)

	expectedHash := objects.NewBlob(testFileContent).Hash()
	if expectedHash.String() != outputHash {
		t.Fatalf("Expected hash %s, got %s", expectedHash, outputHash)
	}

	// Verify object was NOT stored (no -w flag)
	if openTestStore(t, repoPath).Contains(expectedHash) {
		t.Error("Object should not be stored without -w flag")
	}
}

// TestHashObjectCommand_Success_WithStorage verifies hash computation with storage.
func TestHashObjectCommand_Success_WithStorage(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithVxDir(t)
	changeToRepoDir(t, repoPath)

	testFileName := "test.txt"
	testFileContent := []byte("hello world\nHave a nice day")
	testutils.CreateTestFile(t, repoPath, testFileName, testFileContent)

	outputHash := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName, "-w")

	expectedHash := objects.NewBlob(testFileContent).Hash()
	if expectedHash.String() != outputHash {
		t.Fatalf("Expected hash %s, got %s", expectedHash, outputHash)
	}

	blob, err := openTestStore(t, repoPath).ReadBlob(expectedHash)
	if err != nil {
		t.Fatalf("Failed to read stored blob: %v", err)
	}
	if !bytes.Equal(blob.Content(), testFileContent) {
		t.Errorf("Stored blob content mismatch: expected %q, got %q", testFileContent, blob.Content())
	}
}

// TestHashObjectCommand_CID verifies --cid prints a CID naming the same hash.
func TestHashObjectCommand_CID(t *testing.T) {
	repoPath := t.TempDir()
	changeToRepoDir(t, repoPath)

	testFileContent := []byte("hello world\n")
	testutils.CreateTestFile(t, repoPath, "test.txt", testFileContent)

	output := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "--cid", "test.txt")

	parsed, err := utils.ParseCID(output)
	if err != nil {
		t.Fatalf("Output %q is not a CID: %v", output, err)
	}
	if parsed != objects.NewBlob(testFileContent).Hash() {
		t.Errorf("CID names %s, expected %s", parsed, objects.NewBlob(testFileContent).Hash())
	}
}

// TestHashObject_FileNotFound verifies error for non-existent file.
func TestHashObject_FileNotFound(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	dummyFileName := "dummy.txt"

	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, dummyFileName)
	if err == nil {
		t.Fatalf("%s command SHOULD fail", constants.HashObjectCmdName)
	}

	expectedErrorMessage := fmt.Sprintf("failed to read file %s", dummyFileName)
	if !strings.Contains(err.Error(), expectedErrorMessage) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
	}
}

// TestHashObjectCommand_ArgumentCount verifies argument validation.
func TestHashObjectCommand_ArgumentCount(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no arguments", nil, "received 0"},
		{"too many arguments", []string{"a.txt", "b.txt"}, "received 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{constants.HashObjectCmdName}, tt.args...)
			_, err := runCommand(t, hashObjectCmd, args...)
			if err == nil {
				t.Fatal("Expected argument validation error")
			}

			expectedErrorMessage := fmt.Sprintf("%s command requires exactly 1 argument (filepath), %s", constants.HashObjectCmdName, tt.want)
			if !strings.Contains(err.Error(), expectedErrorMessage) {
				t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
			}
		})
	}
}

// TestHashObjectCommand_FileNotInRepository verifies error when file outside repository.
func TestHashObjectCommand_FileNotInRepository(t *testing.T) {
	repoPath := t.TempDir()
	changeToRepoDir(t, repoPath)

	testFileName := "test.txt"
	testutils.CreateTestFile(t, repoPath, testFileName, []byte("Pikachu I choose you !"))

	// The repository is only looked up when storing the blob
	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName, "-w")
	if err == nil {
		t.Fatal("Expected error when file is not inside a repository")
	}

	expectedErrorMessage := fmt.Sprintf("%s directory not found", constants.Vx)
	if !strings.Contains(err.Error(), expectedErrorMessage) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
	}
}

// TestHashObjectCommand_StoreFailure verifies error handling when storage fails.
func TestHashObjectCommand_StoreFailure(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	testFileName := "test.txt"
	testutils.CreateTestFile(t, repoPath, testFileName, []byte("Charmander used Ember !"))

	mockError := errors.New("failed to append to .vx/objects/pack.dat")
	patches := gomonkey.ApplyMethod(&objects.ObjectStore{}, "Write",
		func(_ *objects.ObjectStore, _ objects.Object) (utils.Hash, error) {
			return utils.ZeroHash, mockError
		})
	defer patches.Reset()

	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName, "-w")
	if err == nil {
		t.Fatalf("Expected %s command to fail according to mocking", constants.HashObjectCmdName)
	}

	expectedErrorMessage := "failed to store object: " + mockError.Error()
	if !strings.Contains(err.Error(), expectedErrorMessage) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
	}
}

// TestHashObjectCommand_NewBlobFromFileFailure verifies error handling when blob creation fails.
func TestHashObjectCommand_NewBlobFromFileFailure(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	testFileName := "test.txt"
	testutils.CreateTestFile(t, repoPath, testFileName, []byte("Charmander used Ember !"))

	mockError := errors.New("failed to create new blob from file")
	patches := gomonkey.ApplyFunc(objects.NewBlobFromFile,
		func(_ string) (*objects.Blob, error) {
			return nil, mockError
		})
	defer patches.Reset()

	_, err := runCommand(t, hashObjectCmd, constants.HashObjectCmdName, testFileName, "-w")
	if err == nil {
		t.Fatalf("Expected %s command to fail according to mocking", constants.HashObjectCmdName)
	}
	if !strings.Contains(err.Error(), mockError.Error()) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", mockError.Error(), err.Error())
	}
}

// TestHashObjectCommand_MultipleFiles_SameContent verifies identical content is stored once.
func TestHashObjectCommand_MultipleFiles_SameContent(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	content := []byte("identical content\n")
	testutils.CreateTestFile(t, repoPath, "file1.txt", content)
	testutils.CreateTestFile(t, repoPath, "file2.txt", content)

	hash1 := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", "file1.txt")
	hash2 := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", "file2.txt")

	if hash1 != hash2 {
		t.Errorf("Identical content should produce same hash: %s != %s", hash1, hash2)
	}

	if n := openTestStore(t, repoPath).Len(); n != 1 {
		t.Errorf("Expected 1 stored object, got %d", n)
	}
}

// TestHashObjectCommand_EmptyFile verifies hash computation for empty file.
func TestHashObjectCommand_EmptyFile(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	emptyFile := "empty.txt"
	testutils.CreateTestFile(t, repoPath, emptyFile, []byte{})

	outputHash := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", emptyFile)

	expectedHash := objects.NewBlob(nil).Hash()
	if outputHash != expectedHash.String() {
		t.Errorf("Expected empty file hash %s, got %s", expectedHash, outputHash)
	}
}

// TestHashObjectCommand_LargeFile verifies hash computation for large file.
func TestHashObjectCommand_LargeFile(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)
	changeToRepoDir(t, repoPath)

	largeFileName := "large.bin"
	largeContent := bytes.Repeat([]byte("A"), 1024*1024)
	testutils.CreateTestFile(t, repoPath, largeFileName, largeContent)

	outputHash := mustRunCommand(t, hashObjectCmd, constants.HashObjectCmdName, "-w", largeFileName)

	if len(outputHash) != constants.HashStringLength {
		t.Errorf("Expected %d-char hash, got: %s", constants.HashStringLength, outputHash)
	}

	expectedHash := objects.NewBlob(largeContent).Hash()
	if expectedHash.String() != outputHash {
		t.Fatalf("Expected hash %s, got %s", expectedHash, outputHash)
	}

	if !openTestStore(t, repoPath).Contains(expectedHash) {
		t.Error("Large blob was not stored")
	}
}
