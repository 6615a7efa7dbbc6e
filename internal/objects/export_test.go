package objects

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/utils"
)

// assertBlobContent verifies blob stores exact content and correct size.
func assertBlobContent(t *testing.T, blob *Blob, expectedContent []byte) {
	t.Helper()

	if blob.Size() != len(expectedContent) {
		t.Fatalf("Expected size %d, got %d", len(expectedContent), blob.Size())
	}

	if !bytes.Equal(blob.Content(), expectedContent) {
		t.Fatalf("Expected content [%q], got [%q]", expectedContent, blob.Content())
	}
}

// assertBlobHash verifies the blob hash is the digest of its encoding.
func assertBlobHash(t *testing.T, blob *Blob) {
	t.Helper()

	expectedHash := utils.ComputeHash(blob.Data())
	if blob.Hash() != expectedHash {
		t.Fatalf("Expected hash [%s], got [%s]", expectedHash, blob.Hash())
	}
}

// createTreeEntry creates tree entry and fails test on error.
func createTreeEntry(t *testing.T, mode FileMode, name string, hash utils.Hash) TreeEntry {
	t.Helper()

	entry, err := NewTreeEntry(mode, name, hash)
	if err != nil {
		t.Fatalf("Failed to create tree entry: %v", err)
	}

	return *entry
}

// createTree creates tree from entries and fails test on error.
func createTree(t *testing.T, entries []TreeEntry) *Tree {
	t.Helper()

	tree, err := NewTree(entries)
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}

	return tree
}

// createCommit creates commit and fails test on error.
func createCommit(t *testing.T, treeHash utils.Hash, parents []utils.Hash, author, message string, timestamp int64) *Commit {
	t.Helper()

	commit, err := NewCommit(treeHash, parents, author, message, timestamp)
	if err != nil {
		t.Fatalf("Failed to create commit: %v", err)
	}

	return commit
}

// assertTreeEntryEqual verifies two tree entries match.
func assertTreeEntryEqual(t *testing.T, actual, expected TreeEntry) {
	t.Helper()

	if actual.Name() != expected.Name() {
		t.Errorf("Entry name mismatch: expected %s, got %s", expected.Name(), actual.Name())
	}
	if actual.Hash() != expected.Hash() {
		t.Errorf("Entry hash mismatch: expected %s, got %s", expected.Hash(), actual.Hash())
	}
	if actual.Mode() != expected.Mode() {
		t.Errorf("Entry mode mismatch: expected %s, got %s", expected.Mode(), actual.Mode())
	}
}

// assertCommitEqual verifies two commits match in all fields.
func assertCommitEqual(t *testing.T, actual, expected *Commit) {
	t.Helper()

	if actual.Hash() != expected.Hash() {
		t.Errorf("Hash mismatch: expected [%s], got [%s]", expected.Hash(), actual.Hash())
	}
	if actual.TreeHash() != expected.TreeHash() {
		t.Errorf("Tree hash mismatch: expected [%s], got [%s]", expected.TreeHash(), actual.TreeHash())
	}
	if !slices.Equal(actual.Parents(), expected.Parents()) {
		t.Errorf("Parents mismatch: expected %v, got %v", expected.Parents(), actual.Parents())
	}
	if actual.Author() != expected.Author() {
		t.Errorf("Author mismatch: expected [%s], got [%s]", expected.Author(), actual.Author())
	}
	if actual.Message() != expected.Message() {
		t.Errorf("Message mismatch: expected [%s], got [%s]", expected.Message(), actual.Message())
	}
	if actual.Timestamp() != expected.Timestamp() {
		t.Errorf("Timestamp mismatch: expected [%d], got [%d]", expected.Timestamp(), actual.Timestamp())
	}
}

// assertFormatError fails unless err is a *FormatError.
func assertFormatError(t *testing.T, err error) {
	t.Helper()

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Expected *FormatError, got %T: %v", err, err)
	}
}

// openTestStore opens an on-disk store under a temp dir and closes it on cleanup.
func openTestStore(t *testing.T, opts StoreOptions) (*ObjectStore, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), constants.Vx, constants.Objects)
	store, err := OpenObjectStore(dir, opts)
	if err != nil {
		t.Fatalf("Failed to open object store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, dir
}

// writeObject stores obj and fails test on error.
func writeObject(t *testing.T, store *ObjectStore, obj Object) utils.Hash {
	t.Helper()

	hash, err := store.Write(obj)
	if err != nil {
		t.Fatalf("Failed to write %s: %v", obj.Type(), err)
	}
	if hash != obj.Hash() {
		t.Fatalf("Write returned %s, object hash is %s", hash, obj.Hash())
	}

	return hash
}

// failingRegion is an in-memory region whose next failAppends appends fail.
type failingRegion struct {
	*memRegion
	failAppends int
	err         error
}

func (r *failingRegion) Append(p []byte) (int64, error) {
	if r.failAppends > 0 {
		r.failAppends--
		return 0, r.err
	}
	return r.memRegion.Append(p)
}
