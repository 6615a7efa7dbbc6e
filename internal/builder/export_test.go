package builder

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/utils"
)

// strictStore wraps a memory store and refuses any tree or commit whose
// references are not stored yet.
type strictStore struct {
	*objects.ObjectStore

	mu     sync.Mutex
	writes []utils.Hash
}

func newStrictStore() *strictStore {
	return &strictStore{ObjectStore: objects.NewMemoryObjectStore()}
}

func (s *strictStore) Write(obj objects.Object) (utils.Hash, error) {
	var refs []utils.Hash
	switch o := obj.(type) {
	case *objects.Tree:
		for _, entry := range o.Entries() {
			refs = append(refs, entry.Hash())
		}
	case *objects.Commit:
		refs = append(refs, o.TreeHash())
		refs = append(refs, o.Parents()...)
	}
	for _, ref := range refs {
		if !s.Contains(ref) {
			return utils.ZeroHash, fmt.Errorf("%s written before its reference %s", obj.Hash(), ref)
		}
	}

	s.mu.Lock()
	s.writes = append(s.writes, obj.Hash())
	s.mu.Unlock()
	return s.ObjectStore.Write(obj)
}

// failingContent is a ContentProvider whose Open always fails.
type failingContent struct{ err error }

func (f failingContent) Open() (io.ReadCloser, error) {
	return nil, f.err
}

var errOpen = errors.New("permission denied")

func fileEntry(p, content string) Entry {
	return Entry{Path: p, Kind: KindFile, Content: BytesContent(content)}
}

// buildTree runs BuildTree with two workers and fails test on error.
func buildTree(t *testing.T, store ObjectWriter, entries []Entry) utils.Hash {
	t.Helper()

	hash, err := BuildTree(t.Context(), store, entries, 2)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}
	return hash
}

// mustTree builds an objects.Tree from entries and fails test on error.
func mustTree(t *testing.T, entries ...objects.TreeEntry) *objects.Tree {
	t.Helper()

	tree, err := objects.NewTree(entries)
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}
	return tree
}

func mustEntry(t *testing.T, mode objects.FileMode, name string, hash utils.Hash) objects.TreeEntry {
	t.Helper()

	entry, err := objects.NewTreeEntry(mode, name, hash)
	if err != nil {
		t.Fatalf("Failed to create tree entry: %v", err)
	}
	return *entry
}
