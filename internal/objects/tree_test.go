package objects

import (
	"errors"
	"testing"

	"github.com/KostasZigo/vx/utils"
)

// TREE ENTRY TESTS

func TestNewTreeEntry(t *testing.T) {
	hash := NewBlob([]byte("abc")).Hash()
	entry, err := NewTreeEntry(ModeFile, "test.txt", hash)

	if err != nil {
		t.Fatal("Expected New Tree Entry to be created")
	}

	if entry.Mode() != ModeFile {
		t.Errorf("Expected mode %s, got %s", ModeFile, entry.Mode())
	}

	if entry.Name() != "test.txt" {
		t.Errorf("Expected name 'test.txt', got %s", entry.Name())
	}

	if entry.Hash() != hash {
		t.Errorf("Expected hash %s, got %s", hash, entry.Hash())
	}
}

func TestNewTreeEntry_InvalidInput(t *testing.T) {
	hash := NewBlob([]byte("abc")).Hash()

	cases := map[string]struct {
		mode FileMode
		name string
	}{
		"unknown mode":  {mode: FileMode(7), name: "a.txt"},
		"empty name":    {mode: ModeFile, name: ""},
		"dot":           {mode: ModeDirectory, name: "."},
		"dot dot":       {mode: ModeDirectory, name: ".."},
		"slash":         {mode: ModeFile, name: "a/b"},
		"nul":           {mode: ModeFile, name: "a\x00b"},
		"invalid utf-8": {mode: ModeFile, name: "\xff\xfe"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTreeEntry(tc.mode, tc.name, hash)
			assertFormatError(t, err)
		})
	}
}

func TestTreeEntry_IsDirectory(t *testing.T) {
	dirEntry, _ := NewTreeEntry(ModeDirectory, "src", utils.ZeroHash)
	fileEntry, _ := NewTreeEntry(ModeFile, "main.go", utils.ZeroHash)
	execEntry, _ := NewTreeEntry(ModeExecutable, "run.sh", utils.ZeroHash)

	if !dirEntry.IsDirectory() {
		t.Fatal("Expected directory entry to be identified as directory")
	}

	if fileEntry.IsDirectory() {
		t.Fatal("Expected file entry not to be identified as directory")
	}

	if execEntry.Mode() != ModeExecutable || fileEntry.Mode() == ModeExecutable {
		t.Fatal("Expected only the executable entry to be executable")
	}

	if dirEntry.Mode().ObjectType() != utils.TreeObjectType || execEntry.Mode().ObjectType() != utils.BlobObjectType {
		t.Fatal("Expected directories to point at trees and files at blobs")
	}
}

// TREE TESTS

func TestNewTree_EmptyTree(t *testing.T) {
	tree := createTree(t, []TreeEntry{})

	if tree.Len() != 0 {
		t.Fatalf("Expected 0 entries, got %d", tree.Len())
	}

	// count:u32 = 0 after the 5-byte header
	expected := []byte{'V', 'X', '0', '1', byte(utils.TreeObjectType), 0, 0, 0, 0}
	if string(tree.Data()) != string(expected) {
		t.Fatalf("Expected empty tree encoding %v, got %v", expected, tree.Data())
	}

	if tree.Hash() != utils.ComputeHash(expected) {
		t.Errorf("Expected empty tree hash %s, got %s", utils.ComputeHash(expected), tree.Hash())
	}

	again := createTree(t, nil)
	if again.Hash() != tree.Hash() {
		t.Error("Empty tree hash should be deterministic")
	}

	nonEmpty := createTree(t, []TreeEntry{createTreeEntry(t, ModeFile, "a", NewBlob(nil).Hash())})
	if nonEmpty.Hash() == tree.Hash() {
		t.Error("Empty tree hash should differ from a non-empty tree hash")
	}
}

func TestNewTree_SingleEntry(t *testing.T) {
	blob := NewBlob([]byte("test content\n"))

	tree := createTree(t, []TreeEntry{createTreeEntry(t, ModeFile, "test.txt", blob.Hash())})

	if tree.Hash().IsZero() {
		t.Error("Tree hash should not be empty")
	}

	if tree.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", tree.Len())
	}
}

func TestNewTree_SortsEntries(t *testing.T) {
	// Add entries in wrong order
	entries := []TreeEntry{
		createTreeEntry(t, ModeFile, "z.txt", testHash("1")),
		createTreeEntry(t, ModeFile, "a.txt", testHash("2")),
		createTreeEntry(t, ModeDirectory, "m", testHash("3")),
	}

	sortedEntries := createTree(t, entries).Entries()

	// Should be sorted by raw name bytes
	for i, want := range []string{"a.txt", "m", "z.txt"} {
		if sortedEntries[i].Name() != want {
			t.Errorf("Expected entry %d to be %q, got %q", i, want, sortedEntries[i].Name())
		}
	}
}

func TestNewTree_OrderIndependentHash(t *testing.T) {
	a := createTreeEntry(t, ModeFile, "a.txt", testHash("a"))
	b := createTreeEntry(t, ModeExecutable, "b.sh", testHash("b"))
	c := createTreeEntry(t, ModeDirectory, "c", testHash("c"))

	expected := createTree(t, []TreeEntry{a, b, c}).Hash()
	permutations := [][]TreeEntry{
		{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	for _, perm := range permutations {
		if got := createTree(t, perm).Hash(); got != expected {
			t.Errorf("Permutation produced hash %s, want %s", got, expected)
		}
	}
}

func TestNewTree_DuplicateNames(t *testing.T) {
	entries := []TreeEntry{
		createTreeEntry(t, ModeFile, "same", testHash("1")),
		createTreeEntry(t, ModeDirectory, "same", testHash("2")),
	}

	_, err := NewTree(entries)

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("Expected *ConflictError, got %v", err)
	}
	if conflictErr.Name != "same" {
		t.Errorf("Expected conflicting name 'same', got %q", conflictErr.Name)
	}
}

func TestNewTree_DoesNotAliasInput(t *testing.T) {
	entries := []TreeEntry{
		createTreeEntry(t, ModeFile, "b", testHash("b")),
		createTreeEntry(t, ModeFile, "a", testHash("a")),
	}

	tree := createTree(t, entries)
	hash := tree.Hash()

	entries[0] = createTreeEntry(t, ModeFile, "zzz", testHash("z"))
	if tree.Hash() != hash || tree.Entries()[1].Name() != "b" {
		t.Error("Mutating the input slice should not affect the tree")
	}
}

func TestTree_FindEntry(t *testing.T) {
	blobHash := NewBlob([]byte("package main\n")).Hash()
	tree := createTree(t, []TreeEntry{
		createTreeEntry(t, ModeFile, "main.go", blobHash),
		createTreeEntry(t, ModeFile, "README.md", testHash("readme")),
	})

	entry, found := tree.FindEntry("main.go")
	if !found {
		t.Fatal("Expected to find main.go")
	}
	assertTreeEntryEqual(t, *entry, createTreeEntry(t, ModeFile, "main.go", blobHash))

	if _, found := tree.FindEntry("missing.go"); found {
		t.Error("Expected missing.go not to be found")
	}
}

func TestTree_NestedStructure(t *testing.T) {
	// Create blobs for files
	mainBlob := NewBlob([]byte("package main\n"))
	readmeBlob := NewBlob([]byte("# Project\n"))

	// Create subtree for src/ directory
	srcTree := createTree(t, []TreeEntry{createTreeEntry(t, ModeFile, "main.go", mainBlob.Hash())})

	// Create root tree
	rootTree := createTree(t, []TreeEntry{
		createTreeEntry(t, ModeFile, "README.md", readmeBlob.Hash()),
		createTreeEntry(t, ModeDirectory, "src", srcTree.Hash()),
	})

	srcEntry, found := rootTree.FindEntry("src")
	if !found {
		t.Fatal("Expected to find src entry")
	}
	if !srcEntry.IsDirectory() {
		t.Error("Expected src to be a directory")
	}
	if srcEntry.Hash() != srcTree.Hash() {
		t.Errorf("Expected src hash %s, got %s", srcTree.Hash(), srcEntry.Hash())
	}
}

// testHash returns a deterministic hash derived from seed.
func testHash(seed string) utils.Hash {
	return utils.ComputeHash([]byte(seed))
}
