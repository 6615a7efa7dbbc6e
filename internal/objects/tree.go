package objects

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/KostasZigo/vx/utils"
)

type FileMode uint8

const (
	ModeFile       FileMode = 0 // Regular non-executable file
	ModeExecutable FileMode = 1 // Executable file
	ModeDirectory  FileMode = 2 // Directory (tree)
)

func (m FileMode) IsValid() bool {
	switch m {
	case ModeFile, ModeExecutable, ModeDirectory:
		return true
	default:
		return false
	}
}

func (m FileMode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeExecutable:
		return "executable"
	case ModeDirectory:
		return "directory"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ObjectType is the type of object an entry with this mode points at.
func (m FileMode) ObjectType() utils.ObjectType {
	if m == ModeDirectory {
		return utils.TreeObjectType
	}
	return utils.BlobObjectType
}

// minEntrySize is an entry with an empty name: length + mode + hash.
const minEntrySize = 4 + 1 + utils.HashSize

// TreeEntry represents a single entry in a tree object
type TreeEntry struct {
	mode FileMode
	name string
	hash utils.Hash
}

func NewTreeEntry(mode FileMode, name string, hash utils.Hash) (*TreeEntry, error) {
	if !mode.IsValid() {
		return nil, formatErrorf("invalid file mode: %d", uint8(mode))
	}
	if err := ValidateEntryName(name); err != nil {
		return nil, err
	}
	return &TreeEntry{
		mode: mode,
		name: name,
		hash: hash,
	}, nil
}

// ValidateEntryName checks that name is a single UTF-8 path segment.
func ValidateEntryName(name string) error {
	switch {
	case name == "":
		return formatErrorf("tree entry name is empty")
	case name == "." || name == "..":
		return formatErrorf("tree entry name %q is reserved", name)
	case strings.ContainsAny(name, "/\x00"):
		return formatErrorf("tree entry name %q contains '/' or NUL", name)
	case !utf8.ValidString(name):
		return formatErrorf("tree entry name %q is not valid UTF-8", name)
	case uint64(len(name)) > math.MaxUint32:
		return formatErrorf("tree entry name is too long")
	}
	return nil
}

func (e *TreeEntry) Mode() FileMode {
	return e.mode
}

func (e *TreeEntry) Name() string {
	return e.name
}

func (e *TreeEntry) Hash() utils.Hash {
	return e.hash
}

func (e *TreeEntry) IsDirectory() bool {
	return e.mode == ModeDirectory
}

// Tree represents a directory: entries sorted by name.
type Tree struct {
	entries []TreeEntry
	data    []byte
	hash    utils.Hash
}

// NewTree creates a tree object from the list of Tree Entries.
// Entries may come in any order; duplicate names are a *ConflictError.
func NewTree(treeEntries []TreeEntry) (*Tree, error) {
	entries := slices.Clone(treeEntries)
	slices.SortFunc(entries, compareTreeEntries)

	for i := 1; i < len(entries); i++ {
		if entries[i-1].name == entries[i].name {
			return nil, &ConflictError{Name: entries[i].name}
		}
	}

	data := buildTreeContent(entries)
	return &Tree{
		entries: entries,
		data:    data,
		hash:    utils.ComputeHash(data),
	}, nil
}

// compareTreeEntries orders entries by the raw bytes of their names.
func compareTreeEntries(a, b TreeEntry) int {
	return strings.Compare(a.name, b.name)
}

// buildTreeContent encodes sorted entries:
// count:u32, then per entry <nameLen:u32><name><mode:u8><hash:32>
func buildTreeContent(entries []TreeEntry) []byte {
	size := 4
	for _, entry := range entries {
		size += minEntrySize + len(entry.name)
	}

	e := newEncoder(utils.TreeObjectType, size)
	e.u32(uint32(len(entries)))
	for _, entry := range entries {
		e.str(entry.name)
		e.u8(uint8(entry.mode))
		e.hash(entry.hash)
	}
	return e.bytes()
}

func decodeTree(payload []byte) (*Tree, error) {
	d := newDecoder(payload, "tree")

	count, err := d.u32("entry count")
	if err != nil {
		return nil, err
	}
	if uint64(count)*minEntrySize > uint64(d.remaining()) {
		return nil, formatErrorf("tree declares %d entries but only %d bytes remain", count, d.remaining())
	}

	entries := make([]TreeEntry, 0, count)
	for i := range int(count) {
		name, err := d.str("entry name")
		if err != nil {
			return nil, err
		}
		rawMode, err := d.u8("entry mode")
		if err != nil {
			return nil, err
		}
		hash, err := d.hash("entry hash")
		if err != nil {
			return nil, err
		}

		entry, err := NewTreeEntry(FileMode(rawMode), name, hash)
		if err != nil {
			return nil, err
		}
		if i > 0 && entries[i-1].name >= name {
			return nil, formatErrorf("tree entries not in canonical order at %q", name)
		}
		entries = append(entries, *entry)
	}
	if err := d.finish(); err != nil {
		return nil, err
	}

	return NewTree(entries)
}

func (t *Tree) Type() utils.ObjectType {
	return utils.TreeObjectType
}

// Hash returns the digest of the tree
func (t *Tree) Hash() utils.Hash {
	return t.hash
}

// Entries returns all tree entries in canonical order
func (t *Tree) Entries() []TreeEntry {
	return slices.Clone(t.entries)
}

// Len returns the number of entries
func (t *Tree) Len() int {
	return len(t.entries)
}

func (t *Tree) Data() []byte {
	return slices.Clone(t.data)
}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree{hash: %s, entries: %d}", t.hash, len(t.entries))
}

// FindEntry finds an entry by name
func (t *Tree) FindEntry(name string) (*TreeEntry, bool) {
	i, found := slices.BinarySearchFunc(t.entries, name, func(e TreeEntry, target string) int {
		return strings.Compare(e.name, target)
	})
	if !found {
		return nil, false
	}
	entry := t.entries[i]
	return &entry, true
}
