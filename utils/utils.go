package utils

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"lukechampine.com/blake3"
)

// HashSize is the byte length of an object digest.
const HashSize = 32

// Hash is the BLAKE3-256 digest of an object's canonical encoding.
type Hash [HashSize]byte

// ZeroHash is the all-zero Hash. No stored object hashes to it.
var ZeroHash Hash

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 7 hex characters, for human-facing output.
func (h Hash) Short() string {
	return h.String()[:7]
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// ParseHash decodes a 64-character hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != hex.EncodedLen(HashSize) {
		return h, fmt.Errorf("invalid hash %q: expected %d hex characters, got %d", s, hex.EncodedLen(HashSize), len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return h, nil
}

type ObjectType uint8

// Type tags as written in the object header.
const (
	BlobObjectType   ObjectType = 0
	TreeObjectType   ObjectType = 1
	CommitObjectType ObjectType = 2
)

func (ot ObjectType) IsValid() bool {
	switch ot {
	case BlobObjectType, TreeObjectType, CommitObjectType:
		return true
	default:
		return false
	}
}

func (ot ObjectType) String() string {
	switch ot {
	case BlobObjectType:
		return "blob"
	case TreeObjectType:
		return "tree"
	case CommitObjectType:
		return "commit"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(ot))
	}
}

// ParseObjectType maps "blob", "tree" or "commit" to its type tag.
func ParseObjectType(s string) (ObjectType, error) {
	switch s {
	case "blob":
		return BlobObjectType, nil
	case "tree":
		return TreeObjectType, nil
	case "commit":
		return CommitObjectType, nil
	default:
		return 0, fmt.Errorf("invalid object type: %s", s)
	}
}

// ComputeHash calculates the BLAKE3-256 digest of an encoded object.
func ComputeHash(data []byte) Hash {
	return Hash(blake3.Sum256(data))
}

// ComputeHashParts hashes the concatenation of parts without building it.
func ComputeHashParts(parts ...[]byte) Hash {
	hasher := blake3.New(HashSize, nil)
	for _, p := range parts {
		hasher.Write(p)
	}

	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}

// BuildDirPath constructs os-agnostic display direcotry path with trailing separator preserving all components.
// Unlike filepath.Join, does not normalize "." or remove redundant separators.
func BuildDirPath(dirs ...string) string {
	return strings.Join(dirs, string(filepath.Separator)) + string(filepath.Separator)
}
