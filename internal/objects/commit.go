package objects

import (
	"fmt"
	"math"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/KostasZigo/vx/utils"
)

// Represents a snapshot of the repository
type Commit struct {
	hash      utils.Hash
	treeHash  utils.Hash
	parents   []utils.Hash
	author    string
	message   string
	timestamp int64
	data      []byte
}

// NewCommit builds a commit. Parents keep their order; author and message
// must be valid UTF-8.
func NewCommit(treeHash utils.Hash, parents []utils.Hash, author, message string, timestamp int64) (*Commit, error) {
	for field, value := range map[string]string{"author": author, "message": message} {
		if !utf8.ValidString(value) {
			return nil, formatErrorf("commit %s is not valid UTF-8", field)
		}
		if uint64(len(value)) > math.MaxUint32 {
			return nil, formatErrorf("commit %s is too long", field)
		}
	}

	// A root commit always carries nil parents, however it was built.
	if len(parents) == 0 {
		parents = nil
	} else {
		parents = slices.Clone(parents)
	}
	data := buildCommitContent(treeHash, parents, author, message, timestamp)

	return &Commit{
		hash:      utils.ComputeHash(data),
		treeHash:  treeHash,
		parents:   parents,
		author:    author,
		message:   message,
		timestamp: timestamp,
		data:      data,
	}, nil
}

// buildCommitContent encodes:
// <tree:32><parentCount:u32><parent:32>...<author><message><timestamp:i64>
func buildCommitContent(treeHash utils.Hash, parents []utils.Hash, author, message string, timestamp int64) []byte {
	size := utils.HashSize + 4 + len(parents)*utils.HashSize + 4 + len(author) + 4 + len(message) + 8

	e := newEncoder(utils.CommitObjectType, size)
	e.hash(treeHash)
	e.u32(uint32(len(parents)))
	for _, parent := range parents {
		e.hash(parent)
	}
	e.str(author)
	e.str(message)
	e.i64(timestamp)
	return e.bytes()
}

func decodeCommit(payload []byte) (*Commit, error) {
	d := newDecoder(payload, "commit")

	treeHash, err := d.hash("tree hash")
	if err != nil {
		return nil, err
	}
	count, err := d.u32("parent count")
	if err != nil {
		return nil, err
	}
	if uint64(count)*utils.HashSize > uint64(d.remaining()) {
		return nil, formatErrorf("commit declares %d parents but only %d bytes remain", count, d.remaining())
	}
	parents := make([]utils.Hash, 0, count)
	for range count {
		parent, err := d.hash("parent hash")
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	author, err := d.str("author")
	if err != nil {
		return nil, err
	}
	message, err := d.str("message")
	if err != nil {
		return nil, err
	}
	timestamp, err := d.i64("timestamp")
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}

	return NewCommit(treeHash, parents, author, message, timestamp)
}

func (c *Commit) Type() utils.ObjectType {
	return utils.CommitObjectType
}

func (c *Commit) Hash() utils.Hash {
	return c.hash
}

func (c *Commit) TreeHash() utils.Hash {
	return c.treeHash
}

// Parents returns the parent hashes in their stored order.
func (c *Commit) Parents() []utils.Hash {
	return slices.Clone(c.parents)
}

func (c *Commit) Author() string {
	return c.author
}

func (c *Commit) Message() string {
	return c.message
}

// Timestamp is seconds since the Unix epoch.
func (c *Commit) Timestamp() int64 {
	return c.timestamp
}

func (c *Commit) Time() time.Time {
	return time.Unix(c.timestamp, 0)
}

func (c *Commit) Data() []byte {
	return slices.Clone(c.data)
}

func (c *Commit) IsInitialCommit() bool {
	return len(c.parents) == 0
}

func (c *Commit) String() string {
	return fmt.Sprintf("Commit{hash: %s, tree: %s, parents: %d, author: %s, message: %q}",
		c.hash, c.treeHash, len(c.parents), c.author, c.message)
}
