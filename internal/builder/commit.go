package builder

import (
	"fmt"
	"log/slog"

	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/utils"
)

// CommitRequest carries everything a commit records. Author and Timestamp
// are supplied by the caller; the builder never reads the clock.
type CommitRequest struct {
	Tree      utils.Hash
	Parents   []utils.Hash
	Author    string
	Message   string
	Timestamp int64
}

// CreateCommit writes a commit for req. The tree and every parent must
// already be stored; a missing one is a *objects.DanglingReferenceError and
// nothing is written.
func CreateCommit(store ObjectWriter, req CommitRequest) (utils.Hash, error) {
	if !store.Contains(req.Tree) {
		return utils.ZeroHash, &objects.DanglingReferenceError{Hash: req.Tree, Role: "tree"}
	}
	for _, parent := range req.Parents {
		if !store.Contains(parent) {
			return utils.ZeroHash, &objects.DanglingReferenceError{Hash: parent, Role: "parent"}
		}
	}

	commit, err := objects.NewCommit(req.Tree, req.Parents, req.Author, req.Message, req.Timestamp)
	if err != nil {
		return utils.ZeroHash, err
	}

	hash, err := store.Write(commit)
	if err != nil {
		return utils.ZeroHash, fmt.Errorf("failed to store commit: %w", err)
	}

	slog.Debug("Created commit",
		"hash", hash,
		"tree", req.Tree,
		"parents", len(req.Parents))
	return hash, nil
}
