package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KostasZigo/vx/internal/builder"
	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/internal/worktree"
	"github.com/KostasZigo/vx/utils"
)

// WriteTree stores the current worktree and returns its root tree hash.
func (r *Repository) WriteTree(ctx context.Context) (utils.Hash, error) {
	entries, err := worktree.Scan(r.Root, worktree.OptionsFromConfig(r.Config))
	if err != nil {
		return utils.ZeroHash, err
	}
	return builder.BuildTree(ctx, r.Store, entries, r.Config.Core.Workers)
}

// CommitOptions configures Repository.Commit.
type CommitOptions struct {
	Message string

	// Author falls back to [user] name, then to a placeholder.
	Author string

	// Parents replaces the default parent, the commit HEAD points at.
	// An explicit empty, non-nil slice makes a root commit.
	Parents []utils.Hash

	// Time defaults to now.
	Time time.Time
}

// Commit snapshots the worktree, records it as a commit and advances HEAD.
func (r *Repository) Commit(ctx context.Context, opts CommitOptions) (utils.Hash, error) {
	if opts.Message == "" {
		return utils.ZeroHash, fmt.Errorf("commit message is required")
	}

	parents := opts.Parents
	if parents == nil {
		head, err := r.Head()
		if err != nil {
			return utils.ZeroHash, err
		}
		if !head.Unborn() {
			parents = []utils.Hash{head.Commit}
		}
	}

	author := opts.Author
	if author == "" {
		author = r.Config.User.Name
	}
	if author == "" {
		author = constants.DefaultAuthor
	}

	when := opts.Time
	if when.IsZero() {
		when = time.Now()
	}

	tree, err := r.WriteTree(ctx)
	if err != nil {
		return utils.ZeroHash, err
	}

	hash, err := builder.CreateCommit(r.Store, builder.CommitRequest{
		Tree:      tree,
		Parents:   parents,
		Author:    author,
		Message:   opts.Message,
		Timestamp: when.Unix(),
	})
	if err != nil {
		return utils.ZeroHash, err
	}

	if err := r.UpdateHead(hash); err != nil {
		return utils.ZeroHash, fmt.Errorf("commit %s stored but %s not updated: %w", hash, constants.Head, err)
	}

	slog.Debug("Committed",
		"hash", hash,
		"tree", tree,
		"parents", len(parents))
	return hash, nil
}

// Log follows first parents from start, newest first. A zero start means
// HEAD; limit <= 0 means no limit.
func (r *Repository) Log(start utils.Hash, limit int) ([]*objects.Commit, error) {
	if start.IsZero() {
		head, err := r.Head()
		if err != nil {
			return nil, err
		}
		if head.Unborn() {
			return nil, nil
		}
		start = head.Commit
	}

	var commits []*objects.Commit
	current := start
	for limit <= 0 || len(commits) < limit {
		commit, err := r.Store.ReadCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		commits = append(commits, commit)

		// Follow first parent.
		parents := commit.Parents()
		if len(parents) == 0 {
			break
		}
		current = parents[0]
	}
	return commits, nil
}
