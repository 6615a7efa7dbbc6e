package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KostasZigo/vx/internal/builder"
	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/internal/worktree"
	"github.com/KostasZigo/vx/utils"
)

// ErrDirtyWorktree is returned by Checkout when the worktree no longer
// matches the commit HEAD points at.
var ErrDirtyWorktree = errors.New("worktree has uncommitted changes")

// CheckoutOptions configures Repository.Checkout.
type CheckoutOptions struct {
	// Force overwrites uncommitted changes to tracked files.
	Force bool
}

// Checkout moves HEAD to target and rewrites the worktree to match. A
// target naming a branch attaches HEAD to it; a commit hash detaches HEAD.
//
// Files tracked by the old HEAD commit and absent from the target are
// removed. Untracked and ignored files are left alone.
func (r *Repository) Checkout(ctx context.Context, target string, opts CheckoutOptions) (Head, error) {
	next, err := r.resolveCheckoutTarget(target)
	if err != nil {
		return Head{}, err
	}

	commit, err := r.Store.ReadCommit(next.Commit)
	if err != nil {
		return Head{}, fmt.Errorf("checkout: read commit %s: %w", next.Commit, err)
	}

	current, err := r.Head()
	if err != nil {
		return Head{}, err
	}
	currentTree, err := r.emptyTree()
	if err != nil {
		return Head{}, err
	}
	if !current.Unborn() {
		currentCommit, err := r.Store.ReadCommit(current.Commit)
		if err != nil {
			return Head{}, fmt.Errorf("checkout: read %s commit %s: %w", constants.Head, current.Commit, err)
		}
		currentTree = currentCommit.TreeHash()
	}

	if !opts.Force {
		if err := r.ensureClean(ctx, currentTree); err != nil {
			return Head{}, fmt.Errorf("checkout: %w", err)
		}
	}

	if err := r.restoreTree(currentTree, commit.TreeHash()); err != nil {
		return Head{}, fmt.Errorf("checkout: %w", err)
	}

	if next.Detached() {
		err = r.writeDetachedHead(next.Commit)
	} else {
		err = r.writeSymbolicHead(next.Branch)
	}
	if err != nil {
		return Head{}, fmt.Errorf("checkout: worktree restored but %s not updated: %w", constants.Head, err)
	}

	slog.Debug("Checked out",
		"branch", next.Branch,
		"commit", next.Commit,
		"tree", commit.TreeHash())
	return next, nil
}

// resolveCheckoutTarget reads target as a branch name first, then as a
// commit hash.
func (r *Repository) resolveCheckoutTarget(target string) (Head, error) {
	if r.BranchExists(target) {
		hash, err := r.ResolveBranch(target)
		if err != nil {
			return Head{}, err
		}
		if hash.IsZero() {
			return Head{}, fmt.Errorf("branch %q has no commit", target)
		}
		return Head{Branch: target, Commit: hash}, nil
	}

	hash, err := utils.ParseHash(target)
	if err != nil {
		return Head{}, fmt.Errorf("%w: %q is neither a branch nor a commit hash", ErrBranchNotFound, target)
	}
	if err := r.requireCommit(hash, "checkout"); err != nil {
		return Head{}, err
	}
	return Head{Commit: hash}, nil
}

func (r *Repository) emptyTree() (utils.Hash, error) {
	tree, err := objects.NewTree(nil)
	if err != nil {
		return utils.ZeroHash, err
	}
	return tree.Hash(), nil
}

// treeHasher satisfies builder.ObjectWriter without storing anything, so
// the worktree can be hashed as write-tree would see it.
type treeHasher struct{}

func (treeHasher) Write(obj objects.Object) (utils.Hash, error) {
	return obj.Hash(), nil
}

func (treeHasher) Contains(utils.Hash) bool {
	return false
}

// ensureClean fails unless the worktree hashes to tree.
func (r *Repository) ensureClean(ctx context.Context, tree utils.Hash) error {
	entries, err := worktree.Scan(r.Root, worktree.OptionsFromConfig(r.Config))
	if err != nil {
		return err
	}
	actual, err := builder.BuildTree(ctx, treeHasher{}, entries, r.Config.Core.Workers)
	if err != nil {
		return fmt.Errorf("failed to hash worktree: %w", err)
	}
	if actual != tree {
		return ErrDirtyWorktree
	}
	return nil
}

// restoreTree turns a worktree holding from into one holding to.
func (r *Repository) restoreTree(from, to utils.Hash) error {
	current, err := builder.FlattenTree(r.Store, from)
	if err != nil {
		return err
	}
	target, err := builder.FlattenTree(r.Store, to)
	if err != nil {
		return err
	}

	wanted := make(map[string]objects.FileMode, len(target))
	for _, entry := range target {
		if err := checkRestorePath(entry.Path); err != nil {
			return err
		}
		wanted[entry.Path] = entry.Mode
	}

	// Deepest paths first, so directories empty out before their parents.
	for _, entry := range slices.Backward(current) {
		mode, keep := wanted[entry.Path]
		if keep && (mode == objects.ModeDirectory) == (entry.Mode == objects.ModeDirectory) {
			continue
		}
		if err := checkRestorePath(entry.Path); err != nil {
			return err
		}
		absPath := filepath.Join(r.Root, filepath.FromSlash(entry.Path))
		err := os.Remove(absPath)
		// An empty directory that picked up ignored files stays.
		if err != nil && !os.IsNotExist(err) && entry.Mode != objects.ModeDirectory {
			return fmt.Errorf("failed to remove %q: %w", entry.Path, err)
		}
		r.removeEmptyParents(filepath.Dir(absPath))
	}

	for _, entry := range target {
		absPath := filepath.Join(r.Root, filepath.FromSlash(entry.Path))
		if entry.Mode == objects.ModeDirectory {
			if err := os.MkdirAll(absPath, constants.DirPerms); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", entry.Path, err)
			}
			continue
		}
		if err := r.restoreFile(absPath, entry); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) restoreFile(absPath string, entry builder.FlatEntry) error {
	if err := os.MkdirAll(filepath.Dir(absPath), constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", entry.Path, err)
	}

	blob, err := r.Store.ReadBlob(entry.Hash)
	if err != nil {
		return fmt.Errorf("failed to read blob for %q: %w", entry.Path, err)
	}

	perm := constants.FilePerms
	if entry.Mode == objects.ModeExecutable {
		perm = constants.ExecPerms
	}
	if err := os.WriteFile(absPath, blob.Content(), perm); err != nil {
		return fmt.Errorf("failed to write %q: %w", entry.Path, err)
	}
	// WriteFile keeps the mode of a file that already existed.
	if err := os.Chmod(absPath, perm); err != nil {
		return fmt.Errorf("failed to set mode of %q: %w", entry.Path, err)
	}
	return nil
}

// checkRestorePath refuses tree paths that would land outside the worktree
// or inside the metadata directory.
func checkRestorePath(p string) error {
	first, _, _ := strings.Cut(p, "/")
	if !filepath.IsLocal(filepath.FromSlash(p)) || path.Clean(p) != p || first == constants.Vx {
		return fmt.Errorf("refusing to restore %q outside the worktree", p)
	}
	return nil
}

// removeEmptyParents removes empty directories up to, but not including,
// the worktree root.
func (r *Repository) removeEmptyParents(dir string) {
	root := filepath.Clean(r.Root)
	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
