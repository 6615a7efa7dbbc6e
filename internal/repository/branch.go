package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/utils"
)

// ErrBranchNotFound is returned when a named branch has no ref file.
var ErrBranchNotFound = errors.New("branch not found")

// Branch is a named pointer at a commit.
type Branch struct {
	Name    string
	Commit  utils.Hash
	Current bool
}

func (r *Repository) branchPath(name string) string {
	return filepath.Join(r.VxDir, constants.Refs, constants.Heads, name)
}

func branchRef(name string) string {
	return constants.Refs + "/" + constants.Heads + "/" + name
}

// ValidateBranchName rejects names that cannot live as a single file under
// refs/heads or that would read as something else on the command line.
func ValidateBranchName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("branch name cannot be empty")
	case name == constants.Head:
		return fmt.Errorf("%q is not a valid branch name", name)
	case name == "." || name == "..":
		return fmt.Errorf("%q is not a valid branch name", name)
	case strings.HasPrefix(name, "-"):
		return fmt.Errorf("branch name %q cannot start with '-'", name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("branch name %q cannot start with '.'", name)
	case strings.ContainsAny(name, "/\\"):
		return fmt.Errorf("branch name %q cannot contain a path separator", name)
	case strings.ContainsFunc(name, func(r rune) bool { return r <= ' ' || r == 0x7f }):
		return fmt.Errorf("branch name %q cannot contain whitespace or control characters", name)
	}
	return nil
}

// BranchExists reports whether refs/heads/<name> exists.
func (r *Repository) BranchExists(name string) bool {
	if ValidateBranchName(name) != nil {
		return false
	}
	info, err := os.Stat(r.branchPath(name))
	return err == nil && info.Mode().IsRegular()
}

// ResolveBranch returns the commit a branch points at.
func (r *Repository) ResolveBranch(name string) (utils.Hash, error) {
	if !r.BranchExists(name) {
		return utils.ZeroHash, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	return r.readRef(branchRef(name))
}

// ListBranches returns every branch sorted by name. The branch HEAD names
// is marked current, even before its first commit.
func (r *Repository) ListBranches() ([]Branch, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(r.VxDir, constants.Refs, constants.Heads))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	var branches []Branch
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || ValidateBranchName(name) != nil {
			continue
		}
		hash, err := r.readRef(branchRef(name))
		if err != nil {
			return nil, err
		}
		branches = append(branches, Branch{Name: name, Commit: hash, Current: name == head.Branch})
	}

	if head.Unborn() && !head.Detached() && !slices.ContainsFunc(branches, func(b Branch) bool { return b.Current }) {
		branches = append(branches, Branch{Name: head.Branch, Current: true})
	}

	slices.SortFunc(branches, func(a, b Branch) int {
		return strings.Compare(a.Name, b.Name)
	})
	return branches, nil
}

// CreateBranch points a new branch at commit, or at HEAD when commit is
// zero. An existing branch is never overwritten.
func (r *Repository) CreateBranch(name string, commit utils.Hash) (utils.Hash, error) {
	if err := ValidateBranchName(name); err != nil {
		return utils.ZeroHash, err
	}
	if r.BranchExists(name) {
		return utils.ZeroHash, fmt.Errorf("branch %q already exists", name)
	}

	if commit.IsZero() {
		head, err := r.Head()
		if err != nil {
			return utils.ZeroHash, err
		}
		if head.Unborn() {
			return utils.ZeroHash, fmt.Errorf("cannot create branch %q: %s has no commit yet", name, constants.Head)
		}
		commit = head.Commit
	}

	if err := r.requireCommit(commit, "branch"); err != nil {
		return utils.ZeroHash, err
	}

	if err := safeWrite(r.branchPath(name), []byte(commit.String()+"\n"), constants.FilePerms); err != nil {
		return utils.ZeroHash, fmt.Errorf("failed to create branch %q: %w", name, err)
	}
	return commit, nil
}

// DeleteBranch removes a branch and returns the commit it pointed at. The
// branch HEAD names cannot be deleted.
func (r *Repository) DeleteBranch(name string) (utils.Hash, error) {
	hash, err := r.ResolveBranch(name)
	if err != nil {
		return utils.ZeroHash, err
	}

	head, err := r.Head()
	if err != nil {
		return utils.ZeroHash, err
	}
	if head.Branch == name {
		return utils.ZeroHash, fmt.Errorf("cannot delete branch %q: it is checked out", name)
	}

	if err := os.Remove(r.branchPath(name)); err != nil {
		return utils.ZeroHash, fmt.Errorf("failed to delete branch %q: %w", name, err)
	}
	return hash, nil
}

// RenameBranch moves a branch to a new name. HEAD follows when it named
// the old branch.
func (r *Repository) RenameBranch(oldName, newName string) error {
	if err := ValidateBranchName(newName); err != nil {
		return err
	}
	head, err := r.Head()
	if err != nil {
		return err
	}

	// The current branch of a fresh repository has no ref file yet.
	unbornCurrent := head.Branch == oldName && head.Unborn()
	var hash utils.Hash
	if !unbornCurrent {
		if hash, err = r.ResolveBranch(oldName); err != nil {
			return err
		}
	}
	if r.BranchExists(newName) {
		return fmt.Errorf("branch %q already exists", newName)
	}

	if !unbornCurrent {
		if err := safeWrite(r.branchPath(newName), []byte(hash.String()+"\n"), constants.FilePerms); err != nil {
			return fmt.Errorf("failed to rename branch %q: %w", oldName, err)
		}
		if err := os.Remove(r.branchPath(oldName)); err != nil {
			return fmt.Errorf("failed to remove old branch %q: %w", oldName, err)
		}
	}

	if head.Branch == oldName {
		return r.writeSymbolicHead(newName)
	}
	return nil
}

// writeSymbolicHead points HEAD at a branch.
func (r *Repository) writeSymbolicHead(branch string) error {
	content := refPrefix + branchRef(branch) + "\n"
	return safeWrite(filepath.Join(r.VxDir, constants.Head), []byte(content), constants.FilePerms)
}

// writeDetachedHead points HEAD directly at a commit.
func (r *Repository) writeDetachedHead(commit utils.Hash) error {
	return safeWrite(filepath.Join(r.VxDir, constants.Head), []byte(commit.String()+"\n"), constants.FilePerms)
}

// requireCommit checks that hash is a stored commit. A missing object is
// reported as a dangling reference from role.
func (r *Repository) requireCommit(hash utils.Hash, role string) error {
	objectType, err := r.Store.TypeOf(hash)
	if err != nil {
		var notFound *objects.NotFoundError
		if errors.As(err, &notFound) {
			return &objects.DanglingReferenceError{Hash: hash, Role: role}
		}
		return err
	}
	if objectType != utils.CommitObjectType {
		return fmt.Errorf("%s %s is a %s, not a commit", role, hash, objectType)
	}
	return nil
}
