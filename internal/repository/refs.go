package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/utils"
)

const refPrefix = "ref: "

// Head describes what HEAD points at. Commit is zero until the current
// branch has its first commit.
type Head struct {
	// Branch is empty when HEAD is detached.
	Branch string
	Commit utils.Hash
}

func (h Head) Detached() bool {
	return h.Branch == ""
}

// Unborn reports whether HEAD names a branch that has no commit yet.
func (h Head) Unborn() bool {
	return h.Commit.IsZero()
}

// Head reads HEAD and resolves the branch it names.
func (r *Repository) Head() (Head, error) {
	data, err := os.ReadFile(filepath.Join(r.VxDir, constants.Head))
	if err != nil {
		return Head{}, fmt.Errorf("failed to read %s: %w", constants.Head, err)
	}
	content := strings.TrimSpace(string(data))

	if !strings.HasPrefix(content, refPrefix) {
		hash, err := utils.ParseHash(content)
		if err != nil {
			return Head{}, fmt.Errorf("detached %s is not a hash: %w", constants.Head, err)
		}
		return Head{Commit: hash}, nil
	}

	ref := strings.TrimPrefix(content, refPrefix)
	branch, ok := strings.CutPrefix(ref, constants.Refs+"/"+constants.Heads+"/")
	if !ok || branch == "" {
		return Head{}, fmt.Errorf("%s points outside refs/heads: %q", constants.Head, ref)
	}

	hash, err := r.readRef(ref)
	if err != nil {
		return Head{}, err
	}
	return Head{Branch: branch, Commit: hash}, nil
}

// readRef returns the hash stored in .vx/<ref>, or the zero hash when the
// ref does not exist yet.
func (r *Repository) readRef(ref string) (utils.Hash, error) {
	data, err := os.ReadFile(filepath.Join(r.VxDir, filepath.FromSlash(ref)))
	if errors.Is(err, fs.ErrNotExist) {
		return utils.ZeroHash, nil
	}
	if err != nil {
		return utils.ZeroHash, fmt.Errorf("failed to read ref %s: %w", ref, err)
	}

	hash, err := utils.ParseHash(strings.TrimSpace(string(data)))
	if err != nil {
		return utils.ZeroHash, fmt.Errorf("ref %s is corrupt: %w", ref, err)
	}
	return hash, nil
}

// UpdateHead points the current branch, or a detached HEAD, at commit.
// The commit must already be stored.
func (r *Repository) UpdateHead(commit utils.Hash) error {
	if err := r.requireCommit(commit, "head"); err != nil {
		return err
	}

	head, err := r.Head()
	if err != nil {
		return err
	}

	if head.Detached() {
		return r.writeDetachedHead(commit)
	}
	return safeWrite(r.branchPath(head.Branch), []byte(commit.String()+"\n"), constants.FilePerms)
}

// safeWrite replaces path atomically: a reader sees the old contents or the
// new ones, never a partial write.
func safeWrite(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	// Clean up on any error
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err = f.Chmod(perm); err != nil {
		f.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp to target: %w", err)
	}
	return nil
}
