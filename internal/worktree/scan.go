package worktree

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"slices"

	"github.com/KostasZigo/vx/internal/builder"
	"github.com/KostasZigo/vx/internal/config"
)

// Options controls Scan.
type Options struct {
	// Symlinks is config.SymlinksError or config.SymlinksSkip.
	Symlinks string
	// Ignore holds patterns applied on top of .vxignore.
	Ignore []string
}

// OptionsFromConfig maps the [worktree] section onto scan options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Symlinks: cfg.Worktree.Symlinks,
		Ignore:   cfg.Worktree.Ignore,
	}
}

// Scan lists the worktree under root as builder entries. Directories that
// end up with no entries are emitted as directory markers. Symlinks are
// dropped under the skip policy and otherwise passed through as
// builder.KindSymlink, which the tree builder rejects.
func Scan(root string, opts Options) ([]builder.Entry, error) {
	matcher, err := NewMatcher(root, opts.Ignore)
	if err != nil {
		return nil, err
	}

	var entries []builder.Entry
	var dirs []string
	populated := make(map[string]bool)

	emit := func(entry builder.Entry) {
		entries = append(entries, entry)
		populated[path.Dir(entry.Path)] = true
	}

	err = filepath.WalkDir(root, func(absPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(root, absPath)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		rel := filepath.ToSlash(relPath)

		if matcher.Ignored(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch mode := d.Type(); {
		case d.IsDir():
			dirs = append(dirs, rel)

		case mode&fs.ModeSymlink != 0:
			if opts.Symlinks == config.SymlinksSkip {
				slog.Debug("Skipping symlink", "path", rel)
				return nil
			}
			emit(builder.Entry{Path: rel, Kind: builder.KindSymlink})

		case mode.IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			kind := builder.KindFile
			if info.Mode().Perm()&0o111 != 0 {
				kind = builder.KindExecutable
			}
			emit(builder.Entry{Path: rel, Kind: kind, Content: builder.FileContent(absPath)})

		default:
			emit(builder.Entry{Path: rel, Kind: builder.KindOther})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan worktree: %w", err)
	}

	// Walk order puts parents before children, so walking it backwards
	// settles every subdirectory before its parent.
	for _, dir := range slices.Backward(dirs) {
		if !populated[dir] {
			emit(builder.Entry{Path: dir, Kind: builder.KindDirectory})
		}
	}

	slog.Debug("Scanned worktree",
		"root", root,
		"entries", len(entries))
	return entries, nil
}
