package builder

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/KostasZigo/vx/internal/objects"
	"github.com/KostasZigo/vx/utils"
)

// node is one name in the hierarchy being built. Exactly one of children
// (directories) or content (files) is set.
type node struct {
	name     string
	path     string
	kind     EntryKind
	content  ContentProvider
	children map[string]*node
	hash     utils.Hash
}

func newDirNode(name, dirPath string) *node {
	return &node{
		name:     name,
		path:     dirPath,
		kind:     KindDirectory,
		children: make(map[string]*node),
	}
}

func (n *node) isDir() bool {
	return n.kind == KindDirectory
}

// BuildTree writes every blob and tree implied by entries and returns the
// root tree hash. Every tree is written after all of its children, so a
// stored tree never references a missing object. Entry order does not
// affect the result.
//
// workers bounds the number of blobs read and written concurrently; values
// below one mean one.
func BuildTree(ctx context.Context, store ObjectWriter, entries []Entry, workers int) (utils.Hash, error) {
	root, files, err := buildHierarchy(entries)
	if err != nil {
		return utils.ZeroHash, err
	}

	if err := writeBlobs(ctx, store, files, workers); err != nil {
		return utils.ZeroHash, err
	}

	hash, err := writeTrees(ctx, store, root)
	if err != nil {
		return utils.ZeroHash, err
	}

	slog.Debug("Built tree",
		"root", hash,
		"entries", len(entries),
		"blobs", len(files))
	return hash, nil
}

// buildHierarchy groups entries by directory. It returns the root node and
// every file node.
func buildHierarchy(entries []Entry) (*node, []*node, error) {
	root := newDirNode("", "")
	var files []*node

	for _, entry := range entries {
		switch entry.Kind {
		case KindFile, KindExecutable, KindDirectory:
		default:
			return nil, nil, &UnsupportedEntryError{Path: entry.Path, Kind: entry.Kind}
		}

		segments, err := splitPath(entry.Path, entry.Kind == KindDirectory)
		if err != nil {
			return nil, nil, err
		}

		dir := root
		last := len(segments) - 1
		for i, name := range segments {
			existing, ok := dir.children[name]
			isLeaf := i == last

			switch {
			case isLeaf && entry.Kind != KindDirectory:
				if ok {
					return nil, nil, &objects.ConflictError{Name: path.Join(dir.path, name)}
				}
				if entry.Content == nil {
					return nil, nil, fmt.Errorf("entry %s has no content", entry.Path)
				}
				file := &node{
					name:    name,
					path:    path.Join(dir.path, name),
					kind:    entry.Kind,
					content: entry.Content,
				}
				dir.children[name] = file
				files = append(files, file)

			case ok && !existing.isDir():
				// A file already holds a name this entry needs as a directory.
				return nil, nil, &objects.ConflictError{Name: existing.path}

			case ok:
				dir = existing

			default:
				child := newDirNode(name, path.Join(dir.path, name))
				dir.children[name] = child
				dir = child
			}
		}
	}
	return root, files, nil
}

// splitPath normalizes a slash-separated relative path into its segments.
// "." is accepted only for directory markers and names the root.
func splitPath(p string, directory bool) ([]string, error) {
	if p == "" {
		return nil, &objects.FormatError{Reason: "entry path is empty"}
	}
	if strings.HasPrefix(p, "/") {
		return nil, &objects.FormatError{Reason: fmt.Sprintf("entry path %q is absolute", p)}
	}

	cleaned := path.Clean(p)
	if cleaned == "." {
		if directory {
			return nil, nil
		}
		return nil, &objects.FormatError{Reason: fmt.Sprintf("entry path %q names the root", p)}
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return nil, &objects.FormatError{Reason: fmt.Sprintf("entry path %q escapes the root", p)}
	}

	segments := strings.Split(cleaned, "/")
	for _, name := range segments {
		if err := objects.ValidateEntryName(name); err != nil {
			return nil, fmt.Errorf("entry path %q: %w", p, err)
		}
	}
	return segments, nil
}

// writeBlobs reads and stores every file, at most workers at a time.
func writeBlobs(ctx context.Context, store ObjectWriter, files []*node, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			reader, err := file.content.Open()
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file.path, err)
			}
			defer reader.Close()

			blob, err := objects.NewBlobFromReader(reader)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file.path, err)
			}

			hash, err := store.Write(blob)
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", file.path, err)
			}
			file.hash = hash
			return nil
		})
	}
	return g.Wait()
}

// writeTrees walks the directories post-order with an explicit stack and
// writes each tree once all its children have hashes.
func writeTrees(ctx context.Context, store ObjectWriter, root *node) (utils.Hash, error) {
	type frame struct {
		dir      *node
		expanded bool
	}

	stack := []frame{{dir: root}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return utils.ZeroHash, err
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !top.expanded {
			stack = append(stack, frame{dir: top.dir, expanded: true})
			for _, child := range top.dir.children {
				if child.isDir() {
					stack = append(stack, frame{dir: child})
				}
			}
			continue
		}

		tree, err := assembleTree(top.dir)
		if err != nil {
			return utils.ZeroHash, err
		}
		hash, err := store.Write(tree)
		if err != nil {
			return utils.ZeroHash, fmt.Errorf("failed to store tree %q: %w", top.dir.path, err)
		}
		top.dir.hash = hash
	}
	return root.hash, nil
}

func assembleTree(dir *node) (*objects.Tree, error) {
	entries := make([]objects.TreeEntry, 0, len(dir.children))
	for _, child := range dir.children {
		entry, err := objects.NewTreeEntry(modeOf(child.kind), child.name, child.hash)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return objects.NewTree(entries)
}

func modeOf(kind EntryKind) objects.FileMode {
	switch kind {
	case KindExecutable:
		return objects.ModeExecutable
	case KindDirectory:
		return objects.ModeDirectory
	default:
		return objects.ModeFile
	}
}

// TreeReader is the part of the object store FlattenTree needs.
type TreeReader interface {
	ReadTree(hash utils.Hash) (*objects.Tree, error)
}

// FlatEntry is one leaf of a stored tree: a file, or an empty directory.
type FlatEntry struct {
	Path string
	Mode objects.FileMode
	Hash utils.Hash
}

// FlattenTree lists every file and empty directory below root, sorted by
// path. It is the inverse of BuildTree up to content.
func FlattenTree(store TreeReader, root utils.Hash) ([]FlatEntry, error) {
	type pending struct {
		prefix string
		hash   utils.Hash
	}

	var result []FlatEntry
	stack := []pending{{hash: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		tree, err := store.ReadTree(top.hash)
		if err != nil {
			return nil, fmt.Errorf("flatten tree %q: %w", top.prefix, err)
		}
		if tree.Len() == 0 && top.prefix != "" {
			result = append(result, FlatEntry{Path: top.prefix, Mode: objects.ModeDirectory, Hash: top.hash})
			continue
		}

		for _, entry := range tree.Entries() {
			fullPath := path.Join(top.prefix, entry.Name())
			if entry.IsDirectory() {
				stack = append(stack, pending{prefix: fullPath, hash: entry.Hash()})
				continue
			}
			result = append(result, FlatEntry{Path: fullPath, Mode: entry.Mode(), Hash: entry.Hash()})
		}
	}

	slices.SortFunc(result, func(a, b FlatEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return result, nil
}
