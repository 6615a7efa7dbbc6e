package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/vx/internal/config"
	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/internal/objects"
)

// ErrNotRepository is returned when no .vx directory is found.
var ErrNotRepository = errors.New("not a vx repository (or any of the parent directories)")

// Repository is an opened vx repository. Root is the worktree; every path
// the repository touches is derived from it.
type Repository struct {
	Root   string
	VxDir  string
	Config *config.Config
	Store  *objects.ObjectStore
}

// InitRepository creates an empty repository in path with the default
// configuration.
func InitRepository(path string) error {
	return InitRepositoryWithConfig(path, config.Default())
}

// InitRepositoryWithConfig creates an empty repository in path. The object
// store is created with cfg's compression, which stays fixed afterwards.
func InitRepositoryWithConfig(path string, cfg *config.Config) error {
	// Resolves and adds OS specific separator
	vxDir := filepath.Join(path, constants.Vx)

	if err := checkRepositoryDoesNotExist(vxDir); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Track if initialization of vx directories and files was successful
	// Default value: false
	var initSuccess bool

	// Defer a func to clean up any directories/files in the case that
	// repository initialization failed (not all directories/files were created successfully).
	// If all resources got created successfully initSuccess is true, and the clean-up
	//  is not executed
	defer func() {
		if !initSuccess {
			cleanupRepository(vxDir)
		}
	}()

	directories := []string{
		vxDir,
		filepath.Join(vxDir, constants.Objects),
		filepath.Join(vxDir, constants.Refs),
		filepath.Join(vxDir, constants.Refs, constants.Heads),
	}

	// Create all vx directories
	for _, directory := range directories {
		if err := os.MkdirAll(directory, constants.DirPerms); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}

	// Allocate the empty pack and index
	store, err := objects.OpenObjectStore(filepath.Join(vxDir, constants.Objects), cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	// Create HEAD file pointing to main branch
	headFile := filepath.Join(vxDir, constants.Head)
	headContent := constants.DefaultRefPrefix + constants.DefaultBranch + "\n"

	if err := os.WriteFile(headFile, []byte(headContent), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to create %s file: %w", constants.Head, err)
	}

	if err := config.Save(filepath.Join(vxDir, constants.ConfigFile), cfg); err != nil {
		return fmt.Errorf("failed to create %s: %w", constants.ConfigFile, err)
	}

	initSuccess = true
	return nil
}

func checkRepositoryDoesNotExist(path string) error {
	_, err := os.Stat(path)

	// If path doesn't exist there is no error
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to check repository path: %w", err)
	}

	return fmt.Errorf("repository already exists at %s", path)
}

// Removes the entire .vx directory if it exists
func cleanupRepository(vxDir string) {
	if _, err := os.Stat(vxDir); err == nil {
		slog.Debug("Cleaning up partial repository initialization",
			"path", vxDir)

		if err := os.RemoveAll(vxDir); err != nil {
			slog.Warn("Failed to cleanup repository directory",
				"path", vxDir,
				"error", err)
		} else {
			slog.Debug("Successfully cleaned up repository directory",
				"path", vxDir)
		}
	}
}

// FindRoot walks up from start to the first directory holding .vx.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for {
		info, err := os.Stat(filepath.Join(dir, constants.Vx))
		if err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotRepository
		}
		dir = parent
	}
}

// OpenRepository opens the repository whose worktree is root.
func OpenRepository(root string) (*Repository, error) {
	vxDir := filepath.Join(root, constants.Vx)
	if info, err := os.Stat(vxDir); err != nil || !info.IsDir() {
		return nil, ErrNotRepository
	}

	cfg, err := config.Load(filepath.Join(vxDir, constants.ConfigFile))
	if err != nil {
		return nil, err
	}

	store, err := objects.OpenObjectStore(filepath.Join(vxDir, constants.Objects), cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}

	return &Repository{
		Root:   root,
		VxDir:  vxDir,
		Config: cfg,
		Store:  store,
	}, nil
}

// Discover finds the repository containing start and opens it.
func Discover(start string) (*Repository, error) {
	root, err := FindRoot(start)
	if err != nil {
		return nil, err
	}
	return OpenRepository(root)
}

// Close releases the object store.
func (r *Repository) Close() error {
	return r.Store.Close()
}
