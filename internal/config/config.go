package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/KostasZigo/vx/internal/objects"
)

// Symlink policies for [worktree] symlinks.
const (
	SymlinksError = "error"
	SymlinksSkip  = "skip"
)

// Config is the contents of .vx/config.toml.
type Config struct {
	Core     CoreConfig     `toml:"core"`
	User     UserConfig     `toml:"user"`
	Worktree WorktreeConfig `toml:"worktree"`
}

type CoreConfig struct {
	// Compression is "none" or "zstd". It only takes effect when the object
	// store is created; later changes are ignored by existing stores.
	Compression string `toml:"compression"`
	Fsync       bool   `toml:"fsync"`
	Workers     int    `toml:"workers"`
}

type UserConfig struct {
	Name string `toml:"name"`
}

type WorktreeConfig struct {
	Symlinks string   `toml:"symlinks"`
	Ignore   []string `toml:"ignore"`
}

// Default returns the configuration written by init.
func Default() *Config {
	return &Config{
		Core: CoreConfig{
			Compression: objects.CodecNone.String(),
			Fsync:       true,
			Workers:     4,
		},
		Worktree: WorktreeConfig{
			Symlinks: SymlinksError,
			Ignore:   []string{},
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save atomically writes cfg to path.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// Validate rejects values no component can honour.
func (c *Config) Validate() error {
	if _, err := objects.ParseCodec(c.Core.Compression); err != nil {
		return fmt.Errorf("core.compression: %w", err)
	}
	if c.Core.Workers < 1 {
		return fmt.Errorf("core.workers must be at least 1, got %d", c.Core.Workers)
	}
	switch c.Worktree.Symlinks {
	case SymlinksError, SymlinksSkip:
	default:
		return fmt.Errorf("worktree.symlinks must be %q or %q, got %q", SymlinksError, SymlinksSkip, c.Worktree.Symlinks)
	}
	for _, pattern := range c.Worktree.Ignore {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("worktree.ignore contains an empty pattern")
		}
	}
	return nil
}

// StoreOptions maps the [core] section onto object store options.
func (c *Config) StoreOptions() objects.StoreOptions {
	opts := objects.DefaultStoreOptions()
	// Validated on load.
	opts.Codec, _ = objects.ParseCodec(c.Core.Compression)
	opts.Sync = c.Core.Fsync
	return opts
}
