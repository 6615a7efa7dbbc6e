package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	InitCmdName       = "init"
	HashObjectCmdName = "hash-object"
	CatFileCmdName    = "cat-file"
	WriteTreeCmdName  = "write-tree"
	CommitCmdName     = "commit"
	LogCmdName        = "log"
	LsObjectsCmdName  = "ls-objects"
	FsckCmdName       = "fsck"
	BranchCmdName     = "branch"
	CheckoutCmdName   = "checkout"
)

// Repository directory and file names define the vx metadata structure.
const (
	// Vx is the repository metadata directory.
	Vx = ".vx"

	// Objects holds the object store files.
	Objects = "objects"

	// PackFile is the append-only payload region.
	PackFile = "pack.dat"

	// IndexFile holds one fixed-width metadata record per stored object.
	IndexFile = "index.dat"

	// Refs contains branch references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Head points to current branch or detached commit.
	Head = "HEAD"

	// ConfigFile is the repository configuration.
	ConfigFile = "config.toml"

	// IgnoreFile lists worktree paths excluded from write-tree.
	IgnoreFile = ".vxignore"
)

// Default repository values.
const (
	// DefaultBranch is the initial branch name for new repositories.
	DefaultBranch = "main"

	// DefaultRefPrefix is prepended to branch names in HEAD file.
	DefaultRefPrefix = "ref: refs/heads/"

	// DefaultAuthor is used when neither --author nor user.name is set.
	DefaultAuthor = "Your Name"
)

// File system permissions for created files and directories.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644

	// ExecPerms is used when restoring executable files (rwxr-xr-x).
	ExecPerms os.FileMode = 0755
)

// Object wire format.
const (
	// ObjectMagic opens every encoded object.
	ObjectMagic = "VX01"

	// ObjectHeaderLength is magic plus the 1-byte type tag.
	ObjectHeaderLength = len(ObjectMagic) + 1

	// HashStringLength is hex string length of a hash (64 characters).
	HashStringLength = 64
)

// Object store file format.
const (
	PackMagic       = "VXPK"
	IndexMagic      = "VXIX"
	StoreVersion    = 1
	PackHeaderSize  = 12
	IndexHeaderSize = 8

	// IndexRecordSize is hash(32) + type(1) + offset(8) + length(8).
	IndexRecordSize = 49

	// CacheMaxBytes caps the encoded-object read cache.
	CacheMaxBytes = 1 << 20
)

// Process exit codes, one per core error kind.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitFormatError       = 2
	ExitNotFound          = 3
	ExitDanglingReference = 4
	ExitConflict          = 5
	ExitUnsupportedEntry  = 6
)
