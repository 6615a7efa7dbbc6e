package builder

import "fmt"

// UnsupportedEntryError is returned for entries that cannot be represented
// in a tree, such as symlinks and device files.
type UnsupportedEntryError struct {
	Path string
	Kind EntryKind
}

func (e *UnsupportedEntryError) Error() string {
	return fmt.Sprintf("unsupported entry %s: %s cannot be stored", e.Path, e.Kind)
}
