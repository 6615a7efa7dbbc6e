package objects

import (
	"fmt"

	"github.com/KostasZigo/vx/utils"
)

// FormatError reports malformed object bytes: bad magic, unknown type tag,
// length fields that disagree with the buffer, truncation, or a payload
// whose digest does not match the hash it is stored under.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "malformed object: " + e.Reason
}

func formatErrorf(format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned when reading a hash the store does not hold.
type NotFoundError struct {
	Hash utils.Hash
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("object %s not found", e.Hash)
}

// DanglingReferenceError is returned when an object would reference a hash
// that is not in the store. Role names the referencing field ("tree",
// "parent").
type DanglingReferenceError struct {
	Hash utils.Hash
	Role string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: %s %s is not in the object store", e.Role, e.Hash)
}

// ConflictError is returned when two entries of one tree level share a name.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting tree entries: name %q appears more than once", e.Name)
}
