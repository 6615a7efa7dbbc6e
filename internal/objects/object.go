package objects

import (
	"fmt"

	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/utils"
)

// Object represents any vx object that can be stored.
// All vx objects (blobs, trees, commits) implement this interface.
type Object interface {
	// Type returns the object's type tag.
	Type() utils.ObjectType

	// Hash returns the BLAKE3 digest of Data().
	Hash() utils.Hash

	// Data returns the canonical encoding.
	// Format: "VX01" <type:u8> <payload>
	Data() []byte
}

// Encode returns the canonical encoding of obj.
func Encode(obj Object) []byte {
	return obj.Data()
}

// Decode parses a canonical encoding. Every malformed input yields a
// *FormatError; accepted input always re-encodes to the same bytes.
func Decode(data []byte) (Object, error) {
	if len(data) < constants.ObjectHeaderLength {
		return nil, formatErrorf("object truncated: %d bytes is shorter than the %d-byte header", len(data), constants.ObjectHeaderLength)
	}
	if string(data[:len(constants.ObjectMagic)]) != constants.ObjectMagic {
		return nil, formatErrorf("bad magic %q", data[:len(constants.ObjectMagic)])
	}

	payload := data[constants.ObjectHeaderLength:]
	switch objectType := utils.ObjectType(data[len(constants.ObjectMagic)]); objectType {
	case utils.BlobObjectType:
		return decodeBlob(payload)
	case utils.TreeObjectType:
		return decodeTree(payload)
	case utils.CommitObjectType:
		return decodeCommit(payload)
	default:
		return nil, formatErrorf("unknown type tag %d", uint8(objectType))
	}
}

// AsBlob returns obj as a *Blob or an error naming its actual type.
func AsBlob(obj Object) (*Blob, error) {
	if b, ok := obj.(*Blob); ok {
		return b, nil
	}
	return nil, typeMismatch(obj, utils.BlobObjectType)
}

// AsTree returns obj as a *Tree or an error naming its actual type.
func AsTree(obj Object) (*Tree, error) {
	if t, ok := obj.(*Tree); ok {
		return t, nil
	}
	return nil, typeMismatch(obj, utils.TreeObjectType)
}

// AsCommit returns obj as a *Commit or an error naming its actual type.
func AsCommit(obj Object) (*Commit, error) {
	if c, ok := obj.(*Commit); ok {
		return c, nil
	}
	return nil, typeMismatch(obj, utils.CommitObjectType)
}

func typeMismatch(obj Object, want utils.ObjectType) error {
	return fmt.Errorf("object %s is a %s, not a %s", obj.Hash(), obj.Type(), want)
}
