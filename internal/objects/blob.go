package objects

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/KostasZigo/vx/utils"
)

type Blob struct {
	content []byte
	hash    utils.Hash
}

// NewBlob copies content, so later changes to the caller's slice do not
// reach the blob or its hash.
func NewBlob(content []byte) *Blob {
	return newBlobOwned(bytes.Clone(content))
}

// newBlobOwned takes ownership of content without copying it.
func newBlobOwned(content []byte) *Blob {
	return &Blob{
		content: content,
		hash:    utils.ComputeHashParts(blobHeader(len(content)), content),
	}
}

func NewBlobFromFile(filepath string) (*Blob, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return newBlobOwned(content), nil
}

// NewBlobFromReader drains r into a blob.
func NewBlobFromReader(r io.Reader) (*Blob, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read blob content: %w", err)
	}
	return newBlobOwned(buf.Bytes()), nil
}

func decodeBlob(payload []byte) (*Blob, error) {
	d := newDecoder(payload, "blob")

	declared, err := d.u64("length")
	if err != nil {
		return nil, err
	}
	n, err := d.lengthChecked(declared, "content")
	if err != nil {
		return nil, err
	}
	content := bytes.Clone(d.raw(n))
	if err := d.finish(); err != nil {
		return nil, err
	}

	return newBlobOwned(content), nil
}

func (b *Blob) Type() utils.ObjectType {
	return utils.BlobObjectType
}

func (b *Blob) Hash() utils.Hash {
	return b.hash
}

func (b *Blob) Content() []byte {
	return b.content
}

func (b *Blob) Size() int {
	return len(b.content)
}

func (b *Blob) Data() []byte {
	header := blobHeader(len(b.content))
	data := make([]byte, 0, len(header)+len(b.content))
	data = append(data, header...)
	return append(data, b.content...)
}

func (b *Blob) String() string {
	return fmt.Sprintf("Blob{hash: %s, size: %d bytes}", b.hash, b.Size())
}
