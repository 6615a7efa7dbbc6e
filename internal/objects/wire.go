package objects

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/KostasZigo/vx/internal/constants"
	"github.com/KostasZigo/vx/utils"
)

// Wire format, little-endian throughout:
//
//	magic "VX01" | type:u8 | payload
//
// Counts and string lengths are u32, the blob length is u64, timestamps are
// i64 and hashes are 32 raw bytes. Strings are UTF-8.

// encoder appends one object's canonical bytes.
type encoder struct {
	buf []byte
}

func newEncoder(objectType utils.ObjectType, payloadHint int) *encoder {
	buf := make([]byte, 0, constants.ObjectHeaderLength+payloadHint)
	buf = append(buf, constants.ObjectMagic...)
	buf = append(buf, byte(objectType))
	return &encoder{buf: buf}
}

func (e *encoder) u8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *encoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) u64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *encoder) i64(v int64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v))
}

func (e *encoder) hash(h utils.Hash) {
	e.buf = append(e.buf, h[:]...)
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) bytes() []byte {
	return e.buf
}

// blobHeader is the encoding of a blob minus its content.
func blobHeader(size int) []byte {
	e := newEncoder(utils.BlobObjectType, 8)
	e.u64(uint64(size))
	return e.bytes()
}

// decoder reads a payload and reports every shortfall as a FormatError.
type decoder struct {
	data []byte
	pos  int
	what string
}

func newDecoder(payload []byte, what string) *decoder {
	return &decoder{data: payload, what: what}
}

func (d *decoder) remaining() int {
	return len(d.data) - d.pos
}

func (d *decoder) need(n int, field string) error {
	if n < 0 || d.remaining() < n {
		return formatErrorf("%s truncated reading %s: need %d bytes, have %d", d.what, field, n, d.remaining())
	}
	return nil
}

func (d *decoder) u8(field string) (uint8, error) {
	if err := d.need(1, field); err != nil {
		return 0, err
	}
	v := d.data[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) u32(field string) (uint32, error) {
	if err := d.need(4, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decoder) u64(field string) (uint64, error) {
	if err := d.need(8, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *decoder) i64(field string) (int64, error) {
	v, err := d.u64(field)
	return int64(v), err
}

func (d *decoder) hash(field string) (utils.Hash, error) {
	var h utils.Hash
	if err := d.need(utils.HashSize, field); err != nil {
		return h, err
	}
	copy(h[:], d.data[d.pos:])
	d.pos += utils.HashSize
	return h, nil
}

// lengthChecked validates a declared length against the bytes left.
func (d *decoder) lengthChecked(declared uint64, field string) (int, error) {
	if declared > uint64(d.remaining()) || declared > math.MaxInt {
		return 0, formatErrorf("%s %s declares %d bytes but only %d remain", d.what, field, declared, d.remaining())
	}
	return int(declared), nil
}

func (d *decoder) raw(n int) []byte {
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b
}

func (d *decoder) str(field string) (string, error) {
	declared, err := d.u32(field + " length")
	if err != nil {
		return "", err
	}
	n, err := d.lengthChecked(uint64(declared), field)
	if err != nil {
		return "", err
	}
	b := d.raw(n)
	if !utf8.Valid(b) {
		return "", formatErrorf("%s %s is not valid UTF-8", d.what, field)
	}
	return string(b), nil
}

// finish rejects trailing bytes after the last field.
func (d *decoder) finish() error {
	if d.remaining() != 0 {
		return formatErrorf("%s has %d trailing bytes", d.what, d.remaining())
	}
	return nil
}
