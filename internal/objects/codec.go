package objects

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec selects how payload bytes are stored. It is fixed per store and
// recorded in the pack header; hashes are always over the uncompressed
// canonical encoding.
type Codec uint8

const (
	CodecNone Codec = 0
	CodecZstd Codec = 1
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

func ParseCodec(s string) (Codec, error) {
	switch s {
	case "", "none":
		return CodecNone, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want \"none\" or \"zstd\")", s)
	}
}

// payloadCodec wraps a zstd encoder/decoder pair. EncodeAll and DecodeAll
// are safe for concurrent use.
type payloadCodec struct {
	codec Codec
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

func newPayloadCodec(codec Codec) (*payloadCodec, error) {
	switch codec {
	case CodecNone:
		return &payloadCodec{codec: codec}, nil
	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		return &payloadCodec{codec: codec, enc: enc, dec: dec}, nil
	default:
		return nil, formatErrorf("unknown store codec %d", uint8(codec))
	}
}

func (p *payloadCodec) compress(data []byte) []byte {
	if p.codec == CodecNone {
		return data
	}
	return p.enc.EncodeAll(data, nil)
}

func (p *payloadCodec) decompress(stored []byte) ([]byte, error) {
	if p.codec == CodecNone {
		return stored, nil
	}
	data, err := p.dec.DecodeAll(stored, nil)
	if err != nil {
		return nil, formatErrorf("failed to decompress payload: %v", err)
	}
	return data, nil
}

func (p *payloadCodec) close() {
	if p.enc != nil {
		p.enc.Close()
	}
	if p.dec != nil {
		p.dec.Close()
	}
}
