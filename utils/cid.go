package utils

import (
	"fmt"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// ToCID renders a Hash as a CIDv1 (raw codec, blake3 multihash) in base32.
// Useful when handing object ids to IPFS-style tooling.
func ToCID(h Hash) (string, error) {
	mh, err := multihash.Encode(h[:], multihash.BLAKE3)
	if err != nil {
		return "", fmt.Errorf("multihash: %w", err)
	}
	c := gocid.NewCidV1(gocid.Raw, multihash.Multihash(mh))
	encoded, err := multibase.Encode(multibase.Base32, c.Bytes())
	if err != nil {
		return "", fmt.Errorf("multibase: %w", err)
	}
	return encoded, nil
}

// ParseCID extracts the Hash from a CID produced by ToCID.
func ParseCID(s string) (Hash, error) {
	var h Hash

	_, raw, err := multibase.Decode(s)
	if err != nil {
		return h, fmt.Errorf("invalid cid %q: %w", s, err)
	}
	c, err := gocid.Cast(raw)
	if err != nil {
		return h, fmt.Errorf("invalid cid %q: %w", s, err)
	}
	decoded, err := multihash.Decode(c.Hash())
	if err != nil {
		return h, fmt.Errorf("invalid cid %q: %w", s, err)
	}
	if decoded.Code != multihash.BLAKE3 {
		return h, fmt.Errorf("invalid cid %q: unsupported multihash code 0x%x", s, decoded.Code)
	}
	if len(decoded.Digest) != HashSize {
		return h, fmt.Errorf("invalid cid %q: digest is %d bytes, want %d", s, len(decoded.Digest), HashSize)
	}

	copy(h[:], decoded.Digest)
	return h, nil
}

// ParseHashOrCID accepts either a 64-character hex hash or a CID.
func ParseHashOrCID(s string) (Hash, error) {
	if len(s) == 2*HashSize {
		return ParseHash(s)
	}
	return ParseCID(s)
}
