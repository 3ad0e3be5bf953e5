// Package chainhash provides the canonical 256-bit hash used to identify
// every piece of ledger content.
package chainhash

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// ErrNoEncoding is returned when a value without a canonical encoding is
// asked to be hashed.
var ErrNoEncoding = errors.New("value has no canonical encoding")

// Size is the number of bytes in an exported hash.
const Size = 32

// =============================================================================

// Hash represents a 256-bit digest stored as four 64-bit words, least
// significant word first. This is the same layout as uint256.Int.
type Hash [4]uint64

// Zero returns the all zero hash that marks a block with no predecessor.
func Zero() Hash {
	return Hash{}
}

// FromDigest interprets the digest as a big-endian unsigned integer.
func FromDigest(digest [Size]byte) Hash {
	var v uint256.Int
	v.SetBytes32(digest[:])

	return Hash(v)
}

// FromBytes converts a little-endian export produced by Bytes back into
// a hash.
func FromBytes(b []byte) (Hash, error) {
	if len(b) != Size {
		return Hash{}, fmt.Errorf("invalid hash length, got %d, exp %d", len(b), Size)
	}

	var h Hash
	for i := range h {
		h[i] = binary.LittleEndian.Uint64(b[i*8:])
	}

	return h, nil
}

// Sum returns the hash of the canonical encoding of the value. The value
// must implement the Canonical interface.
func Sum(value any) (Hash, error) {
	c, ok := value.(Canonical)
	if !ok {
		return Hash{}, fmt.Errorf("%w: %T", ErrNoEncoding, value)
	}

	return Of(c), nil
}

// Of returns the hash of the canonical encoding of the value.
func Of(value Canonical) Hash {
	var w Writer
	value.EncodeCanonical(&w)

	return SumBytes(w.Bytes())
}

// SumBytes hashes raw bytes with the chain digest function.
func SumBytes(data []byte) Hash {
	return FromDigest(sha256.Sum256(data))
}

// =============================================================================

// Int returns the numeric value of the hash.
func (h Hash) Int() *uint256.Int {
	v := uint256.Int(h)
	return &v
}

// MatchesTarget reports whether the numeric value of the hash is less than
// or equal to the target. A lower target is harder to satisfy.
func (h Hash) MatchesTarget(target *uint256.Int) bool {
	if target == nil {
		return false
	}

	return !h.Int().Gt(target)
}

// IsZero reports whether this is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Bytes exports the hash as 32 bytes in little-endian word order.
func (h Hash) Bytes() [Size]byte {
	var b [Size]byte
	for i, word := range h {
		binary.LittleEndian.PutUint64(b[i*8:], word)
	}

	return b
}

// String returns the numeric value as 64 lowercase hex digits.
func (h Hash) String() string {
	return fmt.Sprintf("%016x%016x%016x%016x", h[3], h[2], h[1], h[0])
}

// Hex returns the 0x prefixed display form of the hash.
func (h Hash) Hex() string {
	b := h.Int().Bytes32()
	return hexutil.Encode(b[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(input []byte) error {
	b, err := hexutil.Decode(string(input))
	if err != nil {
		return fmt.Errorf("decoding hash: %w", err)
	}

	if len(b) != Size {
		return fmt.Errorf("invalid hash length, got %d, exp %d", len(b), Size)
	}

	var digest [Size]byte
	copy(digest[:], b)
	*h = FromDigest(digest)

	return nil
}

// ParseHex converts a 0x prefixed hex string into a hash.
func ParseHex(s string) (Hash, error) {
	var h Hash
	if err := h.UnmarshalText([]byte(s)); err != nil {
		return Hash{}, err
	}

	return h, nil
}

// =============================================================================

// ParseTarget converts a 0x prefixed hex string into a 256-bit target. The
// zero padded 64 digit form produced by TargetHex is accepted along with any
// shorter even length form.
func ParseTarget(s string) (*uint256.Int, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decoding target: %w", err)
	}

	if len(b) > Size {
		return nil, fmt.Errorf("invalid target length, got %d, exp <= %d", len(b), Size)
	}

	return new(uint256.Int).SetBytes(b), nil
}

// TargetHex returns the target as 64 zero padded hex digits, the same text
// form a hash is displayed in.
func TargetHex(target *uint256.Int) string {
	b := target.Bytes32()
	return hexutil.Encode(b[:])
}
