package chainhash

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// Canonical represents the behavior a value must exhibit to be hashed. The
// encoding must be fixed: field order never changes, integers are fixed
// width and there is no padding.
type Canonical interface {
	EncodeCanonical(w *Writer)
}

// Writer accumulates a canonical encoding. All integers are written as
// 8 byte little-endian values.
type Writer struct {
	buf []byte
}

// Uint64 writes a fixed width integer.
func (w *Writer) Uint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// Len writes a sequence length prefix.
func (w *Writer) Len(n int) {
	w.Uint64(uint64(n))
}

// Hash writes the little-endian export of the hash.
func (w *Writer) Hash(h Hash) {
	b := h.Bytes()
	w.buf = append(w.buf, b[:]...)
}

// Uint256 writes a 256-bit integer in the same layout as a hash.
func (w *Writer) Uint256(v *uint256.Int) {
	w.Hash(Hash(*v))
}

// Fixed writes raw bytes of a fixed size type such as a key or signature.
// No length prefix is written.
func (w *Writer) Fixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the encoding written so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}
