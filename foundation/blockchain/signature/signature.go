// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sizes of the fixed encodings embedded in ledger data.
const (
	PublicKeySize = 33
	SignatureSize = 64
)

// =============================================================================

// PublicKey is a secp256k1 public key in compressed form.
type PublicKey [PublicKeySize]byte

// PublicKeyOf returns the compressed public key for the private key.
func PublicKeyOf(privateKey *ecdsa.PrivateKey) PublicKey {
	var pk PublicKey
	copy(pk[:], crypto.CompressPubkey(&privateKey.PublicKey))

	return pk
}

// ParsePublicKey converts a 0x prefixed hex string into a public key and
// checks the point is on the curve.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	if err := pk.UnmarshalText([]byte(s)); err != nil {
		return PublicKey{}, err
	}

	return pk, nil
}

// Validate checks the key decompresses to a point on the curve.
func (pk PublicKey) Validate() error {
	if _, err := crypto.DecompressPubkey(pk[:]); err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}

	return nil
}

// String returns the hex encoding of the compressed key.
func (pk PublicKey) String() string {
	return hexutil.Encode(pk[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (pk *PublicKey) UnmarshalText(input []byte) error {
	b, err := hexutil.Decode(string(input))
	if err != nil {
		return fmt.Errorf("decoding public key: %w", err)
	}

	if len(b) != PublicKeySize {
		return fmt.Errorf("invalid public key length, got %d, exp %d", len(b), PublicKeySize)
	}

	var key PublicKey
	copy(key[:], b)
	if err := key.Validate(); err != nil {
		return err
	}

	*pk = key
	return nil
}

// =============================================================================

// Signature is an ECDSA signature in the [R|S] format.
type Signature [SignatureSize]byte

// String returns the hex encoding of the signature.
func (sig Signature) String() string {
	return hexutil.Encode(sig[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (sig Signature) MarshalText() ([]byte, error) {
	return []byte(sig.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (sig *Signature) UnmarshalText(input []byte) error {
	b, err := hexutil.Decode(string(input))
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}

	if len(b) != SignatureSize {
		return fmt.Errorf("invalid signature length, got %d, exp %d", len(b), SignatureSize)
	}

	copy(sig[:], b)
	return nil
}

// =============================================================================

// GenerateKey creates a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, PublicKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, PublicKey{}, err
	}

	return privateKey, PublicKeyOf(privateKey), nil
}

// PrivateKeyBytes returns the stable 32 byte encoding of the private key.
func PrivateKeyBytes(privateKey *ecdsa.PrivateKey) []byte {
	return crypto.FromECDSA(privateKey)
}

// PrivateKeyFromBytes restores a private key from its 32 byte encoding.
func PrivateKeyFromBytes(b []byte) (*ecdsa.PrivateKey, error) {
	return crypto.ToECDSA(b)
}

// Sign uses the specified private key to sign the hash. The digest signed
// is the little-endian export of the hash, never raw unhashed data.
func Sign(hash chainhash.Hash, privateKey *ecdsa.PrivateKey) (Signature, error) {
	if privateKey == nil {
		return Signature{}, errors.New("missing private key")
	}

	digest := hash.Bytes()

	// Sign the hash with the private key to produce a 65 byte [R|S|V]
	// signature. The recovery id is not part of the ledger encoding.
	sig, err := crypto.Sign(digest[:], privateKey)
	if err != nil {
		return Signature{}, err
	}

	var s Signature
	copy(s[:], sig[:SignatureSize])

	return s, nil
}

// Verify reports whether the signature was produced over the hash by the
// private key belonging to the public key. Malformed keys or signatures
// verify false.
func Verify(sig Signature, hash chainhash.Hash, publicKey PublicKey) bool {
	digest := hash.Bytes()
	return crypto.VerifySignature(publicKey[:], digest[:], sig[:])
}
