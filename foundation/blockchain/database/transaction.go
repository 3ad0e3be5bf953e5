package database

import (
	"crypto/ecdsa"
	"fmt"
	"math/bits"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// TxOutput is an amount of value locked to a public key. The unique id makes
// two outputs with the same value and owner hash to different identities.
type TxOutput struct {
	Value    uint64              `json:"value"`     // Bitcoin: Amount in the smallest unit.
	UniqueID uuid.UUID           `json:"unique_id"` // Random id so identical outputs never collide.
	PubKey   signature.PublicKey `json:"pubkey"`    // Bitcoin: The key allowed to spend this output.
}

// NewTxOutput constructs an output with a random unique id.
func NewTxOutput(value uint64, pubKey signature.PublicKey) TxOutput {
	return TxOutput{
		Value:    value,
		UniqueID: uuid.New(),
		PubKey:   pubKey,
	}
}

// EncodeCanonical implements the chainhash.Canonical interface.
func (out TxOutput) EncodeCanonical(w *chainhash.Writer) {
	w.Uint64(out.Value)
	w.Fixed(out.UniqueID[:])
	w.Fixed(out.PubKey[:])
}

// Hash returns the identity of the output. This is the key of the output in
// the UTXO set and the message signed to spend it.
func (out TxOutput) Hash() chainhash.Hash {
	return chainhash.Of(out)
}

// String implements the fmt.Stringer interface for logging.
func (out TxOutput) String() string {
	return fmt.Sprintf("%s:%d", out.PubKey, out.Value)
}

// =============================================================================

// TxInput references a prior output and proves the right to spend it.
type TxInput struct {
	PrevOutputHash chainhash.Hash      `json:"prev_output_hash"` // Bitcoin: The output being spent.
	Signature      signature.Signature `json:"signature"`        // Signature over PrevOutputHash.
}

// NewTxInput signs the output hash with the owner's key. Signing happens in
// the wallet, the ledger only ever sees the resulting signature.
func NewTxInput(prevOutputHash chainhash.Hash, privateKey *ecdsa.PrivateKey) (TxInput, error) {
	sig, err := signature.Sign(prevOutputHash, privateKey)
	if err != nil {
		return TxInput{}, err
	}

	input := TxInput{
		PrevOutputHash: prevOutputHash,
		Signature:      sig,
	}

	return input, nil
}

// EncodeCanonical implements the chainhash.Canonical interface.
func (in TxInput) EncodeCanonical(w *chainhash.Writer) {
	w.Hash(in.PrevOutputHash)
	w.Fixed(in.Signature[:])
}

// =============================================================================

// Tx is a set of inputs being spent to create a set of outputs.
type Tx struct {
	Inputs  []TxInput  `json:"inputs"`
	Outputs []TxOutput `json:"outputs"`
}

// NewTx constructs a transaction.
func NewTx(inputs []TxInput, outputs []TxOutput) Tx {
	return Tx{
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// EncodeCanonical implements the chainhash.Canonical interface.
func (tx Tx) EncodeCanonical(w *chainhash.Writer) {
	w.Len(len(tx.Inputs))
	for _, in := range tx.Inputs {
		in.EncodeCanonical(w)
	}

	w.Len(len(tx.Outputs))
	for _, out := range tx.Outputs {
		out.EncodeCanonical(w)
	}
}

// Hash implements the merkle Hashable interface for providing a hash
// of a transaction.
func (tx Tx) Hash() chainhash.Hash {
	return chainhash.Of(tx)
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx.Hash() == otherTx.Hash()
}

// OutputValue sums the value of the outputs. An overflow is an error and
// never wraps.
func (tx Tx) OutputValue() (uint64, error) {
	var total uint64
	for i, out := range tx.Outputs {
		var err error
		if total, err = AddValue(total, out.Value); err != nil {
			return 0, fmt.Errorf("output[%d]: %w", i, err)
		}
	}

	return total, nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:in[%d]:out[%d]", tx.Hash(), len(tx.Inputs), len(tx.Outputs))
}

// =============================================================================

// AddValue adds two amounts and fails on overflow.
func AddValue(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("value overflow adding %d to %d", b, a)
	}

	return sum, nil
}
