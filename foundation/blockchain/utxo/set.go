// Package utxo maintains the set of unspent transaction outputs and
// validates transactions against it.
package utxo

import (
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// View represents read access to a set of unspent outputs.
type View interface {
	Get(hash chainhash.Hash) (database.TxOutput, bool)
	Contains(hash chainhash.Hash) bool
	Len() int
	Copy() map[chainhash.Hash]database.TxOutput
	ForPubKey(pubKey signature.PublicKey) map[chainhash.Hash]database.TxOutput
	BalanceOf(pubKey signature.PublicKey) (uint64, error)
}

// Set manages the outputs that can still be spent, keyed by the hash
// of each output.
type Set struct {
	outputs map[chainhash.Hash]database.TxOutput
	mu      sync.RWMutex
}

// New constructs an empty set.
func New() *Set {
	return &Set{
		outputs: make(map[chainhash.Hash]database.TxOutput),
	}
}

// Get returns the output stored under the hash.
func (s *Set) Get(hash chainhash.Hash) (database.TxOutput, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out, exists := s.outputs[hash]
	return out, exists
}

// Insert stores the output under the hash.
func (s *Set) Insert(hash chainhash.Hash, out database.TxOutput) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outputs[hash] = out
}

// Remove deletes the output stored under the hash.
func (s *Set) Remove(hash chainhash.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.outputs, hash)
}

// Contains reports whether an output is stored under the hash.
func (s *Set) Contains(hash chainhash.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.outputs[hash]
	return exists
}

// Len returns the number of unspent outputs.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.outputs)
}

// Reset removes every output from the set.
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outputs = make(map[chainhash.Hash]database.TxOutput)
}

// Clone makes a copy of the current set.
func (s *Set) Clone() *Set {
	return &Set{outputs: s.Copy()}
}

// Copy makes a copy of the current outputs.
func (s *Set) Copy() map[chainhash.Hash]database.TxOutput {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outputs := make(map[chainhash.Hash]database.TxOutput, len(s.outputs))
	for hash, out := range s.outputs {
		outputs[hash] = out
	}
	return outputs
}

// ForPubKey returns the outputs the public key is able to spend.
func (s *Set) ForPubKey(pubKey signature.PublicKey) map[chainhash.Hash]database.TxOutput {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outputs := make(map[chainhash.Hash]database.TxOutput)
	for hash, out := range s.outputs {
		if out.PubKey == pubKey {
			outputs[hash] = out
		}
	}
	return outputs
}

// BalanceOf sums the value of the outputs the public key is able to spend.
func (s *Set) BalanceOf(pubKey signature.PublicKey) (uint64, error) {
	var balance uint64
	for _, out := range s.ForPubKey(pubKey) {
		var err error
		if balance, err = database.AddValue(balance, out.Value); err != nil {
			return 0, err
		}
	}

	return balance, nil
}

// Equal reports whether both sets hold exactly the same outputs.
func (s *Set) Equal(other *Set) bool {
	a, b := s.Copy(), other.Copy()
	if len(a) != len(b) {
		return false
	}

	for hash, out := range a {
		if o, exists := b[hash]; !exists || o != out {
			return false
		}
	}

	return true
}

// ReadOnly returns a view of the set that can't be used to change it.
func (s *Set) ReadOnly() View {
	return readOnly{set: s}
}

// readOnly exposes only the View methods of a set so a caller can't type
// assert its way back to a writable set.
type readOnly struct {
	set *Set
}

func (ro readOnly) Get(hash chainhash.Hash) (database.TxOutput, bool) { return ro.set.Get(hash) }
func (ro readOnly) Contains(hash chainhash.Hash) bool                 { return ro.set.Contains(hash) }
func (ro readOnly) Len() int                                          { return ro.set.Len() }
func (ro readOnly) Copy() map[chainhash.Hash]database.TxOutput        { return ro.set.Copy() }

func (ro readOnly) ForPubKey(pubKey signature.PublicKey) map[chainhash.Hash]database.TxOutput {
	return ro.set.ForPubKey(pubKey)
}

func (ro readOnly) BalanceOf(pubKey signature.PublicKey) (uint64, error) {
	return ro.set.BalanceOf(pubKey)
}

// =============================================================================

// Rebuild recomputes the set from scratch by replaying every transaction of
// every block in chain order. For each transaction the referenced outputs
// are removed and then its own outputs are inserted.
func (s *Set) Rebuild(blocks []database.Block) {
	outputs := make(map[chainhash.Hash]database.TxOutput)
	for _, block := range blocks {
		for _, tx := range block.Trans {
			for _, in := range tx.Inputs {
				delete(outputs, in.PrevOutputHash)
			}
			for _, out := range tx.Outputs {
				outputs[out.Hash()] = out
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outputs = outputs
}

// ApplyBlock updates the set with the effects of an accepted block.
func (s *Set) ApplyBlock(block database.Block) {
	s.Apply(NewDiff(block.Trans))
}

// Apply removes the spent outputs and inserts the created outputs as a
// single update.
func (s *Set) Apply(diff Diff) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, hash := range diff.Spent {
		delete(s.outputs, hash)
	}

	for _, out := range diff.Created {
		s.outputs[out.Hash()] = out
	}
}

// =============================================================================

// Diff is the change a block makes to the set.
type Diff struct {
	Spent   []chainhash.Hash
	Created []database.TxOutput
}

// NewDiff collects the outputs the transactions spend and create.
func NewDiff(trans []database.Tx) Diff {
	var diff Diff
	for _, tx := range trans {
		for _, in := range tx.Inputs {
			diff.Spent = append(diff.Spent, in.PrevOutputHash)
		}
		diff.Created = append(diff.Created, tx.Outputs...)
	}

	return diff
}
