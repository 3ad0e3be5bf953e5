// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Allocation is value created for a public key by the genesis block.
type Allocation struct {
	PubKey signature.PublicKey `json:"pubkey"`
	Value  uint64              `json:"value"`
}

// Genesis represents the genesis file.
type Genesis struct {
	Date        time.Time    `json:"date"`
	Target      string       `json:"target"` // Hex encoded 256-bit target for the genesis block.
	Nonce       uint64       `json:"nonce"`  // Nonce that makes the genesis hash satisfy the target.
	Allocations []Allocation `json:"allocations"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// TargetValue returns the target as a 256-bit integer.
func (g Genesis) TargetValue() (*uint256.Int, error) {
	target, err := chainhash.ParseTarget(g.Target)
	if err != nil {
		return nil, fmt.Errorf("parsing target %q: %w", g.Target, err)
	}

	return target, nil
}

// Block constructs the genesis block. Every node building the block from the
// same file gets the same hash, so output ids are derived from the genesis
// date instead of being random.
func (g Genesis) Block() (database.Block, error) {
	if len(g.Allocations) == 0 {
		return database.Block{}, errors.New("genesis has no allocations")
	}

	target, err := g.TargetValue()
	if err != nil {
		return database.Block{}, err
	}

	// Block timestamps are unsigned seconds since the epoch.
	timeStamp := g.Date.Unix()
	if timeStamp < 0 {
		return database.Block{}, fmt.Errorf("genesis date %s is before the unix epoch", g.Date.UTC().Format(time.RFC3339))
	}

	outputs := make([]database.TxOutput, len(g.Allocations))
	for i, alloc := range g.Allocations {
		outputs[i] = database.TxOutput{
			Value:    alloc.Value,
			UniqueID: g.outputID(i),
			PubKey:   alloc.PubKey,
		}
	}

	trans := []database.Tx{database.NewTx(nil, outputs)}

	block := database.NewBlock(chainhash.Zero(), uint64(timeStamp), target, trans)
	block.Header.Nonce = g.Nonce

	return block, nil
}

// outputID produces a name based uuid for the allocation at the index.
func (g Genesis) outputID(index int) uuid.UUID {
	name := fmt.Sprintf("genesis:%s:%d", g.Date.UTC().Format(time.RFC3339Nano), index)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}
