// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/utxo"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start
// the blockchain ledger.
type Config struct {
	Storage   database.Serializer
	EvHandler EventHandler
}

// State manages the blockchain ledger, the ordered sequence of accepted
// blocks plus the outputs that are still unspent.
type State struct {
	mu        sync.RWMutex
	evHandler EventHandler
	storage   database.Serializer

	blocks []database.Block
	utxos  *utxo.Set
}

// New constructs a ledger. Blocks already in storage are replayed through
// the same checks a new block goes through. With no storage the ledger
// starts empty and lives only in memory.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	state := State{
		evHandler: ev,
		storage:   cfg.Storage,
		utxos:     utxo.New(),
	}

	if cfg.Storage == nil {
		return &state, nil
	}

	// Load all existing blocks from storage into memory for processing. This
	// won't work in a system like Bitcoin.
	blocks, err := database.ReadAllBlocks(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("reading blocks: %w", err)
	}

	ev("state: New: replaying %d blocks from storage", len(blocks))

	for i, block := range blocks {
		if err := state.apply(context.Background(), block, false); err != nil {
			return nil, fmt.Errorf("replaying block %d: %w", i+1, err)
		}
	}

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	if s.storage == nil {
		return nil
	}

	return s.storage.Close()
}

// =============================================================================

// Tip returns the last block appended to the chain. The boolean is false
// when the chain is empty.
func (s *State) Tip() (database.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.blocks) == 0 {
		return database.Block{}, false
	}

	return s.blocks[len(s.blocks)-1], true
}

// AddBlock validates the block against the tip and the unspent outputs and
// appends it to the chain. This is the only way the ledger changes. A
// rejected block leaves the ledger exactly as it was.
func (s *State) AddBlock(block database.Block) error {
	_, err := s.Append(block)
	return err
}

// Append is AddBlock returning the accepted block with the number it was
// given in the chain.
func (s *State) Append(block database.Block) (database.BlockData, error) {
	s.evHandler("state: AddBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.Header.PrevBlockHash, block.Hash(), len(block.Trans))
	defer s.evHandler("state: AddBlock: completed: newBlk[%s]", block.Hash())

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.apply(context.Background(), block, true); err != nil {
		return database.BlockData{}, err
	}

	// Send an event about this new block.
	s.blockEvent(block)

	return database.NewBlockData(uint64(len(s.blocks)), block), nil
}

// UTXOs returns read access to the outputs that can still be spent.
func (s *State) UTXOs() utxo.View {
	return s.utxos.ReadOnly()
}

// Latest returns the tip along with its number in the chain. The boolean is
// false when the chain is empty.
func (s *State) Latest() (database.BlockData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.blocks)
	if n == 0 {
		return database.BlockData{}, false
	}

	return database.NewBlockData(uint64(n), s.blocks[n-1]), true
}

// Snapshot is the tip and the unspent outputs as they were at one moment.
// Tip.Number is zero when the chain is empty.
type Snapshot struct {
	Tip   database.BlockData
	UTXOs map[chainhash.Hash]database.TxOutput
}

// Snapshot copies the tip and the unspent outputs under the same lock so
// no block can be appended in between.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap Snapshot
	if n := len(s.blocks); n > 0 {
		snap.Tip = database.NewBlockData(uint64(n), s.blocks[n-1])
	}
	snap.UTXOs = s.utxos.Copy()

	return snap
}

// Blocks returns a copy of the chain in order.
func (s *State) Blocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]database.Block, len(s.blocks))
	copy(blocks, s.blocks)

	return blocks
}

// QueryBlock returns the block with the specified number. Numbers start
// at 1 with the genesis block.
func (s *State) QueryBlock(number uint64) (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if number == 0 || number > uint64(len(s.blocks)) {
		return database.Block{}, fmt.Errorf("block %d not found", number)
	}

	return s.blocks[number-1], nil
}

// Len returns the number of blocks in the chain.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blocks)
}

// Rebuild recomputes the unspent outputs from scratch by replaying every
// block in the chain.
func (s *State) Rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: Rebuild: replaying %d blocks", len(s.blocks))

	s.utxos.Rebuild(s.blocks)
}

// =============================================================================

// apply runs the block through the pipeline. When persist is true the block
// is written to storage before the in-memory state changes so a storage
// failure leaves the ledger untouched.
func (s *State) apply(ctx context.Context, block database.Block, persist bool) error {
	var tip *database.Block
	if n := len(s.blocks); n > 0 {
		tip = &s.blocks[n-1]
	}

	commit := func() error {
		if persist && s.storage != nil {
			s.evHandler("state: apply: write to storage: blk[%d]", len(s.blocks)+1)

			if err := s.storage.Write(database.NewBlockData(uint64(len(s.blocks)+1), block)); err != nil {
				return err
			}
		}

		s.evHandler("state: apply: update utxos")

		s.utxos.ApplyBlock(block)
		s.blocks = append(s.blocks, block)

		return nil
	}

	p := newPipeline(block, tip, s.utxos, s.evHandler)
	err := p.run(ctx, commit)

	s.evHandler("state: apply: blk[%s]: %s", block.Hash(), p.current())

	return err
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockHeaderJSON, err := json.Marshal(block.Header)
	if err != nil {
		blockHeaderJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	blockTransJSON, err := json.Marshal(block.Trans)
	if err != nil {
		blockTransJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"number":%d,"hash":%q,"header":%s,"trans":%s}`, len(s.blocks), block.Hash(), string(blockHeaderJSON), string(blockTransJSON))
}
