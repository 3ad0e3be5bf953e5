package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
	"github.com/holiman/uint256"
)

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	TimeStamp     uint64         // Bitcoin: Time the block was mined.
	Nonce         uint64         // Bitcoin: Value identified to solve the hash solution.
	PrevBlockHash chainhash.Hash // Bitcoin: Hash of the previous block in the chain.
	MerkleRoot    chainhash.Hash // Bitcoin: Represents the merkle tree root hash for the transactions in this block.
	Target        uint256.Int    // Bitcoin: The block hash must be less than or equal to this value.
}

// EncodeCanonical implements the chainhash.Canonical interface.
func (bh BlockHeader) EncodeCanonical(w *chainhash.Writer) {
	w.Uint64(bh.TimeStamp)
	w.Uint64(bh.Nonce)
	w.Hash(bh.PrevBlockHash)
	w.Hash(bh.MerkleRoot)
	w.Uint256(&bh.Target)
}

// Hash returns the unique hash for the header.
func (bh BlockHeader) Hash() chainhash.Hash {
	return chainhash.Of(bh)
}

// headerJSON is the wire form of a header. The target travels as a hex
// string.
type headerJSON struct {
	TimeStamp     uint64         `json:"timestamp"`
	Nonce         uint64         `json:"nonce"`
	PrevBlockHash chainhash.Hash `json:"prev_block_hash"`
	MerkleRoot    chainhash.Hash `json:"merkle_root"`
	Target        string         `json:"target"`
}

// MarshalJSON implements the json.Marshaler interface.
func (bh BlockHeader) MarshalJSON() ([]byte, error) {
	return json.Marshal(headerJSON{
		TimeStamp:     bh.TimeStamp,
		Nonce:         bh.Nonce,
		PrevBlockHash: bh.PrevBlockHash,
		MerkleRoot:    bh.MerkleRoot,
		Target:        chainhash.TargetHex(&bh.Target),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (bh *BlockHeader) UnmarshalJSON(data []byte) error {
	var hj headerJSON
	if err := json.Unmarshal(data, &hj); err != nil {
		return err
	}

	target, err := chainhash.ParseTarget(hj.Target)
	if err != nil {
		return err
	}

	*bh = BlockHeader{
		TimeStamp:     hj.TimeStamp,
		Nonce:         hj.Nonce,
		PrevBlockHash: hj.PrevBlockHash,
		MerkleRoot:    hj.MerkleRoot,
		Target:        *target,
	}

	return nil
}

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader `json:"header"`
	Trans  []Tx        `json:"trans"`
}

// NewBlock constructs a block whose header commits to the transactions
// through the merkle root. The nonce is left for a miner to find.
func NewBlock(prevBlockHash chainhash.Hash, timeStamp uint64, target *uint256.Int, trans []Tx) Block {
	return Block{
		Header: BlockHeader{
			TimeStamp:     timeStamp,
			PrevBlockHash: prevBlockHash,
			MerkleRoot:    merkle.Root(trans),
			Target:        *target,
		},
		Trans: trans,
	}
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() chainhash.Hash {

	// CORE NOTE: Hashing the block header and not the whole block so the blockchain
	// can be cryptographically checked by only needing block headers and not full
	// blocks with the transaction data. The header commits to the transactions
	// through the merkle root.

	return b.Header.Hash()
}

// EncodeCanonical implements the chainhash.Canonical interface for the full
// block, header followed by the transactions.
func (b Block) EncodeCanonical(w *chainhash.Writer) {
	b.Header.EncodeCanonical(w)

	w.Len(len(b.Trans))
	for _, tx := range b.Trans {
		tx.EncodeCanonical(w)
	}
}

// ValidateLinkage checks the block points at the current tip, or at the
// zero hash when there is no tip.
func (b Block) ValidateLinkage(tip *Block) error {
	if tip == nil {
		if !b.Header.PrevBlockHash.IsZero() {
			return fmt.Errorf("%w: genesis block must have a zero parent hash, got %s", ErrInvalidBlock, b.Header.PrevBlockHash)
		}
		return nil
	}

	if exp := tip.Hash(); b.Header.PrevBlockHash != exp {
		return fmt.Errorf("%w: parent block hash doesn't match our known parent, got %s, exp %s", ErrInvalidBlock, b.Header.PrevBlockHash, exp)
	}

	return nil
}

// ValidateProof checks the header hash is at or below the header target.
func (b Block) ValidateProof() error {
	hash := b.Hash()
	if !hash.MatchesTarget(&b.Header.Target) {
		return fmt.Errorf("%w: %s does not satisfy target %s", ErrInvalidBlock, hash, chainhash.TargetHex(&b.Header.Target))
	}

	return nil
}

// ValidateMerkleRoot checks the declared root against the transactions.
func (b Block) ValidateMerkleRoot() error {
	if root := merkle.Root(b.Trans); b.Header.MerkleRoot != root {
		return fmt.Errorf("%w: merkle root does not match transactions, got %s, exp %s", ErrInvalidMerkleRoot, b.Header.MerkleRoot, root)
	}

	return nil
}

// ValidateTimestamp checks the block's timestamp is strictly after the tip.
func (b Block) ValidateTimestamp(tip *Block) error {
	if tip == nil {
		return nil
	}

	if b.Header.TimeStamp <= tip.Header.TimeStamp {
		parentTime := time.Unix(int64(tip.Header.TimeStamp), 0).UTC()
		blockTime := time.Unix(int64(b.Header.TimeStamp), 0).UTC()
		return fmt.Errorf("%w: block timestamp is not after parent block, parent %s, block %s", ErrInvalidBlock, parentTime, blockTime)
	}

	return nil
}

// =============================================================================

// BlockData represents what can be serialized to disk and over the network.
type BlockData struct {
	Number uint64         `json:"number"`
	Hash   chainhash.Hash `json:"hash"`
	Block  Block          `json:"block"`
}

// NewBlockData constructs block data that can be serialized to disk.
func NewBlockData(number uint64, block Block) BlockData {
	return BlockData{
		Number: number,
		Hash:   block.Hash(),
		Block:  block,
	}
}

// ToBlock converts block data back into a block, checking the recorded hash
// still matches the content.
func ToBlock(blockData BlockData) (Block, error) {
	if hash := blockData.Block.Hash(); hash != blockData.Hash {
		return Block{}, fmt.Errorf("block %d hash mismatch, got %s, exp %s", blockData.Number, hash, blockData.Hash)
	}

	return blockData.Block, nil
}
