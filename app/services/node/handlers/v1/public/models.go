package public

import (
	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

type block struct {
	Number uint64               `json:"number"`
	Hash   chainhash.Hash       `json:"hash"`
	Header database.BlockHeader `json:"header"`
	Trans  []database.Tx        `json:"trans"`
}

func toBlock(number uint64, blk database.Block) block {
	return block{
		Number: number,
		Hash:   blk.Hash(),
		Header: blk.Header,
		Trans:  blk.Trans,
	}
}

// NewBlock is what a miner submits as the next block of the chain.
type NewBlock struct {
	Header database.BlockHeader `json:"header"`
	Trans  []database.Tx        `json:"trans" validate:"required,min=1"`
}

type proof struct {
	TxHash     chainhash.Hash   `json:"tx_hash"`
	MerkleRoot chainhash.Hash   `json:"merkle_root"`
	Proof      []chainhash.Hash `json:"proof"`
	Order      []int64          `json:"order"`
}

type utxo struct {
	Hash     chainhash.Hash      `json:"hash"`
	Value    uint64              `json:"value"`
	UniqueID uuid.UUID           `json:"unique_id"`
	PubKey   signature.PublicKey `json:"pubkey"`
	Name     string              `json:"name"`
}

type utxos struct {
	TipBlock string `json:"tip_block"`
	UTXOs    []utxo `json:"utxos"`
}

type balance struct {
	PubKey  signature.PublicKey `json:"pubkey"`
	Name    string              `json:"name"`
	Balance uint64              `json:"balance"`
}

type pubKeyParam struct {
	PubKey string `json:"pubkey" validate:"required,pubkey"`
}
