// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ardanlabs/utxochain/business/sys/validate"
	"github.com/ardanlabs/utxochain/business/web/errs"
	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/ardanlabs/utxochain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	State   *state.State
	Genesis genesis.Genesis
	NS      *nameservice.NameService
	WS      websocket.Upgrader
	Evts    *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// GenesisInfo returns the genesis information.
func (h Handlers) GenesisInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Genesis, http.StatusOK)
}

// Tip returns the last block in the chain.
func (h Handlers) Tip(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tip, exists := h.State.Latest()
	if !exists {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toBlock(tip.Number, tip.Block), http.StatusOK)
}

// Blocks returns every block in the chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.Blocks()

	resp := make([]block, len(blocks))
	for i, blk := range blocks {
		resp[i] = toBlock(uint64(i+1), blk)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AddBlock offers a mined block to the ledger.
func (h Handlers) AddBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nb NewBlock
	if err := web.Decode(r, &nb); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(nb); err != nil {
		return err
	}

	blk := database.Block{
		Header: nb.Header,
		Trans:  nb.Trans,
	}

	h.Log.Infow("add block", "traceid", v.TraceID, "blk", blk.Hash(), "prevblk", blk.Header.PrevBlockHash, "trans", len(blk.Trans))

	added, err := h.State.Append(blk)
	if err != nil {
		if database.IsRejection(err) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("adding block: %w", err)
	}

	return web.Respond(ctx, w, toBlock(added.Number, added.Block), http.StatusCreated)
}

// Proof returns the merkle proof that a transaction is part of a block.
func (h Handlers) Proof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	number, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	txHash, err := chainhash.ParseHex(web.Param(r, "tx"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	blk, err := h.State.QueryBlock(number)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	tree, err := merkle.NewTree(blk.Trans)
	if err != nil {
		return err
	}

	for _, tx := range tree.Values() {
		if tx.Hash() != txHash {
			continue
		}

		// The path from the leaf to the root must hold before it is handed out.
		if err := tree.VerifyData(tx); err != nil {
			return fmt.Errorf("block %d: %w", number, err)
		}

		hashes, order, err := tree.Proof(tx)
		if err != nil {
			return err
		}

		resp := proof{
			TxHash:     txHash,
			MerkleRoot: tree.MerkleRoot,
			Proof:      hashes,
			Order:      order,
		}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	return errs.NewTrusted(fmt.Errorf("tx %s not found in block %d", txHash, number), http.StatusNotFound)
}

// UTXOs returns the unspent outputs, optionally only those for a public key.
func (h Handlers) UTXOs(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	snap := h.State.Snapshot()

	outputs := snap.UTXOs
	if param := web.Param(r, "pubkey"); param != "" {
		pubKey, err := parsePubKey(param)
		if err != nil {
			return err
		}

		for hash, out := range outputs {
			if out.PubKey != pubKey {
				delete(outputs, hash)
			}
		}
	}

	resp := utxos{
		UTXOs: make([]utxo, 0, len(outputs)),
	}

	if snap.Tip.Number > 0 {
		resp.TipBlock = snap.Tip.Hash.Hex()
	}

	for hash, out := range outputs {
		resp.UTXOs = append(resp.UTXOs, utxo{
			Hash:     hash,
			Value:    out.Value,
			UniqueID: out.UniqueID,
			PubKey:   out.PubKey,
			Name:     h.NS.Lookup(out.PubKey),
		})
	}

	sort.Slice(resp.UTXOs, func(i, j int) bool {
		return resp.UTXOs[i].Hash.String() < resp.UTXOs[j].Hash.String()
	})

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balance returns the sum of the unspent outputs for a public key.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pubKey, err := parsePubKey(web.Param(r, "pubkey"))
	if err != nil {
		return err
	}

	value, err := h.State.UTXOs().BalanceOf(pubKey)
	if err != nil {
		return err
	}

	resp := balance{
		PubKey:  pubKey,
		Name:    h.NS.Lookup(pubKey),
		Balance: value,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// parsePubKey validates the public key taken from the url.
func parsePubKey(s string) (signature.PublicKey, error) {
	if err := validate.Check(pubKeyParam{PubKey: s}); err != nil {
		return signature.PublicKey{}, err
	}

	return signature.ParsePublicKey(s)
}
