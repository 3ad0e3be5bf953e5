package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/utxochain/app/services/node/handlers"
	"github.com/ardanlabs/utxochain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const root = "../../../../zblock/"

func TestPublicAPI(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()

	gen, err := genesis.Load(root + "genesis.json")
	require.NoError(t, err)

	ns, err := nameservice.New(root + "accounts")
	require.NoError(t, err)

	storage, err := memory.New()
	require.NoError(t, err)

	st, err := state.New(state.Config{
		Storage:   storage,
		EvHandler: func(v string, args ...any) { log.Infof(v, args...) },
	})
	require.NoError(t, err)

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		Genesis:  gen,
		NS:       ns,
		Evts:     events.New(),
	})

	do := func(method string, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
		return w
	}

	// An empty chain has no tip.
	require.Equal(t, http.StatusNoContent, do(http.MethodGet, "/v1/blocks/tip", nil).Code)

	genesisBlock, err := gen.Block()
	require.NoError(t, err)

	w := do(http.MethodPost, "/v1/blocks/add", public.NewBlock{Header: genesisBlock.Header, Trans: genesisBlock.Trans})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	kennedyKey, err := crypto.LoadECDSA(root + "accounts/kennedy.ecdsa")
	require.NoError(t, err)
	kennedy := signature.PublicKeyOf(kennedyKey)

	pavelKey, err := crypto.LoadECDSA(root + "accounts/pavel.ecdsa")
	require.NoError(t, err)
	pavel := signature.PublicKeyOf(pavelKey)

	var bal struct {
		Name    string `json:"name"`
		Balance uint64 `json:"balance"`
	}
	w = do(http.MethodGet, "/v1/utxos/balance/"+kennedy.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&bal))
	require.Equal(t, "kennedy", bal.Name)
	require.Equal(t, uint64(1_000_000), bal.Balance)

	// Kennedy sends 300,000 to Pavel and keeps the change minus a fee.
	kennedyOut := genesisBlock.Trans[0].Outputs[0]
	in, err := database.NewTxInput(kennedyOut.Hash(), kennedyKey)
	require.NoError(t, err)

	tx := database.NewTx([]database.TxInput{in}, []database.TxOutput{
		database.NewTxOutput(300_000, pavel),
		database.NewTxOutput(699_990, kennedy),
	})
	next := database.NewBlock(genesisBlock.Hash(), genesisBlock.Header.TimeStamp+60, &genesisBlock.Header.Target, []database.Tx{tx})

	var added struct {
		Number uint64 `json:"number"`
	}
	w = do(http.MethodPost, "/v1/blocks/add", public.NewBlock{Header: next.Header, Trans: next.Trans})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.NewDecoder(w.Body).Decode(&added))
	require.Equal(t, uint64(2), added.Number)

	w = do(http.MethodGet, "/v1/blocks/tip", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&added))
	require.Equal(t, uint64(2), added.Number)

	// The same block no longer links to the tip.
	w = do(http.MethodPost, "/v1/blocks/add", public.NewBlock{Header: next.Header, Trans: next.Trans})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid block")

	w = do(http.MethodPost, "/v1/blocks/add", public.NewBlock{Header: next.Header})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "trans")

	w = do(http.MethodGet, "/v1/utxos/balance/"+pavel.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&bal))
	require.Equal(t, uint64(800_000), bal.Balance)

	var list struct {
		TipBlock string `json:"tip_block"`
		UTXOs    []struct {
			Value uint64 `json:"value"`
			Name  string `json:"name"`
		} `json:"utxos"`
	}
	w = do(http.MethodGet, "/v1/utxos/list", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.UTXOs, 4)
	require.Equal(t, next.Hash().Hex(), list.TipBlock)

	w = do(http.MethodGet, "/v1/utxos/list/"+kennedy.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.UTXOs, 1)
	require.Equal(t, uint64(699_990), list.UTXOs[0].Value)

	require.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/v1/utxos/list/0x1234", nil).Code)

	var blocks []struct {
		Number uint64 `json:"number"`
	}
	w = do(http.MethodGet, "/v1/blocks/list", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&blocks))
	require.Len(t, blocks, 2)
	require.Equal(t, uint64(2), blocks[1].Number)

	var prf struct {
		MerkleRoot chainhash.Hash   `json:"merkle_root"`
		Proof      []chainhash.Hash `json:"proof"`
		Order      []int64          `json:"order"`
	}
	w = do(http.MethodGet, fmt.Sprintf("/v1/blocks/proof/2/%s", tx.Hash().Hex()), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.NewDecoder(w.Body).Decode(&prf))
	require.Equal(t, next.Header.MerkleRoot, prf.MerkleRoot)
	require.True(t, merkle.VerifyProof(tx.Hash(), prf.Proof, prf.Order, prf.MerkleRoot))

	require.Equal(t, http.StatusNotFound, do(http.MethodGet, fmt.Sprintf("/v1/blocks/proof/1/%s", tx.Hash().Hex()), nil).Code)
	require.Equal(t, http.StatusNotFound, do(http.MethodGet, fmt.Sprintf("/v1/blocks/proof/9/%s", tx.Hash().Hex()), nil).Code)

	require.Equal(t, http.StatusOK, do(http.MethodGet, "/v1/genesis", nil).Code)
}
