package state

import (
	"context"
	"errors"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/utxo"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestPipelineStates(t *testing.T) {
	_, pub, err := signature.GenerateKey()
	require.NoError(t, err)

	target := uint256.NewInt(0).SetAllOne()
	genesis := database.NewBlock(chainhash.Zero(), 1, target, []database.Tx{database.NewTx(nil, []database.TxOutput{database.NewTxOutput(50, pub)})})

	var visited []string
	ev := func(v string, args ...any) {
		if len(args) == 4 {
			visited = append(visited, args[3].(string))
		}
	}

	t.Run("committed", func(t *testing.T) {
		visited = nil

		var committed bool
		p := newPipeline(genesis, nil, utxo.New(), ev)
		require.NoError(t, p.run(context.Background(), func() error {
			committed = true
			return nil
		}))

		require.True(t, committed)
		require.Equal(t, StateCommitted, p.current())
		require.Equal(t, []string{
			StateLinked,
			StateProofVerified,
			StateMerkleVerified,
			StateTimestampVerified,
			StateTransactionsVerified,
			StateCommitted,
		}, visited)
	})

	t.Run("rejected", func(t *testing.T) {
		visited = nil

		block := genesis
		block.Header.MerkleRoot = chainhash.Zero()

		p := newPipeline(block, nil, utxo.New(), ev)
		err := p.run(context.Background(), func() error {
			t.Fatal("commit called for a rejected block")
			return nil
		})

		require.ErrorIs(t, err, database.ErrInvalidMerkleRoot)
		require.Equal(t, StateRejected, p.current())
		require.Equal(t, []string{StateLinked, StateProofVerified, StateRejected}, visited)
	})

	t.Run("commit-failure", func(t *testing.T) {
		visited = nil

		errCommit := errors.New("write failed")

		p := newPipeline(genesis, nil, utxo.New(), ev)
		err := p.run(context.Background(), func() error { return errCommit })

		require.ErrorIs(t, err, errCommit)
		require.Equal(t, StateRejected, p.current())
	})
}
