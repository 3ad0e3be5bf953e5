package cmd

import (
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/utxo"
	"github.com/stretchr/testify/require"
)

func TestBuildTx(t *testing.T) {
	key, pub, err := signature.GenerateKey()
	require.NoError(t, err)

	_, to, err := signature.GenerateKey()
	require.NoError(t, err)

	set := utxo.New()
	var available []output
	for _, v := range []uint64{10, 40, 25} {
		out := database.NewTxOutput(v, pub)
		set.Insert(out.Hash(), out)
		available = append(available, output{Hash: out.Hash(), Value: v})
	}

	tx, err := buildTx(key, available, to, 50, 5)
	require.NoError(t, err)
	require.Len(t, tx.Inputs, 2)
	require.Len(t, tx.Outputs, 2)
	require.Equal(t, uint64(50), tx.Outputs[0].Value)
	require.Equal(t, uint64(10), tx.Outputs[1].Value)
	require.Equal(t, pub, tx.Outputs[1].PubKey)

	require.NoError(t, utxo.VerifyTransactions([]database.Tx{tx}, set))

	_, err = buildTx(key, available, to, 80, 0)
	require.Error(t, err)

	_, err = buildTx(key, available, to, 0, 0)
	require.Error(t, err)
}
