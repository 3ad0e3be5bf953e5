package disk_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func chain(t *testing.T, n int) []database.BlockData {
	t.Helper()

	_, pub, err := signature.GenerateKey()
	require.NoError(t, err)

	target := uint256.NewInt(0).SetAllOne()

	var blocks []database.BlockData
	prev := chainhash.Zero()
	for i := range n {
		tx := database.NewTx(nil, []database.TxOutput{database.NewTxOutput(uint64(10*(i+1)), pub)})
		block := database.NewBlock(prev, uint64(1000+i), target, []database.Tx{tx})
		blocks = append(blocks, database.NewBlockData(uint64(i+1), block))
		prev = block.Hash()
	}

	return blocks
}

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()

	d, err := disk.New(dir)
	require.NoError(t, err)
	defer d.Close()

	blocks := chain(t, 3)
	for _, bd := range blocks {
		require.NoError(t, d.Write(bd))
	}

	require.FileExists(t, filepath.Join(dir, "1.json"))
	require.FileExists(t, filepath.Join(dir, "3.json"))

	bd, err := d.GetBlock(2)
	require.NoError(t, err)
	require.Equal(t, blocks[1].Hash, bd.Hash)
	require.Equal(t, blocks[1].Block.Header.Target, bd.Block.Header.Target)
	require.Equal(t, blocks[1].Block.Trans, bd.Block.Trans)

	_, err = d.GetBlock(4)
	require.ErrorIs(t, err, fs.ErrNotExist)

	got, err := database.ReadAllBlocks(d)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, block := range got {
		require.Equal(t, blocks[i].Hash, block.Hash())
	}
}

func TestTamperedBlock(t *testing.T) {
	dir := t.TempDir()

	d, err := disk.New(dir)
	require.NoError(t, err)

	blocks := chain(t, 1)
	bd := blocks[0]
	bd.Block.Header.Nonce++
	require.NoError(t, d.Write(bd))

	_, err = database.ReadAllBlocks(d)
	require.Error(t, err)
}

func TestReset(t *testing.T) {
	dir := t.TempDir()

	d, err := disk.New(dir)
	require.NoError(t, err)

	for _, bd := range chain(t, 2) {
		require.NoError(t, d.Write(bd))
	}
	require.NoError(t, d.Reset())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)

	got, err := database.ReadAllBlocks(d)
	require.NoError(t, err)
	require.Empty(t, got)
}
