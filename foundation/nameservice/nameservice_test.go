package nameservice_test

import (
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	ns, err := nameservice.New("../../zblock/accounts")
	require.NoError(t, err)

	kennedy, err := signature.ParsePublicKey("0x036bfaa01a909ed9ef88d469be754dfad4cdc93c07f5ce187e3153eaf8b9f8f9e3")
	require.NoError(t, err)
	require.Equal(t, "kennedy", ns.Lookup(kennedy))

	_, unknown, err := signature.GenerateKey()
	require.NoError(t, err)
	require.Equal(t, unknown.String(), ns.Lookup(unknown))

	require.Len(t, ns.Copy(), 4)
}
