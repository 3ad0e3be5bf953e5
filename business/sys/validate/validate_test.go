package validate_test

import (
	"testing"

	"github.com/ardanlabs/utxochain/business/sys/validate"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/stretchr/testify/require"
)

type request struct {
	PubKey string `json:"pubkey" validate:"required,pubkey"`
	Value  uint64 `json:"value" validate:"gt=0"`
}

func TestCheck(t *testing.T) {
	_, pub, err := signature.GenerateKey()
	require.NoError(t, err)

	require.NoError(t, validate.Check(request{PubKey: pub.String(), Value: 10}))

	err = validate.Check(request{PubKey: "0x1234", Value: 0})
	require.True(t, validate.IsFieldErrors(err))

	fields := validate.GetFieldErrors(err).Fields()
	require.Contains(t, fields, "pubkey")
	require.Contains(t, fields, "value")
}
