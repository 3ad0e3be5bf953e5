package utxo

import (
	"fmt"
	"runtime"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"golang.org/x/sync/errgroup"
)

// VerifyTransactions checks the transactions of a block against a snapshot
// of the unspent outputs. The snapshot is only read. Outputs created by the
// block can't be spent by the same block.
func VerifyTransactions(trans []database.Tx, view View) error {
	if len(trans) == 0 {
		return fmt.Errorf("%w: block has no transactions", database.ErrInvalidTransaction)
	}

	outs := newOutputChecker(view)
	spent := make(map[chainhash.Hash]int)

	var sigs []sigCheck
	for i, tx := range trans {
		if len(tx.Inputs) == 0 {
			return fmt.Errorf("%w: tx[%d] has no inputs", database.ErrInvalidTransaction, i)
		}

		seen := make(map[chainhash.Hash]struct{}, len(tx.Inputs))

		var inputValue uint64
		for j, in := range tx.Inputs {
			if _, exists := seen[in.PrevOutputHash]; exists {
				return fmt.Errorf("%w: tx[%d] input[%d] double spends %s within the transaction", database.ErrInvalidTransaction, i, j, in.PrevOutputHash)
			}
			seen[in.PrevOutputHash] = struct{}{}

			if prev, exists := spent[in.PrevOutputHash]; exists {
				return fmt.Errorf("%w: tx[%d] input[%d] double spends %s already spent by tx[%d]", database.ErrInvalidTransaction, i, j, in.PrevOutputHash, prev)
			}
			spent[in.PrevOutputHash] = i

			prevOut, exists := view.Get(in.PrevOutputHash)
			if !exists {
				return fmt.Errorf("%w: tx[%d] input[%d] spends unknown or spent output %s", database.ErrInvalidTransaction, i, j, in.PrevOutputHash)
			}

			var err error
			if inputValue, err = database.AddValue(inputValue, prevOut.Value); err != nil {
				return fmt.Errorf("%w: tx[%d] inputs: %s", database.ErrInvalidTransaction, i, err)
			}

			sigs = append(sigs, sigCheck{tx: i, input: j, sig: in.Signature, hash: in.PrevOutputHash, pubKey: prevOut.PubKey})
		}

		outputValue, err := outs.check(i, tx)
		if err != nil {
			return err
		}

		if inputValue < outputValue {
			return fmt.Errorf("%w: tx[%d] outputs %d exceed inputs %d", database.ErrInvalidTransaction, i, outputValue, inputValue)
		}
	}

	return verifySignatures(sigs)
}

// VerifyGenesis checks the allocation transactions of a genesis block. An
// allocation has no inputs, it only creates value.
func VerifyGenesis(trans []database.Tx, view View) error {
	if len(trans) == 0 {
		return fmt.Errorf("%w: genesis block has no transactions", database.ErrInvalidTransaction)
	}

	outs := newOutputChecker(view)

	var total uint64
	for i, tx := range trans {
		if len(tx.Inputs) != 0 {
			return fmt.Errorf("%w: genesis tx[%d] has %d inputs, exp 0", database.ErrInvalidTransaction, i, len(tx.Inputs))
		}

		if len(tx.Outputs) == 0 {
			return fmt.Errorf("%w: genesis tx[%d] has no outputs", database.ErrInvalidTransaction, i)
		}

		value, err := outs.check(i, tx)
		if err != nil {
			return err
		}

		if total, err = database.AddValue(total, value); err != nil {
			return fmt.Errorf("%w: genesis supply: %s", database.ErrInvalidTransaction, err)
		}
	}

	return nil
}

// =============================================================================

// outputChecker makes sure every output created by a block gets an identity
// no other spendable output has.
type outputChecker struct {
	view    View
	created map[chainhash.Hash]int
}

func newOutputChecker(view View) *outputChecker {
	return &outputChecker{
		view:    view,
		created: make(map[chainhash.Hash]int),
	}
}

// check validates the outputs of the transaction and returns their total.
func (oc *outputChecker) check(i int, tx database.Tx) (uint64, error) {
	for j, out := range tx.Outputs {
		hash := out.Hash()

		if oc.view.Contains(hash) {
			return 0, fmt.Errorf("%w: tx[%d] output[%d] %s already exists", database.ErrInvalidTransaction, i, j, hash)
		}

		if prev, exists := oc.created[hash]; exists {
			return 0, fmt.Errorf("%w: tx[%d] output[%d] %s already created by tx[%d]", database.ErrInvalidTransaction, i, j, hash, prev)
		}
		oc.created[hash] = i
	}

	value, err := tx.OutputValue()
	if err != nil {
		return 0, fmt.Errorf("%w: tx[%d] %s", database.ErrInvalidTransaction, i, err)
	}

	return value, nil
}

// =============================================================================

// sigCheck is one input signature waiting to be verified.
type sigCheck struct {
	tx     int
	input  int
	sig    signature.Signature
	hash   chainhash.Hash
	pubKey signature.PublicKey
}

// verifySignatures checks the signatures in parallel. The first failure in
// input order is reported so the result matches a sequential check.
func verifySignatures(sigs []sigCheck) error {
	valid := make([]bool, len(sigs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, sc := range sigs {
		g.Go(func() error {
			valid[i] = signature.Verify(sc.sig, sc.hash, sc.pubKey)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, ok := range valid {
		if !ok {
			sc := sigs[i]
			return fmt.Errorf("%w: tx[%d] input[%d] signature does not verify for output %s", database.ErrInvalidTransaction, sc.tx, sc.input, sc.hash)
		}
	}

	return nil
}
