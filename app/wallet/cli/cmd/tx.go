package cmd

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	to    string
	value uint64
	fee   uint64
)

type output struct {
	Hash  chainhash.Hash `json:"hash"`
	Value uint64         `json:"value"`
}

type outputList struct {
	UTXOs []output `json:"utxos"`
}

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Build a signed transaction from your unspent outputs.",
	Run:   txRun,
}

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	txCmd.Flags().StringVarP(&to, "to", "t", "", "Public key of the receiver.")
	txCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
	txCmd.Flags().Uint64VarP(&fee, "fee", "f", 0, "Fee left for the miner.")
}

func txRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	toPubKey, err := signature.ParsePublicKey(to)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Get(fmt.Sprintf("%s/v1/utxos/list/%s", url, signature.PublicKeyOf(privateKey)))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var list outputList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		log.Fatal(err)
	}

	tx, err := buildTx(privateKey, list.UTXOs, toPubKey, value, fee)
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(data))
}

// buildTx spends the largest outputs first until the value and fee are
// covered and returns any change to the sender.
func buildTx(privateKey *ecdsa.PrivateKey, available []output, toPubKey signature.PublicKey, value uint64, fee uint64) (database.Tx, error) {
	if value == 0 {
		return database.Tx{}, errors.New("value must be greater than zero")
	}

	need, err := database.AddValue(value, fee)
	if err != nil {
		return database.Tx{}, err
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].Value > available[j].Value
	})

	var inputs []database.TxInput
	var total uint64
	for _, out := range available {
		if total >= need {
			break
		}

		input, err := database.NewTxInput(out.Hash, privateKey)
		if err != nil {
			return database.Tx{}, err
		}
		inputs = append(inputs, input)

		if total, err = database.AddValue(total, out.Value); err != nil {
			return database.Tx{}, err
		}
	}

	if total < need {
		return database.Tx{}, fmt.Errorf("insufficient funds, have %d, need %d", total, need)
	}

	outputs := []database.TxOutput{database.NewTxOutput(value, toPubKey)}
	if change := total - need; change > 0 {
		outputs = append(outputs, database.NewTxOutput(change, signature.PublicKeyOf(privateKey)))
	}

	return database.NewTx(inputs, outputs), nil
}
