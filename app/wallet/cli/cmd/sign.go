package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var outputHash string

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign an output hash and print the transaction input.",
	Run:   signRun,
}

func init() {
	rootCmd.AddCommand(signCmd)
	signCmd.Flags().StringVarP(&outputHash, "output", "o", "", "Hash of the output to spend.")
}

func signRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	hash, err := chainhash.ParseHex(outputHash)
	if err != nil {
		log.Fatal(err)
	}

	input, err := database.NewTxInput(hash, privateKey)
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(data))
}
