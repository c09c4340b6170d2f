package cmd

import (
	"fmt"
	"log"

	"github.com/quarrychain/quarry/foundation/ledger/signature"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the account address for the wallet key",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(signature.PublicKeyString(&privateKey.PublicKey))
}
