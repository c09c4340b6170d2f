package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/quarrychain/quarry/foundation/ledger/signature"
	"github.com/spf13/cobra"
)

type balance struct {
	Account     string  `json:"account"`
	Name        string  `json:"name"`
	Balance     float64 `json:"balance"`
	Unspent     int     `json:"unspent_outputs"`
	Uncommitted int     `json:"uncommitted"`
	LatestBlock string  `json:"latest_block"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	account := signature.PublicKeyString(&privateKey.PublicKey)
	fmt.Println("For Account:", account)

	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/%s/balance", nodeURL, url.PathEscape(account)))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	var bal balance
	if err := decoder.Decode(&bal); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("balance: %v over %d unspent outputs\n", bal.Balance, bal.Unspent)
}
