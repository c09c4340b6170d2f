package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/quarrychain/quarry/foundation/ledger/database"
	"github.com/quarrychain/quarry/foundation/ledger/signature"
	"github.com/spf13/cobra"
)

var (
	to    string
	value float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a payment signed with the wallet key",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := loadPrivateKey()
		if err != nil {
			log.Fatal(err)
		}

		sendWithDetails(privateKey)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Receiver address.")
	sendCmd.Flags().Float64VarP(&value, "value", "v", 0, "Value to send.")
}

func sendWithDetails(privateKey *ecdsa.PrivateKey) {
	account := signature.PublicKeyString(&privateKey.PublicKey)

	// Fetch the wallet's spendable outputs so the transaction can be
	// built and signed locally. The node only ever sees the signed record.
	unspent, err := fetchUnspent(account)
	if err != nil {
		log.Fatal(err)
	}

	tx := database.NewTx()
	if _, err := tx.AddOutput(unspent, account, to, value); err != nil {
		log.Fatal(err)
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.Marshal(signedTx)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", nodeURL), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("node rejected the transaction: %s", body)
	}

	fmt.Println("transaction:", signedTx.TransactionID)
}

// remoteUnspent adapts unspent records fetched from the node to the
// selection behavior the transaction builder needs.
type remoteUnspent struct {
	recs []database.UnspentOutput
}

func (ru remoteUnspent) SelectUnspent(account string, amount float64) (float64, []database.TxInput, error) {
	var total float64
	var selected []database.TxInput

	for _, rec := range ru.recs {
		if rec.Receiver != account {
			continue
		}

		total += rec.Amount
		selected = append(selected, rec.TxInput)

		if total >= amount {
			return total, selected, nil
		}
	}

	return 0, nil, database.ErrInsufficientFunds
}

func fetchUnspent(account string) (remoteUnspent, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/%s/unspent", nodeURL, url.PathEscape(account)))
	if err != nil {
		return remoteUnspent{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return remoteUnspent{}, fmt.Errorf("node returned status %d", resp.StatusCode)
	}

	var recs []database.UnspentOutput
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		return remoteUnspent{}, err
	}

	return remoteUnspent{recs: recs}, nil
}
