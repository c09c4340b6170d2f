package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Pay asks the node to create and submit a payment from its own funds.
func Pay(privateURL string, receiver string, amount string) error {
	if receiver == "" {
		return fmt.Errorf("missing receiver address: %w", ErrHelp)
	}

	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", amount, err)
	}

	payment := struct {
		ReceiverAddress string  `json:"receiver_address"`
		Amount          float64 `json:"amount"`
	}{
		ReceiverAddress: receiver,
		Amount:          value,
	}

	data, err := json.Marshal(payment)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/node/payments", privateURL), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node returned status %d: %s", resp.StatusCode, body)
	}

	fmt.Println(string(body))
	return nil
}
