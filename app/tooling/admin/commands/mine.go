package commands

import (
	"fmt"
	"io"
	"net/http"
)

// Mine signals the node to attempt mining a new block.
func Mine(privateURL string) error {
	resp, err := http.Post(fmt.Sprintf("%s/v1/node/mine", privateURL), "application/json", nil)
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
