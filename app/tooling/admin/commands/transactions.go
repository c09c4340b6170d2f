package commands

import (
	"fmt"
)

// Transactions returns the set of transactions waiting in the node's mempool.
func Transactions(publicURL string) error {
	doc, err := fetchJSON(fmt.Sprintf("%s/v1/tx/uncommitted", publicURL))
	if err != nil {
		return err
	}

	fmt.Println(doc)
	return nil
}
