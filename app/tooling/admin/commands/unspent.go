package commands

import "fmt"

// Unspent prints the unspent outputs available to the node account.
func Unspent(privateURL string) error {
	doc, err := fetchJSON(fmt.Sprintf("%s/v1/node/unspent", privateURL))
	if err != nil {
		return err
	}

	fmt.Println(doc)
	return nil
}
