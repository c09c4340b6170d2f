package commands

import "fmt"

// Genesis prints the genesis record of the node.
func Genesis(publicURL string) error {
	doc, err := fetchJSON(fmt.Sprintf("%s/v1/genesis", publicURL))
	if err != nil {
		return err
	}

	fmt.Println(doc)
	return nil
}
