package commands

import (
	"errors"
	"fmt"
	"net/url"
)

// Balance prints the balance of the specified account.
func Balance(publicURL string, account string) error {
	if account == "" {
		return errors.New("account not provided")
	}

	doc, err := fetchJSON(fmt.Sprintf("%s/v1/accounts/%s/balance", publicURL, url.PathEscape(account)))
	if err != nil {
		return err
	}

	fmt.Println(doc)
	return nil
}
