package commands

import (
	"errors"
	"fmt"
	"net/url"
)

// Tip prints the block at the head of the chain.
func Tip(publicURL string) error {
	doc, err := fetchJSON(fmt.Sprintf("%s/v1/blocks/tip", publicURL))
	if err != nil {
		return err
	}

	fmt.Println(doc)
	return nil
}

// Block prints the archived block with the specified id.
func Block(publicURL string, id string) error {
	if id == "" {
		return errors.New("block id not provided")
	}

	doc, err := fetchJSON(fmt.Sprintf("%s/v1/blocks/%s", publicURL, url.PathEscape(id)))
	if err != nil {
		return err
	}

	fmt.Println(doc)
	return nil
}
