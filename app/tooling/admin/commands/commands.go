// Package commands contains the functionality for the set of commands
// currently supported by the admin tooling.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// fetchJSON performs a GET against the endpoint and returns the response
// document re-indented for reading.
func fetchJSON(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("node returned status %d: %s", resp.StatusCode, body)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	return string(out), nil
}
