// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Version holds the chain parameters selected by a block's version string.
type Version struct {
	Difficulty int `json:"difficulty"`
}

// Genesis represents the genesis file.
type Genesis struct {
	Date           time.Time          `json:"date"`
	Name           string             `json:"name"`
	CurrentVersion string             `json:"current_version"`
	Versions       map[string]Version `json:"versions"`
	Balances       map[string]float64 `json:"balances"`
}

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis file: %w", err)
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("parsing genesis file: %w", err)
	}

	if _, exists := genesis.Versions[genesis.CurrentVersion]; !exists {
		return Genesis{}, fmt.Errorf("current version %q missing from the versions table", genesis.CurrentVersion)
	}

	return genesis, nil
}

// Difficulty returns the proof-of-work difficulty for the specified
// version string.
func (g Genesis) Difficulty(version string) (int, error) {
	v, exists := g.Versions[version]
	if !exists {
		return 0, fmt.Errorf("unknown version %q", version)
	}
	if v.Difficulty < 0 {
		return 0, fmt.Errorf("negative difficulty for version %q", version)
	}

	return v.Difficulty, nil
}
