// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"

	"github.com/quarrychain/quarry/foundation/ledger/database"
)

// List of different select strategies.
const (
	StrategyArrival = "arrival"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyArrival: arrivalSelect,
}

// Func defines a function that takes the pool of uncommitted transactions
// in arrival order and selects howMany of them based on the functions
// strategy. Receiving -1 for howMany must return all the transactions in
// the strategies ordering.
type Func func(txs []database.SignedTx, howMany int) []database.SignedTx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// arrivalSelect returns transactions in the order they entered the pool.
// Older transactions spend older outputs, so first in first out keeps
// dependent transactions in a workable order.
func arrivalSelect(txs []database.SignedTx, howMany int) []database.SignedTx {
	if howMany == -1 || howMany > len(txs) {
		howMany = len(txs)
	}

	final := make([]database.SignedTx, howMany)
	copy(final, txs[:howMany])

	return final
}
