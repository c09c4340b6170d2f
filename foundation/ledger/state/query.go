package state

import (
	"github.com/quarrychain/quarry/foundation/ledger/database"
)

// QueryBalance totals the unspent outputs held by the given account.
func (s *State) QueryBalance(account string) (float64, error) {
	return s.db.Balance(account)
}

// QueryBlock returns an archived block by id.
func (s *State) QueryBlock(blockID string) (database.Block, error) {
	return s.db.GetBlock(blockID)
}

// QueryUnspent returns a copy of the unspent outputs held by the given
// account, oldest first.
func (s *State) QueryUnspent(account string) ([]database.UnspentOutput, error) {
	return s.db.CopyUnspent(account)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}
