package state

import (
	"github.com/quarrychain/quarry/foundation/ledger/database"
	"github.com/quarrychain/quarry/foundation/ledger/genesis"
)

// RetrieveAccount returns the address of the node account.
func (s *State) RetrieveAccount() string {
	return s.account
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveTip returns the id of the block at the head of the chain.
func (s *State) RetrieveTip() string {
	return s.db.Tip()
}

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() (database.Block, error) {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the uncommitted transactions in
// arrival order.
func (s *State) RetrieveMempool() []database.SignedTx {
	return s.mempool.Copy()
}
