// Package mempool maintains the pool of verified transactions waiting to
// be committed to a block.
package mempool

import (
	"errors"
	"sort"
	"sync"

	"github.com/quarrychain/quarry/foundation/ledger/database"
	"github.com/quarrychain/quarry/foundation/ledger/mempool/selector"
)

// poolTx records when a transaction entered the pool so selection can
// honor arrival order.
type poolTx struct {
	arrival uint64
	tx      database.SignedTx
}

// Mempool represents a cache of transactions keyed by transaction id.
type Mempool struct {
	pool     map[string]poolTx
	arrivals uint64
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default sort strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyArrival)
}

// NewWithStrategy constructs a new mempool with specified sort strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]poolTx),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx database.SignedTx) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if tx.TransactionID == "" {
		return 0, errors.New("transaction is missing its id")
	}

	// A replay keeps its original position in line.
	arrival := mp.arrivals
	if existing, exists := mp.pool[tx.TransactionID]; exists {
		arrival = existing.arrival
	} else {
		mp.arrivals++
	}

	mp.pool[tx.TransactionID] = poolTx{arrival: arrival, tx: tx}

	return len(mp.pool), nil
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(tx database.SignedTx) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if tx.TransactionID == "" {
		return errors.New("transaction is missing its id")
	}

	delete(mp.pool, tx.TransactionID)

	return nil
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]poolTx)
}

// Copy returns all the transactions in the pool in arrival order.
func (mp *Mempool) Copy() []database.SignedTx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.inArrivalOrder()
}

// PickBest uses the configured sort strategy to return the next set
// of transactions for the next block.
func (mp *Mempool) PickBest(howMany int) []database.SignedTx {
	var txs []database.SignedTx
	mp.mu.RLock()
	{
		txs = mp.inArrivalOrder()
	}
	mp.mu.RUnlock()

	return mp.selectFn(txs, howMany)
}

// inArrivalOrder flattens the pool oldest first. The caller must hold at
// least a read lock.
func (mp *Mempool) inArrivalOrder() []database.SignedTx {
	entries := make([]poolTx, 0, len(mp.pool))
	for _, entry := range mp.pool {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].arrival < entries[j].arrival
	})

	txs := make([]database.SignedTx, len(entries))
	for i, entry := range entries {
		txs[i] = entry.tx
	}

	return txs
}
