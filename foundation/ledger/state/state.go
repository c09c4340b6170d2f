// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"crypto/ecdsa"
	"sync"

	"github.com/quarrychain/quarry/foundation/ledger/database"
	"github.com/quarrychain/quarry/foundation/ledger/genesis"
	"github.com/quarrychain/quarry/foundation/ledger/mempool"
	"github.com/quarrychain/quarry/foundation/ledger/signature"
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and block acceptance.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
}

// =============================================================================

// Config represents the configuration required to start
// the ledger node.
type Config struct {
	PrivateKey     *ecdsa.PrivateKey
	Genesis        genesis.Genesis
	Storage        database.KVStore
	SelectStrategy string
	SelectMaxTxs   int
	MaxNonce       uint64
	EvHandler      EventHandler
}

// State manages the ledger database.
type State struct {
	account      string
	privateKey   *ecdsa.PrivateKey
	selectMaxTxs int
	maxNonce     uint64
	evHandler    EventHandler
	mu           sync.Mutex

	genesis genesis.Genesis
	mempool *mempool.Mempool
	db      *database.Database

	Worker Worker
}

// New constructs a new ledger state for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Open the database, seeding the genesis block when the store
	// is still empty.
	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	// Construct a mempool with the specified sort strategy.
	mempool, err := mempool.NewWithStrategy(cfg.SelectStrategy)
	if err != nil {
		return nil, err
	}

	selectMaxTxs := cfg.SelectMaxTxs
	if selectMaxTxs == 0 {
		selectMaxTxs = -1
	}

	// Create the State to provide support for managing the ledger.
	state := State{
		account:      signature.PublicKeyString(&cfg.PrivateKey.PublicKey),
		privateKey:   cfg.PrivateKey,
		selectMaxTxs: selectMaxTxs,
		maxNonce:     cfg.MaxNonce,
		evHandler:    ev,

		genesis: cfg.Genesis,
		mempool: mempool,
		db:      db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all ledger writing activity.
	s.Worker.Shutdown()

	return nil
}
