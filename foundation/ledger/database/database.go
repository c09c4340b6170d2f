// Package database handles all the lower level support for maintaining the
// ledger: the archived chain of blocks, the set of unspent outputs, and the
// transaction and proof-of-work procedures over them.
package database

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/quarrychain/quarry/foundation/ledger/canonical"
	"github.com/quarrychain/quarry/foundation/ledger/genesis"
	"github.com/quarrychain/quarry/foundation/ledger/signature"
)

// KVStore is the storage contract required by the ledger database.
// Implementations must walk ForEach in ascending key order and must return
// ErrNotFound for a missing key.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	ForEach(prefix []byte, fn func(key []byte, value []byte) error) error
	Close() error
}

// Key layout inside the KV store.
var (
	prefixBlock   = []byte("b/")
	prefixUnspent = []byte("u/")
	keyTip        = []byte("t/tip")
)

// errStopIteration ends a ForEach walk early without reporting a failure.
var errStopIteration = errors.New("stop iteration")

// =============================================================================

// UnspentOutput is a store record pairing a spendable reference with the
// account able to spend it.
type UnspentOutput struct {
	TxInput
	Receiver string `json:"receiver_address"`
}

// =============================================================================

// Database manages data related to the ledger: archived blocks, the
// available unspent output set and the chain tip. Output selection and
// spend bookkeeping serialize on its mutex, so at most one transaction can
// consume any given unspent output.
type Database struct {
	mu      sync.RWMutex
	genesis genesis.Genesis
	kv      KVStore
	tip     string
	seq     uint64
	ev      func(v string, args ...any)
}

// New constructs the ledger database over the provided key/value store. An
// empty store is seeded with the trusted genesis block and the unspent
// outputs granting the genesis balances.
func New(gen genesis.Genesis, kv KVStore, evHandler func(v string, args ...any)) (*Database, error) {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	db := Database{
		genesis: gen,
		kv:      kv,
		ev:      ev,
	}

	data, err := kv.Get(keyTip)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := db.seedGenesis(); err != nil {
			return nil, err
		}
		ev("database: New: seeded genesis block[%s]", db.tip)

	case err != nil:
		return nil, fmt.Errorf("%w: reading tip: %s", ErrStoreUnavailable, err)

	default:
		db.tip = string(data)
		if err := db.recoverSequence(); err != nil {
			return nil, err
		}
		ev("database: New: recovered tip[%s] seq[%d]", db.tip, db.seq)
	}

	return &db, nil
}

// Close releases the underlying store.
func (db *Database) Close() error {
	return db.kv.Close()
}

// seedGenesis builds the grant transaction holding the genesis balances,
// wraps it in the genesis block and persists both. The genesis block is
// trusted: it carries no proof-of-work and is never verified.
func (db *Database) seedGenesis() error {
	addresses := make([]string, 0, len(db.genesis.Balances))
	for address := range db.genesis.Balances {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	outputs := make([]TxOutput, len(addresses))
	for i, address := range addresses {
		outputs[i] = TxOutput{ReceiverAddress: address, Amount: db.genesis.Balances[address]}
	}

	tx := SignedTx{
		Inputs:      []TxInput{},
		Outputs:     outputs,
		OutputCount: len(outputs),
	}

	payload, err := canonical.Marshal(tx.hashMapping(""))
	if err != nil {
		return fmt.Errorf("rendering genesis transaction: %w", err)
	}
	tx.TransactionID = signature.Hash(payload)

	block := Block{
		PrevBlockID: "",
		Timestamp:   db.genesis.Date.UTC().Format(timestampFormat),
		Data:        map[string]SignedTx{tx.TransactionID: tx},
		Version:     db.genesis.CurrentVersion,
	}

	blockPayload, err := block.CanonicalPayload()
	if err != nil {
		return fmt.Errorf("rendering genesis block: %w", err)
	}
	block.BlockID = signature.Hash(blockPayload)

	if err := db.writeBlock(block); err != nil {
		return err
	}

	for i, out := range outputs {
		rec := UnspentOutput{
			TxInput: TxInput{
				TransactionID: tx.TransactionID,
				BlockID:       block.BlockID,
				OutputIndex:   i,
				Amount:        out.Amount,
			},
			Receiver: out.ReceiverAddress,
		}
		if err := db.addUnspent(rec); err != nil {
			return err
		}
	}

	return db.setTip(block.BlockID)
}

// recoverSequence walks the unspent set to find the highest sequence key,
// so new records keep appending in insertion order across restarts.
func (db *Database) recoverSequence() error {
	err := db.kv.ForEach(prefixUnspent, func(key []byte, value []byte) error {
		if len(key) == len(prefixUnspent)+8 {
			seq := binary.BigEndian.Uint64(key[len(prefixUnspent):])
			if seq > db.seq {
				db.seq = seq
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: scanning unspent outputs: %s", ErrStoreUnavailable, err)
	}

	return nil
}

// =============================================================================

// SelectUnspent chooses unspent outputs owned by the account, walking
// records in insertion order and accumulating greedily until the total
// covers the amount. The chosen records are removed from the available set
// inside the same critical section, so no two selections can hand out the
// same output. Archived spent marks are written later, at block acceptance.
// ErrInsufficientFunds leaves the set untouched.
func (db *Database) SelectUnspent(account string, amount float64) (float64, []TxInput, error) {
	if amount <= 0 {
		return 0, nil, fmt.Errorf("amount must be positive, got %v", amount)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var total float64
	var selected []TxInput
	var keys [][]byte

	err := db.kv.ForEach(prefixUnspent, func(key []byte, value []byte) error {
		var rec UnspentOutput
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		if rec.Receiver != account {
			return nil
		}

		total += rec.Amount
		selected = append(selected, rec.TxInput)
		keys = append(keys, append([]byte(nil), key...))

		if total >= amount {
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return 0, nil, fmt.Errorf("%w: scanning unspent outputs: %s", ErrStoreUnavailable, err)
	}

	if total < amount {
		return 0, nil, ErrInsufficientFunds
	}

	for _, key := range keys {
		if err := db.kv.Delete(key); err != nil {
			return 0, nil, fmt.Errorf("%w: reserving unspent output: %s", ErrStoreUnavailable, err)
		}
	}

	db.ev("database: SelectUnspent: account[%.8s] amount[%v] selected[%d] total[%v]", account, amount, len(selected), total)

	return total, selected, nil
}

// AddUnspent appends a spendable output record to the available set.
func (db *Database) AddUnspent(rec UnspentOutput) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.addUnspent(rec)
}

func (db *Database) addUnspent(rec UnspentOutput) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding unspent output: %w", err)
	}

	db.seq++
	key := make([]byte, len(prefixUnspent)+8)
	copy(key, prefixUnspent)
	binary.BigEndian.PutUint64(key[len(prefixUnspent):], db.seq)

	if err := db.kv.Put(key, data); err != nil {
		return fmt.Errorf("%w: writing unspent output: %s", ErrStoreUnavailable, err)
	}

	return nil
}

// FindOutput looks up the referenced output inside its archived block.
// A reference that cannot be resolved reports ErrUnknownOutput.
func (db *Database) FindOutput(ref TxInput) (TxOutput, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.findOutput(ref)
}

func (db *Database) findOutput(ref TxInput) (TxOutput, error) {
	block, err := db.getBlock(ref.BlockID)
	switch {
	case errors.Is(err, ErrNotFound):
		return TxOutput{}, ErrUnknownOutput
	case err != nil:
		return TxOutput{}, err
	}

	tx, exists := block.Data[ref.TransactionID]
	if !exists {
		return TxOutput{}, ErrUnknownOutput
	}

	if ref.OutputIndex < 0 || ref.OutputIndex >= len(tx.Outputs) {
		return TxOutput{}, ErrUnknownOutput
	}

	return tx.Outputs[ref.OutputIndex], nil
}

// MarkSpent records the consuming transaction inside the archived block
// holding the referenced output, and drops the record from the available
// set if it is still present. Marking the same output for a different
// consumer reports ErrSpentOutput.
func (db *Database) MarkSpent(ref TxInput, spendingTxID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	block, err := db.getBlock(ref.BlockID)
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrUnknownOutput
	case err != nil:
		return err
	}

	tx, exists := block.Data[ref.TransactionID]
	if !exists {
		return ErrUnknownOutput
	}
	if ref.OutputIndex < 0 || ref.OutputIndex >= len(tx.Outputs) {
		return ErrUnknownOutput
	}

	current := tx.Outputs[ref.OutputIndex].SpentBy
	if current != "" && current != spendingTxID {
		return ErrSpentOutput
	}

	tx.Outputs[ref.OutputIndex].SpentBy = spendingTxID
	block.Data[ref.TransactionID] = tx

	if err := db.writeBlock(block); err != nil {
		return err
	}

	// Received transactions reference outputs this node never reserved,
	// so the record may still sit in the available set.
	var staleKey []byte
	err = db.kv.ForEach(prefixUnspent, func(key []byte, value []byte) error {
		var rec UnspentOutput
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		if rec.TxInput == ref {
			staleKey = append([]byte(nil), key...)
			return errStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return fmt.Errorf("%w: scanning unspent outputs: %s", ErrStoreUnavailable, err)
	}
	if staleKey != nil {
		if err := db.kv.Delete(staleKey); err != nil {
			return fmt.Errorf("%w: dropping spent output: %s", ErrStoreUnavailable, err)
		}
	}

	return nil
}

// =============================================================================

// AppendBlock archives a mined block and returns its id. The chain tip
// does not move here.
func (db *Database) AppendBlock(b Block) (string, error) {
	if !b.Mined() {
		return "", errors.New("cannot append an unmined block")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.writeBlock(b); err != nil {
		return "", err
	}

	db.ev("database: AppendBlock: block[%s] txs[%d]", b.BlockID, len(b.Data))

	return b.BlockID, nil
}

// GetBlock retrieves an archived block by id.
func (db *Database) GetBlock(id string) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.getBlock(id)
}

func (db *Database) getBlock(id string) (Block, error) {
	data, err := db.kv.Get(blockKey(id))
	switch {
	case errors.Is(err, ErrNotFound):
		return Block{}, ErrNotFound
	case err != nil:
		return Block{}, fmt.Errorf("%w: reading block: %s", ErrStoreUnavailable, err)
	}

	var block Block
	if err := json.Unmarshal(data, &block); err != nil {
		return Block{}, fmt.Errorf("%w: corrupt block record: %s", ErrStoreUnavailable, err)
	}

	return block, nil
}

func (db *Database) writeBlock(b Block) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding block: %w", err)
	}

	if err := db.kv.Put(blockKey(b.BlockID), data); err != nil {
		return fmt.Errorf("%w: writing block: %s", ErrStoreUnavailable, err)
	}

	return nil
}

func blockKey(id string) []byte {
	return append(append([]byte(nil), prefixBlock...), id...)
}

// =============================================================================

// Tip returns the id of the most recently accepted block.
func (db *Database) Tip() string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tip
}

// SetTip advances the chain head to the specified block id.
func (db *Database) SetTip(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.setTip(id)
}

func (db *Database) setTip(id string) error {
	if err := db.kv.Put(keyTip, []byte(id)); err != nil {
		return fmt.Errorf("%w: writing tip: %s", ErrStoreUnavailable, err)
	}
	db.tip = id

	return nil
}

// LatestBlock returns the block at the chain tip.
func (db *Database) LatestBlock() (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.getBlock(db.tip)
}

// Difficulty resolves the proof-of-work difficulty for a version string
// from the genesis version table.
func (db *Database) Difficulty(version string) (int, error) {
	return db.genesis.Difficulty(version)
}

// =============================================================================

// Balance sums the available unspent outputs owned by the account.
func (db *Database) Balance(account string) (float64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var total float64
	err := db.kv.ForEach(prefixUnspent, func(key []byte, value []byte) error {
		var rec UnspentOutput
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		if rec.Receiver == account {
			total += rec.Amount
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: scanning unspent outputs: %s", ErrStoreUnavailable, err)
	}

	return total, nil
}

// CopyUnspent returns the available unspent records owned by the account,
// in insertion order.
func (db *Database) CopyUnspent(account string) ([]UnspentOutput, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var recs []UnspentOutput
	err := db.kv.ForEach(prefixUnspent, func(key []byte, value []byte) error {
		var rec UnspentOutput
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		if rec.Receiver == account {
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scanning unspent outputs: %s", ErrStoreUnavailable, err)
	}

	return recs, nil
}
