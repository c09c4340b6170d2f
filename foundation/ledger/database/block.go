package database

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"time"

	"github.com/quarrychain/quarry/foundation/ledger/canonical"
	"github.com/quarrychain/quarry/foundation/ledger/signature"
)

// timestampFormat lays out block times, always in UTC.
const timestampFormat = "2006-01-02 15:04:05"

// cancelCheckMask controls how often the mining loop polls for
// cancellation: whenever nonce&cancelCheckMask == 0, every 64Ki attempts.
const cancelCheckMask = 0xFFFF

// =============================================================================

// Block groups transactions under a proof-of-work seal. A block with an
// empty BlockID has not been mined yet; once mined it is immutable.
type Block struct {
	BlockID     string              `json:"block_id"`
	PrevBlockID string              `json:"previous_block_id"`
	Timestamp   string              `json:"timestamp"`
	Data        map[string]SignedTx `json:"data"`
	Version     string              `json:"version"`
	MiningProof uint64              `json:"mining_proof"`
}

// NewBlock begins an unmined block over the specified chain tip.
func NewBlock(prevBlockID string, version string, txs map[string]SignedTx) Block {
	data := make(map[string]SignedTx, len(txs))
	for id, tx := range txs {
		data[id] = tx
	}

	return Block{
		PrevBlockID: prevBlockID,
		Version:     version,
		Data:        data,
	}
}

// Mined reports whether the proof-of-work seal has been applied.
func (b Block) Mined() bool {
	return b.BlockID != ""
}

// CanonicalPayload renders the bytes whose hash is both the mining input
// and the block's permanent identity. The nonce is never part of it, and
// the transactions inside data are rendered in full, unlock included.
func (b Block) CanonicalPayload() ([]byte, error) {
	data := make(map[string]any, len(b.Data))
	for id, tx := range b.Data {
		data[id] = tx.CanonicalMapping()
	}

	return canonical.Marshal(map[string]any{
		"previous_block_id": b.PrevBlockID,
		"data":              data,
		"version":           b.Version,
	})
}

// =============================================================================

// MineArgs holds the parameters for a proof-of-work search.
type MineArgs struct {

	// Difficulty is the number of leading zero hex characters the digest
	// must carry, 0 through 64.
	Difficulty int

	// MaxNonce bounds the search when non-zero. The search reports
	// ErrNonceNotFound once the ceiling is passed.
	MaxNonce uint64

	// EvHandler narrates progress. May be nil.
	EvHandler func(v string, args ...any)
}

// Mine performs the proof-of-work search: nonces are tried in increasing
// order from 0 and the digest of payload||nonce is checked against the
// difficulty target. The payload is rendered once before the loop starts.
// On success the accepted nonce, the timestamp and the block's identity
// hash are set. Mining an already mined block returns it unchanged.
func (b Block) Mine(ctx context.Context, args MineArgs) (Block, error) {
	if b.Mined() {
		return b, nil
	}

	if args.Difficulty < 0 || args.Difficulty > sha256.Size*2 {
		return Block{}, fmt.Errorf("difficulty must be between 0 and %d, got %d", sha256.Size*2, args.Difficulty)
	}

	ev := func(v string, evArgs ...any) {
		if args.EvHandler != nil {
			args.EvHandler(v, evArgs...)
		}
	}

	payload, err := b.CanonicalPayload()
	if err != nil {
		return Block{}, err
	}

	// The payload bytes never change during the search, so the buffer is
	// sized once and only the decimal nonce tail is rewritten.
	buf := make([]byte, len(payload), len(payload)+20)
	copy(buf, payload)

	ev("database: Mine: difficulty[%d] payload[%d bytes]", args.Difficulty, len(payload))

	t := time.Now()
	var nonce uint64
	for {
		if nonce&cancelCheckMask == 0 {
			select {
			case <-ctx.Done():
				ev("database: Mine: CANCELLED: attempts[%d]", nonce)
				return Block{}, fmt.Errorf("%w: %s", ErrMiningCancelled, ctx.Err())
			default:
			}

			if nonce > 0 && nonce&(1<<20-1) == 0 {
				ev("database: Mine: attempts[%d]", nonce)
			}
		}

		if args.MaxNonce > 0 && nonce > args.MaxNonce {
			return Block{}, ErrNonceNotFound
		}

		attempt := strconv.AppendUint(buf[:len(payload)], nonce, 10)
		digest := sha256.Sum256(attempt)
		if isHashSolved(args.Difficulty, digest) {
			break
		}

		nonce++
	}

	b.MiningProof = nonce
	b.Timestamp = time.Now().UTC().Format(timestampFormat)
	b.BlockID = signature.Hash(payload)

	ev("database: Mine: SOLVED: nonce[%d] block[%s] duration[%v]", nonce, b.BlockID, time.Since(t))

	return b, nil
}

// VerifyProof recomputes the proof-of-work digest from the block's own
// fields and checks it meets the difficulty target, and that the block's
// identity matches its payload. The ledger is never touched here.
func (b Block) VerifyProof(difficulty int) error {
	if difficulty < 0 || difficulty > sha256.Size*2 {
		return fmt.Errorf("difficulty must be between 0 and %d, got %d", sha256.Size*2, difficulty)
	}

	payload, err := b.CanonicalPayload()
	if err != nil {
		return err
	}

	if signature.Hash(payload) != b.BlockID {
		return ErrBlockIDMismatch
	}

	attempt := strconv.AppendUint(payload, b.MiningProof, 10)
	digest := sha256.Sum256(attempt)
	if !isHashSolved(difficulty, digest) {
		return ErrDifficultyNotMet
	}

	return nil
}

// isHashSolved checks the digest begins with difficulty leading zero hex
// characters, working on the raw bytes instead of rendering hex.
func isHashSolved(difficulty int, digest [sha256.Size]byte) bool {
	for i := 0; i < difficulty/2; i++ {
		if digest[i] != 0 {
			return false
		}
	}

	if difficulty%2 == 1 && digest[difficulty/2]>>4 != 0 {
		return false
	}

	return true
}
