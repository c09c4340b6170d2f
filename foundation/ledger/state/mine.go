package state

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/quarrychain/quarry/foundation/ledger/database"
)

// ErrNoPendingTransactions is returned when a block is requested to be
// created and there are no transactions waiting.
var ErrNoPendingTransactions = errors.New("no transactions in mempool")

// =============================================================================

// MineNewBlock attempts to create a new block with a proper proof of work
// that can become the next block in the chain.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	// Are there enough transactions in the pool.
	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoPendingTransactions
	}

	// Pick the transactions for the candidate block and make sure each
	// one still holds up against the current chain.
	txs := s.mempool.PickBest(s.selectMaxTxs)
	data := s.confirmCandidates(txs)
	if len(data) == 0 {
		return database.Block{}, ErrNoPendingTransactions
	}

	difficulty, err := s.db.Difficulty(s.genesis.CurrentVersion)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: txs[%d] difficulty[%d]", len(data), difficulty)

	// Attempt to solve the puzzle. This can be cancelled.
	block := database.NewBlock(s.db.Tip(), s.genesis.CurrentVersion, data)
	mined, err := block.Mine(ctx, database.MineArgs{
		Difficulty: difficulty,
		MaxNonce:   s.maxNonce,
		EvHandler:  s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.acceptBlock(mined); err != nil {
		return database.Block{}, err
	}

	return mined, nil
}

// ProcessProposedBlock takes a mined block received from the outside,
// validates it and if that passes, commits it to the chain.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: block[%s]", block.BlockID)
	defer s.evHandler("state: ProcessProposedBlock: completed")

	// If a mining operation is currently running, it needs to stop
	// immediately. The G executing runMiningOperation will not return from
	// the function until done is called. That allows this function to
	// complete its state changes before a new mining operation takes place.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: ProcessProposedBlock: signal mining to terminate")
		done()
	}()

	if err := s.validateProposedBlock(block); err != nil {
		return err
	}

	return s.acceptBlock(block)
}

// =============================================================================

// confirmCandidates re-verifies the picked transactions against the chain
// and drops any that no longer hold up. Within one candidate block no two
// transactions may consume the same output.
func (s *State) confirmCandidates(txs []database.SignedTx) map[string]database.SignedTx {
	data := make(map[string]database.SignedTx, len(txs))
	consumed := make(map[database.TxInput]string)

next:
	for _, tx := range txs {
		if err := database.VerifyTransaction(tx, s.db); err != nil {
			s.evHandler("state: confirmCandidates: WARNING: drop tx[%s]: %s", tx, err)
			s.mempool.Delete(tx)
			continue
		}

		for _, in := range tx.Inputs {
			if other, dup := consumed[in]; dup {
				s.evHandler("state: confirmCandidates: WARNING: drop tx[%s]: output already consumed by tx[%s]", tx, other)
				s.mempool.Delete(tx)
				continue next
			}
		}

		for _, in := range tx.Inputs {
			consumed[in] = tx.TransactionID
		}
		data[tx.TransactionID] = tx
	}

	return data
}

// validateProposedBlock makes sure an outside block extends the current
// tip and carries a valid proof of work and valid signatures.
func (s *State) validateProposedBlock(block database.Block) error {
	if !block.Mined() {
		return errors.New("proposed block has not been mined")
	}

	if tip := s.db.Tip(); block.PrevBlockID != tip {
		return fmt.Errorf("proposed block parent [%s] does not match the chain tip [%s]", block.PrevBlockID, tip)
	}

	difficulty, err := s.db.Difficulty(block.Version)
	if err != nil {
		return err
	}

	if err := block.VerifyProof(difficulty); err != nil {
		return err
	}

	for _, tx := range block.Data {
		if err := tx.VerifySignature(); err != nil {
			return fmt.Errorf("tx[%s]: %w", tx, err)
		}
	}

	return nil
}

// acceptBlock commits a mined block: the block is archived, the outputs it
// consumes are marked spent, the outputs it creates join the unspent set
// and the tip moves. Moving the tip is the final step so a crash part way
// through leaves the previous tip intact.
func (s *State) acceptBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: acceptBlock: write block to store")

	if _, err := s.db.AppendBlock(block); err != nil {
		return err
	}

	txIDs := make([]string, 0, len(block.Data))
	for txID := range block.Data {
		txIDs = append(txIDs, txID)
	}
	sort.Strings(txIDs)

	s.evHandler("state: acceptBlock: settle outputs and drain mempool")

	for _, txID := range txIDs {
		tx := block.Data[txID]

		for _, in := range tx.Inputs {
			if err := s.db.MarkSpent(in, txID); err != nil {
				s.evHandler("state: acceptBlock: WARNING: mark spent: %s", err)
			}
		}

		for i, out := range tx.Outputs {
			if out.SpentBy != "" {
				continue
			}
			rec := database.UnspentOutput{
				TxInput: database.TxInput{
					TransactionID: txID,
					BlockID:       block.BlockID,
					OutputIndex:   i,
					Amount:        out.Amount,
				},
				Receiver: out.ReceiverAddress,
			}
			if err := s.db.AddUnspent(rec); err != nil {
				s.evHandler("state: acceptBlock: WARNING: add unspent: %s", err)
			}
		}

		s.mempool.Delete(tx)
	}

	return s.db.SetTip(block.BlockID)
}
