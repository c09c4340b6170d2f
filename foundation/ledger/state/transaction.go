package state

import (
	"fmt"

	"github.com/quarrychain/quarry/foundation/ledger/database"
)

// SubmitTransaction accepts a signed transaction from a wallet for
// inclusion in a future block.
func (s *State) SubmitTransaction(signedTx database.SignedTx) error {
	s.evHandler("state: SubmitTransaction: started: tx[%s]", signedTx)
	defer s.evHandler("state: SubmitTransaction: completed")

	if err := database.VerifyTransaction(signedTx, s.db); err != nil {
		return err
	}

	n, err := s.mempool.Upsert(signedTx)
	if err != nil {
		return err
	}
	s.evHandler("state: SubmitTransaction: mempool[%d]", n)

	s.Worker.SignalStartMining()

	return nil
}

// CreatePayment builds, signs and submits a payment from the node account
// to the specified receiver.
func (s *State) CreatePayment(receiver string, amount float64) (database.SignedTx, error) {
	s.evHandler("state: CreatePayment: started: to[%s] amount[%v]", receiver, amount)
	defer s.evHandler("state: CreatePayment: completed")

	tx := database.NewTx()
	if _, err := tx.AddOutput(s.db, s.account, receiver, amount); err != nil {
		return database.SignedTx{}, fmt.Errorf("funding payment: %w", err)
	}

	signedTx, err := tx.Sign(s.privateKey)
	if err != nil {
		s.releaseInputs(tx.Inputs)
		return database.SignedTx{}, fmt.Errorf("signing payment: %w", err)
	}

	if err := s.SubmitTransaction(signedTx); err != nil {
		s.releaseInputs(tx.Inputs)
		return database.SignedTx{}, err
	}

	return signedTx, nil
}

// releaseInputs returns reserved outputs to the unspent set after a
// payment could not be submitted.
func (s *State) releaseInputs(inputs []database.TxInput) {
	for _, in := range inputs {
		rec := database.UnspentOutput{TxInput: in, Receiver: s.account}
		if err := s.db.AddUnspent(rec); err != nil {
			s.evHandler("state: releaseInputs: WARNING: %s", err)
		}
	}
}
