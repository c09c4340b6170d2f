package mempool_test

import (
	"crypto/ecdsa"
	"testing"

	"github.com/quarrychain/quarry/foundation/ledger/database"
	"github.com/quarrychain/quarry/foundation/ledger/mempool"
	"github.com/quarrychain/quarry/foundation/ledger/signature"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func sign(t *testing.T, key *ecdsa.PrivateKey, receiver string, amount float64) database.SignedTx {
	t.Helper()

	tx := database.Tx{
		Inputs:  []database.TxInput{},
		Outputs: []database.TxOutput{{ReceiverAddress: receiver, Amount: amount}},
	}

	signedTx, err := tx.Sign(key)
	if err != nil {
		t.Fatalf("unable to sign transaction: %v", err)
	}

	return signedTx
}

func TestCRUD(t *testing.T) {
	key, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("unable to generate key: %v", err)
	}
	receiver := signature.PublicKeyString(&key.PublicKey)

	txs := []database.SignedTx{
		sign(t, key, receiver, 10),
		sign(t, key, receiver, 20),
		sign(t, key, receiver, 30),
		sign(t, key, receiver, 40),
	}

	t.Log("Given the need to validate the mempool api.")
	{
		t.Logf("\tTest 0:\tWhen handling a set of transactions.")
		{
			mp, err := mempool.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a mempool: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to construct a mempool.", success)

			for _, tx := range txs {
				if _, err := mp.Upsert(tx); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to add a transaction: %v", failed, err)
				}
			}
			if mp.Count() != len(txs) {
				t.Fatalf("\t%s\tTest 0:\tShould hold %d transactions, got %d.", failed, len(txs), mp.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould hold %d transactions.", success, len(txs))

			for i, tx := range mp.Copy() {
				if tx.TransactionID != txs[i].TransactionID {
					t.Logf("\t%s\tTest 0:\tgot: %s", failed, tx.TransactionID)
					t.Logf("\t%s\tTest 0:\texp: %s", failed, txs[i].TransactionID)
					t.Fatalf("\t%s\tTest 0:\tShould keep arrival order.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould keep arrival order.", success)

			best := mp.PickBest(2)
			if len(best) != 2 || best[0].TransactionID != txs[0].TransactionID || best[1].TransactionID != txs[1].TransactionID {
				t.Fatalf("\t%s\tTest 0:\tShould pick the two oldest transactions.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould pick the two oldest transactions.", success)

			if len(mp.PickBest(-1)) != len(txs) {
				t.Fatalf("\t%s\tTest 0:\tShould pick everything for -1.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould pick everything for -1.", success)

			if err := mp.Delete(txs[1]); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to delete a transaction: %v", failed, err)
			}
			if mp.Count() != len(txs)-1 {
				t.Fatalf("\t%s\tTest 0:\tShould drop the deleted transaction.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould drop the deleted transaction.", success)

			mp.Truncate()
			if mp.Count() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould be empty after truncate.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be empty after truncate.", success)
		}

		t.Logf("\tTest 1:\tWhen a transaction is replayed.")
		{
			mp, err := mempool.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct a mempool: %v", failed, err)
			}

			for _, tx := range txs {
				mp.Upsert(tx)
			}
			mp.Upsert(txs[0])

			if mp.Count() != len(txs) {
				t.Fatalf("\t%s\tTest 1:\tShould not grow on replay.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not grow on replay.", success)

			if got := mp.Copy()[0].TransactionID; got != txs[0].TransactionID {
				t.Fatalf("\t%s\tTest 1:\tShould keep the replayed transaction in line.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the replayed transaction in line.", success)
		}

		t.Logf("\tTest 2:\tWhen a transaction has no id.")
		{
			mp, err := mempool.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to construct a mempool: %v", failed, err)
			}

			if _, err := mp.Upsert(database.SignedTx{}); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould reject a transaction without an id.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject a transaction without an id.", success)
		}
	}
}
