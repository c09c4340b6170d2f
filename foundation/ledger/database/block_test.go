package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/quarrychain/quarry/foundation/ledger/database"
	"github.com/quarrychain/quarry/foundation/ledger/database/storage/memory"
)

func Test_MineAndVerify(t *testing.T) {
	t.Log("Given the need to mine blocks and verify their proof of work.")
	{
		t.Logf("\tTest 0:\tWhen mining a block at a low difficulty.")
		{
			alice := newAccount(t)
			bob := newAccount(t)
			db := newDatabase(t, memory.New(), map[string]float64{alice.address: 25})

			tx := database.NewTx()
			if _, err := tx.AddOutput(db, alice.address, bob.address, 10); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to add an output: %v", failed, err)
			}
			signedTx, err := tx.Sign(alice.key)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign the transaction: %v", failed, err)
			}

			block := database.NewBlock(db.Tip(), "1.0", map[string]database.SignedTx{signedTx.TransactionID: signedTx})

			mined, err := block.Mine(context.Background(), database.MineArgs{Difficulty: 2})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine the block.", success)

			if !mined.Mined() || mined.Timestamp == "" {
				t.Fatalf("\t%s\tTest 0:\tShould seal the block with an id and a timestamp.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould seal the block with an id and a timestamp.", success)

			if err := mined.VerifyProof(2); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the proof of work: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the proof of work.", success)

			// Mining again must be a no-op.
			again, err := mined.Mine(context.Background(), database.MineArgs{Difficulty: 2})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to call mine again: %v", failed, err)
			}
			if again.BlockID != mined.BlockID || again.MiningProof != mined.MiningProof || again.Timestamp != mined.Timestamp {
				t.Errorf("\t%s\tTest 0:\tShould return an already mined block unchanged.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould return an already mined block unchanged.", success)
			}

			// Any change to the sealed content breaks the identity.
			tampered := mined
			tampered.Version = "2.0"
			if err := tampered.VerifyProof(2); !errors.Is(err, database.ErrBlockIDMismatch) {
				t.Errorf("\t%s\tTest 0:\tShould reject a block whose content was altered: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould reject a block whose content was altered.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen the search is cancelled.")
		{
			block := database.NewBlock("prev", "1.0", nil)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := block.Mine(ctx, database.MineArgs{Difficulty: 2}); !errors.Is(err, database.ErrMiningCancelled) {
				t.Errorf("\t%s\tTest 1:\tShould report the cancellation: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould report the cancellation.", success)
			}
		}

		t.Logf("\tTest 2:\tWhen the nonce ceiling is reached.")
		{
			block := database.NewBlock("prev", "1.0", nil)

			args := database.MineArgs{Difficulty: 64, MaxNonce: 1000}
			if _, err := block.Mine(context.Background(), args); !errors.Is(err, database.ErrNonceNotFound) {
				t.Errorf("\t%s\tTest 2:\tShould report the exhausted search: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 2:\tShould report the exhausted search.", success)
			}
		}

		t.Logf("\tTest 3:\tWhen the difficulty is out of range.")
		{
			block := database.NewBlock("prev", "1.0", nil)

			if _, err := block.Mine(context.Background(), database.MineArgs{Difficulty: 65}); err == nil {
				t.Errorf("\t%s\tTest 3:\tShould reject a difficulty beyond the digest width.", failed)
			} else {
				t.Logf("\t%s\tTest 3:\tShould reject a difficulty beyond the digest width.", success)
			}

			if _, err := block.Mine(context.Background(), database.MineArgs{Difficulty: -1}); err == nil {
				t.Errorf("\t%s\tTest 3:\tShould reject a negative difficulty.", failed)
			} else {
				t.Logf("\t%s\tTest 3:\tShould reject a negative difficulty.", success)
			}
		}
	}
}

// The constants below pin the canonical byte form: the same transaction and
// block must always hash to these values, and the deterministic nonce
// search must land on the same proof. They were computed with an
// independent implementation of the canonical encoding.
const (
	regGrantTx    = "aec3acc4dcd6609fa78e6586118c97260c2149bac739cfcd487f1c0264df4e27"
	regGrantBlock = "3e7e55a27f07712661d4d86f9f5a29f75e2897a47d857911f952ce6e264cd8c7"
	regSenderPub  = "9dn8WCoJgfUeRwTNe6DlJ6ewr51u1nyI2qFU93sckoq4kx/VL2s2ZWK0pUcvgv6aHAWqVQt3o52tsRAnYdZ/mQ=="
	regReceiver   = "UwTIhAjHEndSC8E2iD4VjB0ExORoWXgZyKRzcovmmQT90lXqSAB4KlfGQGadYU0TMjfX+SJXvaIL8nkg++vspQ=="
	regSignature  = "zM1rXmsJdT+nS+D+aFXdWikCfD14dp9Xtl6jj8aMQ1Y/ek9mNWJcEOYpDAbgYp9yQ4nnPhF7iLHF4nMVfdPYiw=="
	regTxID       = "c6ac09b6f7364a321df265af45022063395c1c2288b6b84f44f9a27d979117e7"
	regBlockID    = "bad98a128e3792dec1e601d7e115ec10c59140b11e1d90e1119d65c8b87831cd"
	regProof      = uint64(919443)
)

func Test_MiningRegression(t *testing.T) {
	input := database.TxInput{
		TransactionID: regGrantTx,
		BlockID:       regGrantBlock,
		OutputIndex:   0,
		Amount:        25,
	}

	t.Log("Given the need to reproduce the pinned mining vector.")
	{
		t.Logf("\tTest 0:\tWhen deriving the transaction identity.")
		{
			alice := newAccount(t)

			tx := database.Tx{
				Inputs:  []database.TxInput{input},
				Outputs: []database.TxOutput{{ReceiverAddress: regReceiver, Amount: 25}},
			}

			// The identity hash excludes the unlock, so any key yields
			// the same transaction id.
			signedTx, err := tx.Sign(alice.key)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign the transaction: %v", failed, err)
			}

			if signedTx.TransactionID != regTxID {
				t.Errorf("\t%s\tTest 0:\tShould derive the pinned transaction id.", failed)
				t.Logf("\t%s\tTest 0:\tgot: %s", failed, signedTx.TransactionID)
				t.Logf("\t%s\tTest 0:\texp: %s", failed, regTxID)
			} else {
				t.Logf("\t%s\tTest 0:\tShould derive the pinned transaction id.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen mining the pinned block at difficulty 5.")
		{
			signedTx := database.SignedTx{
				TransactionID: regTxID,
				Unlock: database.Unlock{
					SenderPublicKey: regSenderPub,
					Signature:       regSignature,
				},
				InputCount:  1,
				Inputs:      []database.TxInput{input},
				OutputCount: 1,
				Outputs:     []database.TxOutput{{ReceiverAddress: regReceiver, Amount: 25}},
			}

			block := database.NewBlock("", "1.0", map[string]database.SignedTx{signedTx.TransactionID: signedTx})

			mined, err := block.Mine(context.Background(), database.MineArgs{Difficulty: 5})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to mine the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to mine the block.", success)

			if mined.MiningProof != regProof {
				t.Errorf("\t%s\tTest 1:\tShould land on the pinned proof. got[%d] exp[%d]", failed, mined.MiningProof, regProof)
			} else {
				t.Logf("\t%s\tTest 1:\tShould land on the pinned proof.", success)
			}

			if mined.BlockID != regBlockID {
				t.Errorf("\t%s\tTest 1:\tShould derive the pinned block id.", failed)
				t.Logf("\t%s\tTest 1:\tgot: %s", failed, mined.BlockID)
				t.Logf("\t%s\tTest 1:\texp: %s", failed, regBlockID)
			} else {
				t.Logf("\t%s\tTest 1:\tShould derive the pinned block id.", success)
			}

			if err := mined.VerifyProof(5); err != nil {
				t.Errorf("\t%s\tTest 1:\tShould verify the proof of work: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould verify the proof of work.", success)
			}

			// The accepted digest is 00000e..., one zero short of six.
			if err := mined.VerifyProof(6); !errors.Is(err, database.ErrDifficultyNotMet) {
				t.Errorf("\t%s\tTest 1:\tShould miss a six zero target: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould miss a six zero target.", success)
			}
		}
	}
}
