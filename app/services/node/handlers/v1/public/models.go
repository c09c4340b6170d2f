package public

import (
	"github.com/quarrychain/quarry/foundation/ledger/database"
	"github.com/quarrychain/quarry/foundation/nameservice"
)

type txOutput struct {
	ReceiverAddress string  `json:"receiver_address"`
	ReceiverName    string  `json:"receiver_name"`
	Amount          float64 `json:"amount"`
	SpentBy         string  `json:"spent_transaction_id"`
}

type tx struct {
	TransactionID string             `json:"transaction_id"`
	Sender        string             `json:"sender_public_key"`
	SenderName    string             `json:"sender_name"`
	Signature     string             `json:"signature"`
	Inputs        []database.TxInput `json:"inputs"`
	Outputs       []txOutput         `json:"outputs"`
}

func toTx(signedTx database.SignedTx, ns *nameservice.NameService) tx {
	outputs := make([]txOutput, len(signedTx.Outputs))
	for i, out := range signedTx.Outputs {
		outputs[i] = txOutput{
			ReceiverAddress: out.ReceiverAddress,
			ReceiverName:    ns.Lookup(out.ReceiverAddress),
			Amount:          out.Amount,
			SpentBy:         out.SpentBy,
		}
	}

	return tx{
		TransactionID: signedTx.TransactionID,
		Sender:        signedTx.Unlock.SenderPublicKey,
		SenderName:    ns.Lookup(signedTx.Unlock.SenderPublicKey),
		Signature:     signedTx.Unlock.Signature,
		Inputs:        signedTx.Inputs,
		Outputs:       outputs,
	}
}

type balance struct {
	Account     string  `json:"account"`
	Name        string  `json:"name"`
	Balance     float64 `json:"balance"`
	Unspent     int     `json:"unspent_outputs"`
	Uncommitted int     `json:"uncommitted"`
	LatestBlock string  `json:"latest_block"`
}

type tip struct {
	BlockID string         `json:"block_id"`
	Block   database.Block `json:"block"`
}
