package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/quarrychain/quarry/foundation/ledger/canonical"
	"github.com/quarrychain/quarry/foundation/ledger/signature"
)

// =============================================================================

// TxInput references a prior unspent output being consumed.
type TxInput struct {
	TransactionID string  `json:"transaction_id"`
	BlockID       string  `json:"block_id"`
	OutputIndex   int     `json:"output_index"`
	Amount        float64 `json:"amount"`
}

// CanonicalMapping renders the input for hashing and signing.
func (in TxInput) CanonicalMapping() map[string]any {
	return map[string]any{
		"transaction_id": in.TransactionID,
		"block_id":       in.BlockID,
		"output_index":   in.OutputIndex,
		"amount":         in.Amount,
	}
}

// TxOutput is a payment fragment addressed to a receiver. SpentBy stays
// empty until a later transaction consumes the output.
type TxOutput struct {
	ReceiverAddress string  `json:"receiver_address"`
	Amount          float64 `json:"amount"`
	SpentBy         string  `json:"spent_transaction_id"`
}

// CanonicalMapping renders the output for hashing and signing.
func (out TxOutput) CanonicalMapping() map[string]any {
	return map[string]any{
		"receiver_address":     out.ReceiverAddress,
		"amount":               out.Amount,
		"spent_transaction_id": out.SpentBy,
	}
}

// Unlock carries the authorization for spending a transaction's inputs.
type Unlock struct {
	SenderPublicKey string `json:"sender_public_key"`
	Signature       string `json:"signature"`
}

// =============================================================================

// UnspentSelector is the store behavior the transaction builder needs.
type UnspentSelector interface {
	SelectUnspent(account string, amount float64) (float64, []TxInput, error)
}

// OutputFinder is the store behavior transaction verification needs.
type OutputFinder interface {
	FindOutput(ref TxInput) (TxOutput, error)
}

// =============================================================================

// Tx is a transaction being built. It stays mutable until Sign fixes its
// identity, producing the immutable SignedTx form.
type Tx struct {
	Inputs  []TxInput
	Outputs []TxOutput
}

// NewTx constructs an empty transaction ready to take outputs.
func NewTx() *Tx {
	return &Tx{}
}

// AddOutput selects unspent outputs owned by the sender until they cover
// the amount and appends the payment. Selection is greedy in store order.
// When the selection exceeds the amount, a change output addressed back to
// the sender keeps the totals equal. The full output list is returned.
func (tx *Tx) AddOutput(store UnspentSelector, sender string, receiver string, amount float64) ([]TxOutput, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v", amount)
	}

	total, inputs, err := store.SelectUnspent(sender, amount)
	if err != nil {
		return nil, err
	}

	tx.Inputs = append(tx.Inputs, inputs...)
	tx.Outputs = append(tx.Outputs, TxOutput{ReceiverAddress: receiver, Amount: amount})

	if total > amount {
		tx.Outputs = append(tx.Outputs, TxOutput{ReceiverAddress: sender, Amount: total - amount})
	}

	outputs := make([]TxOutput, len(tx.Outputs))
	copy(outputs, tx.Outputs)

	return outputs, nil
}

// Sign computes the transaction's identity hash and signs the canonical
// message with the private key. The sender address recorded in the unlock
// is the signer's own public key string.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	signedTx := SignedTx{
		InputCount:  len(tx.Inputs),
		Inputs:      make([]TxInput, len(tx.Inputs)),
		OutputCount: len(tx.Outputs),
		Outputs:     make([]TxOutput, len(tx.Outputs)),
		Unlock: Unlock{
			SenderPublicKey: signature.PublicKeyString(&privateKey.PublicKey),
		},
	}
	copy(signedTx.Inputs, tx.Inputs)
	copy(signedTx.Outputs, tx.Outputs)

	// The identity hash covers every field except the unlock, which is
	// present but empty in the hashed payload.
	payload, err := canonical.Marshal(signedTx.hashMapping(""))
	if err != nil {
		return SignedTx{}, fmt.Errorf("rendering id payload: %w", err)
	}
	signedTx.TransactionID = signature.Hash(payload)

	// The signed message is the same form with the identity fixed in.
	message, err := canonical.Marshal(signedTx.hashMapping(signedTx.TransactionID))
	if err != nil {
		return SignedTx{}, fmt.Errorf("rendering signing message: %w", err)
	}

	sig, err := signature.Sign(message, privateKey)
	if err != nil {
		return SignedTx{}, err
	}
	signedTx.Unlock.Signature = sig

	return signedTx, nil
}

// =============================================================================

// SignedTx is a finalized transaction: its identity hash is fixed and the
// unlock authorizes spending its inputs. Transactions received over the
// wire unmarshal directly into this form and are never signed again.
type SignedTx struct {
	TransactionID string     `json:"transaction_id"`
	Unlock        Unlock     `json:"unlock"`
	InputCount    int        `json:"input_count"`
	Inputs        []TxInput  `json:"inputs"`
	OutputCount   int        `json:"output_count"`
	Outputs       []TxOutput `json:"outputs"`
}

// Sender returns the account that authorized the transaction.
func (tx SignedTx) Sender() string {
	return tx.Unlock.SenderPublicKey
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	id := tx.TransactionID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s outs[%d]", id, len(tx.Outputs))
}

// VerifySignature checks the unlock signature covers the transaction as it
// stands. It does not consult the store, so the inputs may still refer to
// outputs that are unknown, foreign or already spent.
func (tx SignedTx) VerifySignature() error {
	message, err := canonical.Marshal(tx.hashMapping(tx.TransactionID))
	if err != nil {
		return fmt.Errorf("rendering signing message: %w", err)
	}

	if err := signature.Verify(tx.Unlock.SenderPublicKey, tx.Unlock.Signature, message); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	return nil
}

// hashMapping renders the canonical structure shared by the identity hash
// and the signing message. The unlock mapping stays empty so the signature
// never covers itself.
func (tx SignedTx) hashMapping(txID string) map[string]any {
	inputs := make([]any, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = in.CanonicalMapping()
	}

	outputs := make([]any, len(tx.Outputs))
	for i, out := range tx.Outputs {
		outputs[i] = out.CanonicalMapping()
	}

	return map[string]any{
		"transaction_id": txID,
		"unlock":         map[string]any{},
		"input_count":    len(tx.Inputs),
		"inputs":         inputs,
		"output_count":   len(tx.Outputs),
		"outputs":        outputs,
	}
}

// CanonicalMapping renders the full transaction record, unlock included,
// as it is archived inside a block's data.
func (tx SignedTx) CanonicalMapping() map[string]any {
	m := tx.hashMapping(tx.TransactionID)
	m["unlock"] = map[string]any{
		"sender_public_key": tx.Unlock.SenderPublicKey,
		"signature":         tx.Unlock.Signature,
	}

	return m
}

// =============================================================================

// VerifyTransaction checks the transaction's signature and then validates
// every input against the store, in order. A signature that does not check
// out reports ErrInvalidSignature without identifying an input. The first
// input whose referenced output is missing, owned by another account, or
// already spent is reported through InputError and checking stops there.
func VerifyTransaction(tx SignedTx, store OutputFinder) error {
	if err := tx.VerifySignature(); err != nil {
		return err
	}

	for _, in := range tx.Inputs {
		out, err := store.FindOutput(in)
		switch {
		case errors.Is(err, ErrUnknownOutput):
			return &InputError{Input: in, Err: ErrUnknownOutput}
		case err != nil:
			return err
		}

		// An input claiming a different amount than the archived output
		// references something that does not exist as described.
		if out.Amount != in.Amount {
			return &InputError{Input: in, Err: ErrUnknownOutput}
		}

		if out.ReceiverAddress != tx.Unlock.SenderPublicKey {
			return &InputError{Input: in, Err: ErrForeignOutput}
		}

		if out.SpentBy != "" {
			return &InputError{Input: in, Err: ErrSpentOutput}
		}
	}

	return nil
}
