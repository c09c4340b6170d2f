package database

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the ledger core. Callers branch with
// errors.Is and errors.As.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrUnknownOutput     = errors.New("referenced output does not exist")
	ErrForeignOutput     = errors.New("referenced output belongs to another account")
	ErrSpentOutput       = errors.New("referenced output is already spent")
	ErrDifficultyNotMet  = errors.New("hash does not meet the difficulty target")
	ErrBlockIDMismatch   = errors.New("block id does not match the block payload")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrMiningCancelled   = errors.New("mining cancelled")
	ErrNonceNotFound     = errors.New("nonce ceiling reached before difficulty was met")
)

// InputError identifies the first transaction input that failed
// validation and why. A bad signature never produces one.
type InputError struct {
	Input TxInput
	Err   error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("input tx[%s] block[%s] index[%d]: %s", e.Input.TransactionID, e.Input.BlockID, e.Input.OutputIndex, e.Err)
}

// Unwrap exposes the underlying reason for errors.Is checks.
func (e *InputError) Unwrap() error {
	return e.Err
}
