// Package private maintains the group of handlers for node administration.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/quarrychain/quarry/business/sys/validate"
	v1 "github.com/quarrychain/quarry/business/web/v1"
	"github.com/quarrychain/quarry/foundation/ledger/state"
	"github.com/quarrychain/quarry/foundation/nameservice"
	"github.com/quarrychain/quarry/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of private node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// CreatePayment builds a payment from the node account, signs it with the
// node key and submits it to the mempool.
func (h Handlers) CreatePayment(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var np newPayment
	if err := web.Decode(r, &np); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	if err := validate.Check(np); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	h.Log.Infow("create payment", "traceid", v.TraceID, "receiver", h.NS.Lookup(np.ReceiverAddress), "amount", np.Amount)

	signedTx, err := h.State.CreatePayment(np.ReceiverAddress, np.Amount)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
	}{
		Status:        "payment added to mempool",
		TransactionID: signedTx.TransactionID,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine signals the mining worker to attempt a new block. The attempt runs
// in the background and its outcome is narrated on the event stream.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pending := h.State.QueryMempoolLength()
	if pending == 0 {
		return v1.NewRequestError(errors.New("no transactions in mempool"), http.StatusBadRequest)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status      string `json:"status"`
		Uncommitted int    `json:"uncommitted"`
	}{
		Status:      "mining signaled",
		Uncommitted: pending,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Unspent returns the unspent outputs available to the node account.
func (h Handlers) Unspent(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	recs, err := h.State.QueryUnspent(h.State.RetrieveAccount())
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, recs, http.StatusOK)
}
