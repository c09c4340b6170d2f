// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"time"

	v1 "github.com/quarrychain/quarry/business/web/v1"
	"github.com/quarrychain/quarry/foundation/events"
	"github.com/quarrychain/quarry/foundation/ledger/database"
	"github.com/quarrychain/quarry/foundation/ledger/state"
	"github.com/quarrychain/quarry/foundation/nameservice"
	"github.com/quarrychain/quarry/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction takes a signed transaction from a wallet, verifies it
// and adds it to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signedTx database.SignedTx
	if err := web.Decode(r, &signedTx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "tx", signedTx, "sender", h.NS.Lookup(signedTx.Sender()))
	if err := h.State.SubmitTransaction(signedTx); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	resp := struct {
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
	}{
		Status:        "transaction added to mempool",
		TransactionID: signedTx.TransactionID,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeBlock takes a block mined elsewhere, verifies it and if that
// passes, accepts it as the new chain tip.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var block database.Block
	if err := web.Decode(r, &block); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	if err := h.State.ProcessProposedBlock(block); err != nil {
		return v1.NewRequestError(errors.New("block not accepted"), http.StatusNotAcceptable)
	}

	resp := struct {
		Status  string `json:"status"`
		BlockID string `json:"block_id"`
	}{
		Status:  "accepted",
		BlockID: block.BlockID,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	txs := make([]tx, len(mempool))
	for i, tran := range mempool {
		txs[i] = toTx(tran, h.NS)
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// Balance returns the balance of the node account.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.respondBalance(ctx, w, h.State.RetrieveAccount())
}

// AccountBalance returns the balance of the specified account. Only
// outputs archived on this node's chain are counted.
func (h Handlers) AccountBalance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")
	if account == "" {
		return v1.NewRequestError(errors.New("account not provided"), http.StatusBadRequest)
	}

	return h.respondBalance(ctx, w, account)
}

func (h Handlers) respondBalance(ctx context.Context, w http.ResponseWriter, account string) error {
	total, err := h.State.QueryBalance(account)
	if err != nil {
		return err
	}

	unspent, err := h.State.QueryUnspent(account)
	if err != nil {
		return err
	}

	bal := balance{
		Account:     account,
		Name:        h.NS.Lookup(account),
		Balance:     total,
		Unspent:     len(unspent),
		Uncommitted: h.State.QueryMempoolLength(),
		LatestBlock: h.State.RetrieveTip(),
	}

	return web.Respond(ctx, w, bal, http.StatusOK)
}

// AccountUnspent returns the unspent outputs available to the specified
// account, oldest first. Wallets use this to build their own transactions.
func (h Handlers) AccountUnspent(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")
	if account == "" {
		return v1.NewRequestError(errors.New("account not provided"), http.StatusBadRequest)
	}

	recs, err := h.State.QueryUnspent(account)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, recs, http.StatusOK)
}

// Tip returns the block at the head of the chain.
func (h Handlers) Tip(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.RetrieveLatestBlock()
	if err != nil {
		return err
	}

	resp := tip{
		BlockID: block.BlockID,
		Block:   block,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlockByID returns the archived block with the specified id.
func (h Handlers) BlockByID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	block, err := h.State.QueryBlock(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return v1.NewRequestError(errors.New("block not found"), http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}
