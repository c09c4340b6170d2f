// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/quarrychain/quarry/app/services/node/handlers/v1/private"
	"github.com/quarrychain/quarry/app/services/node/handlers/v1/public"
	"github.com/quarrychain/quarry/foundation/events"
	"github.com/quarrychain/quarry/foundation/ledger/state"
	"github.com/quarrychain/quarry/foundation/nameservice"
	"github.com/quarrychain/quarry/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/balance", pbl.Balance)
	app.Handle(http.MethodGet, version, "/accounts/:account/balance", pbl.AccountBalance)
	app.Handle(http.MethodGet, version, "/accounts/:account/unspent", pbl.AccountUnspent)
	app.Handle(http.MethodGet, version, "/tx/uncommitted", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/blocks/tip", pbl.Tip)
	app.Handle(http.MethodGet, version, "/blocks/:id", pbl.BlockByID)
	app.Handle(http.MethodPost, version, "/blocks/propose", pbl.ProposeBlock)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodPost, version, "/node/payments", prv.CreatePayment)
	app.Handle(http.MethodPost, version, "/node/mine", prv.Mine)
	app.Handle(http.MethodGet, version, "/node/unspent", prv.Unspent)
}
