// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/utxochain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/events"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/ardanlabs/utxochain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	State   *state.State
	Genesis genesis.Genesis
	NS      *nameservice.NameService
	Evts    *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:     cfg.Log,
		State:   cfg.State,
		Genesis: cfg.Genesis,
		NS:      cfg.NS,
		Evts:    cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.GenesisInfo)
	app.Handle(http.MethodGet, version, "/blocks/tip", pbl.Tip)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks)
	app.Handle(http.MethodPost, version, "/blocks/add", pbl.AddBlock)
	app.Handle(http.MethodGet, version, "/blocks/proof/:number/:tx", pbl.Proof)
	app.Handle(http.MethodGet, version, "/utxos/list", pbl.UTXOs)
	app.Handle(http.MethodGet, version, "/utxos/list/:pubkey", pbl.UTXOs)
	app.Handle(http.MethodGet, version, "/utxos/balance/:pubkey", pbl.Balance)
}
