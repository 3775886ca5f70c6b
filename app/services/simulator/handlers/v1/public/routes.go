package public

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jole141/chainsim/foundation/blockchain/cluster"
	"github.com/jole141/chainsim/foundation/events"
	"github.com/jole141/chainsim/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	Cluster *cluster.Cluster
	Evts    *events.Events
}

// Routes binds all the public routes.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:     cfg.Log,
		Cluster: cfg.Cluster,
		WS:      websocket.Upgrader{},
		Evts:    cfg.Evts,
	}

	const version = "v1"

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/nodes", pbl.Nodes)
	app.Handle(http.MethodGet, version, "/nodes/:id/blocks", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/nodes/:id/blocks/:num/proof/:tx", pbl.Proof)
	app.Handle(http.MethodPost, version, "/nodes/:id/mine", pbl.Mine)
	app.Handle(http.MethodPost, version, "/nodes/:id/tx", pbl.SubmitTransaction)
}
