// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jole141/chainsim/business/sys/validate"
	"github.com/jole141/chainsim/business/web/errs"
	"github.com/jole141/chainsim/foundation/blockchain/cluster"
	"github.com/jole141/chainsim/foundation/blockchain/database"
	"github.com/jole141/chainsim/foundation/blockchain/digest"
	"github.com/jole141/chainsim/foundation/blockchain/merkle"
	"github.com/jole141/chainsim/foundation/blockchain/state"
	"github.com/jole141/chainsim/foundation/events"
	"github.com/jole141/chainsim/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of simulator endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Cluster *cluster.Cluster
	WS      websocket.Upgrader
	Evts    *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	id, ch := h.Evts.Acquire()
	defer h.Evts.Release(id)

	h.Log.Infow("events", "traceid", web.GetTraceID(ctx), "status", "subscribed", "id", id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the protocol parameters.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Cluster.Genesis(), http.StatusOK)
}

// Nodes returns a summary of every node in the network.
func (h Handlers) Nodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ns := h.Cluster.Names()

	nodes := make([]node, 0, len(h.Cluster.Nodes()))
	for _, st := range h.Cluster.Nodes() {
		n := node{
			ID:       st.ID(),
			Name:     ns.Lookup(st.Identity()),
			Identity: st.Identity(),
			Length:   st.ChainLength(),
			Pending:  len(st.RetrieveMempool()),
		}

		if tip, ok := st.RetrieveLatestBlock(); ok {
			n.Tip = tip.Hash()
		}

		nodes = append(nodes, n)
	}

	return web.Respond(ctx, w, nodes, http.StatusOK)
}

// Blocks returns the replica of the chain held by the specified node.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.node(r)
	if err != nil {
		return err
	}

	dbBlocks := st.RetrieveChain()
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	ns := h.Cluster.Names()

	blocks := make([]block, len(dbBlocks))
	for i, dbBlock := range dbBlocks {
		blocks[i] = toBlock(ns, i, dbBlock)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Proof returns the merkle proof that a transaction is part of a block in
// the specified node's chain.
func (h Handlers) Proof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.node(r)
	if err != nil {
		return err
	}

	num, err := strconv.Atoi(web.Param(r, "num"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	txHash, err := digest.FromHex(web.Param(r, "tx"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid transaction hash: %w", err), http.StatusBadRequest)
	}

	blocks := st.RetrieveChain()
	if num < 0 || num >= len(blocks) {
		return errs.NewTrusted(fmt.Errorf("block %d not found", num), http.StatusNotFound)
	}
	dbBlock := blocks[num]

	var found *database.Tx
	for _, dbTx := range dbBlock.Trans {
		if dbTx.Hash() == txHash {
			found = &dbTx
			break
		}
	}

	if found == nil {
		return errs.NewTrusted(fmt.Errorf("transaction %s not found in block %d", txHash, num), http.StatusNotFound)
	}

	path, order, err := dbBlock.Proof(*found)
	if err != nil {
		return fmt.Errorf("generating proof: %w", err)
	}

	resp := proof{
		Block:    dbBlock.Hash(),
		Root:     dbBlock.Header.MerkleRoot,
		Leaf:     txHash,
		Proof:    path,
		Order:    order,
		Verified: merkle.VerifyProof(txHash, path, order, dbBlock.Header.MerkleRoot),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine signals the specified node to mine the next block.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.node(r)
	if err != nil {
		return err
	}

	if err := h.Cluster.Trigger(st.ID()); err != nil {
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// SubmitTransaction adds a transfer from the specified node to another
// node into the sender's mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.node(r)
	if err != nil {
		return err
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(ntx); err != nil {
		return err
	}

	to, err := h.Cluster.Node(ntx.To)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", web.GetTraceID(ctx), "from", st.ID(), "to", to.ID(), "value", ntx.Value)

	dbTx, err := st.Transfer(to.Identity(), ntx.Value)
	if err != nil {
		if errors.Is(err, state.ErrNoCoinbase) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	return web.Respond(ctx, w, toTx(h.Cluster.Names(), dbTx), http.StatusOK)
}

// =============================================================================

func (h Handlers) node(r *http.Request) (*state.State, error) {
	id, err := strconv.Atoi(web.Param(r, "id"))
	if err != nil {
		return nil, errs.NewTrusted(fmt.Errorf("invalid node id: %w", err), http.StatusBadRequest)
	}

	st, err := h.Cluster.Node(id)
	if err != nil {
		return nil, errs.NewTrusted(err, http.StatusNotFound)
	}

	return st, nil
}
