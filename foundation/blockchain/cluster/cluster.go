// Package cluster builds a simulated network of nodes sharing one fabric
// and drives it by asking a random node to mine on an interval.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jole141/chainsim/foundation/blockchain/clock"
	"github.com/jole141/chainsim/foundation/blockchain/genesis"
	"github.com/jole141/chainsim/foundation/blockchain/peer"
	"github.com/jole141/chainsim/foundation/blockchain/state"
	"github.com/jole141/chainsim/foundation/blockchain/worker"
	"github.com/jole141/chainsim/foundation/nameservice"
)

// ErrUnknownNode is returned when a node id is out of range.
var ErrUnknownNode = errors.New("unknown node")

// Config represents the configuration required to build a cluster.
type Config struct {
	Genesis    genesis.Genesis
	Accounts   []nameservice.Account
	SkewNode   int
	SkewOffset time.Duration
	EvHandler  state.EventHandler
}

// Cluster represents the set of running nodes.
type Cluster struct {
	genesis   genesis.Genesis
	fabric    *peer.Fabric
	nodes     []*state.State
	workers   []*worker.Worker
	names     *nameservice.NameService
	evHandler state.EventHandler
}

// New constructs the fabric and the configured number of nodes and starts
// a worker for each node. Accounts provide the keys and names of the first
// nodes, the remaining nodes get a fresh key and a generated name.
func New(cfg Config) (*Cluster, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Genesis.Nodes <= 0 {
		return nil, fmt.Errorf("invalid node count %d", cfg.Genesis.Nodes)
	}

	c := Cluster{
		genesis:   cfg.Genesis,
		fabric:    peer.New(cfg.Genesis.Nodes, cfg.Genesis.InboxSize),
		nodes:     make([]*state.State, cfg.Genesis.Nodes),
		workers:   make([]*worker.Worker, cfg.Genesis.Nodes),
		names:     nameservice.New(),
		evHandler: ev,
	}

	for id := range cfg.Genesis.Nodes {
		name := fmt.Sprintf("node-%d", id)
		stCfg := state.Config{
			ID:          id,
			Genesis:     cfg.Genesis,
			Broadcaster: c.fabric,
			EvHandler:   ev,
		}

		if id < len(cfg.Accounts) {
			name = cfg.Accounts[id].Name
			stCfg.Key = cfg.Accounts[id].Key
		}

		if id == cfg.SkewNode && cfg.SkewOffset != 0 {
			ev("cluster: New: node[%d]: clock skew[%v]", id, cfg.SkewOffset)
			stCfg.Clock = clock.Offset(cfg.SkewOffset)
		}

		st, err := state.New(stCfg)
		if err != nil {
			c.Shutdown()
			return nil, fmt.Errorf("node %d: %w", id, err)
		}

		inbox, err := c.fabric.Inbox(id)
		if err != nil {
			c.Shutdown()
			return nil, fmt.Errorf("node %d: %w", id, err)
		}

		c.names.Add(name, st.PublicKey())
		c.nodes[id] = st
		c.workers[id] = worker.Run(st, inbox, ev)

		ev("cluster: New: node[%d]: name[%s]: identity[%s]", id, name, st.Identity())
	}

	return &c, nil
}

// Nodes returns the nodes in the cluster ordered by id.
func (c *Cluster) Nodes() []*state.State {
	nodes := make([]*state.State, len(c.nodes))
	copy(nodes, c.nodes)

	return nodes
}

// Node returns the node with the specified id.
func (c *Cluster) Node(id int) (*state.State, error) {
	if id < 0 || id >= len(c.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}

	return c.nodes[id], nil
}

// Names returns the name service for the identities of the nodes.
func (c *Cluster) Names() *nameservice.NameService {
	return c.names
}

// Genesis returns the protocol parameters the cluster runs with.
func (c *Cluster) Genesis() genesis.Genesis {
	return c.genesis
}

// Trigger signals the specified node to mine a block.
func (c *Cluster) Trigger(id int) error {
	st, err := c.Node(id)
	if err != nil {
		return err
	}

	c.evHandler("cluster: Trigger: node[%d]", id)
	st.Worker.SignalStartMining()

	return nil
}

// Run picks a node at random on every interval and signals it to mine. Run
// blocks until the context is canceled.
func (c *Cluster) Run(ctx context.Context, interval time.Duration) error {
	c.evHandler("cluster: Run: started: interval[%v]", interval)
	defer c.evHandler("cluster: Run: completed")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Trigger(rand.IntN(len(c.nodes))); err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Shutdown closes the fabric and stops every node.
func (c *Cluster) Shutdown() {
	c.evHandler("cluster: Shutdown: started")
	defer c.evHandler("cluster: Shutdown: completed")

	c.fabric.Close()

	for _, st := range c.nodes {
		if st != nil {
			st.Shutdown()
		}
	}
}
