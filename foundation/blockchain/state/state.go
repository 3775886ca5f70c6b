// Package state is the core API for a node of the simulated network. It
// owns the node's replica of the chain and implements the processing of
// mined and proposed blocks.
package state

import (
	"crypto/ecdsa"
	"errors"

	"github.com/jole141/chainsim/foundation/blockchain/clock"
	"github.com/jole141/chainsim/foundation/blockchain/database"
	"github.com/jole141/chainsim/foundation/blockchain/genesis"
	"github.com/jole141/chainsim/foundation/blockchain/mempool"
	"github.com/jole141/chainsim/foundation/blockchain/signature"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package driving a node.
type Worker interface {
	Shutdown()
	SignalStartMining()
}

// Broadcaster interface represents the behavior required to deliver a
// block to every other node.
type Broadcaster interface {
	Broadcast(from int, data database.BlockData) error
}

// =============================================================================

// Config represents the configuration required to start a node.
type Config struct {
	ID          int
	Genesis     genesis.Genesis
	Key         *ecdsa.PrivateKey
	Clock       clock.Clock
	Broadcaster Broadcaster
	EvHandler   EventHandler
}

// State manages one node's replica of the blockchain.
type State struct {
	id          int
	identity    string
	key         *ecdsa.PrivateKey
	clock       clock.Clock
	broadcaster Broadcaster
	evHandler   EventHandler

	genesis genesis.Genesis
	chain   *database.Chain
	mempool *mempool.Mempool

	Worker Worker
}

// New constructs a node with an empty chain. A new key is generated when
// one isn't provided.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Broadcaster == nil {
		return nil, errors.New("broadcaster is required")
	}

	key := cfg.Key
	if key == nil {
		var err error
		if key, err = signature.GenerateKey(); err != nil {
			return nil, err
		}
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NowMS
	}

	state := State{
		id:          cfg.ID,
		identity:    signature.Identity(key.PublicKey),
		key:         key,
		clock:       clk,
		broadcaster: cfg.Broadcaster,
		evHandler:   ev,

		genesis: cfg.Genesis,
		chain:   database.NewChain(),
		mempool: mempool.New(),
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started: node[%d]", s.id)
	defer s.evHandler("state: Shutdown: completed: node[%d]", s.id)

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
