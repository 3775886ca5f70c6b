package state

import (
	"crypto/ecdsa"

	"github.com/jole141/chainsim/foundation/blockchain/database"
	"github.com/jole141/chainsim/foundation/blockchain/genesis"
)

// ID returns the id of the node.
func (s *State) ID() int {
	return s.id
}

// Identity returns the public identity of the node.
func (s *State) Identity() string {
	return s.identity
}

// PublicKey returns the public key of the node.
func (s *State) PublicKey() ecdsa.PublicKey {
	return s.key.PublicKey
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveChain returns a copy of the node's chain.
func (s *State) RetrieveChain() []database.Block {
	return s.chain.Blocks()
}

// RetrieveLatestBlock returns a copy the current latest block. The boolean
// is false when the chain is empty.
func (s *State) RetrieveLatestBlock() (database.Block, bool) {
	return s.chain.LatestBlock()
}

// ChainLength returns the number of blocks in the node's chain.
func (s *State) ChainLength() int {
	return s.chain.Len()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}
