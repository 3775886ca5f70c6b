package state

import (
	"github.com/jole141/chainsim/foundation/blockchain/database"
)

// MineNewBlock creates the next block on this node's chain and broadcasts
// it to every other node. The genesis block is created when the chain is
// empty.
func (s *State) MineNewBlock() (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: started: node[%d]", s.id)
	defer s.evHandler("state: MineNewBlock: MINING: completed: node[%d]", s.id)

	block, err := s.chain.Mine(func(tip *database.Block) (database.Block, error) {
		if tip == nil {
			s.evHandler("state: MineNewBlock: MINING: create genesis block")
			return database.InitGenesisBlock(s.genesis, s.identity, s.clock())
		}

		trans := s.mempool.PickBest(s.genesis.TransPerBlock)
		s.evHandler("state: MineNewBlock: MINING: picked trans[%d]", len(trans))

		return database.MineNewBlock(database.MineArgs{
			Genesis:       s.genesis,
			Miner:         s.identity,
			PrevBlockHash: tip.Hash(),
			Trans:         trans,
			Now:           s.clock(),
		})
	})
	if err != nil {
		return database.Block{}, err
	}

	s.mempool.Delete(block.Trans...)

	s.evHandler("viewer: mined: node[%d]: height[%d]: %s", s.id, s.chain.Len(), block)

	s.evHandler("state: MineNewBlock: MINING: broadcast block[%s]", block.Hash())
	if err := s.broadcaster.Broadcast(s.id, database.NewBlockData(block)); err != nil {
		s.evHandler("state: MineNewBlock: MINING: WARNING: broadcast: ERROR: %s", err)
	}

	return block, nil
}

// ProcessProposedBlock takes a block received from another node, validates
// the chain with the block appended and if that passes, commits it.
func (s *State) ProcessProposedBlock(data database.BlockData) error {
	s.evHandler("state: ProcessProposedBlock: started: node[%d]: block[%s]", s.id, data.Hash)
	defer s.evHandler("state: ProcessProposedBlock: completed: node[%d]", s.id)

	block, err := database.ToBlock(data)
	if err != nil {
		s.evHandler("viewer: rejected: node[%d]: block[%s]: %s", s.id, data.Hash, err)
		return err
	}

	if err := s.chain.Extend(block, s.clock()); err != nil {
		s.evHandler("viewer: rejected: node[%d]: block[%s]: %s", s.id, data.Hash, err)
		return err
	}

	s.mempool.Delete(block.Trans...)

	s.evHandler("viewer: accepted: node[%d]: height[%d]: %s", s.id, s.chain.Len(), block)

	return nil
}
