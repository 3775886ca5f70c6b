// Package database handles the data model of the blockchain and maintains
// a node's in memory replica of the chain.
package database

import (
	"sync"
)

// Chain represents one node's replica of the blockchain. Index 0 holds the
// genesis block. A chain only grows one block at a time and is never shared
// between nodes.
type Chain struct {
	mu     sync.RWMutex
	blocks []Block
}

// NewChain constructs a chain holding copies of the specified blocks.
func NewChain(blocks ...Block) *Chain {
	c := Chain{
		blocks: make([]Block, len(blocks)),
	}

	for i, b := range blocks {
		c.blocks[i] = b.Clone()
	}

	return &c
}

// Len returns the number of blocks in the chain.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Blocks returns a copy of the blocks in the chain.
func (c *Chain) Blocks() []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cpy := make([]Block, len(c.blocks))
	for i, b := range c.blocks {
		cpy[i] = b.Clone()
	}

	return cpy
}

// LatestBlock returns a copy of the tip of the chain. The boolean is false
// when the chain is empty.
func (c *Chain) LatestBlock() (Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.blocks) == 0 {
		return Block{}, false
	}

	return c.blocks[len(c.blocks)-1].Clone(), true
}

// Mine calls build with the current tip, nil for an empty chain, and appends
// the block it returns. The chain is locked for the whole call so the tip
// can't move while the block is built.
func (c *Chain) Mine(build func(tip *Block) (Block, error)) (Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var tip *Block
	if l := len(c.blocks); l > 0 {
		t := c.blocks[l-1].Clone()
		tip = &t
	}

	block, err := build(tip)
	if err != nil {
		return Block{}, err
	}

	c.blocks = append(c.blocks, block.Clone())

	return block, nil
}

// Extend forms the candidate chain of the current blocks plus the specified
// block and validates it. The candidate replaces the chain only if it is
// valid, otherwise the chain is left untouched.
func (c *Chain) Extend(block Block, now uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := make([]Block, len(c.blocks), len(c.blocks)+1)
	copy(candidate, c.blocks)
	candidate = append(candidate, block.Clone())

	if err := ValidateChain(candidate, now); err != nil {
		return err
	}

	c.blocks = candidate

	return nil
}
