package database

import (
	"errors"
	"fmt"

	"github.com/jole141/chainsim/foundation/blockchain/merkle"
)

// Set of errors describing why a block or chain was rejected. A rejection
// is an expected outcome on a racy network, not a fault.
var (
	ErrMerkleMismatch   = errors.New("merkle root does not match transactions")
	ErrFutureBlock      = errors.New("block timestamp is in the future")
	ErrCoinbaseMismatch = errors.New("coinbase does not match the first transaction")
	ErrChainLinkage     = errors.New("parent block hash does not match the previous block")
)

// ValidateBlock checks the block is consistent with itself. The checks run
// in order and the first failure is returned.
//
// The block hash is never trusted: it is always derived from the header, and
// a hash sent along with a block is checked by ToBlock. The coinbase check
// is structural: the first transaction is the only one with the coinbase
// shape. Its value, the difficulty and per-transaction scripts are not
// checked.
func ValidateBlock(block Block, now uint64) error {
	root, err := merkle.RootOf(block.Trans)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMerkleMismatch, err)
	}

	if root != block.Header.MerkleRoot {
		return fmt.Errorf("%w: got %s, exp %s", ErrMerkleMismatch, root, block.Header.MerkleRoot)
	}

	if block.Header.TimeStamp > now {
		return fmt.Errorf("%w: block %d, now %d", ErrFutureBlock, block.Header.TimeStamp, now)
	}

	if !block.Coinbase.IsCoinbase() || !block.Trans[0].Equals(block.Coinbase) {
		return ErrCoinbaseMismatch
	}

	for i, tx := range block.Trans[1:] {
		if tx.IsCoinbase() {
			return fmt.Errorf("%w: transaction %d has the coinbase shape", ErrCoinbaseMismatch, i+1)
		}
	}

	return nil
}

// ValidateChain checks every block after the genesis block, newest first.
// Each block must pass ValidateBlock and reference the hash of the block
// before it. The genesis block is trusted once accepted.
func ValidateChain(blocks []Block, now uint64) error {
	for i := len(blocks) - 1; i >= 1; i-- {
		block := blocks[i]

		if err := ValidateBlock(block, now); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}

		parentHash := blocks[i-1].Hash()
		if block.Header.PrevBlockHash == nil {
			return fmt.Errorf("block %d: %w: got none, exp %s", i, ErrChainLinkage, parentHash)
		}

		if *block.Header.PrevBlockHash != parentHash {
			return fmt.Errorf("block %d: %w: got %s, exp %s", i, ErrChainLinkage, *block.Header.PrevBlockHash, parentHash)
		}
	}

	return nil
}
