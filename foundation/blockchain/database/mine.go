package database

import (
	"github.com/jole141/chainsim/foundation/blockchain/digest"
	"github.com/jole141/chainsim/foundation/blockchain/genesis"
	"github.com/jole141/chainsim/foundation/blockchain/merkle"
)

// MineArgs represents the set of arguments required to mine a block.
type MineArgs struct {
	Genesis       genesis.Genesis
	Miner         string
	PrevBlockHash digest.Digest
	Trans         []Tx
	Now           uint64
}

// MineNewBlock constructs a new block extending the specified previous block
// hash. The coinbase paying the miner is placed ahead of the transactions.
//
// No nonce is searched for. The difficulty from the genesis is recorded in
// the header and the nonce is left at zero.
func MineNewBlock(args MineArgs) (Block, error) {
	prev := args.PrevBlockHash
	return newBlock(args.Genesis, args.Miner, &prev, args.Trans, args.Now)
}

// InitGenesisBlock constructs the first block of a chain. It holds only the
// coinbase paying the miner and has no previous block.
func InitGenesisBlock(gen genesis.Genesis, miner string, now uint64) (Block, error) {
	return newBlock(gen, miner, nil, nil, now)
}

// =============================================================================

func newBlock(gen genesis.Genesis, miner string, prev *digest.Digest, trans []Tx, now uint64) (Block, error) {

	// The script placeholder locks the subsidy to the miner's identity.
	coinbase := NewCoinbaseTx(gen, miner, miner)

	all := make([]Tx, 0, len(trans)+1)
	all = append(all, coinbase)
	all = append(all, cloneTrans(trans)...)

	root, err := merkle.RootOf(all)
	if err != nil {
		return Block{}, err
	}

	b := Block{
		Header: BlockHeader{
			SoftwareVersion: gen.SoftwareVersion,
			PrevBlockHash:   prev,
			MerkleRoot:      root,
			TimeStamp:       now,
			Difficulty:      gen.Difficulty,
			Nonce:           0,
		},
		Trans:    all,
		Coinbase: coinbase.Clone(),
	}

	return b, nil
}
