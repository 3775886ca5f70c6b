package database

import (
	"errors"
	"fmt"

	"github.com/jole141/chainsim/foundation/blockchain/digest"
	"github.com/jole141/chainsim/foundation/blockchain/merkle"
)

// ErrHashMismatch is returned when the hash carried with a block doesn't
// match the hash derived from its header.
var ErrHashMismatch = errors.New("block hash does not match header")

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	SoftwareVersion string         `json:"software_version"` // Version of the software that produced the block.
	PrevBlockHash   *digest.Digest `json:"prev_block_hash"`  // Bitcoin: Hash of the previous block, nil for genesis.
	MerkleRoot      digest.Digest  `json:"merkle_root"`      // Bitcoin: Merkle root of the transactions in this block.
	TimeStamp       uint64         `json:"timestamp"`        // Bitcoin: Time the block was mined in milliseconds.
	Difficulty      uint32         `json:"difficulty"`       // Bitcoin: Target for the hash, carried but not enforced.
	Nonce           uint32         `json:"nonce"`            // Bitcoin: Value identified to solve the hash solution.
}

// IsGenesis reports whether the header belongs to a genesis block.
func (h BlockHeader) IsGenesis() bool {
	return h.PrevBlockHash == nil
}

// clone returns a copy of the header that shares no memory with it.
func (h BlockHeader) clone() BlockHeader {
	if h.PrevBlockHash != nil {
		prev := *h.PrevBlockHash
		h.PrevBlockHash = &prev
	}

	return h
}

// canonical returns the form of the header that is hashed.
func (h BlockHeader) canonical() BlockHeader {
	h.SoftwareVersion = digest.HexString(h.SoftwareVersion)

	return h
}

// =============================================================================

// Block represents a group of transactions batched together. The first
// transaction is always the coinbase, which is also kept on its own.
type Block struct {
	Header   BlockHeader
	Trans    []Tx
	Coinbase Tx
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() digest.Digest {

	// Hashing the block header and not the whole block so the chain can be
	// checked with only block headers. The transactions are committed to
	// through the merkle root.
	return digest.HashValue(b.Header.canonical())
}

// Clone returns a copy of the block that shares no memory with it. Blocks
// cross between replicas by value only.
func (b Block) Clone() Block {
	return Block{
		Header:   b.Header.clone(),
		Trans:    cloneTrans(b.Trans),
		Coinbase: b.Coinbase.Clone(),
	}
}

// Proof returns the merkle proof that the transaction is part of this block.
func (b Block) Proof(tx Tx) ([]digest.Digest, []int, error) {
	tree, err := merkle.NewTree(b.Trans)
	if err != nil {
		return nil, nil, err
	}

	return tree.Proof(tx)
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	prev := "none"
	if b.Header.PrevBlockHash != nil {
		prev = b.Header.PrevBlockHash.String()
	}

	return fmt.Sprintf("blk[%s]:prev[%s]:trans[%d]", b.Hash(), prev, len(b.Trans))
}

// =============================================================================

// BlockData represents what is sent to other nodes when a block is
// broadcast. The hash travels with the block so it can be checked.
type BlockData struct {
	Hash     digest.Digest `json:"hash"`
	Header   BlockHeader   `json:"header"`
	Trans    []Tx          `json:"trans"`
	Coinbase Tx            `json:"coinbase"`
}

// NewBlockData constructs the value to broadcast to other nodes.
func NewBlockData(block Block) BlockData {
	b := block.Clone()

	return BlockData{
		Hash:     b.Hash(),
		Header:   b.Header,
		Trans:    b.Trans,
		Coinbase: b.Coinbase,
	}
}

// Clone returns a copy of the block data that shares no memory with it.
func (d BlockData) Clone() BlockData {
	return BlockData{
		Hash:     d.Hash,
		Header:   d.Header.clone(),
		Trans:    cloneTrans(d.Trans),
		Coinbase: d.Coinbase.Clone(),
	}
}

// ToBlock converts a BlockData into a Block. The block hash is re-derived
// from the header and compared against the hash that was sent.
func ToBlock(data BlockData) (Block, error) {
	b := Block{
		Header:   data.Header,
		Trans:    data.Trans,
		Coinbase: data.Coinbase,
	}.Clone()

	if hash := b.Hash(); hash != data.Hash {
		return Block{}, fmt.Errorf("%w: got %s, exp %s", ErrHashMismatch, hash, data.Hash)
	}

	return b, nil
}
