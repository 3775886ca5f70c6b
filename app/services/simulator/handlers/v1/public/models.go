package public

import (
	"github.com/jole141/chainsim/foundation/blockchain/database"
	"github.com/jole141/chainsim/foundation/blockchain/digest"
	"github.com/jole141/chainsim/foundation/nameservice"
)

type node struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Identity string        `json:"identity"`
	Length   int           `json:"length"`
	Tip      digest.Digest `json:"tip"`
	Pending  int           `json:"pending"`
}

type newTx struct {
	To    int    `json:"to" validate:"gte=0"`
	Value uint64 `json:"value" validate:"required,gt=0"`
}

type output struct {
	Value     uint64 `json:"value"`
	Recipient string `json:"recipient"`
	Name      string `json:"name"`
}

type tx struct {
	Hash     digest.Digest      `json:"hash"`
	Version  uint32             `json:"version"`
	Coinbase bool               `json:"coinbase"`
	Inputs   []database.TxInput `json:"inputs"`
	Outputs  []output           `json:"outputs"`
}

type block struct {
	Number     int            `json:"number"`
	Hash       digest.Digest  `json:"hash"`
	PrevHash   *digest.Digest `json:"prev_hash"`
	MerkleRoot digest.Digest  `json:"merkle_root"`
	TimeStamp  uint64         `json:"timestamp"`
	Difficulty uint32         `json:"difficulty"`
	Nonce      uint32         `json:"nonce"`
	Miner      string         `json:"miner"`
	Trans      []tx           `json:"trans"`
}

type proof struct {
	Block    digest.Digest   `json:"block"`
	Root     digest.Digest   `json:"root"`
	Leaf     digest.Digest   `json:"leaf"`
	Proof    []digest.Digest `json:"proof"`
	Order    []int           `json:"order"`
	Verified bool            `json:"verified"`
}

// =============================================================================

func toTx(ns *nameservice.NameService, dbTx database.Tx) tx {
	outs := make([]output, len(dbTx.Outputs))
	for i, out := range dbTx.Outputs {
		outs[i] = output{
			Value:     out.Value,
			Recipient: out.Recipient,
			Name:      ns.Lookup(out.Recipient),
		}
	}

	return tx{
		Hash:     dbTx.Hash(),
		Version:  dbTx.Version,
		Coinbase: dbTx.IsCoinbase(),
		Inputs:   dbTx.Inputs,
		Outputs:  outs,
	}
}

func toBlock(ns *nameservice.NameService, number int, dbBlock database.Block) block {
	trans := make([]tx, len(dbBlock.Trans))
	for i, dbTx := range dbBlock.Trans {
		trans[i] = toTx(ns, dbTx)
	}

	var miner string
	if len(dbBlock.Coinbase.Outputs) > 0 {
		miner = ns.Lookup(dbBlock.Coinbase.Outputs[0].Recipient)
	}

	return block{
		Number:     number,
		Hash:       dbBlock.Hash(),
		PrevHash:   dbBlock.Header.PrevBlockHash,
		MerkleRoot: dbBlock.Header.MerkleRoot,
		TimeStamp:  dbBlock.Header.TimeStamp,
		Difficulty: dbBlock.Header.Difficulty,
		Nonce:      dbBlock.Header.Nonce,
		Miner:      miner,
		Trans:      trans,
	}
}
