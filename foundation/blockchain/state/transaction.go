package state

import (
	"errors"

	"github.com/jole141/chainsim/foundation/blockchain/database"
	"github.com/jole141/chainsim/foundation/blockchain/signature"
)

// ErrNoCoinbase is returned when a transfer is requested before the node
// has a block to spend from.
var ErrNoCoinbase = errors.New("no block to spend from")

// SubmitTransaction adds the transaction to the node's mempool so it can
// be picked by the next block this node mines.
func (s *State) SubmitTransaction(tx database.Tx) int {
	n := s.mempool.Upsert(tx)
	s.evHandler("state: SubmitTransaction: node[%d]: tx[%s]: pending[%d]", s.id, tx.Hash(), n)

	return n
}

// Transfer constructs a transaction paying value to the recipient, spending
// the coinbase of the latest block, and submits it. The input is unlocked
// with this node's signature of the outputs.
func (s *State) Transfer(recipient string, value uint64) (database.Tx, error) {
	tip, ok := s.chain.LatestBlock()
	if !ok {
		return database.Tx{}, ErrNoCoinbase
	}

	outputs := []database.TxOutput{
		{
			Value:        value,
			ScriptPubKey: recipient,
			Recipient:    recipient,
		},
	}

	sig, err := s.Sign(outputs)
	if err != nil {
		return database.Tx{}, err
	}

	inputs := []database.TxInput{
		{
			PrevTxHash: tip.Coinbase.Hash(),
			ScriptSig:  signature.SignatureString(sig),
		},
	}

	tx := database.NewTransferTx(s.genesis, inputs, outputs)
	s.SubmitTransaction(tx)

	return tx, nil
}

// Sign signs the value with the node's private key.
func (s *State) Sign(value any) ([]byte, error) {
	return signature.Sign(value, s.key)
}
