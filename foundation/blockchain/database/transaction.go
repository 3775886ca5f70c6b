package database

import (
	"fmt"

	"github.com/jole141/chainsim/foundation/blockchain/digest"
	"github.com/jole141/chainsim/foundation/blockchain/genesis"
)

// TxInput references an output of a previous transaction being spent.
type TxInput struct {
	PrevTxHash  digest.Digest `json:"prev_tx_hash"`  // Bitcoin: Hash of the transaction holding the output.
	PrevTxIndex uint32        `json:"prev_tx_index"` // Bitcoin: Index of the output in that transaction.
	ScriptSig   string        `json:"script_sig"`    // Bitcoin: Unlock script placeholder.
	Sequence    uint32        `json:"sequence"`      // Bitcoin: Sequence number.
}

// TxOutput represents value being paid to a recipient.
type TxOutput struct {
	Value        uint64 `json:"value"`          // Bitcoin: Value in the smallest unit.
	ScriptPubKey string `json:"script_pub_key"` // Bitcoin: Lock script placeholder.
	Recipient    string `json:"recipient"`      // Public identity of the recipient.
}

// =============================================================================

// Tx is the transactional information recorded inside a block. A Tx is
// never changed once constructed.
type Tx struct {
	Version  uint32     `json:"version"`
	Inputs   []TxInput  `json:"inputs"`
	Outputs  []TxOutput `json:"outputs"`
	LockTime uint32     `json:"lock_time"`
}

// NewCoinbaseTx constructs the transaction that pays the block subsidy to
// the miner of a block. It has no inputs and a single output.
func NewCoinbaseTx(gen genesis.Genesis, scriptPubKey string, recipient string) Tx {
	return Tx{
		Version: gen.TxVersion,
		Inputs:  []TxInput{},
		Outputs: []TxOutput{
			{
				Value:        gen.BlockSubsidy,
				ScriptPubKey: scriptPubKey,
				Recipient:    recipient,
			},
		},
		LockTime: 0,
	}
}

// NewTransferTx constructs a transaction spending the specified inputs
// into the specified outputs.
func NewTransferTx(gen genesis.Genesis, inputs []TxInput, outputs []TxOutput) Tx {
	tx := Tx{
		Version: gen.TxVersion,
		Inputs:  make([]TxInput, len(inputs)),
		Outputs: make([]TxOutput, len(outputs)),
	}
	copy(tx.Inputs, inputs)
	copy(tx.Outputs, outputs)

	return tx
}

// Hash implements the merkle Hashable interface for providing the unique
// hash of a transaction. The hash is the digest of the canonical encoding.
func (tx Tx) Hash() digest.Digest {
	return digest.HashValue(tx.canonical())
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions.
func (tx Tx) Equals(other Tx) bool {
	return tx.Hash() == other.Hash()
}

// IsCoinbase reports whether the transaction has the coinbase shape of no
// inputs and a single output. The value of the output isn't checked.
func (tx Tx) IsCoinbase() bool {
	return len(tx.Inputs) == 0 && len(tx.Outputs) == 1
}

// Value returns the total value of the outputs.
func (tx Tx) Value() uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Value
	}

	return total
}

// Clone returns a copy of the transaction that shares no memory with it.
func (tx Tx) Clone() Tx {
	cpy := tx
	if tx.Inputs != nil {
		cpy.Inputs = make([]TxInput, len(tx.Inputs))
		copy(cpy.Inputs, tx.Inputs)
	}
	if tx.Outputs != nil {
		cpy.Outputs = make([]TxOutput, len(tx.Outputs))
		copy(cpy.Outputs, tx.Outputs)
	}

	return cpy
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:in[%d]:out[%d]:value[%d]", tx.Hash(), len(tx.Inputs), len(tx.Outputs), tx.Value())
}

// canonical returns the form of the transaction that is hashed. Strings are
// hex encoded so every byte counts, and a nil list and an empty list encode
// the same way.
func (tx Tx) canonical() Tx {
	inputs := make([]TxInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		in.ScriptSig = digest.HexString(in.ScriptSig)
		inputs[i] = in
	}

	outputs := make([]TxOutput, len(tx.Outputs))
	for i, out := range tx.Outputs {
		out.ScriptPubKey = digest.HexString(out.ScriptPubKey)
		out.Recipient = digest.HexString(out.Recipient)
		outputs[i] = out
	}

	tx.Inputs = inputs
	tx.Outputs = outputs

	return tx
}

// =============================================================================

func cloneTrans(trans []Tx) []Tx {
	if trans == nil {
		return nil
	}

	cpy := make([]Tx, len(trans))
	for i, tx := range trans {
		cpy[i] = tx.Clone()
	}

	return cpy
}
