package worker

import (
	"github.com/jole141/chainsim/foundation/blockchain/database"
)

// runPeerOperation processes a block proposed by another node. A rejected
// block is logged and dropped.
func (w *Worker) runPeerOperation(data database.BlockData) {
	w.evHandler("worker: runPeerOperation: started: block[%s]", data.Hash)
	defer w.evHandler("worker: runPeerOperation: completed")

	if err := w.state.ProcessProposedBlock(data); err != nil {
		w.evHandler("worker: runPeerOperation: WARNING: block rejected: %s", err)
	}
}
