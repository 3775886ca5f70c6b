package worker

import (
	"time"
)

// runMiningOperation mines the next block for the node. The state takes
// care of proposing the block to the other nodes.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	t := time.Now()
	block, err := w.state.MineNewBlock()
	duration := time.Since(t)

	w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

	if err != nil {
		w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runMiningOperation: MINING: block[%s]", block.Hash())
}
