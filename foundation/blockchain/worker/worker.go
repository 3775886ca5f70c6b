// Package worker implements the goroutine that drives a node: mining when
// signaled and processing blocks proposed by other nodes.
package worker

import (
	"sync"

	"github.com/jole141/chainsim/foundation/blockchain/database"
	"github.com/jole141/chainsim/foundation/blockchain/state"
)

// Worker manages the mining and peer workflows for a node.
type Worker struct {
	state       *state.State
	wg          sync.WaitGroup
	shut        chan struct{}
	shutOnce    sync.Once
	startMining chan bool
	inbox       <-chan database.BlockData
	evHandler   state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up the background processing for the node.
func Run(st *state.State, inbox <-chan database.BlockData, evHandler state.EventHandler) *Worker {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	w := Worker{
		state:       st,
		shut:        make(chan struct{}),
		startMining: make(chan bool, 1),
		inbox:       inbox,
		evHandler:   ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	w.wg.Add(1)

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.nodeOperations()
	}()

	<-hasStarted

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work. Calling it more than
// once is safe.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started: node[%d]", w.state.ID())
	defer w.evHandler("worker: shutdown: completed: node[%d]", w.state.ID())

	w.shutOnce.Do(func() {
		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
	})
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
		w.evHandler("worker: SignalStartMining: mining signaled: node[%d]", w.state.ID())
	default:
		w.evHandler("worker: SignalStartMining: already signaled: node[%d]", w.state.ID())
	}
}

// =============================================================================

// nodeOperations handles mining and proposed blocks. Only this G changes
// the node's chain so the two never run at the same time.
func (w *Worker) nodeOperations() {
	w.evHandler("worker: nodeOperations: G started: node[%d]", w.state.ID())
	defer w.evHandler("worker: nodeOperations: G completed: node[%d]", w.state.ID())

	inbox := w.inbox

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}

		case data, ok := <-inbox:
			if !ok {
				w.evHandler("worker: nodeOperations: inbox closed: node[%d]", w.state.ID())
				inbox = nil
				continue
			}
			if !w.isShutdown() {
				w.runPeerOperation(data)
			}

		case <-w.shut:
			w.evHandler("worker: nodeOperations: received shut signal: node[%d]", w.state.ID())
			return
		}
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
