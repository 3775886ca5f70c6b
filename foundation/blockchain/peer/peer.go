// Package peer provides the fabric nodes use to share blocks. Every node
// owns one buffered inbox and any node can deliver into any other inbox.
package peer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jole141/chainsim/foundation/blockchain/database"
)

// Set of errors returned when a block can't be delivered.
var (
	ErrChannelClosed = errors.New("fabric is closed")
	ErrInboxFull     = errors.New("peer inbox is full")
	ErrUnknownNode   = errors.New("unknown node")
)

// Fabric represents the set of inboxes, one per node. The set of nodes is
// fixed when the fabric is constructed.
type Fabric struct {
	mu      sync.RWMutex
	closed  bool
	inboxes []chan database.BlockData
}

// New constructs a fabric for the specified number of nodes. Node ids run
// from 0 to nodes-1.
func New(nodes int, inboxSize int) *Fabric {
	f := Fabric{
		inboxes: make([]chan database.BlockData, nodes),
	}

	for i := range f.inboxes {
		f.inboxes[i] = make(chan database.BlockData, inboxSize)
	}

	return &f
}

// Nodes returns the number of nodes connected to the fabric.
func (f *Fabric) Nodes() int {
	return len(f.inboxes)
}

// Inbox returns the receive side of the specified node's inbox. The channel
// is closed when the fabric is closed.
func (f *Fabric) Inbox(id int) (<-chan database.BlockData, error) {
	if id < 0 || id >= len(f.inboxes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}

	return f.inboxes[id], nil
}

// Send delivers the block to the specified node. The send never blocks, a
// full inbox drops the block.
func (f *Fabric) Send(to int, data database.BlockData) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return ErrChannelClosed
	}

	if to < 0 || to >= len(f.inboxes) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, to)
	}

	select {
	case f.inboxes[to] <- data:
		return nil
	default:
		return fmt.Errorf("node %d: %w", to, ErrInboxFull)
	}
}

// Broadcast delivers the block to every node except the sender. Each node
// gets its own copy. Delivery failures are collected and joined.
func (f *Fabric) Broadcast(from int, data database.BlockData) error {
	var errs []error
	for to := range f.inboxes {
		if to == from {
			continue
		}

		if err := f.Send(to, data.Clone()); err != nil {
			if errors.Is(err, ErrChannelClosed) {
				return err
			}
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close closes every inbox. Sends after a close return ErrChannelClosed.
// Closing more than once is safe.
func (f *Fabric) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.closed = true
	for _, inbox := range f.inboxes {
		close(inbox)
	}
}
