// Package mempool maintains the set of pending transactions for a node.
package mempool

import (
	"sort"
	"sync"

	"github.com/jole141/chainsim/foundation/blockchain/database"
	"github.com/jole141/chainsim/foundation/blockchain/digest"
)

// entry records a transaction with the order it arrived in.
type entry struct {
	seq uint64
	tx  database.Tx
}

// Mempool represents a cache of transactions keyed by transaction hash.
// Transactions are picked in the order they were first added.
type Mempool struct {
	mu   sync.RWMutex
	pool map[digest.Digest]entry
	seq  uint64
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[digest.Digest]entry),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds a transaction to the mempool. A transaction already in the
// pool keeps its place in line.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	key := tx.Hash()
	if _, exists := mp.pool[key]; !exists {
		mp.seq++
		mp.pool[key] = entry{seq: mp.seq, tx: tx.Clone()}
	}

	return len(mp.pool)
}

// Delete removes the transactions from the mempool.
func (mp *Mempool) Delete(trans ...database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, tx := range trans {
		delete(mp.pool, tx.Hash())
	}
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[digest.Digest]entry)
}

// Copy returns a list of the current transactions in arrival order.
func (mp *Mempool) Copy() []database.Tx {
	return mp.PickBest(-1)
}

// PickBest returns up to howMany of the oldest transactions in the pool.
// A value of -1 returns them all. The transactions are not removed.
func (mp *Mempool) PickBest(howMany int) []database.Tx {
	mp.mu.RLock()
	entries := make([]entry, 0, len(mp.pool))
	for _, e := range mp.pool {
		entries = append(entries, e)
	}
	mp.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	if howMany == -1 || howMany > len(entries) {
		howMany = len(entries)
	}

	trans := make([]database.Tx, howMany)
	for i := range howMany {
		trans[i] = entries[i].tx.Clone()
	}

	return trans
}
