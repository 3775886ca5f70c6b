// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides an implementation of a merkle tree for validation
// support for the blockchain.
//
// Every level of the tree is built by pairing adjacent hashes left to right
// and hashing each concatenated pair. When a level holds an odd number of
// hashes, the last one is paired with itself.
package merkle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jole141/chainsim/foundation/blockchain/digest"
)

// ErrEmptyInput is returned when a root is requested for no content. A block
// always holds at least its coinbase transaction.
var ErrEmptyInput = errors.New("cannot construct tree with no content")

// Proof orders tell the verifier which side the proof hash is concatenated on.
const (
	OrderLeft  = 0 // Proof hash comes first.
	OrderRight = 1 // Proof hash comes second.
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash() digest.Digest
	Equals(other T) bool
}

// =============================================================================

// Root reduces the ordered set of hashes to a single merkle root. The root of
// a single hash is that hash.
func Root(hashes []digest.Digest) (digest.Digest, error) {
	if len(hashes) == 0 {
		return digest.Zero, ErrEmptyInput
	}

	level := make([]digest.Digest, len(hashes))
	copy(level, hashes)

	for len(level) > 1 {
		next := make([]digest.Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left, right := level[i], level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, digest.HashPair(left, right))
		}
		level = next
	}

	return level[0], nil
}

// RootOf computes the merkle root for the specified values.
func RootOf[T Hashable[T]](values []T) (digest.Digest, error) {
	hashes := make([]digest.Digest, len(values))
	for i, value := range values {
		hashes[i] = value.Hash()
	}

	return Root(hashes)
}

// VerifyProof checks that the leaf hash combined with the proof produced by
// Tree.Proof leads to the specified root.
func VerifyProof(leaf digest.Digest, proof []digest.Digest, order []int, root digest.Digest) bool {
	if len(proof) != len(order) {
		return false
	}

	h := leaf
	for i := range proof {
		switch order[i] {
		case OrderLeft:
			h = digest.HashPair(proof[i], h)
		case OrderRight:
			h = digest.HashPair(h, proof[i])
		default:
			return false
		}
	}

	return h == root
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root       *Node[T]
	Leafs      []*Node[T]
	MerkleRoot digest.Digest
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable[T]](values []T) (*Tree[T], error) {
	var t Tree[T]
	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
func (t *Tree[T]) Generate(values []T) error {
	if len(values) == 0 {
		return ErrEmptyInput
	}

	leafs := make([]*Node[T], len(values))
	for i, value := range values {
		leafs[i] = &Node[T]{
			Hash:  value.Hash(),
			Value: value,
			leaf:  true,
		}
	}

	root := leafs[0]
	if len(leafs) > 1 {
		root = buildIntermediate(leafs)
	}

	t.Root = root
	t.Leafs = leafs
	t.MerkleRoot = root.Hash

	return nil
}

// Rebuild is a helper function that will rebuild the tree reusing only the
// data that it currently holds in the leaves.
func (t *Tree[T]) Rebuild() error {
	return t.Generate(t.Values())
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving a value is in the tree.
//
// Hash the value in question and know the merkle root. For every proof hash,
// an order of OrderLeft says the proof hash comes first and OrderRight says
// it comes second:
//
//	h = leaf
//	h = hash(proof[0] || h)   -- order[0] == OrderLeft
//	h = hash(h || proof[1])   -- order[1] == OrderRight
//
// The final h should match the merkle root.
func (t *Tree[T]) Proof(value T) ([]digest.Digest, []int, error) {
	for _, node := range t.Leafs {
		if !node.Value.Equals(value) {
			continue
		}

		var proof []digest.Digest
		var order []int

		for parent := node.Parent; parent != nil; parent = parent.Parent {
			if parent.Left == node {
				proof = append(proof, parent.Right.Hash)
				order = append(order, OrderRight)
			} else {
				proof = append(proof, parent.Left.Hash)
				order = append(order, OrderLeft)
			}
			node = parent
		}

		return proof, order, nil
	}

	return nil, nil, errors.New("unable to find data in tree")
}

// Verify validates the hashes at each level of the tree and returns an error
// if the resulting hash at the root of the tree doesn't match the root hash.
func (t *Tree[T]) Verify() error {
	if t.Root == nil {
		return ErrEmptyInput
	}

	if t.Root.verify() != t.MerkleRoot {
		return errors.New("root hash invalid")
	}

	return nil
}

// VerifyData indicates whether a given piece of data is in the tree and if the
// hashes are valid for that data.
func (t *Tree[T]) VerifyData(value T) error {
	for _, node := range t.Leafs {
		if !node.Value.Equals(value) {
			continue
		}

		for parent := node.Parent; parent != nil; parent = parent.Parent {
			if parent.calculateHash() != parent.Hash {
				return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
			}
		}

		return nil
	}

	return errors.New("unable to find data in tree")
}

// Values returns the values stored in the tree in leaf order.
func (t *Tree[T]) Values() []T {
	values := make([]T, len(t.Leafs))
	for i, leaf := range t.Leafs {
		values[i] = leaf.Value
	}

	return values
}

// RootHex converts the merkle root to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return t.MerkleRoot.String()
}

// String returns a string representation of the tree. Only leaf nodes are
// included in the output.
func (t *Tree[T]) String() string {
	var b strings.Builder
	for _, l := range t.Leafs {
		b.WriteString(l.String())
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
// A node paired with itself is both the Left and Right child of its parent.
type Node[T Hashable[T]] struct {
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   digest.Digest
	Value  T
	leaf   bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() digest.Digest {
	if n.leaf {
		return n.Value.Hash()
	}

	return digest.HashPair(n.Left.verify(), n.Right.verify())
}

// calculateHash calculates the hash of the node from its children.
func (n *Node[T]) calculateHash() digest.Digest {
	if n.leaf {
		return n.Value.Hash()
	}

	return digest.HashPair(n.Left.Hash, n.Right.Hash)
}

// String returns a string representation of the node.
func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %s %v", n.leaf, n.Hash, n.Value)
}

// =============================================================================

// buildIntermediate constructs the intermediate and root levels of the tree
// for a given list of two or more nodes. Returns the root node of the tree.
func buildIntermediate[T Hashable[T]](nl []*Node[T]) *Node[T] {
	var nodes []*Node[T]

	for i := 0; i < len(nl); i += 2 {
		left, right := i, i+1
		if right == len(nl) {
			right = i
		}

		n := Node[T]{
			Left:  nl[left],
			Right: nl[right],
			Hash:  digest.HashPair(nl[left].Hash, nl[right].Hash),
		}

		nodes = append(nodes, &n)
		nl[left].Parent = &n
		nl[right].Parent = &n
	}

	if len(nodes) == 1 {
		return nodes[0]
	}

	return buildIntermediate(nodes)
}
