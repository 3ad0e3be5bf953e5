// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides an implementation of a merkel tree for validation
// support for the blockchain.
//
// The root policy is part of consensus. Leaves are the value hashes in order.
// An empty set has the zero hash as root and a single leaf is its own root.
// Otherwise adjacent hashes are paired left to right, the last hash of an odd
// level is duplicated, and each parent is the hash of the concatenated
// little-endian exports of its children.
package merkle

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash() chainhash.Hash
	Equals(other T) bool
}

// Root calculates the merkle root for the values without keeping the tree.
func Root[T Hashable[T]](values []T) chainhash.Hash {
	if len(values) == 0 {
		return chainhash.Zero()
	}

	level := make([]chainhash.Hash, len(values))
	for i, value := range values {
		level[i] = value.Hash()
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}

		next := make([]chainhash.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		level = next
	}

	return level[0]
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root       *Node[T]
	Leafs      []*Node[T]
	MerkleRoot chainhash.Hash
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
		return errors.New("cannot construct tree with no content")
	}

	var leafs []*Node[T]
	for _, value := range values {
		leafs = append(leafs, &Node[T]{
			Hash:  value.Hash(),
			Value: value,
			leaf:  true,
			Tree:  t,
		})
	}

	// A single leaf is its own root.
	if len(leafs) == 1 {
		t.Root = leafs[0]
		t.Leafs = leafs
		t.MerkleRoot = leafs[0].Hash

		return nil
	}

	if len(leafs)%2 == 1 {
		duplicate := &Node[T]{
			Hash:  leafs[len(leafs)-1].Hash,
			Value: leafs[len(leafs)-1].Value,
			leaf:  true,
			dup:   true,
			Tree:  t,
		}
		leafs = append(leafs, duplicate)
	}

	t.Root = buildIntermediate(leafs, t)
	t.Leafs = leafs
	t.MerkleRoot = t.Root.Hash

	return nil
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving a value is in the tree. An order of 0 means the proof
// hash is concatenated first, 1 means it is concatenated second. Apply the
// proof with VerifyProof.
func (t *Tree[T]) Proof(data T) ([]chainhash.Hash, []int64, error) {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		var merkleProof []chainhash.Hash
		var order []int64
		nodeParent := node.Parent

		for nodeParent != nil {
			if nodeParent.Left == node {
				merkleProof = append(merkleProof, nodeParent.Right.Hash)
				order = append(order, 1) // right leaf, concat second.
			} else {
				merkleProof = append(merkleProof, nodeParent.Left.Hash)
				order = append(order, 0) // left leaf, concat first.
			}
			node = nodeParent
			nodeParent = nodeParent.Parent
		}

		return merkleProof, order, nil
	}

	return nil, nil, errors.New("unable to find data in tree")
}

// VerifyData indicates whether a given piece of data is in the tree and if the
// hashes are valid for that data.
func (t *Tree[T]) VerifyData(data T) error {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		if node.Hash != data.Hash() {
			return errors.New("leaf hash does not match data")
		}

		currentParent := node.Parent
		for currentParent != nil {
			if hashPair(currentParent.Left.CalculateHash(), currentParent.Right.CalculateHash()) != currentParent.Hash {
				return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
			}

			currentParent = currentParent.Parent
		}

		return nil
	}

	return errors.New("unable to find data in tree")
}

// Values returns the values stored in the tree without the duplicate leaf.
func (t *Tree[T]) Values() []T {
	var values []T
	for _, node := range t.Leafs {
		if node.dup {
			continue
		}
		values = append(values, node.Value)
	}

	return values
}

// String returns a string representation of the tree. Only leaf nodes are
// included in the output.
func (t *Tree[T]) String() string {
	s := ""

	for _, l := range t.Leafs {
		s += fmt.Sprint(l)
		s += "\n"
	}

	return s
}

// =============================================================================

// VerifyProof applies a proof produced by Tree.Proof to the data hash and
// reports whether the result is the expected root.
func VerifyProof(dataHash chainhash.Hash, proof []chainhash.Hash, order []int64, root chainhash.Hash) bool {
	if len(proof) != len(order) {
		return false
	}

	h := dataHash
	for i, p := range proof {
		switch order[i] {
		case 0:
			h = hashPair(p, h)
		case 1:
			h = hashPair(h, p)
		default:
			return false
		}
	}

	return h == root
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   chainhash.Hash
	Value  T
	leaf   bool
	dup    bool
}

// CalculateHash is a helper function that calculates the hash of the node.
func (n *Node[T]) CalculateHash() chainhash.Hash {
	if n.leaf {
		return n.Value.Hash()
	}

	return hashPair(n.Left.Hash, n.Right.Hash)
}

// String returns a string representation of the node.
func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %t %v %v", n.leaf, n.dup, n.Hash, n.Value)
}

// =============================================================================

// buildIntermediate is a helper function that for a given list of leaf nodes,
// constructs the intermediate and root levels of the tree. Returns the resulting
// root node of the tree. When a level has an odd count the last node is
// paired with itself.
func buildIntermediate[T Hashable[T]](nl []*Node[T], t *Tree[T]) *Node[T] {
	var nodes []*Node[T]

	for i := 0; i < len(nl); i += 2 {
		left, right := i, i+1
		if i+1 == len(nl) {
			right = i
		}

		n := Node[T]{
			Left:  nl[left],
			Right: nl[right],
			Hash:  hashPair(nl[left].Hash, nl[right].Hash),
			Tree:  t,
		}

		nodes = append(nodes, &n)
		nl[left].Parent = &n
		nl[right].Parent = &n

		if len(nl) == 2 {
			return &n
		}
	}

	return buildIntermediate(nodes, t)
}

// hashPair hashes the concatenation of the two hashes.
func hashPair(left, right chainhash.Hash) chainhash.Hash {
	l := left.Bytes()
	r := right.Bytes()

	buf := make([]byte, 0, 2*chainhash.Size)
	buf = append(buf, l[:]...)
	buf = append(buf, r[:]...)

	return chainhash.SumBytes(buf)
}
