// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.

package merkle_test

import (
	"testing"

	"github.com/ardanlabs/utxochain/foundation/blockchain/chainhash"
	"github.com/ardanlabs/utxochain/foundation/blockchain/merkle"
)

// Data uses the chain hash for the merkle tree.
type Data struct {
	x string
}

// Hash hashes the value.
func (d Data) Hash() chainhash.Hash {
	return chainhash.SumBytes([]byte(d.x))
}

// Equals tests for equality of two piece of data.
func (d Data) Equals(other Data) bool {
	return d.x == other.x
}

// =============================================================================

func Test_EmptyRoot(t *testing.T) {
	if root := merkle.Root[Data](nil); !root.IsZero() {
		t.Errorf("error: expected zero hash for empty list, got %s", root)
	}

	if _, err := merkle.NewTree[Data](nil); err == nil {
		t.Errorf("error: expected error constructing an empty tree")
	}
}

func Test_SingleLeafRoot(t *testing.T) {
	d := Data{x: "Hello"}

	if root := merkle.Root([]Data{d}); root != d.Hash() {
		t.Errorf("error: expected root equal to leaf hash %s got %s", d.Hash(), root)
	}

	tree, err := merkle.NewTree([]Data{d})
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	if tree.MerkleRoot != d.Hash() {
		t.Errorf("error: expected tree root equal to leaf hash %s got %s", d.Hash(), tree.MerkleRoot)
	}
}

func Test_MerkleRoot(t *testing.T) {
	for i := 0; i < len(table); i++ {
		exp := expectedRoot(table[i].data)

		if root := merkle.Root(table[i].data); root != exp {
			t.Errorf("[case:%d] error: expected root %s got %s", table[i].testCaseId, exp, root)
		}

		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if tree.MerkleRoot != exp {
			t.Errorf("[case:%d] error: expected tree root %s got %s", table[i].testCaseId, exp, tree.MerkleRoot)
		}

		if again := merkle.Root(table[i].data); again != exp {
			t.Errorf("[case:%d] error: expected reproducible root", table[i].testCaseId)
		}
	}
}

func Test_OddDuplication(t *testing.T) {
	a, b, c := Data{x: "a"}, Data{x: "b"}, Data{x: "c"}

	ab := pair(a.Hash(), b.Hash())
	cc := pair(c.Hash(), c.Hash())
	exp := pair(ab, cc)

	if root := merkle.Root([]Data{a, b, c}); root != exp {
		t.Errorf("error: expected the last hash to be duplicated, exp %s got %s", exp, root)
	}

	if root := merkle.Root([]Data{b, a, c}); root == exp {
		t.Errorf("error: expected order to change the root")
	}
}

func Test_TreeValues(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if tree.MerkleRoot != expectedRoot(table[i].data) {
			t.Errorf("[case:%d] error: expected the tree root to match the root", table[i].testCaseId)
		}
		if len(tree.Values()) != len(table[i].data) {
			t.Errorf("[case:%d] error: expected %d values got %d", table[i].testCaseId, len(table[i].data), len(tree.Values()))
		}
	}
}

func Test_VerifyData(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		for _, d := range table[i].data {
			if err := tree.VerifyData(d); err != nil {
				t.Errorf("[case:%d] error: expected valid content: %v", table[i].testCaseId, err)
			}
		}
		if err := tree.VerifyData(table[i].notInContents); err == nil {
			t.Errorf("[case:%d] error: expected invalid content", table[i].testCaseId)
		}
	}
}

func Test_MerkleProof(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		for _, d := range table[i].data {
			proof, order, err := tree.Proof(d)
			if err != nil {
				t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
			}
			if !merkle.VerifyProof(d.Hash(), proof, order, tree.MerkleRoot) {
				t.Errorf("[case:%d] error: expected proof for %q to verify", table[i].testCaseId, d.x)
			}
			if merkle.VerifyProof(table[i].notInContents.Hash(), proof, order, tree.MerkleRoot) {
				t.Errorf("[case:%d] error: expected proof to fail for other data", table[i].testCaseId)
			}
		}
	}
}

func Test_String(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if tree.String() == "" {
			t.Errorf("[case:%d] error: expected not empty string", table[i].testCaseId)
		}
	}
}

// =============================================================================

func pair(left, right chainhash.Hash) chainhash.Hash {
	l := left.Bytes()
	r := right.Bytes()
	return chainhash.SumBytes(append(l[:], r[:]...))
}

// expectedRoot recomputes the root level by level, independent of the
// package implementation.
func expectedRoot(data []Data) chainhash.Hash {
	var level []chainhash.Hash
	for _, d := range data {
		level = append(level, d.Hash())
	}

	for len(level) > 1 {
		var next []chainhash.Hash
		for i := 0; i < len(level); i += 2 {
			j := i + 1
			if j == len(level) {
				j = i
			}
			next = append(next, pair(level[i], level[j]))
		}
		level = next
	}

	return level[0]
}

// =============================================================================

var table = []struct {
	testCaseId    int
	data          []Data
	notInContents Data
}{
	{
		testCaseId:    1,
		data:          []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}, {x: "Hola"}},
		notInContents: Data{x: "NotInTestTable"},
	},
	{
		testCaseId:    2,
		data:          []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}},
		notInContents: Data{x: "NotInTestTable"},
	},
	{
		testCaseId:    3,
		data:          []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}, {x: "Greetings"}, {x: "Hola"}},
		notInContents: Data{x: "NotInTestTable"},
	},
	{
		testCaseId:    4,
		data:          []Data{{x: "123"}, {x: "234"}, {x: "345"}, {x: "456"}, {x: "1123"}, {x: "2234"}, {x: "3345"}, {x: "4456"}},
		notInContents: Data{x: "NotInTestTable"},
	},
	{
		testCaseId:    5,
		data:          []Data{{x: "123"}, {x: "234"}, {x: "345"}, {x: "456"}, {x: "1123"}, {x: "2234"}, {x: "3345"}, {x: "4456"}, {x: "5567"}},
		notInContents: Data{x: "NotInTestTable"},
	},
	{
		testCaseId:    6,
		data:          []Data{{x: "Alone"}},
		notInContents: Data{x: "NotInTestTable"},
	},
}
