// Copyright 2023 mcarilli
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package merkle is the prover's commitment layer: it builds Merkle trees
// over evaluation vectors and produces opening proofs at arbitrary positions.
//
// Hashing is MiMC over the scalar field, so roots are themselves field
// elements and can be appended to the Fiat-Shamir transcript directly.
package merkle

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	_ "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/hash"
)

// ErrProofIndex is returned when an opening is requested past the last leaf.
var ErrProofIndex = errors.New("merkle: proof index out of range")

// Proof is an opening proof for one leaf. Path starts at the leaf hash and
// ends one level below the root, as produced by the underlying accumulator.
type Proof struct {
	Path      [][]byte
	Index     uint64
	NumLeaves uint64
}

// Tree commits to a vector of field elements. The serialized leaves are kept
// so opening proofs can be generated at any position after the fact.
type Tree struct {
	leaves    []byte
	numLeaves uint64
	root      fr.Element
}

// Build commits to the given evaluation vector.
func Build(values []fr.Element) *Tree {
	var buf bytes.Buffer
	buf.Grow(len(values) * fr.Bytes)
	for i := range values {
		buf.Write(values[i].Marshal())
	}
	t := &Tree{
		leaves:    buf.Bytes(),
		numLeaves: uint64(len(values)),
	}

	h := hash.MIMC_BN254.New()
	mt := merkletree.New(h)
	for i := 0; i < len(values); i++ {
		mt.Push(t.leaves[i*fr.Bytes : (i+1)*fr.Bytes])
	}
	t.root.SetBytes(mt.Root())
	return t
}

// BatchBuild commits to each vector independently and returns the trees with
// their roots in input order.
func BatchBuild(vectors [][]fr.Element) ([]*Tree, []fr.Element) {
	trees := make([]*Tree, len(vectors))
	roots := make([]fr.Element, len(vectors))
	for i, v := range vectors {
		trees[i] = Build(v)
		roots[i] = trees[i].Root()
	}
	return trees, roots
}

// Root returns the tree root as a field element.
func (t *Tree) Root() fr.Element {
	return t.root
}

// NumLeaves returns the number of committed values.
func (t *Tree) NumLeaves() uint64 {
	return t.numLeaves
}

// GetProofByPos returns the opening proof for the leaf at pos.
func (t *Tree) GetProofByPos(pos int) (Proof, error) {
	if pos < 0 || uint64(pos) >= t.numLeaves {
		return Proof{}, fmt.Errorf("%w: %d of %d", ErrProofIndex, pos, t.numLeaves)
	}
	h := hash.MIMC_BN254.New()
	_, path, numLeaves, err := merkletree.BuildReaderProof(bytes.NewReader(t.leaves), h, fr.Bytes, uint64(pos))
	if err != nil {
		return Proof{}, err
	}
	return Proof{Path: path, Index: uint64(pos), NumLeaves: numLeaves}, nil
}

// VerifyProof checks an opening proof against a root.
func VerifyProof(root fr.Element, proof Proof) bool {
	h := hash.MIMC_BN254.New()
	return merkletree.VerifyProof(h, root.Marshal(), proof.Path, proof.Index, proof.NumLeaves)
}
