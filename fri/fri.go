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

// Package fri implements the FRI low-degree test's prover side: the commit
// phase iteratively folds a polynomial, Merkle-committing each layer's coset
// evaluations, and the query phase opens the sibling pairs the folding
// consumed at pseudorandom positions.
package fri

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mcarilli/lambdaworks-cairo-prover/fiatshamir"
	"github.com/mcarilli/lambdaworks-cairo-prover/merkle"
	"github.com/mcarilli/lambdaworks-cairo-prover/polynomial"
)

// Layer is one committed FRI layer: the polynomial's evaluations over the
// layer's coset domain and their Merkle commitment.
type Layer struct {
	Evaluations []fr.Element
	Tree        *merkle.Tree
	Root        fr.Element

	// CosetOffset and DomainSize describe the layer's evaluation domain
	// offset*<g>, g of order DomainSize.
	CosetOffset fr.Element
	DomainSize  int
}

func newLayer(p polynomial.Polynomial, cosetOffset *fr.Element, domainSize int) (*Layer, error) {
	evaluations, err := p.EvaluateOffsetFFT(1, domainSize, cosetOffset)
	if err != nil {
		return nil, err
	}
	tree := merkle.Build(evaluations)
	return &Layer{
		Evaluations: evaluations,
		Tree:        tree,
		Root:        tree.Root(),
		CosetOffset: *cosetOffset,
		DomainSize:  domainSize,
	}, nil
}

// FoldPolynomial combines the even and odd halves of p with the folding
// coefficient beta: if p(x) = e(x^2) + x*o(x^2), the result is e + beta*o,
// halving the represented degree.
func FoldPolynomial(p polynomial.Polynomial, beta *fr.Element) polynomial.Polynomial {
	even, odd := p.EvenOddDecomposition()
	return polynomial.Add(even, polynomial.MulScalar(odd, beta))
}

// CommitPhase folds p0 numberLayers times over the shrinking coset domains,
// committing every layer. Each layer's root is appended to the transcript
// before the next folding coefficient is sampled; the final fold's constant
// term is appended in the clear and returned as the last value.
//
// The caller chooses numberLayers so that an honest p0 folds down to a
// constant; a forged higher-degree polynomial simply leaves a non-constant
// residue whose first coefficient is sent, for the verifier to reject.
func CommitPhase(numberLayers int, p0 polynomial.Polynomial, cosetOffset *fr.Element, domainSize int, transcript fiatshamir.Transcript) (fr.Element, []*Layer, error) {
	layers := make([]*Layer, 0, numberLayers)

	currentPoly := p0
	offset := *cosetOffset
	size := domainSize

	for k := 0; k < numberLayers; k++ {
		if k > 0 {
			// receive challenge zeta_{k-1}
			zeta := transcript.Sample()
			currentPoly = FoldPolynomial(currentPoly, &zeta)
			offset.Square(&offset)
			size /= 2
		}
		layer, err := newLayer(currentPoly, &offset, size)
		if err != nil {
			return fr.Element{}, nil, err
		}
		layers = append(layers, layer)

		// send commitment [p_k]
		transcript.Append(layer.Root.Marshal())
	}

	// receive challenge zeta_{n-1}
	zeta := transcript.Sample()
	lastPoly := FoldPolynomial(currentPoly, &zeta)

	var lastValue fr.Element
	if len(lastPoly) > 0 {
		lastValue = lastPoly[0]
	}

	// send value p_n
	transcript.Append(lastValue.Marshal())

	return lastValue, layers, nil
}
