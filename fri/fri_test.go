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

package fri

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcarilli/lambdaworks-cairo-prover/fiatshamir"
	"github.com/mcarilli/lambdaworks-cairo-prover/merkle"
	"github.com/mcarilli/lambdaworks-cairo-prover/polynomial"
)

func randomPolynomial(n int) polynomial.Polynomial {
	p := make(polynomial.Polynomial, n)
	for i := range p {
		p[i].SetRandom()
	}
	return p
}

func TestFoldPolynomial(t *testing.T) {
	p := randomPolynomial(8)
	var beta fr.Element
	beta.SetRandom()

	folded := FoldPolynomial(p, &beta)
	assert.Equal(t, 4, len(folded))

	// folded(x^2) == even(x^2) + beta*odd(x^2)
	var x, xSquared fr.Element
	x.SetRandom()
	xSquared.Square(&x)

	even, odd := p.EvenOddDecomposition()
	want := even.Evaluate(&xSquared)
	oddAt := odd.Evaluate(&xSquared)
	oddAt.Mul(&oddAt, &beta)
	want.Add(&want, &oddAt)

	got := folded.Evaluate(&xSquared)
	assert.True(t, got.Equal(&want))
}

func TestFoldingHalvesDegreeToConstant(t *testing.T) {
	// degree < 8 folds to a constant in 3 steps
	p := randomPolynomial(8)
	var beta fr.Element
	for i := 0; i < 3; i++ {
		beta.SetRandom()
		p = FoldPolynomial(p, &beta)
	}
	assert.LessOrEqual(t, p.Degree(), 0)
}

func TestCommitPhaseLayerStructure(t *testing.T) {
	const (
		domainSize   = 16
		numberLayers = 3
	)
	p := randomPolynomial(8)
	offset := fr.NewElement(3)
	transcript := fiatshamir.NewKeccakTranscript()

	_, layers, err := CommitPhase(numberLayers, p, &offset, domainSize, transcript)
	require.NoError(t, err)
	require.Len(t, layers, numberLayers)

	size := domainSize
	expectedOffset := offset
	for k, layer := range layers {
		assert.Equal(t, size, layer.DomainSize, "layer %d domain size", k)
		assert.Len(t, layer.Evaluations, size, "layer %d evaluations", k)
		assert.True(t, layer.CosetOffset.Equal(&expectedOffset), "layer %d offset", k)
		root := layer.Tree.Root()
		assert.True(t, layer.Root.Equal(&root))
		size /= 2
		expectedOffset.Square(&expectedOffset)
	}
}

func TestCommitPhaseFoldsToConstantAfterLdeRootOrderLayers(t *testing.T) {
	// any polynomial of degree < |LDE| collapses to a constant when folded
	// through log2(|LDE|) layers, not just the orchestrator's root_order
	const (
		domainSize   = 16
		numberLayers = 4 // log2(domainSize)
	)
	p := randomPolynomial(domainSize)
	offset := fr.NewElement(3)
	transcript := fiatshamir.NewKeccakTranscript()

	lastValue, layers, err := CommitPhase(numberLayers, p, &offset, domainSize, transcript)
	require.NoError(t, err)
	require.Len(t, layers, numberLayers)
	assert.Equal(t, 2, layers[numberLayers-1].DomainSize)

	// replay the transcript to recover the folding challenges and fold by hand
	replay := fiatshamir.NewKeccakTranscript()
	folded := p
	for k := 0; k < numberLayers; k++ {
		if k > 0 {
			zeta := replay.Sample()
			folded = FoldPolynomial(folded, &zeta)
		}
		replay.Append(layers[k].Root.Marshal())
	}
	zeta := replay.Sample()
	folded = FoldPolynomial(folded, &zeta)

	require.LessOrEqual(t, folded.Degree(), 0)
	var want fr.Element
	if len(folded) > 0 {
		want = folded[0]
	}
	assert.True(t, lastValue.Equal(&want))
}

func TestCommitPhaseConstantPolynomial(t *testing.T) {
	// a constant survives every fold unchanged
	c := fr.NewElement(1234)
	p := polynomial.Constant(c)
	offset := fr.NewElement(3)
	transcript := fiatshamir.NewKeccakTranscript()

	lastValue, _, err := CommitPhase(3, p, &offset, 16, transcript)
	require.NoError(t, err)
	assert.True(t, lastValue.Equal(&c))
}

func TestCommitPhaseIsDeterministic(t *testing.T) {
	p := randomPolynomial(8)
	offset := fr.NewElement(3)

	last1, layers1, err := CommitPhase(3, p, &offset, 16, fiatshamir.NewKeccakTranscript())
	require.NoError(t, err)
	last2, layers2, err := CommitPhase(3, p, &offset, 16, fiatshamir.NewKeccakTranscript())
	require.NoError(t, err)

	assert.True(t, last1.Equal(&last2))
	for k := range layers1 {
		assert.True(t, layers1[k].Root.Equal(&layers2[k].Root))
		assert.Empty(t, cmp.Diff(layers1[k].Evaluations, layers2[k].Evaluations))
	}
}

func TestQueryPhaseOpensSiblingPairs(t *testing.T) {
	const (
		domainSize      = 16
		numberLayers    = 3
		numberOfQueries = 4
	)
	p := randomPolynomial(8)
	offset := fr.NewElement(3)
	transcript := fiatshamir.NewKeccakTranscript()

	_, layers, err := CommitPhase(numberLayers, p, &offset, domainSize, transcript)
	require.NoError(t, err)

	queryList, iota0, err := QueryPhase(numberOfQueries, domainSize, layers, transcript)
	require.NoError(t, err)
	require.Len(t, queryList, numberOfQueries)
	assert.GreaterOrEqual(t, iota0, 0)
	assert.Less(t, iota0, domainSize)

	for s, decommitment := range queryList {
		iota := (iota0 + s) % domainSize
		require.Len(t, decommitment.LayerEvaluations, numberLayers)
		require.Len(t, decommitment.LayerProofs, numberLayers)

		for k, layer := range layers {
			pos := iota % layer.DomainSize
			sym := (pos + layer.DomainSize/2) % layer.DomainSize

			assert.True(t, decommitment.LayerEvaluations[k][0].Equal(&layer.Evaluations[pos]))
			assert.True(t, decommitment.LayerEvaluations[k][1].Equal(&layer.Evaluations[sym]))
			assert.True(t, merkle.VerifyProof(layer.Root, decommitment.LayerProofs[k][0]))
			assert.True(t, merkle.VerifyProof(layer.Root, decommitment.LayerProofs[k][1]))
		}
	}
}
