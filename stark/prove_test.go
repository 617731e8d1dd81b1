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

package stark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcarilli/lambdaworks-cairo-prover/merkle"
)

// checkProofStructure asserts the invariants every proof shares regardless of
// mode: commitment counts, query counts and verifying Merkle openings.
func checkProofStructure(t *testing.T, proof *Proof, numColumns, friLayers, queries int) {
	t.Helper()

	require.Len(t, proof.LdeTraceMerkleRoots, numColumns)
	require.Len(t, proof.FriLayersMerkleRoots, friLayers)
	require.Len(t, proof.QueryList, queries)

	for _, decommitment := range proof.QueryList {
		require.Len(t, decommitment.LayerProofs, friLayers)
		for k := range decommitment.LayerProofs {
			assert.True(t, merkle.VerifyProof(proof.FriLayersMerkleRoots[k], decommitment.LayerProofs[k][0]))
			assert.True(t, merkle.VerifyProof(proof.FriLayersMerkleRoots[k], decommitment.LayerProofs[k][1]))
		}
	}

	openings := proof.DeepPolyOpenings
	assert.True(t, merkle.VerifyProof(proof.CompositionPolyEvenRoot, openings.LdeCompositionPolyEvenProof))
	assert.True(t, merkle.VerifyProof(proof.CompositionPolyOddRoot, openings.LdeCompositionPolyOddProof))
	require.Len(t, openings.LdeTraceMerkleProofs, numColumns)
	require.Len(t, openings.LdeTraceEvaluations, numColumns)
	for j := range openings.LdeTraceMerkleProofs {
		assert.True(t, merkle.VerifyProof(proof.LdeTraceMerkleRoots[j], openings.LdeTraceMerkleProofs[j]))
	}
}

func TestProveHonestFibonacci(t *testing.T) {
	a := newFibonacciAIR(8, proofOptions(2, 2))
	proof, err := Prove(a, fibonacciColumn(8), Honest)
	require.NoError(t, err)

	checkProofStructure(t, proof, 1, 3, 2)
	assert.Equal(t, 3, proof.TraceOODFrameEvaluations.NumRows())
	assert.Equal(t, 1, proof.TraceOODFrameEvaluations.NumCols())
}

func TestProveHonestLargerBlowup(t *testing.T) {
	// the honest self-check of the DEEP quotients must hold at any blowup
	a := newFibonacciAIR(16, proofOptions(4, 3))
	proof, err := Prove(a, fibonacciColumn(16), Honest)
	require.NoError(t, err)

	checkProofStructure(t, proof, 1, 4, 3)
}

func TestProveIsDeterministic(t *testing.T) {
	a := newFibonacciAIR(8, proofOptions(2, 1))

	proof1, err := Prove(a, fibonacciColumn(8), Honest)
	require.NoError(t, err)
	proof2, err := Prove(a, fibonacciColumn(8), Honest)
	require.NoError(t, err)

	assert.True(t, proof1.LdeTraceMerkleRoots[0].Equal(&proof2.LdeTraceMerkleRoots[0]))
	assert.True(t, proof1.CompositionPolyEvenRoot.Equal(&proof2.CompositionPolyEvenRoot))
	assert.True(t, proof1.CompositionPolyOddRoot.Equal(&proof2.CompositionPolyOddRoot))
	assert.True(t, proof1.FriLastValue.Equal(&proof2.FriLastValue))
	for k := range proof1.FriLayersMerkleRoots {
		assert.True(t, proof1.FriLayersMerkleRoots[k].Equal(&proof2.FriLayersMerkleRoots[k]))
	}
}

func TestProveWithAuxiliaryTrace(t *testing.T) {
	a := newFibonacciRAPAIR(8, proofOptions(2, 2))
	proof, err := Prove(a, fibonacciColumn(8), Honest)
	require.NoError(t, err)

	// main column plus auxiliary column
	checkProofStructure(t, proof, 2, 3, 2)
	assert.Equal(t, 2, proof.TraceOODFrameEvaluations.NumCols())
}

func TestProveForgeOutOfDomain(t *testing.T) {
	// the trace violates the transition constraints, but the forged
	// out-of-domain values keep the proof structurally complete
	column := fibonacciColumn(8)
	column[5].SetRandom()

	a := newFibonacciAIR(8, proofOptions(2, 2))
	proof, err := Prove(a, column, ForgeOutOfDomain)
	require.NoError(t, err)

	checkProofStructure(t, proof, 1, 3, 2)
	// the odd part's claimed evaluation is forced to zero; the even part
	// carries the full forged H(z)
	assert.True(t, proof.CompositionPolyOddOODEvaluation.IsZero())
	assert.False(t, proof.CompositionPolyEvenOODEvaluation.IsZero())
}

func TestProveForgeDegreeBound(t *testing.T) {
	column := fibonacciColumn(8)
	column[5].SetRandom()

	a := newFibonacciAIR(8, proofOptions(4, 2))
	proof, err := Prove(a, column, ForgeDegreeBound)
	require.NoError(t, err)

	// structurally complete; the verifier's FRI degree test is what would
	// reject it, since the DEEP polynomial exceeds the legitimate bound
	checkProofStructure(t, proof, 1, 3, 2)
}

func TestProveHonestPanicsOnInconsistentTrace(t *testing.T) {
	// with blowup 4 the composition parts of a constraint-violating trace
	// exceed the honest degree range, so the DEEP self-check trips
	column := fibonacciColumn(8)
	column[5].SetRandom()

	a := newFibonacciAIR(8, proofOptions(4, 1))
	assert.Panics(t, func() {
		_, _ = Prove(a, column, Honest)
	})
}

func TestProveRejectsBadParameters(t *testing.T) {
	a := newFibonacciAIR(6, proofOptions(2, 1))
	_, err := Prove(a, fibonacciColumn(6), Honest)
	require.ErrorIs(t, err, ErrWrongParameter)
}

func TestProveWrapsEvaluationErrors(t *testing.T) {
	// the declared trace length is 8 but the built trace has 6 rows; the
	// resulting interpolation failure surfaces in the configuration-error
	// family rather than as a bare numeric error
	a := newFibonacciAIR(8, proofOptions(2, 1))
	_, err := Prove(a, fibonacciColumn(6), Honest)
	require.ErrorIs(t, err, ErrWrongParameter)
}

func TestProveRejectsBadRawTrace(t *testing.T) {
	a := newFibonacciAIR(8, proofOptions(2, 1))
	_, err := Prove(a, "not a trace", Honest)
	require.Error(t, err)
}
