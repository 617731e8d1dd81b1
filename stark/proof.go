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
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mcarilli/lambdaworks-cairo-prover/air"
	"github.com/mcarilli/lambdaworks-cairo-prover/fri"
	"github.com/mcarilli/lambdaworks-cairo-prover/merkle"
)

// DeepPolynomialOpenings are the openings of the DEEP polynomial's
// constituents at the first FRI query index: the even and odd composition
// parts and every committed trace column, all at the same LDE position.
type DeepPolynomialOpenings struct {
	LdeCompositionPolyEvenProof      merkle.Proof
	LdeCompositionPolyEvenEvaluation fr.Element
	LdeCompositionPolyOddProof       merkle.Proof
	LdeCompositionPolyOddEvaluation  fr.Element
	LdeTraceMerkleProofs             []merkle.Proof
	LdeTraceEvaluations              []fr.Element
}

// Proof is the full transcript artifact: everything the verifier needs,
// collected across the four proving rounds.
type Proof struct {
	// round 1
	LdeTraceMerkleRoots []fr.Element

	// round 2
	CompositionPolyEvenRoot fr.Element
	CompositionPolyOddRoot  fr.Element

	// round 3
	TraceOODFrameEvaluations         *air.Frame
	CompositionPolyEvenOODEvaluation fr.Element
	CompositionPolyOddOODEvaluation  fr.Element

	// round 4
	FriLayersMerkleRoots []fr.Element
	FriLastValue         fr.Element
	QueryList            []fri.Decommitment
	DeepPolyOpenings     DeepPolynomialOpenings
}
