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
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mcarilli/lambdaworks-cairo-prover/fiatshamir"
	"github.com/mcarilli/lambdaworks-cairo-prover/merkle"
)

// Decommitment carries, for one query, the pair of sibling evaluations the
// folding consumed at every layer, with their Merkle proofs.
type Decommitment struct {
	LayerEvaluations [][2]fr.Element
	LayerProofs      [][2]merkle.Proof
}

// QueryPhase derives a pseudorandom base index iota0 from the transcript and
// opens numberOfQueries positions, query s opening (iota0+s) mod domainSize.
// For every layer it opens the position and its folding sibling, half a
// domain apart. Returns the decommitments and iota0, which is also the index
// the DEEP polynomial's constituents are opened at.
func QueryPhase(numberOfQueries, domainSize int, layers []*Layer, transcript fiatshamir.Transcript) ([]Decommitment, int, error) {
	iota0 := int(fiatshamir.SampleIndex(transcript, uint64(domainSize)))

	queryList := make([]Decommitment, numberOfQueries)
	for s := range queryList {
		iota := (iota0 + s) % domainSize

		evaluations := make([][2]fr.Element, len(layers))
		proofs := make([][2]merkle.Proof, len(layers))
		for k, layer := range layers {
			pos := iota % layer.DomainSize
			sym := (pos + layer.DomainSize/2) % layer.DomainSize

			posProof, err := layer.Tree.GetProofByPos(pos)
			if err != nil {
				return nil, 0, err
			}
			symProof, err := layer.Tree.GetProofByPos(sym)
			if err != nil {
				return nil, 0, err
			}
			evaluations[k] = [2]fr.Element{layer.Evaluations[pos], layer.Evaluations[sym]}
			proofs[k] = [2]merkle.Proof{posProof, symProof}
		}
		queryList[s] = Decommitment{LayerEvaluations: evaluations, LayerProofs: proofs}
	}

	return queryList, iota0, nil
}
