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
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/mcarilli/lambdaworks-cairo-prover/air"
	"github.com/mcarilli/lambdaworks-cairo-prover/internal/utils"
)

// maxTwoAdicity bounds the power-of-two domain orders the scalar field
// supports.
const maxTwoAdicity = 28

// Domain holds the trace and LDE evaluation domains derived from the AIR
// context. It is built once per proof, owned by the orchestrator and borrowed
// by every round; never mutated after construction.
type Domain struct {
	RootOrder               uint32
	LdeRootOrder            uint32
	BlowupFactor            int
	InterpolationDomainSize int
	CosetOffset             fr.Element
	TracePrimitiveRoot      fr.Element
	TraceRootsOfUnity       []fr.Element
	LdeRootsOfUnityCoset    []fr.Element
}

// NewDomain derives the domains from the AIR context. It fails with
// ErrWrongParameter when the trace length or the blown-up size is not a valid
// domain order for the field, or when the coset offset is zero.
func NewDomain(a air.AIR) (*Domain, error) {
	ctx := a.Context()
	n := ctx.TraceLength
	if !utils.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: trace length %d is not a power of two", ErrWrongParameter, n)
	}
	blowup := ctx.Options.BlowupFactor
	if !utils.IsPowerOfTwo(blowup) {
		return nil, fmt.Errorf("%w: blowup factor %d is not a power of two", ErrWrongParameter, blowup)
	}
	ldeSize := n * blowup
	if utils.Log2(ldeSize) > maxTwoAdicity {
		return nil, fmt.Errorf("%w: LDE domain of size %d exceeds the field's two-adicity", ErrWrongParameter, ldeSize)
	}
	offset := fr.NewElement(ctx.Options.CosetOffset)
	if offset.IsZero() {
		return nil, fmt.Errorf("%w: coset offset must be nonzero", ErrWrongParameter)
	}

	ldePrimitiveRoot := fft.NewDomain(uint64(ldeSize)).Generator
	var tracePrimitiveRoot fr.Element
	tracePrimitiveRoot.Exp(ldePrimitiveRoot, big.NewInt(int64(blowup)))

	traceRoots := make([]fr.Element, n)
	traceRoots[0].SetOne()
	for i := 1; i < n; i++ {
		traceRoots[i].Mul(&traceRoots[i-1], &tracePrimitiveRoot)
	}

	coset := make([]fr.Element, ldeSize)
	coset[0] = offset
	for i := 1; i < ldeSize; i++ {
		coset[i].Mul(&coset[i-1], &ldePrimitiveRoot)
	}

	return &Domain{
		RootOrder:               utils.Log2(n),
		LdeRootOrder:            utils.Log2(ldeSize),
		BlowupFactor:            blowup,
		InterpolationDomainSize: n,
		CosetOffset:             offset,
		TracePrimitiveRoot:      tracePrimitiveRoot,
		TraceRootsOfUnity:       traceRoots,
		LdeRootsOfUnityCoset:    coset,
	}, nil
}
