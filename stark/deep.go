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
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mcarilli/lambdaworks-cairo-prover/air"
	"github.com/mcarilli/lambdaworks-cairo-prover/polynomial"
)

// computeDeepCompositionPoly aggregates the DEEP quotients into the single
// polynomial handed to FRI:
//
//	gamma*(H1 - H1(z^2))/(x - z^2) + gamma'*(H2 - H2(z^2))/(x - z^2)
//	  + sum gamma_ij * (t_i - t_i(z*g^off_j))/(x - z*g^off_j)
//
// The gamma_ij coefficient for trace polynomial i at offset index j is
// traceGammas[i*len(offsets)+j].
func computeDeepCompositionPoly(
	a air.AIR,
	domain *Domain,
	tracePolys []polynomial.Polynomial,
	r2 *round2Result,
	r3 *round3Result,
	z *fr.Element,
	compositionGammas [2]fr.Element,
	traceGammas []fr.Element,
	mode Mode,
) (polynomial.Polynomial, error) {
	var zSquared fr.Element
	zSquared.Square(z)

	h1Term, err := deepTerm(r2.compositionPolyEven, &r3.compositionPolyEvenOODEvaluation, &zSquared, domain, mode)
	if err != nil {
		return nil, err
	}
	h2Term, err := deepTerm(r2.compositionPolyOdd, &r3.compositionPolyOddOODEvaluation, &zSquared, domain, mode)
	if err != nil {
		return nil, err
	}
	deep := polynomial.Add(
		polynomial.MulScalar(h1Term, &compositionGammas[0]),
		polynomial.MulScalar(h2Term, &compositionGammas[1]),
	)

	offsets := a.Context().TransitionOffsets
	var shift, point fr.Element
	for i := range tracePolys {
		for j, offset := range offsets {
			shift.Exp(domain.TracePrimitiveRoot, big.NewInt(int64(offset)))
			point.Mul(z, &shift)

			oodEvaluation := r3.traceOODFrameEvaluations.Row(j)[i]
			term, err := deepTerm(tracePolys[i], &oodEvaluation, &point, domain, mode)
			if err != nil {
				return nil, err
			}
			gamma := traceGammas[i*len(offsets)+j]
			deep = polynomial.Add(deep, polynomial.MulScalar(term, &gamma))
		}
	}
	return deep, nil
}

// deepTerm builds one DEEP quotient (p - p(a))/(x - a), where the claimed
// evaluation p(a) may be forged.
func deepTerm(p polynomial.Polynomial, oodEvaluation, a *fr.Element, domain *Domain, mode Mode) (polynomial.Polynomial, error) {
	numerator := polynomial.SubScalar(p, oodEvaluation)
	return interpFromNumDenom(numerator, a, domain, mode)
}

// interpFromNumDenom turns the rational function numerator/(x - root) into a
// polynomial.
//
// Honest mode divides algebraically (root is then a true root of the
// numerator) and cross-checks the coefficients against the interpolated
// reconstruction; a mismatch means the two construction paths disagree and is
// fatal. Forging modes skip the division entirely: they evaluate the rational
// function on the LDE coset and interpolate the first deepTargetDegree points,
// producing a polynomial that agrees with the rational function there whether
// or not the division is exact.
func interpFromNumDenom(numerator polynomial.Polynomial, root *fr.Element, domain *Domain, mode Mode) (polynomial.Polynomial, error) {
	if mode.forges() {
		return interpolateQuotient(numerator, root, domain, mode.deepTargetDegree(domain))
	}

	quotient := polynomial.DivideByLinearFactor(numerator, root)
	interpolated, err := interpolateQuotient(numerator, root, domain, mode.deepTargetDegree(domain))
	if err != nil {
		return nil, err
	}
	limit := min(len(quotient), len(interpolated))
	for i := 0; i < limit; i++ {
		if !quotient[i].Equal(&interpolated[i]) {
			panic("stark: deep quotient mismatch between algebraic division and interpolation")
		}
	}
	return quotient, nil
}

// interpolateQuotient evaluates numerator/(x - root) pointwise on the LDE
// coset and interpolates the first targetDegree points.
func interpolateQuotient(numerator polynomial.Polynomial, root *fr.Element, domain *Domain, targetDegree int) (polynomial.Polynomial, error) {
	numeratorEvals, err := numerator.EvaluateOffsetFFT(domain.BlowupFactor, domain.InterpolationDomainSize, &domain.CosetOffset)
	if err != nil {
		return nil, err
	}
	denominatorEvals := make([]fr.Element, targetDegree)
	for i := range denominatorEvals {
		denominatorEvals[i].Sub(&domain.LdeRootsOfUnityCoset[i], root)
	}
	denominatorInv := fr.BatchInvert(denominatorEvals)

	evals := make([]fr.Element, targetDegree)
	for i := range evals {
		evals[i].Mul(&numeratorEvals[i], &denominatorInv[i])
	}
	return polynomial.Lagrange(domain.LdeRootsOfUnityCoset[:targetDegree], evals)
}
