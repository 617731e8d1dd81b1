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
	"github.com/mcarilli/lambdaworks-cairo-prover/internal/utils"
	"github.com/mcarilli/lambdaworks-cairo-prover/polynomial"
)

// ConstraintEvaluator evaluates the quotiented, degree-adjusted constraint
// terms of an AIR over the LDE coset. The resulting evaluation table sums,
// pointwise, to the composition polynomial's evaluations.
type ConstraintEvaluator struct {
	air        air.AIR
	boundary   *air.BoundaryConstraints
	tracePolys []polynomial.Polynomial
}

// NewConstraintEvaluator captures the trace polynomials and materializes the
// boundary constraints, which may depend on the RAP challenges.
func NewConstraintEvaluator(a air.AIR, tracePolys []polynomial.Polynomial, rapChallenges []fr.Element) *ConstraintEvaluator {
	return &ConstraintEvaluator{
		air:        a,
		boundary:   a.BoundaryConstraints(rapChallenges),
		tracePolys: tracePolys,
	}
}

// EvaluationTable holds, per LDE point, the evaluations of every adjusted
// constraint term: one column per transition constraint followed by one column
// accumulating all boundary terms.
type EvaluationTable struct {
	evaluations [][]fr.Element
}

// CompositionPoly sums every row and interpolates the sums back from the LDE
// coset, yielding the composition polynomial in coefficient form.
func (t *EvaluationTable) CompositionPoly(cosetOffset *fr.Element) (polynomial.Polynomial, error) {
	sums := make([]fr.Element, len(t.evaluations))
	for i, row := range t.evaluations {
		var acc fr.Element
		for k := range row {
			acc.Add(&acc, &row[k])
		}
		sums[i] = acc
	}
	return polynomial.InterpolateOffsetFFT(sums, cosetOffset)
}

// adjustmentPower returns x^e for the degree-adjustment exponent e, clamped at
// zero for constraints that already saturate the bound.
func adjustmentPower(x *fr.Element, exponent int) fr.Element {
	var res fr.Element
	if exponent <= 0 {
		res.SetOne()
		return res
	}
	res.Exp(*x, big.NewInt(int64(exponent)))
	return res
}

// Evaluate computes the full constraint evaluation table over the LDE coset.
//
// Every term is adjusted to degree 2n-1, n the trace length: a quotient of
// degree d is weighted by (alpha*x^(2n-1-d) + beta) so all terms aggregate at
// the composition degree bound 2n. Zerofiers are evaluated once per point set
// and batch-inverted; the per-point loop then fans out across CPUs.
func (e *ConstraintEvaluator) Evaluate(
	ldeTrace *air.TraceTable,
	domain *Domain,
	transitionCoefficients, boundaryCoefficients [][2]fr.Element,
	rapChallenges []fr.Element,
) (*EvaluationTable, error) {
	ctx := e.air.Context()
	n := ctx.TraceLength
	bound := 2 * n
	numPoints := len(domain.LdeRootsOfUnityCoset)
	numTransition := ctx.NumTransitionConstraints

	// Boundary terms, one per trace column: (t_j - u_j) / z_j with u_j the
	// interpolant of the pinned values and z_j the vanishing polynomial of
	// the pinned steps.
	numCols := len(e.tracePolys)
	boundaryNumEvals := make([][]fr.Element, numCols)
	boundaryZeroInv := make([][]fr.Element, numCols)
	boundaryAdjustment := make([]int, numCols)
	var one fr.Element
	one.SetOne()
	for j := 0; j < numCols; j++ {
		steps := e.boundary.StepsForColumn(j)
		values := e.boundary.ValuesForColumn(j)

		points := make([]fr.Element, len(steps))
		for s, step := range steps {
			points[s].Exp(domain.TracePrimitiveRoot, big.NewInt(int64(step)))
		}
		interpolant, err := polynomial.Lagrange(points, values)
		if err != nil {
			return nil, err
		}
		numerator := polynomial.Sub(e.tracePolys[j], interpolant)
		zerofier := polynomial.Constant(one)
		for s := range points {
			zerofier = polynomial.Mul(zerofier, polynomial.LinearFactor(&points[s]))
		}

		numEvals, err := numerator.EvaluateOffsetFFT(domain.BlowupFactor, domain.InterpolationDomainSize, &domain.CosetOffset)
		if err != nil {
			return nil, err
		}
		zeroEvals, err := zerofier.EvaluateOffsetFFT(domain.BlowupFactor, domain.InterpolationDomainSize, &domain.CosetOffset)
		if err != nil {
			return nil, err
		}
		boundaryNumEvals[j] = numEvals
		boundaryZeroInv[j] = fr.BatchInvert(zeroEvals)
		boundaryAdjustment[j] = (bound - 1) - ((n - 1) - len(steps))
	}

	// Transition zerofiers: (x^n - 1) with the exempted tail steps divided
	// out, then inverted over the coset.
	transitionZeroInv := make([][]fr.Element, numTransition)
	transitionAdjustment := make([]int, numTransition)
	for k := 0; k < numTransition; k++ {
		zerofier := make(polynomial.Polynomial, n+1)
		zerofier[n].SetOne()
		zerofier[0].Neg(&one)
		exemptions := ctx.TransitionExemptions[k]
		var root fr.Element
		for i := 0; i < exemptions; i++ {
			root.Exp(domain.TracePrimitiveRoot, big.NewInt(int64(n-1-i)))
			zerofier = polynomial.DivideByLinearFactor(zerofier, &root)
		}
		zeroEvals, err := zerofier.EvaluateOffsetFFT(domain.BlowupFactor, domain.InterpolationDomainSize, &domain.CosetOffset)
		if err != nil {
			return nil, err
		}
		transitionZeroInv[k] = fr.BatchInvert(zeroEvals)
		quotientDegree := ctx.TransitionDegrees[k]*(n-1) - (n - exemptions)
		transitionAdjustment[k] = (bound - 1) - quotientDegree
	}

	evaluations := make([][]fr.Element, numPoints)
	utils.Parallelize(numPoints, func(start, end int) {
		var term, weight fr.Element
		for i := start; i < end; i++ {
			x := domain.LdeRootsOfUnityCoset[i]
			row := make([]fr.Element, numTransition+1)

			frame := air.ReadFrame(ldeTrace, i, domain.BlowupFactor, ctx.TransitionOffsets)
			transitionEvals := e.air.ComputeTransition(frame, rapChallenges)
			for k := range transitionEvals {
				weight = adjustmentPower(&x, transitionAdjustment[k])
				weight.Mul(&weight, &transitionCoefficients[k][0])
				weight.Add(&weight, &transitionCoefficients[k][1])

				term.Mul(&transitionEvals[k], &transitionZeroInv[k][i])
				term.Mul(&term, &weight)
				row[k] = term
			}

			var acc fr.Element
			for j := 0; j < numCols; j++ {
				weight = adjustmentPower(&x, boundaryAdjustment[j])
				weight.Mul(&weight, &boundaryCoefficients[j][0])
				weight.Add(&weight, &boundaryCoefficients[j][1])

				term.Mul(&boundaryNumEvals[j][i], &boundaryZeroInv[j][i])
				term.Mul(&term, &weight)
				acc.Add(&acc, &term)
			}
			row[numTransition] = acc
			evaluations[i] = row
		}
	})

	return &EvaluationTable{evaluations: evaluations}, nil
}
