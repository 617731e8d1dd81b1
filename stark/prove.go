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

// Package stark implements the prover side of the STARK protocol: the
// four-round pipeline that turns an AIR and a raw witness into a transcript
// proof, plus the forging diagnostics used to probe the degree test.
package stark

import (
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/mcarilli/lambdaworks-cairo-prover/air"
	"github.com/mcarilli/lambdaworks-cairo-prover/debug"
	"github.com/mcarilli/lambdaworks-cairo-prover/fiatshamir"
	"github.com/mcarilli/lambdaworks-cairo-prover/fri"
	"github.com/mcarilli/lambdaworks-cairo-prover/logger"
	"github.com/mcarilli/lambdaworks-cairo-prover/merkle"
	"github.com/mcarilli/lambdaworks-cairo-prover/polynomial"
)

type round1Result struct {
	tracePolys          []polynomial.Polynomial
	ldeTrace            *air.TraceTable
	ldeTraceEvaluations [][]fr.Element
	ldeTraceMerkleTrees []*merkle.Tree
	ldeTraceMerkleRoots []fr.Element
	rapChallenges       []fr.Element
}

type round2Result struct {
	compositionPolyEven               polynomial.Polynomial
	ldeCompositionPolyEvenEvaluations []fr.Element
	compositionPolyEvenMerkleTree     *merkle.Tree
	compositionPolyEvenRoot           fr.Element
	compositionPolyOdd                polynomial.Polynomial
	ldeCompositionPolyOddEvaluations  []fr.Element
	compositionPolyOddMerkleTree      *merkle.Tree
	compositionPolyOddRoot            fr.Element
}

type round3Result struct {
	traceOODFrameEvaluations         *air.Frame
	compositionPolyEvenOODEvaluation fr.Element
	compositionPolyOddOODEvaluation  fr.Element
}

type round4Result struct {
	friLastValue         fr.Element
	friLayersMerkleRoots []fr.Element
	deepPolyOpenings     DeepPolynomialOpenings
	queryList            []fri.Decommitment
}

// interpolateAndCommit interpolates every trace column, extends it onto the
// LDE coset and Merkle-commits the evaluations. Columns are processed
// concurrently; roots are appended to the transcript afterwards in column
// order, so the transcript stays deterministic regardless of scheduling.
func interpolateAndCommit(
	trace *air.TraceTable,
	domain *Domain,
	transcript fiatshamir.Transcript,
) ([]polynomial.Polynomial, [][]fr.Element, []*merkle.Tree, []fr.Element, error) {
	numCols := trace.NumCols()
	polys := make([]polynomial.Polynomial, numCols)
	evaluations := make([][]fr.Element, numCols)
	trees := make([]*merkle.Tree, numCols)
	roots := make([]fr.Element, numCols)

	var g errgroup.Group
	for j := 0; j < numCols; j++ {
		g.Go(func() error {
			p, err := polynomial.InterpolateFFT(trace.Col(j))
			if err != nil {
				return err
			}
			evals, err := p.EvaluateOffsetFFT(domain.BlowupFactor, domain.InterpolationDomainSize, &domain.CosetOffset)
			if err != nil {
				return err
			}
			tree := merkle.Build(evals)
			polys[j] = p
			evaluations[j] = evals
			trees[j] = tree
			roots[j] = tree.Root()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, nil, wrapConfig("interpolating trace columns", err)
	}

	// send commitments [t_j]
	for j := range roots {
		transcript.Append(roots[j].Marshal())
	}
	return polys, evaluations, trees, roots, nil
}

// round1 builds and commits the main trace, then the auxiliary trace derived
// from the RAP challenges. The challenges are sampled strictly after the main
// trace roots are absorbed.
func round1(a air.AIR, rawTrace air.RawTrace, domain *Domain, transcript fiatshamir.Transcript) (*round1Result, error) {
	mainTrace, err := a.BuildMainTrace(rawTrace)
	if err != nil {
		return nil, err
	}

	polys, evaluations, trees, roots, err := interpolateAndCommit(mainTrace, domain, transcript)
	if err != nil {
		return nil, err
	}

	rapChallenges := a.BuildRAPChallenges(transcript)
	auxTrace := a.BuildAuxiliaryTrace(mainTrace, rapChallenges)
	if !auxTrace.IsEmpty() {
		auxPolys, auxEvaluations, auxTrees, auxRoots, err := interpolateAndCommit(auxTrace, domain, transcript)
		if err != nil {
			return nil, err
		}
		polys = append(polys, auxPolys...)
		evaluations = append(evaluations, auxEvaluations...)
		trees = append(trees, auxTrees...)
		roots = append(roots, auxRoots...)
	}

	ldeTrace, err := air.NewTraceTableFromColumns(evaluations)
	if err != nil {
		return nil, wrapConfig("assembling LDE trace", err)
	}
	return &round1Result{
		tracePolys:          polys,
		ldeTrace:            ldeTrace,
		ldeTraceEvaluations: evaluations,
		ldeTraceMerkleTrees: trees,
		ldeTraceMerkleRoots: roots,
		rapChallenges:       rapChallenges,
	}, nil
}

// round2 evaluates the constraints, interpolates the composition polynomial
// H, splits it as H(x) = H1(x^2) + x*H2(x^2) and commits both parts over the
// LDE coset.
func round2(
	a air.AIR,
	domain *Domain,
	r1 *round1Result,
	transitionCoefficients, boundaryCoefficients [][2]fr.Element,
) (*round2Result, error) {
	evaluator := NewConstraintEvaluator(a, r1.tracePolys, r1.rapChallenges)
	table, err := evaluator.Evaluate(r1.ldeTrace, domain, transitionCoefficients, boundaryCoefficients, r1.rapChallenges)
	if err != nil {
		return nil, wrapConfig("evaluating constraints", err)
	}
	compositionPoly, err := table.CompositionPoly(&domain.CosetOffset)
	if err != nil {
		return nil, wrapConfig("interpolating composition polynomial", err)
	}
	even, odd := compositionPoly.EvenOddDecomposition()

	evenEvaluations, err := even.EvaluateOffsetFFT(domain.BlowupFactor, domain.InterpolationDomainSize, &domain.CosetOffset)
	if err != nil {
		return nil, wrapConfig("extending composition polynomial", err)
	}
	oddEvaluations, err := odd.EvaluateOffsetFFT(domain.BlowupFactor, domain.InterpolationDomainSize, &domain.CosetOffset)
	if err != nil {
		return nil, wrapConfig("extending composition polynomial", err)
	}
	trees, roots := merkle.BatchBuild([][]fr.Element{evenEvaluations, oddEvaluations})

	return &round2Result{
		compositionPolyEven:               even,
		ldeCompositionPolyEvenEvaluations: evenEvaluations,
		compositionPolyEvenMerkleTree:     trees[0],
		compositionPolyEvenRoot:           roots[0],
		compositionPolyOdd:                odd,
		ldeCompositionPolyOddEvaluations:  oddEvaluations,
		compositionPolyOddMerkleTree:      trees[1],
		compositionPolyOddRoot:            roots[1],
	}, nil
}

// round3 evaluates the trace polynomials and the composition parts out of
// domain. In ForgeOutOfDomain mode the even evaluation is replaced by the
// full H(z) recomputed from the trace frame and the odd evaluation is forced
// to zero, so the verifier's consistency check passes regardless of what was
// committed in round 2.
func round3(
	a air.AIR,
	domain *Domain,
	r1 *round1Result,
	r2 *round2Result,
	z *fr.Element,
	transitionCoefficients, boundaryCoefficients [][2]fr.Element,
	mode Mode,
) *round3Result {
	ctx := a.Context()
	oodEvaluations := air.TraceEvaluationsAt(r1.tracePolys, z, ctx.TransitionOffsets, &domain.TracePrimitiveRoot)
	frame := air.FrameFromEvaluations(oodEvaluations)

	var evenOOD, oddOOD fr.Element
	if mode == ForgeOutOfDomain {
		evenOOD = compositionPolyOODEvaluationFromTrace(a, frame, domain, z, r1.rapChallenges, transitionCoefficients, boundaryCoefficients)
	} else {
		var zSquared fr.Element
		zSquared.Square(z)
		evenOOD = r2.compositionPolyEven.Evaluate(&zSquared)
		oddOOD = r2.compositionPolyOdd.Evaluate(&zSquared)
	}

	return &round3Result{
		traceOODFrameEvaluations:         frame,
		compositionPolyEvenOODEvaluation: evenOOD,
		compositionPolyOddOODEvaluation:  oddOOD,
	}
}

// round4 samples the DEEP aggregation coefficients, builds the DEEP
// polynomial, runs the FRI commit and query phases and opens the DEEP
// constituents at the first query index.
func round4(
	a air.AIR,
	domain *Domain,
	r1 *round1Result,
	r2 *round2Result,
	r3 *round3Result,
	z *fr.Element,
	transcript fiatshamir.Transcript,
	mode Mode,
) (*round4Result, error) {
	// receive challenges gamma, gamma'
	compositionGammas := [2]fr.Element{transcript.Sample(), transcript.Sample()}
	ctx := a.Context()
	traceGammas := fiatshamir.BatchSample(transcript, len(r1.tracePolys)*len(ctx.TransitionOffsets))

	deep, err := computeDeepCompositionPoly(a, domain, r1.tracePolys, r2, r3, z, compositionGammas, traceGammas, mode)
	if err != nil {
		return nil, wrapConfig("building deep composition polynomial", err)
	}

	domainSize := len(domain.LdeRootsOfUnityCoset)
	lastValue, layers, err := fri.CommitPhase(int(domain.RootOrder), deep, &domain.CosetOffset, domainSize, transcript)
	if err != nil {
		return nil, wrapConfig("fri commit phase", err)
	}
	queryList, iota0, err := fri.QueryPhase(ctx.Options.FriNumberOfQueries, domainSize, layers, transcript)
	if err != nil {
		return nil, wrapConfig("fri query phase", err)
	}

	roots := make([]fr.Element, len(layers))
	for k := range layers {
		roots[k] = layers[k].Root
	}
	openings, err := openDeepCompositionPoly(r1, r2, iota0%domainSize)
	if err != nil {
		return nil, wrapConfig("opening deep composition polynomial", err)
	}

	return &round4Result{
		friLastValue:         lastValue,
		friLayersMerkleRoots: roots,
		deepPolyOpenings:     openings,
		queryList:            queryList,
	}, nil
}

// openDeepCompositionPoly opens the committed composition parts and every
// trace column at the given LDE index.
func openDeepCompositionPoly(r1 *round1Result, r2 *round2Result, index int) (DeepPolynomialOpenings, error) {
	evenProof, err := r2.compositionPolyEvenMerkleTree.GetProofByPos(index)
	if err != nil {
		return DeepPolynomialOpenings{}, err
	}
	oddProof, err := r2.compositionPolyOddMerkleTree.GetProofByPos(index)
	if err != nil {
		return DeepPolynomialOpenings{}, err
	}

	traceProofs := make([]merkle.Proof, len(r1.ldeTraceMerkleTrees))
	traceEvaluations := make([]fr.Element, len(r1.ldeTraceMerkleTrees))
	for j, tree := range r1.ldeTraceMerkleTrees {
		proof, err := tree.GetProofByPos(index)
		if err != nil {
			return DeepPolynomialOpenings{}, err
		}
		traceProofs[j] = proof
		traceEvaluations[j] = r1.ldeTraceEvaluations[j][index]
	}

	return DeepPolynomialOpenings{
		LdeCompositionPolyEvenProof:      evenProof,
		LdeCompositionPolyEvenEvaluation: r2.ldeCompositionPolyEvenEvaluations[index],
		LdeCompositionPolyOddProof:       oddProof,
		LdeCompositionPolyOddEvaluation:  r2.ldeCompositionPolyOddEvaluations[index],
		LdeTraceMerkleProofs:             traceProofs,
		LdeTraceEvaluations:              traceEvaluations,
	}, nil
}

// sampleZOOD draws the out-of-domain point z, rejecting candidates that fall
// on the LDE coset or the trace roots of unity.
func sampleZOOD(domain *Domain, transcript fiatshamir.Transcript) fr.Element {
	for {
		z := transcript.Sample()
		if !containsElement(domain.LdeRootsOfUnityCoset, &z) && !containsElement(domain.TraceRootsOfUnity, &z) {
			return z
		}
	}
}

func containsElement(set []fr.Element, e *fr.Element) bool {
	for i := range set {
		if set[i].Equal(e) {
			return true
		}
	}
	return false
}

// Prove runs the four-round pipeline over the AIR and raw witness. The mode
// selects the honest path or one of the forging diagnostics; forged proofs
// are structurally complete and only differ in how the out-of-domain values
// and the DEEP polynomial are produced.
func Prove(a air.AIR, rawTrace air.RawTrace, mode Mode) (*Proof, error) {
	log := logger.Logger().With().Str("mode", mode.String()).Logger()
	start := time.Now()

	domain, err := NewDomain(a)
	if err != nil {
		return nil, err
	}
	transcript := fiatshamir.NewKeccakTranscript()

	r1, err := round1(a, rawTrace, domain, transcript)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("columns", len(r1.tracePolys)).Msg("round 1: trace committed")

	if debug.Debug {
		validateTrace(a, r1, domain)
	}

	// receive challenges alpha_j, beta_j (boundary), alpha_k, beta_k
	// (transition)
	numBoundary := len(r1.tracePolys)
	boundaryAlphas := fiatshamir.BatchSample(transcript, numBoundary)
	boundaryBetas := fiatshamir.BatchSample(transcript, numBoundary)
	ctx := a.Context()
	transitionAlphas := fiatshamir.BatchSample(transcript, ctx.NumTransitionConstraints)
	transitionBetas := fiatshamir.BatchSample(transcript, ctx.NumTransitionConstraints)

	boundaryCoefficients := make([][2]fr.Element, numBoundary)
	for j := range boundaryCoefficients {
		boundaryCoefficients[j] = [2]fr.Element{boundaryAlphas[j], boundaryBetas[j]}
	}
	transitionCoefficients := make([][2]fr.Element, ctx.NumTransitionConstraints)
	for k := range transitionCoefficients {
		transitionCoefficients[k] = [2]fr.Element{transitionAlphas[k], transitionBetas[k]}
	}

	r2, err := round2(a, domain, r1, transitionCoefficients, boundaryCoefficients)
	if err != nil {
		return nil, err
	}
	// send commitments [H1], [H2]
	transcript.Append(r2.compositionPolyEvenRoot.Marshal())
	transcript.Append(r2.compositionPolyOddRoot.Marshal())
	log.Debug().Msg("round 2: composition polynomial committed")

	// receive challenge z
	z := sampleZOOD(domain, transcript)

	r3 := round3(a, domain, r1, r2, &z, transitionCoefficients, boundaryCoefficients, mode)
	// send H1(z^2), H2(z^2) and the out-of-domain trace frame
	transcript.Append(r3.compositionPolyEvenOODEvaluation.Marshal())
	transcript.Append(r3.compositionPolyOddOODEvaluation.Marshal())
	for i := 0; i < r3.traceOODFrameEvaluations.NumRows(); i++ {
		row := r3.traceOODFrameEvaluations.Row(i)
		for j := range row {
			transcript.Append(row[j].Marshal())
		}
	}
	log.Debug().Msg("round 3: out-of-domain evaluations sent")

	r4, err := round4(a, domain, r1, r2, r3, &z, transcript, mode)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("fri_layers", len(r4.friLayersMerkleRoots)).
		Int("queries", len(r4.queryList)).
		Dur("took", time.Since(start)).
		Msg("round 4: proof complete")

	return &Proof{
		LdeTraceMerkleRoots:              r1.ldeTraceMerkleRoots,
		CompositionPolyEvenRoot:          r2.compositionPolyEvenRoot,
		CompositionPolyOddRoot:           r2.compositionPolyOddRoot,
		TraceOODFrameEvaluations:         r3.traceOODFrameEvaluations,
		CompositionPolyEvenOODEvaluation: r3.compositionPolyEvenOODEvaluation,
		CompositionPolyOddOODEvaluation:  r3.compositionPolyOddOODEvaluation,
		FriLayersMerkleRoots:             r4.friLayersMerkleRoots,
		FriLastValue:                     r4.friLastValue,
		QueryList:                        r4.queryList,
		DeepPolyOpenings:                 r4.deepPolyOpenings,
	}, nil
}
