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

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mcarilli/lambdaworks-cairo-prover/air"
	"github.com/mcarilli/lambdaworks-cairo-prover/fiatshamir"
)

// fibonacciAIR is the single-column test fixture: a(i+2) = a(i+1) + a(i),
// pinned to 1 at the first two steps.
type fibonacciAIR struct {
	context air.Context
}

func newFibonacciAIR(traceLength int, options air.ProofOptions) *fibonacciAIR {
	return &fibonacciAIR{context: air.Context{
		TraceLength:              traceLength,
		TraceColumns:             1,
		TransitionDegrees:        []int{1},
		TransitionExemptions:     []int{2},
		TransitionOffsets:        []int{0, 1, 2},
		NumTransitionConstraints: 1,
		Options:                  options,
	}}
}

func (f *fibonacciAIR) BuildMainTrace(rawTrace air.RawTrace) (*air.TraceTable, error) {
	column, ok := rawTrace.([]fr.Element)
	if !ok {
		return nil, fmt.Errorf("fibonacci: unexpected raw trace type %T", rawTrace)
	}
	return air.NewTraceTableFromColumns([][]fr.Element{column})
}

func (f *fibonacciAIR) BuildRAPChallenges(fiatshamir.Transcript) []fr.Element {
	return nil
}

func (f *fibonacciAIR) BuildAuxiliaryTrace(*air.TraceTable, []fr.Element) *air.TraceTable {
	return nil
}

func (f *fibonacciAIR) ComputeTransition(frame *air.Frame, _ []fr.Element) []fr.Element {
	r0 := frame.Row(0)
	r1 := frame.Row(1)
	r2 := frame.Row(2)
	var res fr.Element
	res.Sub(&r2[0], &r1[0])
	res.Sub(&res, &r0[0])
	return []fr.Element{res}
}

func (f *fibonacciAIR) BoundaryConstraints([]fr.Element) *air.BoundaryConstraints {
	one := fr.One()
	return air.NewBoundaryConstraints([]air.BoundaryConstraint{
		{Col: 0, Step: 0, Value: one},
		{Col: 0, Step: 1, Value: one},
	})
}

func (f *fibonacciAIR) Context() air.Context {
	return f.context
}

// fibonacciRAPAIR extends the fixture with an auxiliary column
// aux(i) = main(i) + ch, ch drawn from the transcript after the main trace
// is committed.
type fibonacciRAPAIR struct {
	context air.Context
}

func newFibonacciRAPAIR(traceLength int, options air.ProofOptions) *fibonacciRAPAIR {
	return &fibonacciRAPAIR{context: air.Context{
		TraceLength:              traceLength,
		TraceColumns:             2,
		TransitionDegrees:        []int{1, 1},
		TransitionExemptions:     []int{2, 0},
		TransitionOffsets:        []int{0, 1, 2},
		NumTransitionConstraints: 2,
		Options:                  options,
	}}
}

func (f *fibonacciRAPAIR) BuildMainTrace(rawTrace air.RawTrace) (*air.TraceTable, error) {
	column, ok := rawTrace.([]fr.Element)
	if !ok {
		return nil, fmt.Errorf("fibonacci: unexpected raw trace type %T", rawTrace)
	}
	return air.NewTraceTableFromColumns([][]fr.Element{column})
}

func (f *fibonacciRAPAIR) BuildRAPChallenges(transcript fiatshamir.Transcript) []fr.Element {
	return []fr.Element{transcript.Sample()}
}

func (f *fibonacciRAPAIR) BuildAuxiliaryTrace(mainTrace *air.TraceTable, rapChallenges []fr.Element) *air.TraceTable {
	main := mainTrace.Col(0)
	aux := make([]fr.Element, len(main))
	for i := range aux {
		aux[i].Add(&main[i], &rapChallenges[0])
	}
	table, _ := air.NewTraceTableFromColumns([][]fr.Element{aux})
	return table
}

func (f *fibonacciRAPAIR) ComputeTransition(frame *air.Frame, rapChallenges []fr.Element) []fr.Element {
	r0 := frame.Row(0)
	r1 := frame.Row(1)
	r2 := frame.Row(2)

	var fib fr.Element
	fib.Sub(&r2[0], &r1[0])
	fib.Sub(&fib, &r0[0])

	var link fr.Element
	link.Sub(&r0[1], &r0[0])
	link.Sub(&link, &rapChallenges[0])

	return []fr.Element{fib, link}
}

func (f *fibonacciRAPAIR) BoundaryConstraints(rapChallenges []fr.Element) *air.BoundaryConstraints {
	one := fr.One()
	var auxStart fr.Element
	auxStart.Add(&one, &rapChallenges[0])
	return air.NewBoundaryConstraints([]air.BoundaryConstraint{
		{Col: 0, Step: 0, Value: one},
		{Col: 0, Step: 1, Value: one},
		{Col: 1, Step: 0, Value: auxStart},
	})
}

func (f *fibonacciRAPAIR) Context() air.Context {
	return f.context
}

func fibonacciColumn(n int) []fr.Element {
	column := make([]fr.Element, n)
	column[0].SetOne()
	column[1].SetOne()
	for i := 2; i < n; i++ {
		column[i].Add(&column[i-1], &column[i-2])
	}
	return column
}

func proofOptions(blowupFactor, queries int) air.ProofOptions {
	return air.ProofOptions{
		BlowupFactor:       blowupFactor,
		FriNumberOfQueries: queries,
		CosetOffset:        3,
	}
}
