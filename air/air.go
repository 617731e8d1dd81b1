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

// Package air defines the Algebraic Intermediate Representation consumed by
// the prover: the trace-building capability, the constraint system an
// execution trace must satisfy, and the tables the protocol reads traces
// through.
package air

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mcarilli/lambdaworks-cairo-prover/fiatshamir"
)

// RawTrace is the opaque witness an AIR turns into an execution trace. Each
// AIR implementation documents and re-types the concrete value it expects;
// Go has no associated types to express this statically.
type RawTrace any

// ProofOptions is the prover configuration carried by the AIR context.
type ProofOptions struct {
	// BlowupFactor is the LDE domain expansion rate (a power of two).
	BlowupFactor int
	// FriNumberOfQueries is the number of FRI query rounds.
	FriNumberOfQueries int
	// CosetOffset shifts the LDE domain off the trace roots of unity.
	CosetOffset uint64
}

// Context describes the shape of an AIR's constraint system.
type Context struct {
	TraceLength              int
	TraceColumns             int
	TransitionDegrees        []int
	TransitionExemptions     []int
	TransitionOffsets        []int
	NumTransitionConstraints int
	Options                  ProofOptions
}

// AIR is the constraint system capability consumed by the prover. An
// implementation owns its public input; the prover never inspects it.
type AIR interface {
	// BuildMainTrace turns the raw witness into the main execution trace.
	BuildMainTrace(rawTrace RawTrace) (*TraceTable, error)

	// BuildRAPChallenges samples the randomized-preprocessing challenges the
	// auxiliary trace depends on. Called after the main trace is committed.
	// Non-randomized AIRs return nil.
	BuildRAPChallenges(transcript fiatshamir.Transcript) []fr.Element

	// BuildAuxiliaryTrace builds the auxiliary columns from the main trace
	// and the RAP challenges. May return nil or an empty table.
	BuildAuxiliaryTrace(mainTrace *TraceTable, rapChallenges []fr.Element) *TraceTable

	// ComputeTransition evaluates every transition constraint on a frame,
	// in constraint order.
	ComputeTransition(frame *Frame, rapChallenges []fr.Element) []fr.Element

	// BoundaryConstraints returns the boundary constraints, which may depend
	// on the RAP challenges and the public input.
	BoundaryConstraints(rapChallenges []fr.Element) *BoundaryConstraints

	// Context returns the constraint-system shape and proof options.
	Context() Context
}

// BoundaryConstraint pins the value of one trace column at one step.
type BoundaryConstraint struct {
	Col   int
	Step  int
	Value fr.Element
}

// BoundaryConstraints is an ordered collection of boundary constraints.
type BoundaryConstraints struct {
	Constraints []BoundaryConstraint
}

// NewBoundaryConstraints wraps an ordered constraint list.
func NewBoundaryConstraints(constraints []BoundaryConstraint) *BoundaryConstraints {
	return &BoundaryConstraints{Constraints: constraints}
}

// StepsForColumn returns the constrained steps of column col, in declaration
// order.
func (bc *BoundaryConstraints) StepsForColumn(col int) []int {
	var steps []int
	for _, c := range bc.Constraints {
		if c.Col == col {
			steps = append(steps, c.Step)
		}
	}
	return steps
}

// ValuesForColumn returns the pinned values of column col, aligned with
// StepsForColumn.
func (bc *BoundaryConstraints) ValuesForColumn(col int) []fr.Element {
	var values []fr.Element
	for _, c := range bc.Constraints {
		if c.Col == col {
			values = append(values, c.Value)
		}
	}
	return values
}
