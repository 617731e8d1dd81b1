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

package air

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mcarilli/lambdaworks-cairo-prover/polynomial"
)

// Frame is the window of trace rows a transition constraint reads: one row
// per transition offset, each row holding one value per trace column.
// Stored row-major.
type Frame struct {
	data    []fr.Element
	numCols int
}

// NewFrame wraps row-major data with the given row width.
func NewFrame(data []fr.Element, numCols int) *Frame {
	return &Frame{data: data, numCols: numCols}
}

// NumRows returns the number of rows (one per transition offset).
func (f *Frame) NumRows() int {
	if f.numCols == 0 {
		return 0
	}
	return len(f.data) / f.numCols
}

// NumCols returns the number of trace columns per row.
func (f *Frame) NumCols() int {
	return f.numCols
}

// Row returns the i-th row, in column order.
func (f *Frame) Row(i int) []fr.Element {
	return f.data[i*f.numCols : (i+1)*f.numCols]
}

// ReadFrame reads the frame anchored at the given LDE step. Offsets are
// declared in trace steps; on the LDE table one trace step spans blowupFactor
// rows, and reads wrap around the end of the table.
func ReadFrame(ldeTrace *TraceTable, step, blowupFactor int, offsets []int) *Frame {
	numRows := ldeTrace.NumRows()
	numCols := ldeTrace.NumCols()
	data := make([]fr.Element, 0, len(offsets)*numCols)
	for _, offset := range offsets {
		row := (step + offset*blowupFactor) % numRows
		for j := 0; j < numCols; j++ {
			data = append(data, ldeTrace.Value(row, j))
		}
	}
	return NewFrame(data, numCols)
}

// TraceEvaluationsAt evaluates every trace polynomial at z*g^k for every
// transition offset k, where g is the trace primitive root. The result has
// one row per offset, each row holding t_j(z*g^k) in column order.
func TraceEvaluationsAt(tracePolys []polynomial.Polynomial, z *fr.Element, offsets []int, primitiveRoot *fr.Element) [][]fr.Element {
	evaluations := make([][]fr.Element, len(offsets))
	var shift, point fr.Element
	for k, offset := range offsets {
		shift.Exp(*primitiveRoot, big.NewInt(int64(offset)))
		point.Mul(z, &shift)
		row := make([]fr.Element, len(tracePolys))
		for j := range tracePolys {
			row[j] = tracePolys[j].Evaluate(&point)
		}
		evaluations[k] = row
	}
	return evaluations
}

// FrameFromEvaluations flattens per-offset evaluation rows into a Frame.
func FrameFromEvaluations(evaluations [][]fr.Element) *Frame {
	if len(evaluations) == 0 {
		return NewFrame(nil, 0)
	}
	numCols := len(evaluations[0])
	data := make([]fr.Element, 0, len(evaluations)*numCols)
	for _, row := range evaluations {
		data = append(data, row...)
	}
	return NewFrame(data, numCols)
}
