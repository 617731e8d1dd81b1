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
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mcarilli/lambdaworks-cairo-prover/polynomial"
)

// ErrInconsistentColumns is returned when trace columns have unequal lengths.
var ErrInconsistentColumns = errors.New("air: trace columns have inconsistent lengths")

// TraceTable is a column-major table of field elements. All columns have the
// same length and the column count is fixed at construction.
type TraceTable struct {
	columns [][]fr.Element
}

// NewTraceTableFromColumns builds a table from equal-length columns. The
// column slices are retained, not copied.
func NewTraceTableFromColumns(columns [][]fr.Element) (*TraceTable, error) {
	for i := 1; i < len(columns); i++ {
		if len(columns[i]) != len(columns[0]) {
			return nil, fmt.Errorf("%w: column 0 has %d rows, column %d has %d",
				ErrInconsistentColumns, len(columns[0]), i, len(columns[i]))
		}
	}
	return &TraceTable{columns: columns}, nil
}

// NumCols returns the number of columns.
func (t *TraceTable) NumCols() int {
	return len(t.columns)
}

// NumRows returns the trace length.
func (t *TraceTable) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0])
}

// IsEmpty returns true when the table holds no values.
func (t *TraceTable) IsEmpty() bool {
	return t == nil || len(t.columns) == 0 || len(t.columns[0]) == 0
}

// Col returns the j-th column.
func (t *TraceTable) Col(j int) []fr.Element {
	return t.columns[j]
}

// Columns returns all columns in order.
func (t *TraceTable) Columns() [][]fr.Element {
	return t.columns
}

// Row returns a copy of the i-th row, in column order.
func (t *TraceTable) Row(i int) []fr.Element {
	row := make([]fr.Element, len(t.columns))
	for j := range t.columns {
		row[j] = t.columns[j][i]
	}
	return row
}

// Value returns the entry at (row, col).
func (t *TraceTable) Value(row, col int) fr.Element {
	return t.columns[col][row]
}

// TracePolys interpolates each column on the trace roots-of-unity domain and
// returns one polynomial per column, in column order.
func (t *TraceTable) TracePolys() ([]polynomial.Polynomial, error) {
	polys := make([]polynomial.Polynomial, len(t.columns))
	for j, col := range t.columns {
		p, err := polynomial.InterpolateFFT(col)
		if err != nil {
			return nil, err
		}
		polys[j] = p
	}
	return polys, nil
}
