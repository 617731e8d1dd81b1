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
	"github.com/mcarilli/lambdaworks-cairo-prover/logger"
)

// validateTrace checks, in debug builds only, that the committed trace
// actually satisfies the AIR: every boundary constraint pins the claimed
// value and every transition constraint vanishes on its non-exempt steps.
// Violations are logged, not fatal, so forged traces can still be proven
// while their inconsistencies stay visible.
func validateTrace(a air.AIR, r1 *round1Result, domain *Domain) {
	log := logger.Logger()
	ctx := a.Context()
	n := ctx.TraceLength

	// reconstruct the trace on the interpolation domain
	columns := make([][]fr.Element, len(r1.tracePolys))
	for j := range r1.tracePolys {
		column := make([]fr.Element, n)
		for i := range column {
			column[i] = r1.tracePolys[j].Evaluate(&domain.TraceRootsOfUnity[i])
		}
		columns[j] = column
	}
	trace, err := air.NewTraceTableFromColumns(columns)
	if err != nil {
		log.Warn().Err(err).Msg("trace validation skipped")
		return
	}

	boundary := a.BoundaryConstraints(r1.rapChallenges)
	for _, c := range boundary.Constraints {
		got := trace.Value(c.Step, c.Col)
		if !got.Equal(&c.Value) {
			log.Warn().
				Int("col", c.Col).
				Int("step", c.Step).
				Str("want", c.Value.String()).
				Str("got", got.String()).
				Msg("boundary constraint violated")
		}
	}

	for step := 0; step < n; step++ {
		frame := air.ReadFrame(trace, step, 1, ctx.TransitionOffsets)
		evaluations := a.ComputeTransition(frame, r1.rapChallenges)
		for k := range evaluations {
			if step >= n-ctx.TransitionExemptions[k] {
				continue
			}
			if !evaluations[k].IsZero() {
				log.Warn().
					Int("constraint", k).
					Int("step", step).
					Msg("transition constraint violated")
			}
		}
	}
}
