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

// Package prover implements a STARK prover: given an execution trace and an
// AIR (Algebraic Intermediate Representation) describing the constraints the
// trace must satisfy, it produces a succinct non-interactive proof of the
// trace's validity.
//
// The proving pipeline lives in the stark package and combines Merkle
// commitments over Reed-Solomon-coded evaluations, a Fiat-Shamir transcript,
// and FRI as a low-degree test. It also ships a forging/diagnostic mode that
// deliberately builds DEEP polynomials of the wrong degree, used to probe
// empirically that the degree test rejects invalid proofs.
package prover

import (
	"github.com/blang/semver/v4"
)

// Version of the prover module.
var Version = semver.MustParse("0.1.0")
