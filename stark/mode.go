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

// Mode selects the honest proving path or one of the forging diagnostics.
// The forging modes exist to probe, empirically, that the degree test
// rejects inconsistent proofs; they are not production configuration.
type Mode uint8

const (
	// Honest is the production path. The DEEP polynomial is built by exact
	// algebraic division and cross-checked against the interpolated
	// reconstruction.
	Honest Mode = iota

	// ForgeOutOfDomain forges the out-of-domain evaluations: H1(z^2) is
	// recomputed exactly from the trace frame instead of the committed
	// polynomial, and H2(z^2) is forced to zero. The DEEP polynomial is
	// built by truncated interpolation against the legitimate degree bound.
	ForgeOutOfDomain

	// ForgeDegreeBound builds the DEEP polynomial by truncated interpolation
	// against the deliberately loose bound |LDE|/2, for traces whose DEEP
	// rational function is not a polynomial of legitimate degree.
	ForgeDegreeBound
)

func (m Mode) String() string {
	switch m {
	case Honest:
		return "honest"
	case ForgeOutOfDomain:
		return "forge-out-of-domain"
	case ForgeDegreeBound:
		return "forge-degree-bound"
	default:
		return "unknown"
	}
}

// forges reports whether the DEEP polynomial comes from the truncated
// interpolation path instead of exact algebraic division.
func (m Mode) forges() bool {
	return m != Honest
}

// deepTargetDegree is the number of points the forging path interpolates:
// the legitimate bound |LDE|/blowup, or the loose |LDE|/2 when forging the
// degree bound.
func (m Mode) deepTargetDegree(domain *Domain) int {
	if m == ForgeDegreeBound {
		return len(domain.LdeRootsOfUnityCoset) / 2
	}
	return len(domain.LdeRootsOfUnityCoset) / domain.BlowupFactor
}
