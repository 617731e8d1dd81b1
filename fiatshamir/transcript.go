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

// Package fiatshamir implements the sequential transcript that removes
// interaction from the protocol: every commitment is appended to a running
// hash, and every verifier challenge is sampled deterministically from it.
//
// The transcript is the only shared mutable state of the proving pipeline.
// Append and Sample must be called in the exact order the protocol fixes;
// permuting two appends changes every subsequent challenge.
package fiatshamir

import (
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"
)

// Transcript is the challenge-sampling capability consumed by the prover.
type Transcript interface {
	// Append absorbs a protocol message into the transcript state.
	Append(data []byte)
	// Sample squeezes a field element challenge out of the current state.
	// Sampling mutates the state, so repeated calls yield fresh challenges.
	Sample() fr.Element
}

// KeccakTranscript is the default Transcript, a Keccak-256 absorb/squeeze
// chain. The concrete hash is not part of the protocol contract; any
// collision-resistant function yields a sound transcript.
type KeccakTranscript struct {
	h hash.Hash
}

// NewKeccakTranscript returns an empty transcript.
func NewKeccakTranscript() *KeccakTranscript {
	return &KeccakTranscript{h: sha3.NewLegacyKeccak256()}
}

// Append absorbs data into the running hash.
func (t *KeccakTranscript) Append(data []byte) {
	t.h.Write(data)
}

// Sample squeezes a challenge and feeds it back into the state, so the next
// challenge depends on this one having been drawn.
func (t *KeccakTranscript) Sample() fr.Element {
	digest := t.h.Sum(nil)
	t.h.Write(digest)
	var res fr.Element
	res.SetBytes(digest)
	return res
}

// BatchSample draws n challenges from the transcript, in order.
func BatchSample(t Transcript, n int) []fr.Element {
	res := make([]fr.Element, n)
	for i := range res {
		res[i] = t.Sample()
	}
	return res
}

// SampleIndex derives a pseudorandom index in [0, bound) from the transcript.
// bound must be a power of two.
func SampleIndex(t Transcript, bound uint64) uint64 {
	c := t.Sample()
	return c.Bits()[0] & (bound - 1)
}
