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

package polynomial

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/mcarilli/lambdaworks-cairo-prover/internal/utils"
)

var (
	// ErrFFTDomain is returned when an evaluation request does not describe a
	// valid power-of-two coset domain for the underlying field.
	ErrFFTDomain = errors.New("polynomial: invalid FFT domain")
)

// EvaluateOffsetFFT evaluates p on the coset offset*<g>, where g is the
// canonical primitive root of order domainSize*blowupFactor. The i-th returned
// value is p(offset * g^i) and the result length is exactly
// domainSize*blowupFactor.
//
// When deg(p) does not fit on the requested grid the FFT runs on the next
// power-of-two multiple and the result is subsampled back with an integer
// stride; a fractional stride is a contract violation and surfaces as an
// error.
func (p Polynomial) EvaluateOffsetFFT(blowupFactor, domainSize int, offset *fr.Element) ([]fr.Element, error) {
	if blowupFactor < 1 || !utils.IsPowerOfTwo(blowupFactor) {
		return nil, fmt.Errorf("%w: blowup factor %d", ErrFFTDomain, blowupFactor)
	}
	if domainSize < 1 || !utils.IsPowerOfTwo(domainSize) {
		return nil, fmt.Errorf("%w: domain size %d", ErrFFTDomain, domainSize)
	}
	if offset.IsZero() {
		return nil, fmt.Errorf("%w: zero coset offset", ErrFFTDomain)
	}

	size := domainSize
	if len(p) > size {
		size = utils.NextPowerOfTwo(len(p))
	}
	size *= blowupFactor

	buf := make([]fr.Element, size)
	copy(buf, p)
	domain := fft.NewDomain(uint64(size), fft.WithShift(*offset))
	domain.FFT(buf, fft.DIF, fft.OnCoset())
	fft.BitReverse(buf)

	want := domainSize * blowupFactor
	step := len(buf) / want
	if step*want != len(buf) {
		return nil, fmt.Errorf("%w: %d evaluations cannot reduce to %d", ErrFFTDomain, len(buf), want)
	}
	if step == 1 {
		return buf, nil
	}
	res := make([]fr.Element, want)
	for i := range res {
		res[i] = buf[i*step]
	}
	return res, nil
}

// InterpolateOffsetFFT returns the polynomial of degree < len(evaluations)
// whose evaluation on the coset offset*<g> equals evaluations, where g is the
// canonical primitive root of order len(evaluations).
func InterpolateOffsetFFT(evaluations []fr.Element, offset *fr.Element) (Polynomial, error) {
	if !utils.IsPowerOfTwo(len(evaluations)) {
		return nil, fmt.Errorf("%w: %d evaluations", ErrFFTDomain, len(evaluations))
	}
	if offset.IsZero() {
		return nil, fmt.Errorf("%w: zero coset offset", ErrFFTDomain)
	}
	buf := make([]fr.Element, len(evaluations))
	copy(buf, evaluations)
	domain := fft.NewDomain(uint64(len(buf)), fft.WithShift(*offset))
	domain.FFTInverse(buf, fft.DIF, fft.OnCoset())
	fft.BitReverse(buf)
	return Polynomial(buf), nil
}

// InterpolateFFT interpolates evaluations taken on the plain roots-of-unity
// domain of order len(evaluations).
func InterpolateFFT(evaluations []fr.Element) (Polynomial, error) {
	if !utils.IsPowerOfTwo(len(evaluations)) {
		return nil, fmt.Errorf("%w: %d evaluations", ErrFFTDomain, len(evaluations))
	}
	buf := make([]fr.Element, len(evaluations))
	copy(buf, evaluations)
	domain := fft.NewDomain(uint64(len(buf)))
	domain.FFTInverse(buf, fft.DIF)
	fft.BitReverse(buf)
	return Polynomial(buf), nil
}
