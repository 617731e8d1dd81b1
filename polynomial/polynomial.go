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

// Package polynomial implements the dense univariate polynomial arithmetic the
// prover needs: evaluation, interpolation, exact division by a linear factor
// and the even/odd decomposition used to split the composition polynomial.
//
// The operation set is deliberately closed. In particular there is no general
// polynomial division; the only division the protocol performs is by a linear
// factor that is known (on the honest path) to divide the numerator exactly.
package polynomial

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrInterpolate is returned when interpolation points are inconsistent.
	ErrInterpolate = errors.New("polynomial: invalid interpolation points")
)

// Polynomial is a dense univariate polynomial; the i-th entry is the
// coefficient of x^i. The zero polynomial is the empty (or all-zero) slice.
type Polynomial []fr.Element

// NewMonomial returns c*x^degree.
func NewMonomial(c fr.Element, degree int) Polynomial {
	p := make(Polynomial, degree+1)
	p[degree] = c
	return p
}

// Constant returns the constant polynomial c.
func Constant(c fr.Element) Polynomial {
	return Polynomial{c}
}

// Clone returns a deep copy of p.
func (p Polynomial) Clone() Polynomial {
	q := make(Polynomial, len(p))
	copy(q, p)
	return q
}

// Degree returns the degree of p, ignoring trailing zero coefficients.
// The zero polynomial has degree -1.
func (p Polynomial) Degree() int {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsZero() {
			return i
		}
	}
	return -1
}

// IsZero returns true if every coefficient of p is zero.
func (p Polynomial) IsZero() bool {
	return p.Degree() == -1
}

// Evaluate returns p(x), computed with Horner's rule.
func (p Polynomial) Evaluate(x *fr.Element) fr.Element {
	var res fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		res.Mul(&res, x)
		res.Add(&res, &p[i])
	}
	return res
}

// Equal returns true if p and q represent the same polynomial, regardless of
// trailing zero coefficients.
func (p Polynomial) Equal(q Polynomial) bool {
	dp, dq := p.Degree(), q.Degree()
	if dp != dq {
		return false
	}
	for i := 0; i <= dp; i++ {
		if !p[i].Equal(&q[i]) {
			return false
		}
	}
	return true
}

// Add returns p + q.
func Add(p, q Polynomial) Polynomial {
	if len(q) > len(p) {
		p, q = q, p
	}
	res := p.Clone()
	for i := range q {
		res[i].Add(&res[i], &q[i])
	}
	return res
}

// Sub returns p - q.
func Sub(p, q Polynomial) Polynomial {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	res := make(Polynomial, n)
	copy(res, p)
	for i := range q {
		res[i].Sub(&res[i], &q[i])
	}
	return res
}

// Mul returns p * q (schoolbook; the prover only multiplies small zerofiers).
func Mul(p, q Polynomial) Polynomial {
	if len(p) == 0 || len(q) == 0 {
		return Polynomial{}
	}
	res := make(Polynomial, len(p)+len(q)-1)
	var t fr.Element
	for i := range p {
		if p[i].IsZero() {
			continue
		}
		for j := range q {
			t.Mul(&p[i], &q[j])
			res[i+j].Add(&res[i+j], &t)
		}
	}
	return res
}

// MulScalar returns c * p.
func MulScalar(p Polynomial, c *fr.Element) Polynomial {
	res := make(Polynomial, len(p))
	for i := range p {
		res[i].Mul(&p[i], c)
	}
	return res
}

// SubScalar returns p - c.
func SubScalar(p Polynomial, c *fr.Element) Polynomial {
	if len(p) == 0 {
		var neg fr.Element
		neg.Neg(c)
		return Polynomial{neg}
	}
	res := p.Clone()
	res[0].Sub(&res[0], c)
	return res
}

// DivideByLinearFactor returns p / (x - a) using Ruffini's rule.
//
// Precondition for exactness: a is a root of p. When it is not, the nonzero
// remainder is silently dropped; callers on the honest path guarantee the
// precondition, and the forging path relies on the pointwise variant instead.
func DivideByLinearFactor(p Polynomial, a *fr.Element) Polynomial {
	if len(p) <= 1 {
		return Polynomial{}
	}
	res := make(Polynomial, len(p)-1)
	var acc fr.Element
	for i := len(p) - 1; i >= 1; i-- {
		acc.Mul(&acc, a)
		acc.Add(&acc, &p[i])
		res[i-1] = acc
	}
	return res
}

// LinearFactor returns the polynomial (x - a).
func LinearFactor(a *fr.Element) Polynomial {
	var neg, one fr.Element
	neg.Neg(a)
	one.SetOne()
	return Polynomial{neg, one}
}

// EvenOddDecomposition splits p into (even, odd) such that
// p(x) = even(x^2) + x*odd(x^2).
func (p Polynomial) EvenOddDecomposition() (Polynomial, Polynomial) {
	even := make(Polynomial, (len(p)+1)/2)
	odd := make(Polynomial, len(p)/2)
	for i := range p {
		if i%2 == 0 {
			even[i/2] = p[i]
		} else {
			odd[i/2] = p[i]
		}
	}
	return even, odd
}

// Lagrange interpolates the unique polynomial of degree < len(xs) through the
// points (xs[i], ys[i]). The returned coefficient slice has length len(xs);
// trailing coefficients are zero when the interpolated polynomial has lower
// degree. The xs must be pairwise distinct.
func Lagrange(xs, ys []fr.Element) (Polynomial, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d points, %d values", ErrInterpolate, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return Polynomial{}, nil
	}

	// vanishing polynomial of the whole point set
	vanishing := LinearFactor(&xs[0])
	for i := 1; i < len(xs); i++ {
		vanishing = Mul(vanishing, LinearFactor(&xs[i]))
	}

	res := make(Polynomial, len(xs))
	var denom, w fr.Element
	for i := range xs {
		// basis_i = vanishing / (x - xs[i]), scaled so basis_i(xs[i]) == 1
		basis := DivideByLinearFactor(vanishing, &xs[i])
		denom = basis.Evaluate(&xs[i])
		if denom.IsZero() {
			return nil, fmt.Errorf("%w: duplicate point %s", ErrInterpolate, xs[i].String())
		}
		w.Inverse(&denom)
		w.Mul(&w, &ys[i])
		for j := range basis {
			basis[j].Mul(&basis[j], &w)
			res[j].Add(&res[j], &basis[j])
		}
	}
	return res, nil
}
