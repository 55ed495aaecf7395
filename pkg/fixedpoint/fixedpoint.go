// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fixedpoint implements deterministic 1e18-scaled ("wad")
// unsigned fixed-point arithmetic on 256-bit integers. No floating
// point is used anywhere; every operation either returns an exact
// floor-rounded result or fails explicitly with ErrOverflow or
// ErrDomain. The exponential approximation carries a maximum relative
// error below 1e-9 over its accepted domain (see ExpWad).
package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow is returned when an intermediate term would exceed
	// the representable range instead of silently wrapping.
	ErrOverflow = errors.New("fixed-point overflow")

	// ErrDomain is returned when an input falls outside the validated
	// approximation range of an operation.
	ErrDomain = errors.New("fixed-point input outside valid domain")
)

var (
	// One is the wad scaling factor, 1e18.
	One = uint256.NewInt(1_000_000_000_000_000_000)

	// ln2Wad is ln(2) scaled by 1e18.
	ln2Wad = uint256.NewInt(693_147_180_559_945_309)

	// maxExpInput bounds ExpWad arguments at 135.0: beyond that the
	// result cannot be represented in 256 bits at wad scale.
	maxExpInput = new(uint256.Int).Mul(uint256.NewInt(135), One)
)

// expTaylorTerms is the series degree for the reduced-range Taylor
// expansion. With the argument reduced into [0, ln 2) the truncation
// error after 20 terms is below 1e-20 relative; accumulated floor
// rounding stays under 1e-16 relative.
const expTaylorTerms = 20

// FromUint64 converts a whole number to its wad representation.
func FromUint64(v uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(v), One)
}

// MulWad returns a*b/1e18, flooring. Fails with ErrOverflow when the
// 256-bit intermediate product would wrap.
func MulWad(a, b *uint256.Int) (*uint256.Int, error) {
	p, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return p.Div(p, One), nil
}

// DivWad returns a*1e18/b, flooring. Fails with ErrDomain on division
// by zero and ErrOverflow when the scaled numerator would wrap.
func DivWad(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDomain
	}
	p, overflow := new(uint256.Int).MulOverflow(a, One)
	if overflow {
		return nil, ErrOverflow
	}
	return p.Div(p, b), nil
}

// ExpWad evaluates e^x for a wad-scaled x in [0, 135]. Arguments above
// the bound fail with ErrDomain rather than returning an
// unbounded-error result. The argument is reduced as x = n*ln2 + r
// with r in [0, ln2), exp(r) is evaluated by Taylor series, and the
// result is shifted left by n. Maximum relative error: < 1e-9.
func ExpWad(x *uint256.Int) (*uint256.Int, error) {
	if x.Gt(maxExpInput) {
		return nil, ErrDomain
	}
	if x.IsZero() {
		return new(uint256.Int).Set(One), nil
	}

	n := new(uint256.Int).Div(x, ln2Wad)
	r := new(uint256.Int).Mul(n, ln2Wad)
	r.Sub(x, r)

	sum := new(uint256.Int).Set(One)
	term := new(uint256.Int).Set(One)
	for i := uint64(1); i <= expTaylorTerms; i++ {
		term.Mul(term, r)
		term.Div(term, One)
		term.Div(term, uint256.NewInt(i))
		if term.IsZero() {
			break
		}
		sum.Add(sum, term)
	}

	shift := uint(n.Uint64())
	if uint(sum.BitLen())+shift > 255 {
		return nil, ErrOverflow
	}
	return sum.Lsh(sum, shift), nil
}

// ExpNegWad evaluates e^-x for a wad-scaled x >= 0. Results smaller
// than one wad unit floor to zero; arguments beyond the ExpWad domain
// clamp to zero as well, so decay never underflows into an error.
func ExpNegWad(x *uint256.Int) (*uint256.Int, error) {
	if x.IsZero() {
		return new(uint256.Int).Set(One), nil
	}
	if x.Gt(maxExpInput) {
		return new(uint256.Int), nil
	}
	ex, err := ExpWad(x)
	if err != nil {
		return nil, err
	}
	return DivWad(One, ex)
}

// PowWad raises a wad-scaled base to a whole-number exponent by
// square-and-multiply. exponent 0 yields 1.0.
func PowWad(base *uint256.Int, exponent uint64) (*uint256.Int, error) {
	result := new(uint256.Int).Set(One)
	sq := new(uint256.Int).Set(base)
	for e := exponent; e > 0; e >>= 1 {
		if e&1 == 1 {
			r, err := MulWad(result, sq)
			if err != nil {
				return nil, err
			}
			result = r
		}
		if e > 1 {
			s, err := MulWad(sq, sq)
			if err != nil {
				return nil, err
			}
			sq = s
		}
	}
	return result, nil
}
