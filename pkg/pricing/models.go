// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"github.com/holiman/uint256"

	"github.com/luxfi/gda/pkg/fixedpoint"
)

// continuousPrice evaluates the continuous GDA curve: the integral of
// exponential quantity growth over [sold, sold+quantity), discounted
// by exponential time decay. The curve is normalized so the first
// unit at the start step costs exactly InitialPrice, which makes it
// the geometric series with per-unit ratio e^(decay/emission):
//
//	price = P0 * s^sold * (s^quantity - 1)/(s - 1) * e^(-decay*elapsed)
//
// Far-future queries decay the price to zero; they never fail.
func continuousPrice(p *Parameters, sold, quantity, elapsed uint64) (*uint256.Int, error) {
	perUnit, err := fixedpoint.DivWad(p.DecayConstant, fixedpoint.FromUint64(p.EmissionRate))
	if err != nil {
		return nil, err
	}
	ratio, err := fixedpoint.ExpWad(perUnit)
	if err != nil {
		return nil, err
	}
	base, err := geometricSeries(p.InitialPrice, ratio, sold, quantity)
	if err != nil {
		return nil, err
	}

	exponent, err := fixedpoint.MulWad(p.DecayConstant, fixedpoint.FromUint64(elapsed))
	if err != nil {
		return nil, err
	}
	decay, err := fixedpoint.ExpNegWad(exponent)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulWad(base, decay)
}

// discretePrice evaluates the discrete GDA geometric progression:
//
//	price = P0 * scale^sold * (scale^quantity - 1)/(scale - 1)
func discretePrice(p *Parameters, sold, quantity uint64) (*uint256.Int, error) {
	return geometricSeries(p.InitialPrice, p.ScaleFactor, sold, quantity)
}

// dutchPrice evaluates the linear Dutch decay, clamping at zero once
// the discount overtakes the starting price.
func dutchPrice(p *Parameters, elapsed uint64) (*uint256.Int, error) {
	discount, err := fixedpoint.MulWad(p.DiscountRate, fixedpoint.FromUint64(elapsed))
	if err != nil {
		return nil, err
	}
	if !p.InitialPrice.Gt(discount) {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Sub(p.InitialPrice, discount), nil
}

// geometricSeries sums quantity terms of the progression starting at
// initial*ratio^offset. A ratio of exactly 1.0 is the linear limit
// initial*quantity; the quotient form would divide by zero there.
func geometricSeries(initial, ratio *uint256.Int, offset, quantity uint64) (*uint256.Int, error) {
	if ratio.Eq(fixedpoint.One) {
		return fixedpoint.MulWad(initial, fixedpoint.FromUint64(quantity))
	}

	shift, err := fixedpoint.PowWad(ratio, offset)
	if err != nil {
		return nil, err
	}
	grown, err := fixedpoint.PowWad(ratio, quantity)
	if err != nil {
		return nil, err
	}

	num := new(uint256.Int).Sub(grown, fixedpoint.One)
	den := new(uint256.Int).Sub(ratio, fixedpoint.One)
	frac, err := fixedpoint.DivWad(num, den)
	if err != nil {
		return nil, err
	}

	scaled, err := fixedpoint.MulWad(initial, shift)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulWad(scaled, frac)
}
