// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// wadDecimals is the fixed-point scale of all on-ledger amounts.
const wadDecimals = 18

var errBadAmount = errors.New("bad amount")

// wadToDecimal renders a wad as a token-unit decimal string, so the
// API speaks "1000.5" rather than raw 1e18-scaled integers.
func wadToDecimal(v *uint256.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v.ToBig(), -wadDecimals)
}

// decimalToWad parses a token-unit decimal string into a wad. Negative
// amounts and more than 18 fractional digits are rejected.
func decimalToWad(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errBadAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount %s", errBadAmount, s)
	}
	scaled := d.Shift(wadDecimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: more than %d decimals in %s", errBadAmount, wadDecimals, s)
	}
	wad, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: amount %s out of range", errBadAmount, s)
	}
	return wad, nil
}
