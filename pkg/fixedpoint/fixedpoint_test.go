// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fixedpoint

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

// requireApprox asserts got is within 1e-9 relative error of want,
// the bound documented on ExpWad.
func requireApprox(t *testing.T, want, got *uint256.Int) {
	t.Helper()
	diff := new(uint256.Int)
	if want.Gt(got) {
		diff.Sub(want, got)
	} else {
		diff.Sub(got, want)
	}
	scaled := new(uint256.Int).Mul(diff, uint256.NewInt(1_000_000_000))
	require.False(t, scaled.Gt(want), "want %s, got %s", want, got)
}

func TestMulWad(t *testing.T) {
	require := require.New(t)

	got, err := MulWad(FromUint64(3), FromUint64(4))
	require.NoError(err)
	require.Equal(FromUint64(12), got)

	got, err = MulWad(FromUint64(1000), uint256.NewInt(500_000_000_000_000_000)) // 1000 * 0.5
	require.NoError(err)
	require.Equal(FromUint64(500), got)

	got, err = MulWad(new(uint256.Int), FromUint64(7))
	require.NoError(err)
	require.True(got.IsZero())
}

func TestMulWadOverflow(t *testing.T) {
	require := require.New(t)

	max := new(uint256.Int).SetAllOne()
	_, err := MulWad(max, uint256.NewInt(2))
	require.ErrorIs(err, ErrOverflow)
}

func TestDivWad(t *testing.T) {
	require := require.New(t)

	got, err := DivWad(FromUint64(10), FromUint64(4))
	require.NoError(err)
	require.Equal(uint256.NewInt(2_500_000_000_000_000_000), got)

	_, err = DivWad(FromUint64(1), new(uint256.Int))
	require.ErrorIs(err, ErrDomain)

	max := new(uint256.Int).SetAllOne()
	_, err = DivWad(max, FromUint64(2))
	require.ErrorIs(err, ErrOverflow)
}

func TestExpWadReferenceValues(t *testing.T) {
	cases := []struct {
		name string
		x    *uint256.Int
		want *uint256.Int
	}{
		{"e^0", new(uint256.Int), uint256.MustFromDecimal("1000000000000000000")},
		{"e^0.5", uint256.NewInt(500_000_000_000_000_000), uint256.MustFromDecimal("1648721270700128147")},
		{"e^ln2", uint256.NewInt(693_147_180_559_945_309), uint256.MustFromDecimal("2000000000000000000")},
		{"e^1", FromUint64(1), uint256.MustFromDecimal("2718281828459045235")},
		{"e^2", FromUint64(2), uint256.MustFromDecimal("7389056098930650227")},
		{"e^5", FromUint64(5), uint256.MustFromDecimal("148413159102576603421")},
		{"e^10", FromUint64(10), uint256.MustFromDecimal("22026465794806716516958")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExpWad(tc.x)
			require.NoError(t, err)
			requireApprox(t, tc.want, got)
		})
	}
}

func TestExpWadMonotonic(t *testing.T) {
	require := require.New(t)

	prev := new(uint256.Int)
	for i := uint64(0); i <= 120; i++ {
		got, err := ExpWad(FromUint64(i))
		require.NoError(err)
		require.True(got.Gt(prev), "exp must be strictly increasing at x=%d", i)
		prev = got
	}
}

func TestExpWadDomain(t *testing.T) {
	require := require.New(t)

	_, err := ExpWad(FromUint64(135))
	require.NoError(err)

	_, err = ExpWad(FromUint64(136))
	require.ErrorIs(err, ErrDomain)
}

func TestExpNegWad(t *testing.T) {
	require := require.New(t)

	got, err := ExpNegWad(new(uint256.Int))
	require.NoError(err)
	require.Equal(One, got)

	got, err = ExpNegWad(FromUint64(1))
	require.NoError(err)
	requireApprox(t, uint256.MustFromDecimal("367879441171442321"), got)

	got, err = ExpNegWad(FromUint64(5))
	require.NoError(err)
	requireApprox(t, uint256.MustFromDecimal("6737946999085467"), got)

	// Far decay floors to zero, never errors.
	got, err = ExpNegWad(FromUint64(50))
	require.NoError(err)
	require.True(got.IsZero())

	got, err = ExpNegWad(FromUint64(10_000))
	require.NoError(err)
	require.True(got.IsZero())
}

func TestPowWad(t *testing.T) {
	require := require.New(t)

	got, err := PowWad(FromUint64(10), 0)
	require.NoError(err)
	require.Equal(One, got)

	got, err = PowWad(FromUint64(10), 3)
	require.NoError(err)
	require.Equal(FromUint64(1000), got)

	got, err = PowWad(uint256.NewInt(1_500_000_000_000_000_000), 2)
	require.NoError(err)
	require.Equal(uint256.NewInt(2_250_000_000_000_000_000), got)

	_, err = PowWad(FromUint64(1_000_000_000), 10)
	require.ErrorIs(err, ErrOverflow)
}
