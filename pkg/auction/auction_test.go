// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auction

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/gda/pkg/fixedpoint"
	"github.com/luxfi/gda/pkg/log"
	"github.com/luxfi/gda/pkg/pricing"
	"github.com/luxfi/gda/pkg/storage"
)

func testRecord() *Record {
	params := pricing.Parameters{
		Kind:          pricing.KindDiscreteGDA,
		InitialPrice:  fixedpoint.FromUint64(1000),
		ScaleFactor:   fixedpoint.FromUint64(10),
		StartStep:     7,
	}
	return &Record{
		ID:     DeriveID("seller-1", &params),
		Seller: "seller-1",
		Params: params,
	}
}

func TestRegistryInitialize(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(nil, log.NoOp())
	rec := testRecord()

	require.False(reg.IsInitialized(rec.ID))
	require.NoError(reg.Initialize(rec))
	require.True(reg.IsInitialized(rec.ID))

	err := reg.Initialize(testRecord())
	require.ErrorIs(err, ErrAlreadyInitialized)

	got, err := reg.Get(rec.ID)
	require.NoError(err)
	require.Equal(rec, got)
}

func TestRegistryRejectsInvalidParameters(t *testing.T) {
	require := require.New(t)

	reg := NewRegistry(nil, log.NoOp())
	rec := testRecord()
	rec.Params.ScaleFactor = nil

	err := reg.Initialize(rec)
	require.ErrorIs(err, pricing.ErrInvalidParameters)
	require.False(reg.IsInitialized(rec.ID))
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := NewRegistry(nil, log.NoOp())
	_, err := reg.Get(testRecord().ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryPersistence(t *testing.T) {
	require := require.New(t)

	db := storage.NewMemory()
	reg := NewRegistry(db, log.NoOp())

	rec := testRecord()
	rec.TokenID = 5042
	require.NoError(reg.Initialize(rec))

	rec.State.QuantitySold = 4
	require.NoError(reg.Commit(rec))

	// A fresh registry over the same database sees the committed state.
	reloaded := NewRegistry(db, log.NoOp())
	got, err := reloaded.Get(rec.ID)
	require.NoError(err)
	require.Equal(rec.Seller, got.Seller)
	require.Equal(rec.TokenID, got.TokenID)
	require.Equal(rec.Params.Kind, got.Params.Kind)
	require.Equal(rec.Params.InitialPrice, got.Params.InitialPrice)
	require.Equal(rec.Params.ScaleFactor, got.Params.ScaleFactor)
	require.Equal(rec.Params.StartStep, got.Params.StartStep)
	require.Equal(uint64(4), got.State.QuantitySold)

	// Initialization collides with the persisted record too.
	err = reloaded.Initialize(testRecord())
	require.ErrorIs(err, ErrAlreadyInitialized)
}

func TestDeriveIDDeterministic(t *testing.T) {
	require := require.New(t)

	a := testRecord()
	b := testRecord()
	require.Equal(a.ID, b.ID)

	b.Params.StartStep = 8
	require.NotEqual(a.ID, DeriveID(b.Seller, &b.Params))
	require.NotEqual(a.ID, DeriveID("other-seller", &a.Params))
}

// Each model leaves a different subset of the wad parameters unset;
// derivation must handle every one of them.
func TestDeriveIDHandlesAbsentParameters(t *testing.T) {
	require := require.New(t)

	params := []pricing.Parameters{
		{
			Kind:          pricing.KindContinuousGDA,
			InitialPrice:  fixedpoint.FromUint64(1000),
			DecayConstant: fixedpoint.FromUint64(5),
			EmissionRate:  10,
		},
		{
			Kind:         pricing.KindDiscreteGDA,
			InitialPrice: fixedpoint.FromUint64(1000),
			ScaleFactor:  fixedpoint.FromUint64(10),
		},
		{
			Kind:          pricing.KindLinearDutch,
			InitialPrice:  fixedpoint.FromUint64(500),
			DiscountRate:  fixedpoint.FromUint64(1),
			DurationSteps: 30,
		},
	}

	seen := make(map[string]bool)
	for _, p := range params {
		require.NoError(p.Validate())
		id := DeriveID("seller-1", &p)
		require.False(id.IsEmpty())
		require.False(seen[id.String()])
		seen[id.String()] = true
	}
}

func TestRecordCodecRoundTrip(t *testing.T) {
	require := require.New(t)

	rec := &Record{
		ID:      testRecord().ID,
		Seller:  "seller-1",
		TokenID: 793,
		Params: pricing.Parameters{
			Kind:          pricing.KindContinuousGDA,
			InitialPrice:  fixedpoint.FromUint64(1000),
			DecayConstant: fixedpoint.FromUint64(5),
			EmissionRate:  10,
			StartStep:     3,
		},
		State: pricing.State{QuantitySold: 12},
	}

	raw, err := encodeRecord(rec)
	require.NoError(err)

	got, err := decodeRecord(raw)
	require.NoError(err)
	require.Equal(rec, got)
}

// A constant-price Dutch auction has a present-but-zero discount rate;
// it must decode as zero, not as absent.
func TestRecordCodecPreservesZeroWad(t *testing.T) {
	require := require.New(t)

	params := pricing.Parameters{
		Kind:          pricing.KindLinearDutch,
		InitialPrice:  fixedpoint.FromUint64(500),
		DiscountRate:  new(uint256.Int),
		DurationSteps: 30,
	}
	require.NoError(params.Validate())

	rec := &Record{
		ID:     DeriveID("seller-1", &params),
		Seller: "seller-1",
		Params: params,
	}

	raw, err := encodeRecord(rec)
	require.NoError(err)
	got, err := decodeRecord(raw)
	require.NoError(err)

	require.NotNil(got.Params.DiscountRate)
	require.True(got.Params.DiscountRate.IsZero())
	require.Nil(got.Params.DecayConstant)
	require.Nil(got.Params.ScaleFactor)
}
