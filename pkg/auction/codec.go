// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auction

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"

	"github.com/luxfi/gda/pkg/pricing"
)

// storedRecord is the CBOR wire form of a Record. Wad values travel
// as big-endian bytes; absent parameters are empty.
type storedRecord struct {
	ID            []byte `cbor:"id"`
	Seller        string `cbor:"seller"`
	TokenID       uint64 `cbor:"token_id,omitempty"`
	Kind          uint8  `cbor:"kind"`
	InitialPrice  []byte `cbor:"initial_price"`
	DecayConstant []byte `cbor:"decay_constant,omitempty"`
	EmissionRate  uint64 `cbor:"emission_rate,omitempty"`
	ScaleFactor   []byte `cbor:"scale_factor,omitempty"`
	DiscountRate  []byte `cbor:"discount_rate,omitempty"`
	DurationSteps uint64 `cbor:"duration_steps,omitempty"`
	StartStep     uint64 `cbor:"start_step"`
	QuantitySold  uint64 `cbor:"quantity_sold"`
	Sold          bool   `cbor:"sold"`
}

func encodeRecord(rec *Record) ([]byte, error) {
	s := storedRecord{
		ID:            rec.ID.Bytes(),
		Seller:        rec.Seller,
		TokenID:       rec.TokenID,
		Kind:          uint8(rec.Params.Kind),
		InitialPrice:  wadBytes(rec.Params.InitialPrice),
		DecayConstant: wadBytes(rec.Params.DecayConstant),
		EmissionRate:  rec.Params.EmissionRate,
		ScaleFactor:   wadBytes(rec.Params.ScaleFactor),
		DiscountRate:  wadBytes(rec.Params.DiscountRate),
		DurationSteps: rec.Params.DurationSteps,
		StartStep:     rec.Params.StartStep,
		QuantitySold:  rec.State.QuantitySold,
		Sold:          rec.State.Sold,
	}
	return cbor.Marshal(s)
}

func decodeRecord(raw []byte) (*Record, error) {
	var s storedRecord
	if err := cbor.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if len(s.ID) != 32 {
		return nil, fmt.Errorf("bad auction ID length %d", len(s.ID))
	}

	rec := &Record{
		Seller:  s.Seller,
		TokenID: s.TokenID,
		Params: pricing.Parameters{
			Kind:          pricing.Kind(s.Kind),
			InitialPrice:  wadFromBytes(s.InitialPrice),
			DecayConstant: wadFromBytes(s.DecayConstant),
			EmissionRate:  s.EmissionRate,
			ScaleFactor:   wadFromBytes(s.ScaleFactor),
			DiscountRate:  wadFromBytes(s.DiscountRate),
			DurationSteps: s.DurationSteps,
			StartStep:     s.StartStep,
		},
		State: pricing.State{
			QuantitySold: s.QuantitySold,
			Sold:         s.Sold,
		},
	}
	copy(rec.ID[:], s.ID)
	return rec, nil
}

// wadBytes encodes nil as absent and a present zero as a single zero
// byte, so a zero-valued parameter survives the round-trip instead of
// decoding back to nil.
func wadBytes(v *uint256.Int) []byte {
	if v == nil {
		return nil
	}
	if v.IsZero() {
		return []byte{0}
	}
	return v.Bytes()
}

func wadFromBytes(b []byte) *uint256.Int {
	if len(b) == 0 {
		return nil
	}
	return new(uint256.Int).SetBytes(b)
}
