// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pricing implements the three gradual-auction price models
// as pure functions over immutable parameters and auction state.
// Prices are wad-scaled (1e18) unsigned fixed-point values; quantities
// and steps are whole numbers.
package pricing

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/gda/pkg/fixedpoint"
)

// Kind selects the price model variant for an auction.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindContinuousGDA
	KindDiscreteGDA
	KindLinearDutch
)

// String returns the model name used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindContinuousGDA:
		return "continuous_gda"
	case KindDiscreteGDA:
		return "discrete_gda"
	case KindLinearDutch:
		return "linear_dutch"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidQuantity rejects zero-quantity requests and non-unit
	// requests against single-item auctions.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidParameters rejects malformed auction parameters.
	ErrInvalidParameters = errors.New("invalid auction parameters")

	// ErrAlreadySold is the terminal-state error for single-item
	// auctions.
	ErrAlreadySold = errors.New("auction already sold")

	// ErrBeforeStart rejects queries issued before the auction's
	// start step; it is a domain error, not a transient condition.
	ErrBeforeStart = fmt.Errorf("%w: query before auction start", fixedpoint.ErrDomain)
)

// Parameters are the immutable pricing inputs fixed at auction
// creation. Which fields apply depends on Kind.
type Parameters struct {
	Kind Kind

	// InitialPrice is the wad price of the first unit at the start
	// step (the starting price for linear Dutch auctions).
	InitialPrice *uint256.Int

	// DecayConstant is the wad per-step exponential decay rate
	// (continuous GDA).
	DecayConstant *uint256.Int

	// EmissionRate is the number of units released for sale per step
	// (continuous GDA).
	EmissionRate uint64

	// ScaleFactor is the wad per-unit geometric price multiplier
	// (discrete GDA). Must be >= 1.0; exactly 1.0 degrades the
	// geometric sum to linear pricing.
	ScaleFactor *uint256.Int

	// DiscountRate is the wad price reduction per elapsed step
	// (linear Dutch).
	DiscountRate *uint256.Int

	// DurationSteps is the advertised decay horizon of a linear
	// Dutch auction. The price keeps decaying past it and clamps at
	// zero; purchases stay valid until the item sells.
	DurationSteps uint64

	// StartStep is the clock reading at which the auction begins.
	// Prices before it are undefined.
	StartStep uint64
}

// Validate checks parameter consistency for the selected model.
func (p *Parameters) Validate() error {
	if p.InitialPrice == nil || p.InitialPrice.IsZero() {
		return fmt.Errorf("%w: initial price must be positive", ErrInvalidParameters)
	}
	switch p.Kind {
	case KindContinuousGDA:
		if p.DecayConstant == nil || p.DecayConstant.IsZero() {
			return fmt.Errorf("%w: decay constant must be positive", ErrInvalidParameters)
		}
		if p.EmissionRate == 0 {
			return fmt.Errorf("%w: emission rate must be positive", ErrInvalidParameters)
		}
	case KindDiscreteGDA:
		if p.ScaleFactor == nil || p.ScaleFactor.Lt(fixedpoint.One) {
			return fmt.Errorf("%w: scale factor must be >= 1", ErrInvalidParameters)
		}
	case KindLinearDutch:
		if p.DiscountRate == nil {
			return fmt.Errorf("%w: discount rate required", ErrInvalidParameters)
		}
	default:
		return fmt.Errorf("%w: unknown model kind %d", ErrInvalidParameters, p.Kind)
	}
	return nil
}

// State is the mutable progress of one auction. QuantitySold applies
// to the GDA models and never decreases; Sold applies to single-item
// linear Dutch auctions and transitions false->true exactly once.
type State struct {
	QuantitySold uint64
	Sold         bool
}

// Evaluate computes the wad price of purchasing quantity units at the
// given step, strictly from the state before the purchase applies.
// It is pure: no field of p or st is mutated.
func Evaluate(p *Parameters, st *State, quantity uint64, now uint64) (*uint256.Int, error) {
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	if now < p.StartStep {
		return nil, ErrBeforeStart
	}
	elapsed := now - p.StartStep

	switch p.Kind {
	case KindContinuousGDA:
		return continuousPrice(p, st.QuantitySold, quantity, elapsed)
	case KindDiscreteGDA:
		return discretePrice(p, st.QuantitySold, quantity)
	case KindLinearDutch:
		if st.Sold {
			return nil, ErrAlreadySold
		}
		if quantity != 1 {
			return nil, ErrInvalidQuantity
		}
		return dutchPrice(p, elapsed)
	default:
		return nil, fmt.Errorf("%w: unknown model kind %d", ErrInvalidParameters, p.Kind)
	}
}
