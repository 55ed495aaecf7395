// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package settlement

import (
	"github.com/luxfi/gda/pkg/ledger"
	"github.com/luxfi/gda/pkg/pricing"
)

// AssetSource is the engine's view of the asset being sold: either a
// mintable fungible supply (GDA models) or a single unique token
// (linear Dutch). Delivery is the last, all-or-nothing leg of
// settlement.
type AssetSource interface {
	// Verify checks at initialization time that the seller can
	// actually deliver through this source with the engine acting as
	// operator.
	Verify(seller, operator string) error

	// Deliver hands quantity units to the recipient.
	Deliver(operator, recipient string, quantity uint64) error
}

// MintSource sells units minted on demand from a capped supply.
type MintSource struct {
	Supply ledger.MintableSupply
}

// Verify always succeeds: minting needs no prior ownership.
func (s *MintSource) Verify(seller, operator string) error {
	return nil
}

// Deliver mints quantity units to the recipient. The supply cap
// surfaces as ErrSupplyExceeded.
func (s *MintSource) Deliver(operator, recipient string, quantity uint64) error {
	return s.Supply.Mint(recipient, quantity)
}

// NFTSource sells one unique token held by the seller.
type NFTSource struct {
	Registry ledger.UniqueAssetRegistry
	Seller   string
	TokenID  uint64
}

// Verify checks the seller owns the token and has approved the engine
// to move it.
func (s *NFTSource) Verify(seller, operator string) error {
	owner, err := s.Registry.OwnerOf(s.TokenID)
	if err != nil || owner != seller {
		return ErrNotOwner
	}
	if !s.Registry.IsApprovedForAll(seller, operator) {
		return ErrNotOwner
	}
	return nil
}

// Deliver transfers the token to the recipient.
func (s *NFTSource) Deliver(operator, recipient string, quantity uint64) error {
	if quantity != 1 {
		return pricing.ErrInvalidQuantity
	}
	return s.Registry.TransferFrom(operator, s.Seller, recipient, s.TokenID)
}
