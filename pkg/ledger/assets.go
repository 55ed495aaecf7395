// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"sync"
)

// UniqueAssetRegistry is the unique-asset (NFT) interface consumed by
// linear Dutch auctions.
type UniqueAssetRegistry interface {
	OwnerOf(tokenID uint64) (string, error)
	TransferFrom(operator, from, to string, tokenID uint64) error
	IsApprovedForAll(owner, operator string) bool
}

// TokenRegistry is an in-memory unique-asset registry.
type TokenRegistry struct {
	mu        sync.RWMutex
	owners    map[uint64]string
	operators map[string]map[string]bool // owner -> operator -> approved
}

// NewTokenRegistry creates an empty registry.
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		owners:    make(map[uint64]string),
		operators: make(map[string]map[string]bool),
	}
}

// Mint assigns a fresh token to an owner.
func (r *TokenRegistry) Mint(to string, tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.owners[tokenID]; exists {
		return ErrNotOwned
	}
	r.owners[tokenID] = to
	return nil
}

// OwnerOf returns the owner of tokenID.
func (r *TokenRegistry) OwnerOf(tokenID uint64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[tokenID]
	if !ok {
		return "", ErrUnknownToken
	}
	return owner, nil
}

// SetApprovalForAll grants or revokes operator rights over all of
// owner's tokens.
func (r *TokenRegistry) SetApprovalForAll(owner, operator string, approved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.operators[owner] == nil {
		r.operators[owner] = make(map[string]bool)
	}
	r.operators[owner][operator] = approved
}

// IsApprovedForAll reports whether operator may move owner's tokens.
func (r *TokenRegistry) IsApprovedForAll(owner, operator string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.operators[owner][operator]
}

// TransferFrom moves tokenID from its owner to another account on the
// authority of operator.
func (r *TokenRegistry) TransferFrom(operator, from, to string, tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[tokenID]
	if !ok {
		return ErrUnknownToken
	}
	if owner != from {
		return ErrNotOwned
	}
	if operator != owner && !r.operators[owner][operator] {
		return ErrNotOwned
	}
	r.owners[tokenID] = to
	return nil
}

// MintableSupply is the fungible-mint interface consumed by GDA
// auctions: the auctioned asset is created on demand up to a cap.
type MintableSupply interface {
	// Mint delivers quantity fresh units to an account, failing with
	// ErrSupplyExceeded once the cap is reached.
	Mint(to string, quantity uint64) error
	Minted() uint64
	Cap() uint64
}

// MintableToken is an in-memory capped supply. A zero cap means
// unbounded.
type MintableToken struct {
	mu       sync.RWMutex
	symbol   string
	cap      uint64
	minted   uint64
	holdings map[string]uint64
}

// NewMintableToken creates a supply with the given cap (0 = unbounded).
func NewMintableToken(symbol string, cap uint64) *MintableToken {
	return &MintableToken{
		symbol:   symbol,
		cap:      cap,
		holdings: make(map[string]uint64),
	}
}

// Mint creates quantity units for an account.
func (m *MintableToken) Mint(to string, quantity uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cap > 0 && m.minted+quantity > m.cap {
		return ErrSupplyExceeded
	}
	m.minted += quantity
	m.holdings[to] += quantity
	return nil
}

// Minted returns the cumulative minted quantity.
func (m *MintableToken) Minted() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.minted
}

// Cap returns the supply cap (0 = unbounded).
func (m *MintableToken) Cap() uint64 {
	return m.cap
}

// Symbol returns the token symbol.
func (m *MintableToken) Symbol() string {
	return m.symbol
}

// BalanceOf returns an account's holding.
func (m *MintableToken) BalanceOf(account string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.holdings[account]
}
