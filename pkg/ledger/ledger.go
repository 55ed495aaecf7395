// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger holds the reference implementations of the external
// asset collaborators the settlement engine consumes: a fungible
// payment ledger with allowance semantics, a unique-asset registry,
// and a capped mintable supply.
package ledger

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"

	"github.com/luxfi/gda/pkg/log"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNotOwned              = errors.New("asset not owned")
	ErrSupplyExceeded        = errors.New("supply exceeded")
	ErrUnknownToken          = errors.New("unknown token")
)

// FungibleLedger is the payment-asset interface consumed by the
// settlement engine.
type FungibleLedger interface {
	// Transfer moves amount from one account to another on the
	// authority of the from account itself.
	Transfer(from, to string, amount *uint256.Int) error

	// TransferFrom moves amount out of from on the authority of
	// spender, consuming spender's allowance.
	TransferFrom(spender, from, to string, amount *uint256.Int) error

	// BalanceOf returns the current balance of an account.
	BalanceOf(account string) *uint256.Int
}

// Book is an in-memory fungible ledger.
type Book struct {
	mu         sync.RWMutex
	balances   map[string]*uint256.Int
	allowances map[string]map[string]*uint256.Int // owner -> spender -> remaining
	log        log.Logger
}

// NewBook creates an empty fungible ledger.
func NewBook(logger log.Logger) *Book {
	return &Book{
		balances:   make(map[string]*uint256.Int),
		allowances: make(map[string]map[string]*uint256.Int),
		log:        logger,
	}
}

// Mint credits amount to an account.
func (b *Book) Mint(to string, amount *uint256.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(to, amount)
}

// Approve grants spender the right to move up to amount out of owner.
// The previous allowance is replaced, not accumulated.
func (b *Book) Approve(owner, spender string, amount *uint256.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.allowances[owner] == nil {
		b.allowances[owner] = make(map[string]*uint256.Int)
	}
	b.allowances[owner][spender] = new(uint256.Int).Set(amount)
}

// Allowance returns the remaining allowance from owner to spender.
func (b *Book) Allowance(owner, spender string) *uint256.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if a, ok := b.allowances[owner][spender]; ok {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int)
}

// BalanceOf returns the balance of an account.
func (b *Book) BalanceOf(account string) *uint256.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if bal, ok := b.balances[account]; ok {
		return new(uint256.Int).Set(bal)
	}
	return new(uint256.Int)
}

// Transfer moves amount between accounts.
func (b *Book) Transfer(from, to string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(from, to, amount)
}

// TransferFrom moves amount out of from on spender's authority.
func (b *Book) TransferFrom(spender, from, to string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if spender != from {
		allowance, ok := b.allowances[from][spender]
		if !ok || allowance.Lt(amount) {
			return ErrInsufficientAllowance
		}
		if err := b.move(from, to, amount); err != nil {
			return err
		}
		allowance.Sub(allowance, amount)
		return nil
	}
	return b.move(from, to, amount)
}

// move requires b.mu held.
func (b *Book) move(from, to string, amount *uint256.Int) error {
	bal, ok := b.balances[from]
	if !ok || bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	b.credit(to, amount)
	b.log.Debug("transfer", "from", from, "to", to, "amount", amount.String())
	return nil
}

// credit requires b.mu held.
func (b *Book) credit(to string, amount *uint256.Int) {
	bal, ok := b.balances[to]
	if !ok {
		bal = new(uint256.Int)
		b.balances[to] = bal
	}
	bal.Add(bal, amount)
}
