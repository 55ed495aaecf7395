// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package settlement orchestrates purchases against gradual auctions:
// it computes the price for the requested quantity, validates the bid,
// performs the escrowed asset exchange, and commits the new auction
// state. A purchase either fully commits or leaves every ledger and
// the auction state exactly as they were.
package settlement

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/luxfi/gda/pkg/auction"
	"github.com/luxfi/gda/pkg/clock"
	"github.com/luxfi/gda/pkg/ids"
	"github.com/luxfi/gda/pkg/ledger"
	"github.com/luxfi/gda/pkg/log"
	"github.com/luxfi/gda/pkg/metric"
	"github.com/luxfi/gda/pkg/pricing"
)

var (
	// ErrInsufficientPayment rejects bids below the computed price.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrNotOwner rejects initialization by a seller who cannot
	// deliver the auctioned asset.
	ErrNotOwner = errors.New("seller does not control auctioned asset")

	// ErrSelfPurchase rejects a seller buying their own single-item
	// auction.
	ErrSelfPurchase = errors.New("seller cannot purchase own auction")

	// ErrSourceUnbound indicates an auction record without a bound
	// asset source; sources must be rebound after a restart.
	ErrSourceUnbound = errors.New("no asset source bound to auction")
)

// PurchaseRequest describes one settlement attempt. MaxPayment is the
// wad upper bound the buyer will pay; the difference to the computed
// price is refunded.
type PurchaseRequest struct {
	Quantity   uint64
	Buyer      string
	Recipient  string
	MaxPayment *uint256.Int
}

// SettlementResult reports what a successful purchase cost.
type SettlementResult struct {
	ActualPrice *uint256.Int
	Refund      *uint256.Int
}

// Engine is the settlement orchestrator. It owns the auction registry
// and serializes settlement per auction, so a purchase always prices
// against the state before it applies.
type Engine struct {
	registry *auction.Registry
	payments ledger.FungibleLedger
	clock    clock.Clock

	// account is the engine's own ledger account, used both as the
	// transfer operator and as the escrow for in-flight payments.
	account string

	mu      sync.Mutex
	sources map[ids.ID]AssetSource
	locks   map[ids.ID]*sync.Mutex

	log     log.Logger
	metrics *metric.Metrics
}

// NewEngine creates a settlement engine settling through the given
// payment ledger under the named escrow account.
func NewEngine(registry *auction.Registry, payments ledger.FungibleLedger, clk clock.Clock, account string, logger log.Logger, metrics *metric.Metrics) *Engine {
	return &Engine{
		registry: registry,
		payments: payments,
		clock:    clk,
		account:  account,
		sources:  make(map[ids.ID]AssetSource),
		locks:    make(map[ids.ID]*sync.Mutex),
		log:      logger,
		metrics:  metrics,
	}
}

// Account returns the engine's escrow/operator account name. Buyers
// must approve it on the payment ledger before purchasing.
func (e *Engine) Account() string {
	return e.account
}

// Initialize creates a new auction from immutable parameters, binding
// the asset source that will deliver sold units. The auction ID is
// derived deterministically from seller and parameters.
func (e *Engine) Initialize(seller string, params pricing.Parameters, tokenID uint64, src AssetSource) (ids.ID, error) {
	if err := params.Validate(); err != nil {
		return ids.Empty, err
	}
	if err := src.Verify(seller, e.account); err != nil {
		return ids.Empty, err
	}

	id := auction.DeriveID(seller, &params)
	rec := &auction.Record{
		ID:      id,
		Seller:  seller,
		TokenID: tokenID,
		Params:  params,
	}
	if err := e.registry.Initialize(rec); err != nil {
		return ids.Empty, err
	}

	e.mu.Lock()
	e.sources[id] = src
	e.mu.Unlock()

	e.metrics.AuctionsInitialized.Inc()
	return id, nil
}

// IsInitialized reports whether an auction exists.
func (e *Engine) IsInitialized(id ids.ID) bool {
	return e.registry.IsInitialized(id)
}

// BindSource attaches an asset source to an existing auction, for
// rebinding after the engine restarts over persisted records.
func (e *Engine) BindSource(id ids.ID, src AssetSource) error {
	if !e.registry.IsInitialized(id) {
		return auction.ErrNotFound
	}
	e.mu.Lock()
	e.sources[id] = src
	e.mu.Unlock()
	return nil
}

// Get returns the auction record for inspection.
func (e *Engine) Get(id ids.ID) (*auction.Record, error) {
	return e.registry.Get(id)
}

// PurchasePrice computes the current price of buying quantity units.
// It is read-only and idempotent: identical (auction, quantity, step)
// queries return identical prices.
func (e *Engine) PurchasePrice(id ids.ID, quantity uint64) (*uint256.Int, error) {
	rec, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}

	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	e.metrics.PriceQueries.Inc()
	return pricing.Evaluate(&rec.Params, &rec.State, quantity, e.clock.Now())
}

// Purchase executes the settlement contract: price the request
// against pre-purchase state, validate the bid, run the escrowed
// exchange, commit state. Any failure leaves no observable effect.
func (e *Engine) Purchase(id ids.ID, req *PurchaseRequest) (*SettlementResult, error) {
	started := time.Now()

	rec, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	src := e.sourceFor(id)
	if src == nil {
		return nil, ErrSourceUnbound
	}

	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	now := e.clock.Now()

	if rec.Params.Kind == pricing.KindLinearDutch && req.Buyer == rec.Seller {
		return nil, e.reject(ErrSelfPurchase)
	}

	price, err := pricing.Evaluate(&rec.Params, &rec.State, req.Quantity, now)
	if err != nil {
		return nil, e.reject(err)
	}

	maxPayment := req.MaxPayment
	if maxPayment == nil {
		maxPayment = new(uint256.Int)
	}
	if price.Gt(maxPayment) {
		return nil, e.reject(ErrInsufficientPayment)
	}

	if rec.Params.Kind == pricing.KindContinuousGDA {
		if req.Quantity > e.emittable(rec, now) {
			return nil, e.reject(ledger.ErrSupplyExceeded)
		}
	}

	if err := e.exchange(rec, src, req, price, maxPayment); err != nil {
		return nil, e.reject(err)
	}

	// Commit the post-purchase state. The asset legs are final; a
	// storage failure here is logged, not unwound.
	if rec.Params.Kind == pricing.KindLinearDutch {
		rec.State.Sold = true
	} else {
		rec.State.QuantitySold += req.Quantity
	}
	if err := e.registry.Commit(rec); err != nil {
		e.log.Error("auction state persist failed",
			"auction", id.String(), "error", err)
	}

	refund := new(uint256.Int).Sub(maxPayment, price)
	e.metrics.PurchasesSettled.WithLabelValues(rec.Params.Kind.String()).Inc()
	e.metrics.SettledVolume.Add(float64(req.Quantity))
	e.metrics.SettlementDuration.Observe(time.Since(started).Seconds())
	e.log.Info("purchase settled",
		"auction", id.String(),
		"model", rec.Params.Kind.String(),
		"buyer", req.Buyer,
		"quantity", req.Quantity,
		"price", price.String(),
		"refund", refund.String())

	return &SettlementResult{ActualPrice: price, Refund: refund}, nil
}

// exchange runs the three payment legs plus asset delivery. The full
// bid is pulled into escrow first; if delivery then fails, the escrow
// leg is compensated before returning, so callers never observe a
// partial exchange.
func (e *Engine) exchange(rec *auction.Record, src AssetSource, req *PurchaseRequest, price, maxPayment *uint256.Int) error {
	if err := e.payments.TransferFrom(e.account, req.Buyer, e.account, maxPayment); err != nil {
		return err
	}

	if err := src.Deliver(e.account, req.Recipient, req.Quantity); err != nil {
		if cerr := e.payments.Transfer(e.account, req.Buyer, maxPayment); cerr != nil {
			e.log.Error("escrow compensation failed",
				"auction", rec.ID.String(), "error", cerr)
		}
		return err
	}

	// The escrow holds maxPayment >= price, so these legs cannot
	// fail on balance.
	if err := e.payments.Transfer(e.account, rec.Seller, price); err != nil {
		return err
	}
	refund := new(uint256.Int).Sub(maxPayment, price)
	if !refund.IsZero() {
		if err := e.payments.Transfer(e.account, req.Buyer, refund); err != nil {
			return err
		}
	}
	return nil
}

// emittable returns how many units the emission schedule still allows
// at the given step: the current step's emission is sellable up
// front, minus everything already sold.
func (e *Engine) emittable(rec *auction.Record, now uint64) uint64 {
	elapsed := now - rec.Params.StartStep
	available := uint64(math.MaxUint64)
	if steps := elapsed + 1; steps < math.MaxUint64/rec.Params.EmissionRate {
		available = rec.Params.EmissionRate * steps
	}
	if rec.State.QuantitySold >= available {
		return 0
	}
	return available - rec.State.QuantitySold
}

func (e *Engine) lockFor(id ids.ID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}

func (e *Engine) sourceFor(id ids.ID) AssetSource {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sources[id]
}

// reject counts a rejected purchase under its taxonomy reason and
// passes the error through unchanged.
func (e *Engine) reject(err error) error {
	e.metrics.PurchasesRejected.WithLabelValues(rejectReason(err)).Inc()
	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, ledger.ErrSupplyExceeded):
		return "supply_exceeded"
	case errors.Is(err, pricing.ErrAlreadySold):
		return "already_sold"
	case errors.Is(err, pricing.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrSelfPurchase):
		return "self_purchase"
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ledger.ErrInsufficientAllowance):
		return "insufficient_allowance"
	default:
		return "domain"
	}
}
