// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auction owns the registry of auctions: one immutable
// parameter set plus one mutable state record per auction ID,
// persisted through the storage layer.
package auction

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/luxfi/gda/pkg/ids"
	"github.com/luxfi/gda/pkg/log"
	"github.com/luxfi/gda/pkg/pricing"
	"github.com/luxfi/gda/pkg/storage"
)

var (
	// ErrAlreadyInitialized rejects a second initialization of the
	// same auction ID.
	ErrAlreadyInitialized = errors.New("auction already initialized")

	// ErrNotFound is returned for unknown auction IDs.
	ErrNotFound = errors.New("auction not found")
)

// Record pairs an auction's immutable parameters with its mutable
// state. Params never change after Initialize; State is mutated only
// by the settlement engine on successful settlement.
type Record struct {
	ID      ids.ID
	Seller  string
	TokenID uint64 // auctioned item for linear Dutch auctions
	Params  pricing.Parameters
	State   pricing.State
}

// DeriveID computes the deterministic auction ID from the seller and
// parameters, so re-submitting the same auction collides with itself.
func DeriveID(seller string, p *pricing.Parameters) ids.ID {
	buf := make([]byte, 0, 128)
	buf = append(buf, seller...)
	buf = append(buf, byte(p.Kind))
	buf = binary.BigEndian.AppendUint64(buf, p.StartStep)
	buf = binary.BigEndian.AppendUint64(buf, p.EmissionRate)
	buf = binary.BigEndian.AppendUint64(buf, p.DurationSteps)
	for _, v := range []*uint256.Int{p.InitialPrice, p.DecayConstant, p.ScaleFactor, p.DiscountRate} {
		if v != nil {
			buf = append(buf, v.Bytes()...)
		}
		buf = append(buf, 0)
	}
	return ids.FromBytes(buf)
}

// Registry is the auction record store. All access goes through it;
// there is no ambient global state.
type Registry struct {
	mu      sync.RWMutex
	records map[ids.ID]*Record
	db      storage.Database
	log     log.Logger
}

// NewRegistry creates a registry persisting through db. A nil db
// keeps records in memory only.
func NewRegistry(db storage.Database, logger log.Logger) *Registry {
	return &Registry{
		records: make(map[ids.ID]*Record),
		db:      db,
		log:     logger,
	}
}

// Initialize validates and stores a new auction record.
func (r *Registry) Initialize(rec *Record) error {
	if err := rec.Params.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.ID]; ok {
		return ErrAlreadyInitialized
	}
	if r.db != nil {
		if has, err := r.db.Has(recordKey(rec.ID)); err != nil {
			return err
		} else if has {
			return ErrAlreadyInitialized
		}
	}

	if err := r.persist(rec); err != nil {
		return err
	}
	r.records[rec.ID] = rec
	r.log.Info("auction initialized",
		"auction", rec.ID.String(),
		"model", rec.Params.Kind.String(),
		"seller", rec.Seller)
	return nil
}

// IsInitialized reports whether an auction exists.
func (r *Registry) IsInitialized(id ids.ID) bool {
	_, err := r.Get(id)
	return err == nil
}

// Get returns the live record for an auction ID, loading it from
// storage on a cold cache.
func (r *Registry) Get(id ids.ID) (*Record, error) {
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()
	if ok {
		return rec, nil
	}
	if r.db == nil {
		return nil, ErrNotFound
	}

	raw, err := r.db.Get(recordKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec, err = decodeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt auction record %s: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another loader may have won the race; keep the first pointer.
	if existing, ok := r.records[id]; ok {
		return existing, nil
	}
	r.records[id] = rec
	return rec, nil
}

// Commit persists an updated record after a successful settlement.
func (r *Registry) Commit(rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persist(rec)
}

// persist requires r.mu held.
func (r *Registry) persist(rec *Record) error {
	if r.db == nil {
		return nil
	}
	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return r.db.Put(recordKey(rec.ID), raw)
}

func recordKey(id ids.ID) []byte {
	return append([]byte("auction/"), id.Bytes()...)
}
