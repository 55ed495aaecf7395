// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package clock provides the monotone step source consumed by the
// settlement engine. Steps are the block-counter analog: an abstract
// uint64 that never decreases.
package clock

import (
	"sync"
	"time"
)

// Clock is the elapsed-step source for auction pricing.
type Clock interface {
	// Now returns the current step. Implementations must be
	// monotonically non-decreasing.
	Now() uint64
}

// SystemClock maps wall-clock seconds since a fixed epoch to steps.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock creates a clock counting whole seconds since epoch.
func NewSystemClock(epoch time.Time) *SystemClock {
	return &SystemClock{epoch: epoch}
}

// Now returns the number of whole seconds elapsed since the epoch.
func (c *SystemClock) Now() uint64 {
	d := time.Since(c.epoch)
	if d < 0 {
		return 0
	}
	return uint64(d / time.Second)
}

// ManualClock is a settable clock for tests, standing in for the
// block warping the host environment would provide.
type ManualClock struct {
	mu   sync.Mutex
	step uint64
}

// NewManualClock creates a manual clock starting at step.
func NewManualClock(step uint64) *ManualClock {
	return &ManualClock{step: step}
}

// Now returns the current step.
func (c *ManualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Advance moves the clock forward by delta steps.
func (c *ManualClock) Advance(delta uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step += delta
}

// Set moves the clock to step. Steps never go backwards; setting an
// earlier step is ignored.
func (c *ManualClock) Set(step uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if step > c.step {
		c.step = step
	}
}
