// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all metrics for the GDA engine
type Metrics struct {
	registry *prometheus.Registry

	// Auction metrics
	AuctionsInitialized prometheus.Counter
	PurchasesSettled    *prometheus.CounterVec
	PurchasesRejected   *prometheus.CounterVec
	PriceQueries        prometheus.Counter

	// Settlement metrics
	SettledVolume      prometheus.Counter
	SettlementDuration prometheus.Histogram
}

// NewMetrics creates a new metrics instance backed by its own registry
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		AuctionsInitialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gda",
			Name:      "auctions_initialized_total",
			Help:      "Total number of auctions initialized",
		}),
		PurchasesSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gda",
			Name:      "purchases_settled_total",
			Help:      "Total number of settled purchases by pricing model",
		}, []string{"model"}),
		PurchasesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gda",
			Name:      "purchases_rejected_total",
			Help:      "Total number of rejected purchases by reason",
		}, []string{"reason"}),
		PriceQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gda",
			Name:      "price_queries_total",
			Help:      "Total number of read-only price queries",
		}),
		SettledVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gda",
			Name:      "settled_volume_units_total",
			Help:      "Total number of asset units delivered through settlement",
		}),
		SettlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gda",
			Name:      "settlement_duration_seconds",
			Help:      "Time to settle a purchase",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	collectors := []prometheus.Collector{
		m.AuctionsInitialized,
		m.PurchasesSettled,
		m.PurchasesRejected,
		m.PriceQueries,
		m.SettledVolume,
		m.SettlementDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Registry returns the prometheus registry for HTTP exposure
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
