// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luxfi/gda/pkg/api"
	"github.com/luxfi/gda/pkg/auction"
	"github.com/luxfi/gda/pkg/clock"
	"github.com/luxfi/gda/pkg/ledger"
	"github.com/luxfi/gda/pkg/log"
	"github.com/luxfi/gda/pkg/metric"
	"github.com/luxfi/gda/pkg/settlement"
	"github.com/luxfi/gda/pkg/storage"
)

var (
	dataDir  = flag.String("data-dir", "/tmp/gdad", "Data directory")
	port     = flag.Int("port", 8080, "API server port")
	opsPort  = flag.Int("ops-port", 9090, "Operations server port (health, metrics)")
	dbType   = flag.String("db", "badger", "Database backend: badger, memory")
	logLevel = flag.String("log-level", "info", "Log level")
	epoch    = flag.Int64("epoch", 0, "Auction clock epoch (unix seconds, 0 = process start)")
	account  = flag.String("escrow-account", "gda-engine", "Engine escrow account on the payment ledger")
	env      = flag.String("env", "development", "Environment (development/production)")

	// Version info
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	flag.Parse()

	fmt.Printf("GDA Daemon (gdad) %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)

	logger := log.NewWithLevel(*logLevel)
	defer logger.Sync()

	if *env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := storage.New(*dbType, *dataDir)
	if err != nil {
		logger.Fatal("failed to open database", "path", *dataDir, "error", err)
	}
	defer db.Close()

	metrics, err := metric.NewMetrics()
	if err != nil {
		logger.Fatal("failed to register metrics", "error", err)
	}

	epochTime := time.Now()
	if *epoch > 0 {
		epochTime = time.Unix(*epoch, 0)
	}

	registry := auction.NewRegistry(db, logger)
	book := ledger.NewBook(logger)
	nfts := ledger.NewTokenRegistry()
	engine := settlement.NewEngine(registry, book, clock.NewSystemClock(epochTime), *account, logger, metrics)

	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: api.NewServer(engine, nfts, logger).Router(),
	}
	opsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *opsPort),
		Handler: opsRouter(metrics),
	}

	go func() {
		logger.Info("API server listening", "port", *port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("API server error", "error", err)
		}
	}()
	go func() {
		logger.Info("ops server listening", "port", *opsPort)
		if err := opsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("ops server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("API server shutdown error", "error", err)
	}
	if err := opsServer.Shutdown(ctx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
	}

	fmt.Println("Daemon stopped")
}

// opsRouter serves the operational endpoints kept off the public API
// port.
func opsRouter(metrics *metric.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})).Methods("GET")
	return r
}
