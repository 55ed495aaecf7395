// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the auction engine over HTTP: auction creation,
// record and price queries, purchases, and a websocket price stream.
// All wad amounts cross the wire as token-unit decimal strings.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/luxfi/gda/pkg/auction"
	"github.com/luxfi/gda/pkg/fixedpoint"
	"github.com/luxfi/gda/pkg/ids"
	"github.com/luxfi/gda/pkg/ledger"
	"github.com/luxfi/gda/pkg/log"
	"github.com/luxfi/gda/pkg/pricing"
	"github.com/luxfi/gda/pkg/settlement"
)

// priceStreamInterval is how often the websocket stream re-quotes.
const priceStreamInterval = time.Second

// Server wires the settlement engine to the HTTP surface.
type Server struct {
	engine *settlement.Engine
	nfts   *ledger.TokenRegistry
	log    log.Logger

	mu       sync.RWMutex
	supplies map[ids.ID]*ledger.MintableToken

	upgrader websocket.Upgrader
}

// NewServer creates an API server over the given engine. Unique-asset
// auctions sell tokens from nfts; mint auctions create their supply on
// the fly.
func NewServer(engine *settlement.Engine, nfts *ledger.TokenRegistry, logger log.Logger) *Server {
	return &Server{
		engine:   engine,
		nfts:     nfts,
		log:      logger,
		supplies: make(map[ids.ID]*ledger.MintableToken),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the gin router with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Unix()})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auctions", s.handleCreate)
		v1.GET("/auctions/:id", s.handleGet)
		v1.GET("/auctions/:id/price", s.handlePrice)
		v1.GET("/auctions/:id/asset", s.handleAsset)
		v1.POST("/auctions/:id/purchase", s.handlePurchase)
		v1.GET("/auctions/:id/stream", s.handleStream)
	}
	return router
}

// requestID tags every request with an X-Request-ID, generating one
// when the client did not send its own.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

type assetSpec struct {
	Type    string `json:"type" binding:"required,oneof=mint nft"`
	Symbol  string `json:"symbol"`
	Cap     uint64 `json:"cap"`
	TokenID uint64 `json:"token_id"`
}

type createRequest struct {
	Seller        string    `json:"seller" binding:"required"`
	Model         string    `json:"model" binding:"required"`
	InitialPrice  string    `json:"initial_price" binding:"required"`
	DecayConstant string    `json:"decay_constant"`
	EmissionRate  uint64    `json:"emission_rate"`
	ScaleFactor   string    `json:"scale_factor"`
	DiscountRate  string    `json:"discount_rate"`
	DurationSteps uint64    `json:"duration_steps"`
	StartStep     uint64    `json:"start_step"`
	Asset         assetSpec `json:"asset" binding:"required"`
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params, err := req.parameters()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var src settlement.AssetSource
	var supply *ledger.MintableToken
	switch req.Asset.Type {
	case "mint":
		symbol := req.Asset.Symbol
		if symbol == "" {
			symbol = "GDA"
		}
		supply = ledger.NewMintableToken(symbol, req.Asset.Cap)
		src = &settlement.MintSource{Supply: supply}
	case "nft":
		src = &settlement.NFTSource{
			Registry: s.nfts,
			Seller:   req.Seller,
			TokenID:  req.Asset.TokenID,
		}
	}

	id, err := s.engine.Initialize(req.Seller, params, req.Asset.TokenID, src)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if supply != nil {
		s.mu.Lock()
		s.supplies[id] = supply
		s.mu.Unlock()
	}

	c.JSON(http.StatusCreated, gin.H{"auction_id": id.String()})
}

// parameters converts the wire request into pricing parameters,
// parsing only the fields the chosen model uses.
func (r *createRequest) parameters() (pricing.Parameters, error) {
	params := pricing.Parameters{
		EmissionRate:  r.EmissionRate,
		DurationSteps: r.DurationSteps,
		StartStep:     r.StartStep,
	}

	switch r.Model {
	case pricing.KindContinuousGDA.String():
		params.Kind = pricing.KindContinuousGDA
	case pricing.KindDiscreteGDA.String():
		params.Kind = pricing.KindDiscreteGDA
	case pricing.KindLinearDutch.String():
		params.Kind = pricing.KindLinearDutch
	default:
		return params, errors.New("unknown model: " + r.Model)
	}

	var err error
	if params.InitialPrice, err = decimalToWad(r.InitialPrice); err != nil {
		return params, err
	}
	if r.DecayConstant != "" {
		if params.DecayConstant, err = decimalToWad(r.DecayConstant); err != nil {
			return params, err
		}
	}
	if r.ScaleFactor != "" {
		if params.ScaleFactor, err = decimalToWad(r.ScaleFactor); err != nil {
			return params, err
		}
	}
	if r.DiscountRate != "" {
		if params.DiscountRate, err = decimalToWad(r.DiscountRate); err != nil {
			return params, err
		}
	}
	return params, nil
}

type auctionView struct {
	ID            string `json:"id"`
	Seller        string `json:"seller"`
	Model         string `json:"model"`
	TokenID       uint64 `json:"token_id,omitempty"`
	InitialPrice  string `json:"initial_price"`
	DecayConstant string `json:"decay_constant,omitempty"`
	EmissionRate  uint64 `json:"emission_rate,omitempty"`
	ScaleFactor   string `json:"scale_factor,omitempty"`
	DiscountRate  string `json:"discount_rate,omitempty"`
	DurationSteps uint64 `json:"duration_steps,omitempty"`
	StartStep     uint64 `json:"start_step"`
	QuantitySold  uint64 `json:"quantity_sold"`
	Sold          bool   `json:"sold"`
}

func viewOf(rec *auction.Record) auctionView {
	v := auctionView{
		ID:            rec.ID.String(),
		Seller:        rec.Seller,
		Model:         rec.Params.Kind.String(),
		TokenID:       rec.TokenID,
		InitialPrice:  wadToDecimal(rec.Params.InitialPrice).String(),
		EmissionRate:  rec.Params.EmissionRate,
		DurationSteps: rec.Params.DurationSteps,
		StartStep:     rec.Params.StartStep,
		QuantitySold:  rec.State.QuantitySold,
		Sold:          rec.State.Sold,
	}
	if rec.Params.DecayConstant != nil {
		v.DecayConstant = wadToDecimal(rec.Params.DecayConstant).String()
	}
	if rec.Params.ScaleFactor != nil {
		v.ScaleFactor = wadToDecimal(rec.Params.ScaleFactor).String()
	}
	if rec.Params.DiscountRate != nil {
		v.DiscountRate = wadToDecimal(rec.Params.DiscountRate).String()
	}
	return v
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := s.auctionID(c)
	if !ok {
		return
	}
	rec, err := s.engine.Get(id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, viewOf(rec))
}

func (s *Server) handlePrice(c *gin.Context) {
	id, ok := s.auctionID(c)
	if !ok {
		return
	}

	quantity := uint64(1)
	if q := c.Query("quantity"); q != "" {
		parsed, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad quantity: " + q})
			return
		}
		quantity = parsed
	}

	price, err := s.engine.PurchasePrice(id, quantity)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"auction_id": id.String(),
		"quantity":   quantity,
		"price":      wadToDecimal(price).String(),
	})
}

func (s *Server) handleAsset(c *gin.Context) {
	id, ok := s.auctionID(c)
	if !ok {
		return
	}
	s.mu.RLock()
	supply, found := s.supplies[id]
	s.mu.RUnlock()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no minted supply for auction"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol": supply.Symbol(),
		"cap":    supply.Cap(),
		"minted": supply.Minted(),
	})
}

type purchaseRequest struct {
	Buyer      string `json:"buyer" binding:"required"`
	Recipient  string `json:"recipient"`
	Quantity   uint64 `json:"quantity" binding:"required"`
	MaxPayment string `json:"max_payment" binding:"required"`
}

func (s *Server) handlePurchase(c *gin.Context) {
	id, ok := s.auctionID(c)
	if !ok {
		return
	}
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	maxPayment, err := decimalToWad(req.MaxPayment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recipient := req.Recipient
	if recipient == "" {
		recipient = req.Buyer
	}

	result, err := s.engine.Purchase(id, &settlement.PurchaseRequest{
		Quantity:   req.Quantity,
		Buyer:      req.Buyer,
		Recipient:  recipient,
		MaxPayment: maxPayment,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"auction_id":   id.String(),
		"actual_price": wadToDecimal(result.ActualPrice).String(),
		"refund":       wadToDecimal(result.Refund).String(),
	})
}

// handleStream upgrades to a websocket and pushes the single-unit
// price every interval until the client disconnects or the auction
// reaches a terminal state.
func (s *Server) handleStream(c *gin.Context) {
	id, ok := s.auctionID(c)
	if !ok {
		return
	}
	if _, err := s.engine.Get(id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(priceStreamInterval)
	defer ticker.Stop()

	for {
		price, err := s.engine.PurchasePrice(id, 1)
		if err != nil {
			_ = conn.WriteJSON(gin.H{"error": err.Error()})
			return
		}
		if err := conn.WriteJSON(gin.H{
			"auction_id": id.String(),
			"price":      wadToDecimal(price).String(),
			"time":       time.Now().Unix(),
		}); err != nil {
			return
		}

		select {
		case <-ticker.C:
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (s *Server) auctionID(c *gin.Context) (ids.ID, bool) {
	id, err := ids.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad auction ID"})
		return ids.Empty, false
	}
	return id, true
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auction.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auction.ErrAlreadyInitialized):
		return http.StatusConflict
	case errors.Is(err, settlement.ErrInsufficientPayment),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance):
		return http.StatusPaymentRequired
	case errors.Is(err, pricing.ErrAlreadySold):
		return http.StatusGone
	case errors.Is(err, ledger.ErrSupplyExceeded):
		return http.StatusConflict
	case errors.Is(err, settlement.ErrSelfPurchase),
		errors.Is(err, settlement.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrInvalidParameters),
		errors.Is(err, fixedpoint.ErrDomain),
		errors.Is(err, fixedpoint.ErrOverflow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
