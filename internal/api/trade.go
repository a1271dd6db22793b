package api

import (
	"net/http"
	"strconv"

	"guildgems/internal/service"
	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type tradeRoutes struct {
	s *service.TradeService
}

func NewTradeRoutes(handler *gin.RouterGroup, s *service.TradeService) {
	r := &tradeRoutes{s: s}
	h := handler.Group("/trades")
	{
		h.POST("/create", r.Create)
		h.POST("/:trade_id/accept", r.Accept)
		h.POST("/:trade_id/reject", r.Reject)
	}
	handler.GET("/users/:user_id/trades", r.ListTrades)
}

type CreateTradeRequest struct {
	SenderID     string `json:"sender_id" binding:"required"`
	ReceiverID   string `json:"receiver_id" binding:"required"`
	OfferType    string `json:"offer_type" binding:"required"`
	OfferValue   int    `json:"offer_value" binding:"required"`
	RequestType  string `json:"request_type" binding:"required"`
	RequestValue int    `json:"request_value" binding:"required"`
}

func (r *tradeRoutes) Create(c *gin.Context) {
	log := logger.Logger()

	var req CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	trade, err := r.s.Create(c.Request.Context(),
		req.SenderID, req.ReceiverID,
		req.OfferType, req.OfferValue,
		req.RequestType, req.RequestValue,
	)
	switch {
	case errors.Is(err, service.ErrInvalidResource),
		errors.Is(err, service.ErrSelfReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrNotFriends):
		c.JSON(http.StatusForbidden, gin.H{"error": "can only trade with friends"})
		return
	case errors.Is(err, service.ErrInsufficientGems),
		errors.Is(err, service.ErrInsufficientRespect):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		log.Error("failed to create trade", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create trade"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"trade_id": trade.TradeID,
		"status":   trade.Status,
	})
}

type ResolveTradeRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (r *tradeRoutes) Accept(c *gin.Context) {
	log := logger.Logger()

	tradeID, err := uuid.Parse(c.Param("trade_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trade id"})
		return
	}

	var req ResolveTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	trade, err := r.s.Accept(c.Request.Context(), tradeID, req.UserID)
	switch {
	case errors.Is(err, service.ErrTradeNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "trade not found or already processed"})
		return
	case errors.Is(err, service.ErrInsufficientGems),
		errors.Is(err, service.ErrInsufficientRespect):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.Error("failed to accept trade", zap.String("trade_id", tradeID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept trade"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trade_id": trade.TradeID,
		"status":   trade.Status,
	})
}

func (r *tradeRoutes) Reject(c *gin.Context) {
	log := logger.Logger()

	tradeID, err := uuid.Parse(c.Param("trade_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trade id"})
		return
	}

	var req ResolveTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err = r.s.Reject(c.Request.Context(), tradeID, req.UserID)
	if errors.Is(err, service.ErrTradeNotPending) {
		c.JSON(http.StatusConflict, gin.H{"error": "trade not found or already processed"})
		return
	}
	if err != nil {
		log.Error("failed to reject trade", zap.String("trade_id", tradeID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reject trade"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trade_id": tradeID, "status": "rejected"})
}

func (r *tradeRoutes) ListTrades(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	trades, err := r.s.ListTrades(c.Request.Context(), userID, limit)
	if err != nil {
		log.Error("failed to list trades", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list trades"})
		return
	}

	out := make([]gin.H, len(trades))
	for i, t := range trades {
		out[i] = gin.H{
			"trade_id":      t.TradeID,
			"sender_id":     t.SenderID,
			"receiver_id":   t.ReceiverID,
			"offer_type":    t.OfferType,
			"offer_value":   t.OfferValue,
			"request_type":  t.RequestType,
			"request_value": t.RequestValue,
			"status":        t.Status,
			"created_at":    t.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"trades": out})
}
