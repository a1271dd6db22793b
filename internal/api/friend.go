package api

import (
	"net/http"

	"guildgems/internal/service"
	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type friendRoutes struct {
	s *service.FriendService
}

func NewFriendRoutes(handler *gin.RouterGroup, s *service.FriendService) {
	r := &friendRoutes{s: s}
	h := handler.Group("/friends")
	{
		h.GET("/:user_id", r.List)
		h.POST("/add", r.Add)
		h.POST("/remove", r.Remove)
	}
	handler.POST("/respect/give", r.GiveRespect)
}

type FriendRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	FriendID string `json:"friend_id" binding:"required"`
}

func (r *friendRoutes) Add(c *gin.Context) {
	log := logger.Logger()

	var req FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.s.Add(c.Request.Context(), req.UserID, req.FriendID)
	if errors.Is(err, service.ErrSelfReference) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot add yourself"})
		return
	}
	if err != nil {
		log.Error("failed to add friend", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add friend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": true})
}

func (r *friendRoutes) Remove(c *gin.Context) {
	log := logger.Logger()

	var req FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.s.Remove(c.Request.Context(), req.UserID, req.FriendID)
	if errors.Is(err, service.ErrSelfReference) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove yourself"})
		return
	}
	if err != nil {
		log.Error("failed to remove friend", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove friend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}

type GiveRespectRequest struct {
	FromID string `json:"from_id" binding:"required"`
	ToID   string `json:"to_id" binding:"required"`
	Amount int    `json:"amount" binding:"required"`
}

func (r *friendRoutes) GiveRespect(c *gin.Context) {
	log := logger.Logger()

	var req GiveRespectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.s.GiveRespect(c.Request.Context(), req.FromID, req.ToID, req.Amount)
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSelfReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrRespectLimitReached):
		c.JSON(http.StatusConflict, gin.H{"error": "daily respect limit reached"})
		return
	case err != nil:
		log.Error("failed to give respect", zap.String("from", req.FromID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to give respect"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"given": true})
}

func (r *friendRoutes) List(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	friends, err := r.s.List(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to list friends", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list friends"})
		return
	}

	out := make([]gin.H, len(friends))
	for i, f := range friends {
		out[i] = gin.H{
			"user_id":     f.UserID,
			"username":    f.Username,
			"global_name": f.GlobalName,
			"avatar":      f.Avatar,
		}
	}

	c.JSON(http.StatusOK, gin.H{"friends": out})
}
