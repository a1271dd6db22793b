package api

import (
	"net/http"

	"guildgems/internal/service"
	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type activityRoutes struct {
	s *service.IngestService
}

// NewActivityRoutes exposes the ingest endpoints the gateway bridge posts
// raw presence and message events to.
func NewActivityRoutes(handler *gin.RouterGroup, s *service.IngestService) {
	r := &activityRoutes{s: s}
	h := handler.Group("/activity")
	{
		h.POST("/voice-start", r.VoiceStart)
		h.POST("/voice-end", r.VoiceEnd)
		h.POST("/message", r.Message)
	}
}

type VoiceStartRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Username  string `json:"username"`
	ChannelID string `json:"channel_id" binding:"required"`
}

func (r *activityRoutes) VoiceStart(c *gin.Context) {
	log := logger.Logger()

	var req VoiceStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := r.s.StartVoiceSession(c.Request.Context(), req.UserID, req.Username, req.ChannelID); err != nil {
		log.Error("failed to start voice session", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start voice session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"started": true})
}

type VoiceEndRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (r *activityRoutes) VoiceEnd(c *gin.Context) {
	log := logger.Logger()

	var req VoiceEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	minutes, err := r.s.EndVoiceSession(c.Request.Context(), req.UserID)
	if errors.Is(err, service.ErrNoActiveSession) {
		c.JSON(http.StatusConflict, gin.H{"error": "no active voice session"})
		return
	}
	if err != nil {
		log.Error("failed to end voice session", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end voice session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"minutes": minutes})
}

type MessageRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Username string `json:"username"`
}

func (r *activityRoutes) Message(c *gin.Context) {
	log := logger.Logger()

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := r.s.RecordMessage(c.Request.Context(), req.UserID, req.Username); err != nil {
		log.Error("failed to record message", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recorded": true})
}
