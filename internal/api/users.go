package api

import (
	"net/http"
	"strconv"

	"guildgems/internal/service"
	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type userRoutes struct {
	s *service.UserService
}

func NewUserRoutes(handler *gin.RouterGroup, s *service.UserService) {
	r := &userRoutes{s: s}
	h := handler.Group("/users")
	{
		h.GET("/leaderboard", r.GetLeaderboard)
		h.GET("/:user_id", r.GetProfile)
	}
}

func (r *userRoutes) GetProfile(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	limit, err := strconv.Atoi(c.DefaultQuery("transactions", "10"))
	if err != nil || limit < 0 || limit > 100 {
		limit = 10
	}

	profile, err := r.s.Profile(c.Request.Context(), userID, limit)
	if errors.Is(err, service.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		log.Error("failed to get profile", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}

	txs := make([]gin.H, len(profile.Transactions))
	for i, t := range profile.Transactions {
		txs[i] = gin.H{
			"type":        t.Type,
			"amount":      t.Amount,
			"description": t.Description,
			"created_at":  t.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":             profile.User.UserID,
		"username":            profile.User.Username,
		"global_name":         profile.User.GlobalName,
		"avatar":              profile.User.Avatar,
		"gems":                profile.User.Gems,
		"respect":             profile.User.Respect,
		"total_voice_minutes": profile.User.TotalVoiceMinutes,
		"total_messages":      profile.User.TotalMessages,
		"transactions":        txs,
	})
}

func (r *userRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := r.s.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	out := make([]gin.H, len(entries))
	for i, e := range entries {
		out[i] = gin.H{
			"rank":        i + 1,
			"user_id":     e.UserID,
			"username":    e.Username,
			"global_name": e.GlobalName,
			"avatar":      e.Avatar,
			"gems":        e.Gems,
			"respect":     e.Respect,
			"score":       e.Score,
		}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}
