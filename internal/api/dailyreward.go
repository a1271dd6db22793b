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

type dailyRewardRoutes struct {
	s *service.DailyRewardService
}

func NewDailyRewardRoutes(handler *gin.RouterGroup, s *service.DailyRewardService) {
	r := &dailyRewardRoutes{s: s}
	h := handler.Group("/daily-rewards")
	{
		h.GET("/:user_id", r.GetStatus)
		h.GET("/:user_id/upcoming", r.GetUpcoming)
		h.GET("/:user_id/history", r.GetHistory)
		h.POST("/claim", r.Claim)
	}
}

type ClaimRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Username string `json:"username"`
}

func (r *dailyRewardRoutes) Claim(c *gin.Context) {
	log := logger.Logger()

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := r.s.Claim(c.Request.Context(), req.UserID, req.Username)
	if errors.Is(err, service.ErrAlreadyClaimedToday) {
		c.JSON(http.StatusConflict, gin.H{"error": "already_claimed_today"})
		return
	}
	if err != nil {
		log.Error("failed to claim daily reward", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim reward"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streak_day":     result.StreakDay,
		"gems":           result.Reward.Gems,
		"respect":        result.Reward.Respect,
		"description":    result.Reward.Description,
		"special":        result.Reward.Special,
		"next_milestone": result.NextMilestone,
		"streak_broken":  result.StreakBroken,
	})
}

func (r *dailyRewardRoutes) GetStatus(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	status, err := r.s.Status(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get reward status", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get reward status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_streak":  status.CurrentStreak,
		"can_claim":       status.CanClaim,
		"next_reward_day": status.NextRewardDay,
		"next_reward": gin.H{
			"gems":        status.NextReward.Gems,
			"respect":     status.NextReward.Respect,
			"description": status.NextReward.Description,
			"special":     status.NextReward.Special,
		},
		"total_claims":    status.TotalClaims,
		"next_milestone":  status.NextMilestone,
		"last_claim_date": status.LastClaimDate,
		"streak_active":   status.StreakActive,
	})
}

func (r *dailyRewardRoutes) GetUpcoming(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	status, err := r.s.Status(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get reward status", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get upcoming rewards"})
		return
	}

	upcoming := r.s.Upcoming(status.CurrentStreak)
	out := make([]gin.H, len(upcoming))
	for i, u := range upcoming {
		out[i] = gin.H{
			"day":          u.Day,
			"gems":         u.Gems,
			"respect":      u.Respect,
			"description":  u.Description,
			"is_milestone": u.IsMilestone,
		}
	}

	c.JSON(http.StatusOK, gin.H{"upcoming": out})
}

func (r *dailyRewardRoutes) GetHistory(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 30
	}

	history, err := r.s.History(c.Request.Context(), userID, limit)
	if err != nil {
		log.Error("failed to get claim history", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get claim history"})
		return
	}

	out := make([]gin.H, len(history))
	for i, h := range history {
		out[i] = gin.H{
			"claim_date": h.Date,
			"day":        h.Day,
			"gems":       h.Gems,
			"claimed_at": h.ClaimedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"history": out})
}
