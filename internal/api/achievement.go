package api

import (
	"net/http"

	"guildgems/internal/service"
	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type achievementRoutes struct {
	s *service.AchievementService
}

func NewAchievementRoutes(handler *gin.RouterGroup, s *service.AchievementService) {
	r := &achievementRoutes{s: s}
	h := handler.Group("/achievements")
	{
		h.GET("/:user_id", r.GetUserAchievements)
		h.POST("/check", r.Check)
	}
}

func (r *achievementRoutes) GetUserAchievements(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	achievements, err := r.s.UserAchievements(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get achievements", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get achievements"})
		return
	}

	out := make([]gin.H, len(achievements))
	for i, a := range achievements {
		item := gin.H{
			"achievement_id": a.AchievementID,
			"name":           a.Name,
			"description":    a.Description,
			"category":       a.Category,
			"threshold":      a.Threshold,
			"reward_gems":    a.RewardGems,
			"rarity":         a.Rarity,
			"unlocked":       a.Unlocked,
			"progress":       a.Progress,
		}
		if a.UnlockedAt != nil {
			item["unlocked_at"] = a.UnlockedAt
		}
		out[i] = item
	}

	c.JSON(http.StatusOK, gin.H{"achievements": out})
}

type CheckAchievementsRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (r *achievementRoutes) Check(c *gin.Context) {
	log := logger.Logger()

	var req CheckAchievementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	granted, err := r.s.Check(c.Request.Context(), req.UserID)
	if err != nil {
		log.Error("failed to check achievements", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check achievements"})
		return
	}

	out := make([]gin.H, len(granted))
	for i, a := range granted {
		out[i] = gin.H{
			"achievement_id": a.AchievementID,
			"name":           a.Name,
			"reward_gems":    a.RewardGems,
		}
	}

	c.JSON(http.StatusOK, gin.H{"unlocked": out})
}
