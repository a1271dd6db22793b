package api

import (
	"net/http"
	"strconv"

	"guildgems/internal/service"
	"guildgems/pkg/auth"
	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type streakRoutes struct {
	s *service.StreakService
}

func NewStreakRoutes(handler *gin.RouterGroup, s *service.StreakService, a *auth.DiscordAuth) {
	r := &streakRoutes{s: s}
	h := handler.Group("/streak")
	{
		h.GET("/leaderboard", r.GetLeaderboard)
		h.GET("/:user_id", r.GetStatus)
		h.POST("/track", r.TrackActivity)
	}

	admin := handler.Group("/streak/settings")
	admin.Use(a.AuthMiddleware(), a.AdminOnly())
	{
		admin.GET("", r.GetSettings)
		admin.POST("", r.UpdateSettings)
	}
}

type TrackActivityRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	VoiceMinutes int    `json:"voice_minutes"`
	Messages     int    `json:"messages"`
}

func (r *streakRoutes) TrackActivity(c *gin.Context) {
	log := logger.Logger()

	var req TrackActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.VoiceMinutes < 0 || req.Messages < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activity deltas must be non-negative"})
		return
	}

	result, err := r.s.TrackActivity(c.Request.Context(), req.UserID, req.VoiceMinutes, req.Messages)
	if err != nil {
		log.Error("failed to track activity", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to track activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qualified":         result.Qualified,
		"reward":            result.Reward,
		"milestone_day":     result.MilestoneDay,
		"milestone_reward":  result.MilestoneReward,
		"voice_minutes":     result.Voice,
		"messages":          result.Messages,
		"required_voice":    result.RequiredVoice,
		"required_messages": result.RequiredMessages,
	})
}

func (r *streakRoutes) GetStatus(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	status, err := r.s.GetStatus(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get streak status", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get streak status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_streak":      status.CurrentStreak,
		"longest_streak":      status.LongestStreak,
		"total_streak_days":   status.TotalStreakDays,
		"today_voice_minutes": status.TodayVoiceMinutes,
		"today_messages":      status.TodayMessages,
		"qualified_today":     status.QualifiedToday,
		"voice_remaining":     status.VoiceRemaining,
		"messages_remaining":  status.MessagesRemaining,
		"next_milestone":      status.NextMilestone,
	})
}

func (r *streakRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	leaders, err := r.s.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		log.Error("failed to get streak leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	out := make([]gin.H, len(leaders))
	for i, l := range leaders {
		out[i] = gin.H{
			"rank":              i + 1,
			"user_id":           l.UserID,
			"username":          l.Username,
			"global_name":       l.GlobalName,
			"avatar":            l.Avatar,
			"current_streak":    l.CurrentStreak,
			"longest_streak":    l.LongestStreak,
			"total_streak_days": l.TotalStreakDays,
		}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}

func (r *streakRoutes) GetSettings(c *gin.Context) {
	settings := r.s.Settings(c.Request.Context())

	milestones := make(map[string]int, len(settings.Milestones))
	for day, gems := range settings.Milestones {
		milestones[strconv.Itoa(day)] = gems
	}

	c.JSON(http.StatusOK, gin.H{
		"required_voice_minutes": settings.RequiredVoiceMinutes,
		"required_messages":      settings.RequiredMessages,
		"streak_reward_gems":     settings.RewardGems,
		"milestones":             milestones,
	})
}

type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

func (r *streakRoutes) UpdateSettings(c *gin.Context) {
	log := logger.Logger()

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	claims := c.MustGet("auth_user").(*auth.Claims)

	err := r.s.UpdateSettings(c.Request.Context(), req.Settings, claims.UserID)
	if errors.Is(err, service.ErrUnknownSettingKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error("failed to update streak settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}
