package api

import (
	"net/http"

	"guildgems/internal/service"
	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type questRoutes struct {
	s *service.QuestService
}

func NewQuestRoutes(handler *gin.RouterGroup, s *service.QuestService) {
	r := &questRoutes{s: s}
	h := handler.Group("/quests")
	{
		h.GET("/:user_id", r.GetUserQuests)
		h.POST("/claim", r.ClaimReward)
	}
}

func (r *questRoutes) GetUserQuests(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	quests, err := r.s.UserQuests(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get user quests", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get quests"})
		return
	}

	daily := make([]gin.H, 0)
	weekly := make([]gin.H, 0)
	for _, q := range quests {
		item := gin.H{
			"quest_id":          q.QuestID,
			"name":              q.Name,
			"description":       q.Description,
			"requirement_type":  q.RequirementType,
			"requirement_value": q.RequirementValue,
			"reward_gems":       q.RewardGems,
			"reward_respect":    q.RewardRespect,
			"progress":          q.Progress,
			"completed":         q.Completed,
			"claimed":           q.Claimed,
			"end_date":          q.EndDate,
		}
		if q.Weekly {
			weekly = append(weekly, item)
		} else {
			daily = append(daily, item)
		}
	}

	c.JSON(http.StatusOK, gin.H{"daily": daily, "weekly": weekly})
}

type ClaimQuestRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	QuestID string `json:"quest_id" binding:"required"`
}

func (r *questRoutes) ClaimReward(c *gin.Context) {
	log := logger.Logger()

	var req ClaimQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	questID, err := uuid.Parse(req.QuestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest id"})
		return
	}

	quest, err := r.s.ClaimReward(c.Request.Context(), req.UserID, questID)
	if errors.Is(err, service.ErrQuestNotClaimable) {
		c.JSON(http.StatusConflict, gin.H{"error": "quest not completed or already claimed"})
		return
	}
	if err != nil {
		log.Error("failed to claim quest",
			zap.String("user_id", req.UserID),
			zap.String("quest_id", req.QuestID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim quest"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quest_id":       quest.QuestID,
		"name":           quest.Name,
		"reward_gems":    quest.RewardGems,
		"reward_respect": quest.RewardRespect,
	})
}
