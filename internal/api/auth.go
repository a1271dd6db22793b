package api

import (
	"net/http"

	"guildgems/internal/model"
	"guildgems/internal/service"
	"guildgems/pkg/auth"
	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type authRoutes struct {
	s *service.UserService
	a *auth.DiscordAuth
}

func NewAuthRoutes(handler *gin.RouterGroup, s *service.UserService, a *auth.DiscordAuth) {
	r := &authRoutes{s: s, a: a}
	h := handler.Group("/auth")
	{
		h.POST("/discord", r.DiscordLogin)
	}
}

type DiscordLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// DiscordLogin exchanges an OAuth authorization code for the Discord
// identity, upserts the user, and issues the API token.
func (r *authRoutes) DiscordLogin(c *gin.Context) {
	log := logger.Logger()

	var req DiscordLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	discordUser, err := r.a.ExchangeCode(c.Request.Context(), req.Code)
	if err != nil {
		log.Error("discord code exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization failed"})
		return
	}

	user, err := r.s.Login(c.Request.Context(), &model.User{
		UserID:     discordUser.ID,
		Username:   discordUser.Username,
		GlobalName: discordUser.GlobalName,
		Avatar:     discordUser.Avatar,
	})
	if err != nil {
		log.Error("failed to upsert user", zap.String("user_id", discordUser.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	token, err := r.a.IssueToken(user.UserID, user.Username)
	if err != nil {
		log.Error("failed to issue token", zap.String("user_id", user.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"user_id":     user.UserID,
			"username":    user.Username,
			"global_name": user.GlobalName,
			"avatar":      user.Avatar,
			"gems":        user.Gems,
			"respect":     user.Respect,
		},
	})
}
