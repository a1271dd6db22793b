package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const tokenTTL = 24 * time.Hour

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

const discordUserURL = "https://discord.com/api/users/@me"

type Config struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURL  string `yaml:"redirectUrl"`
	JWTSecret    string `yaml:"jwtSecret"`

	// Discord IDs allowed to change streak settings.
	AdminIDs []string `yaml:"adminIds"`
}

// DiscordAuth exchanges OAuth codes with Discord and issues session tokens
// for the small authenticated surface (settings updates). Everything else on
// the API trusts the deployment's reverse proxy.
type DiscordAuth struct {
	oauth     *oauth2.Config
	jwtSecret []byte
	admins    map[string]bool
}

type DiscordUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Avatar     string `json:"avatar"`
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewDiscordAuth(cfg Config) *DiscordAuth {
	admins := make(map[string]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}

	return &DiscordAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"identify"},
			Endpoint:     discordEndpoint,
		},
		jwtSecret: []byte(cfg.JWTSecret),
		admins:    admins,
	}
}

// ExchangeCode trades an OAuth authorization code for the Discord identity
// behind it. The exchange is an opaque external call; any failure is returned
// as-is for the handler to log.
func (a *DiscordAuth) ExchangeCode(ctx context.Context, code string) (*DiscordUser, error) {
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	client := a.oauth.Client(ctx, token)
	resp, err := client.Get(discordUserURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discord user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord user endpoint returned %d", resp.StatusCode)
	}

	var user DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode discord user: %w", err)
	}

	return &user, nil
}

func (a *DiscordAuth) IssueToken(userID, username string) (string, error) {
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *DiscordAuth) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

func (a *DiscordAuth) IsAdmin(userID string) bool {
	return a.admins[userID]
}

// AuthMiddleware validates a Bearer token and stores the claims in the
// request context under "auth_user".
func (a *DiscordAuth) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid authorization format"})
			return
		}

		claims, err := a.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Info("invalid session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid session token"})
			return
		}

		c.Set("auth_user", claims)
		c.Next()
	}
}

// AdminOnly requires AuthMiddleware upstream and a configured admin identity.
func (a *DiscordAuth) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		userData, exists := c.Get("auth_user")
		if !exists {
			log.Error("auth claims not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}

		claims, ok := userData.(*Claims)
		if !ok {
			log.Error("invalid type assertion for auth claims")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
			return
		}

		if !a.IsAdmin(claims.UserID) {
			log.Info("unauthorized access attempt to admin endpoint",
				zap.String("user_id", claims.UserID))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "admin access required"})
			return
		}

		c.Next()
	}
}
