package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"guildgems/internal/api"
	"guildgems/internal/middleware"
	"guildgems/internal/repository"
	"guildgems/internal/service"
	"guildgems/pkg/auth"
	"guildgems/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	discordAuth := auth.NewDiscordAuth(cfg.Auth)
	notifier := service.NewNotifier()

	streakService := service.NewStreakService(repo, notifier)
	dailyRewardService := service.NewDailyRewardService(repo, notifier)
	questService := service.NewQuestService(repo, notifier)
	tradeService := service.NewTradeService(repo, notifier)
	friendService := service.NewFriendService(repo, questService)
	achievementService := service.NewAchievementService(repo, notifier)
	ingestService := service.NewIngestService(repo, streakService, questService)
	userService := service.NewUserService(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go questService.RunScheduler(ctx)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	a := router.Group("/api/v1")
	api.NewAuthRoutes(a, userService, discordAuth)
	api.NewUserRoutes(a, userService)
	api.NewStreakRoutes(a, streakService, discordAuth)
	api.NewDailyRewardRoutes(a, dailyRewardService)
	api.NewQuestRoutes(a, questService)
	api.NewTradeRoutes(a, tradeService)
	api.NewFriendRoutes(a, friendService)
	api.NewAchievementRoutes(a, achievementService)
	api.NewActivityRoutes(a, ingestService)
	api.NewNotifyRoutes(a, notifier)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
