package service

import (
	"context"
	"fmt"

	"guildgems/internal/model"
	"guildgems/internal/repository"
	"guildgems/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// The achievement catalog lives in code; the database only stores unlocks.
var achievementCatalog = []model.Achievement{
	{AchievementID: "voice_novice", Name: "Voice Novice", Description: "Spend 1 hour in voice", Category: "voice", StatType: model.StatVoiceMinutes, Threshold: 60, RewardGems: 50, Rarity: "common"},
	{AchievementID: "voice_enthusiast", Name: "Voice Enthusiast", Description: "Spend 500 minutes in voice", Category: "voice", StatType: model.StatVoiceMinutes, Threshold: 500, RewardGems: 150, Rarity: "rare"},
	{AchievementID: "voice_master", Name: "Voice Master", Description: "Spend 2000 minutes in voice", Category: "voice", StatType: model.StatVoiceMinutes, Threshold: 2000, RewardGems: 500, Rarity: "epic"},
	{AchievementID: "chatterbox", Name: "Chatterbox", Description: "Send 1000 messages", Category: "messages", StatType: model.StatMessages, Threshold: 1000, RewardGems: 100, Rarity: "common"},
	{AchievementID: "conversation_king", Name: "Conversation King", Description: "Send 5000 messages", Category: "messages", StatType: model.StatMessages, Threshold: 5000, RewardGems: 300, Rarity: "rare"},
	{AchievementID: "message_legend", Name: "Message Legend", Description: "Send 20000 messages", Category: "messages", StatType: model.StatMessages, Threshold: 20000, RewardGems: 1000, Rarity: "legendary"},
	{AchievementID: "week_streak", Name: "Dedicated", Description: "Reach a 7 day streak", Category: "streak", StatType: model.StatStreak, Threshold: 7, RewardGems: 100, Rarity: "common"},
	{AchievementID: "month_streak", Name: "Unstoppable", Description: "Reach a 30 day streak", Category: "streak", StatType: model.StatStreak, Threshold: 30, RewardGems: 400, Rarity: "epic"},
	{AchievementID: "first_friend", Name: "Friendly", Description: "Add your first friend", Category: "social", StatType: model.StatFriends, Threshold: 1, RewardGems: 25, Rarity: "common"},
	{AchievementID: "popular", Name: "Popular", Description: "Have 10 friends", Category: "social", StatType: model.StatFriends, Threshold: 10, RewardGems: 200, Rarity: "rare"},
	{AchievementID: "respected", Name: "Respected", Description: "Earn 100 Respect", Category: "social", StatType: model.StatRespect, Threshold: 100, RewardGems: 250, Rarity: "rare"},
	{AchievementID: "first_trade", Name: "Dealer", Description: "Complete your first trade", Category: "economy", StatType: model.StatTrades, Threshold: 1, RewardGems: 25, Rarity: "common"},
	{AchievementID: "trade_baron", Name: "Trade Baron", Description: "Complete 25 trades", Category: "economy", StatType: model.StatTrades, Threshold: 25, RewardGems: 300, Rarity: "epic"},
	{AchievementID: "quest_rookie", Name: "Quest Rookie", Description: "Complete 5 quests", Category: "quests", StatType: model.StatQuests, Threshold: 5, RewardGems: 50, Rarity: "common"},
	{AchievementID: "quest_veteran", Name: "Quest Veteran", Description: "Complete 50 quests", Category: "quests", StatType: model.StatQuests, Threshold: 50, RewardGems: 400, Rarity: "epic"},
}

// AchievementService evaluates the catalog against a user's cumulative
// stats and grants anything newly crossed.
type AchievementService struct {
	repo     AchievementRepository
	notifier *Notifier
}

func NewAchievementService(repo AchievementRepository, notifier *Notifier) *AchievementService {
	return &AchievementService{repo: repo, notifier: notifier}
}

func Catalog() []model.Achievement {
	out := make([]model.Achievement, len(achievementCatalog))
	copy(out, achievementCatalog)
	return out
}

// Check grants every catalog entry whose threshold the user's stats now
// meet and returns the newly unlocked achievements. Duplicate grants are
// absorbed by the repository.
func (s *AchievementService) Check(ctx context.Context, userID string) ([]model.Achievement, error) {
	stats, err := s.repo.UserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	unlocked, err := s.repo.UserAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user achievements: %w", err)
	}
	have := make(map[string]bool, len(unlocked))
	for _, ua := range unlocked {
		have[ua.AchievementID] = true
	}

	var granted []model.Achievement
	for _, a := range achievementCatalog {
		if have[a.AchievementID] || stats.Value(a.StatType) < a.Threshold {
			continue
		}

		credit := model.BalanceCredit{
			UserID:      userID,
			Gems:        a.RewardGems,
			Type:        "achievement",
			Description: fmt.Sprintf("Achievement: %s", a.Name),
		}
		err := s.repo.GrantAchievement(ctx, userID, a.AchievementID, credit)
		if errors.Is(err, repository.ErrAchievementUnlocked) {
			continue
		}
		if err != nil {
			return granted, fmt.Errorf("failed to grant %s: %w", a.AchievementID, err)
		}

		granted = append(granted, a)
		s.notifier.Publish(Event{
			Type:   EventAchievement,
			UserID: userID,
			Payload: map[string]any{
				"achievement_id": a.AchievementID,
				"name":           a.Name,
				"gems":           a.RewardGems,
			},
		})
		logger.Logger().Info("achievement unlocked",
			zap.String("user_id", userID),
			zap.String("achievement", a.AchievementID),
		)
	}

	return granted, nil
}

// UserAchievements returns the full catalog annotated with the user's unlock
// state and current progress.
func (s *AchievementService) UserAchievements(ctx context.Context, userID string) ([]*model.AchievementProgress, error) {
	stats, err := s.repo.UserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	unlocked, err := s.repo.UserAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user achievements: %w", err)
	}
	unlockedAt := make(map[string]*model.UserAchievement, len(unlocked))
	for _, ua := range unlocked {
		unlockedAt[ua.AchievementID] = ua
	}

	out := make([]*model.AchievementProgress, 0, len(achievementCatalog))
	for _, a := range achievementCatalog {
		p := &model.AchievementProgress{
			Achievement: a,
			Progress:    stats.Value(a.StatType),
		}
		if p.Progress > a.Threshold {
			p.Progress = a.Threshold
		}
		if ua, ok := unlockedAt[a.AchievementID]; ok {
			p.Unlocked = true
			t := ua.UnlockedAt
			p.UnlockedAt = &t
		}
		out = append(out, p)
	}
	return out, nil
}
