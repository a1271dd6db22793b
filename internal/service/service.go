package service

import (
	"context"
	"time"

	"guildgems/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAlreadyClaimedToday = errors.New("already_claimed_today")
	ErrQuestNotClaimable   = errors.New("quest not completed or already claimed")
	ErrTradeNotPending     = errors.New("trade not found or already processed")
	ErrNotFriends          = errors.New("can only trade with friends")
	ErrInsufficientGems    = errors.New("insufficient gems")
	ErrInsufficientRespect = errors.New("insufficient respect")
	ErrInvalidResource     = errors.New("invalid resource type")
	ErrSelfReference       = errors.New("cannot target yourself")
	ErrUnknownSettingKey   = errors.New("unknown setting key")
	ErrRespectLimitReached = errors.New("daily respect limit reached")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNoActiveSession     = errors.New("no active voice session")
)

type StreakRepository interface {
	EnsureUser(ctx context.Context, userID, username string) (*model.User, error)
	GetActivityStreak(ctx context.Context, userID string) (*model.ActivityStreak, error)
	CreateActivityStreak(ctx context.Context, streak *model.ActivityStreak) error
	CommitStreakUpdate(ctx context.Context, streak *model.ActivityStreak, credits []model.BalanceCredit) error
	GetStreakSettings(ctx context.Context) (map[string]string, error)
	UpdateStreakSettings(ctx context.Context, values map[string]string, updatedBy string) error
	StreakLeaderboard(ctx context.Context, limit int) ([]*model.StreakLeader, error)
}

type DailyRewardRepository interface {
	EnsureUser(ctx context.Context, userID, username string) (*model.User, error)
	GetDailyReward(ctx context.Context, userID string) (*model.DailyRewardRecord, error)
	CommitClaim(ctx context.Context, rec *model.DailyRewardRecord, claim *model.ClaimRecord, credit model.BalanceCredit) error
	ClaimHistory(ctx context.Context, userID string, limit int) ([]*model.ClaimRecord, error)
}

type QuestRepository interface {
	CountQuests(ctx context.Context, startDate string, weekly bool) (int, error)
	CreateQuests(ctx context.Context, quests []*model.Quest) error
	ActiveQuestsByType(ctx context.Context, userID, requirementType, today string) ([]*model.Quest, error)
	UpsertQuestProgress(ctx context.Context, userID string, questID uuid.UUID, amount int) (int, error)
	MarkQuestCompleted(ctx context.Context, userID string, questID uuid.UUID) error
	UserQuests(ctx context.Context, userID, today string) ([]*model.QuestWithProgress, error)
	GetQuest(ctx context.Context, questID uuid.UUID) (*model.Quest, error)
	GetUserQuest(ctx context.Context, userID string, questID uuid.UUID) (*model.UserQuest, error)
	CommitQuestClaim(ctx context.Context, userID string, questID uuid.UUID, credit model.BalanceCredit) error
}

type TradeRepository interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	AreFriends(ctx context.Context, userID, friendID string) (bool, error)
	CreateTrade(ctx context.Context, t *model.Trade) error
	GetTrade(ctx context.Context, tradeID uuid.UUID) (*model.Trade, error)
	SettleTrade(ctx context.Context, tradeID uuid.UUID, receiverID string) error
	RejectTrade(ctx context.Context, tradeID uuid.UUID, receiverID string) error
	TradesForUser(ctx context.Context, userID string, limit int) ([]*model.Trade, error)
}

type UserRepository interface {
	EnsureUser(ctx context.Context, userID, username string) (*model.User, error)
	UpsertDiscordUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	RecentTransactions(ctx context.Context, userID string, limit int) ([]*model.Transaction, error)
	Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}

type FriendRepository interface {
	EnsureUser(ctx context.Context, userID, username string) (*model.User, error)
	AddFriend(ctx context.Context, userID, friendID string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
	AreFriends(ctx context.Context, userID, friendID string) (bool, error)
	Friends(ctx context.Context, userID string) ([]*model.User, error)
	GiveRespect(ctx context.Context, fromID, toID string, amount int, today string, dailyLimit int) error
}

type AchievementRepository interface {
	UserStats(ctx context.Context, userID string) (*model.UserStats, error)
	UserAchievements(ctx context.Context, userID string) ([]*model.UserAchievement, error)
	GrantAchievement(ctx context.Context, userID, achievementID string, credit model.BalanceCredit) error
}

type ActivityRepository interface {
	EnsureUser(ctx context.Context, userID, username string) (*model.User, error)
	StartVoiceSession(ctx context.Context, userID, channelID string, joinedAt time.Time) error
	EndVoiceSession(ctx context.Context, userID string, leftAt time.Time, minutes int) error
	AddActivity(ctx context.Context, userID, date string, voiceMinutes, messages int) error
}
