package mocks

import (
	"context"
	"time"

	"guildgems/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockStreakRepository struct {
	mock.Mock
}

func (m *MockStreakRepository) EnsureUser(ctx context.Context, userID, username string) (*model.User, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockStreakRepository) GetActivityStreak(ctx context.Context, userID string) (*model.ActivityStreak, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ActivityStreak), args.Error(1)
}

func (m *MockStreakRepository) CreateActivityStreak(ctx context.Context, streak *model.ActivityStreak) error {
	args := m.Called(ctx, streak)
	return args.Error(0)
}

func (m *MockStreakRepository) CommitStreakUpdate(ctx context.Context, streak *model.ActivityStreak, credits []model.BalanceCredit) error {
	args := m.Called(ctx, streak, credits)
	return args.Error(0)
}

func (m *MockStreakRepository) GetStreakSettings(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockStreakRepository) UpdateStreakSettings(ctx context.Context, values map[string]string, updatedBy string) error {
	args := m.Called(ctx, values, updatedBy)
	return args.Error(0)
}

func (m *MockStreakRepository) StreakLeaderboard(ctx context.Context, limit int) ([]*model.StreakLeader, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.StreakLeader), args.Error(1)
}

type MockDailyRewardRepository struct {
	mock.Mock
}

func (m *MockDailyRewardRepository) EnsureUser(ctx context.Context, userID, username string) (*model.User, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockDailyRewardRepository) GetDailyReward(ctx context.Context, userID string) (*model.DailyRewardRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DailyRewardRecord), args.Error(1)
}

func (m *MockDailyRewardRepository) CommitClaim(ctx context.Context, rec *model.DailyRewardRecord, claim *model.ClaimRecord, credit model.BalanceCredit) error {
	args := m.Called(ctx, rec, claim, credit)
	return args.Error(0)
}

func (m *MockDailyRewardRepository) ClaimHistory(ctx context.Context, userID string, limit int) ([]*model.ClaimRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ClaimRecord), args.Error(1)
}

type MockQuestRepository struct {
	mock.Mock
}

func (m *MockQuestRepository) CountQuests(ctx context.Context, startDate string, weekly bool) (int, error) {
	args := m.Called(ctx, startDate, weekly)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestRepository) CreateQuests(ctx context.Context, quests []*model.Quest) error {
	args := m.Called(ctx, quests)
	return args.Error(0)
}

func (m *MockQuestRepository) ActiveQuestsByType(ctx context.Context, userID, requirementType, today string) ([]*model.Quest, error) {
	args := m.Called(ctx, userID, requirementType, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quest), args.Error(1)
}

func (m *MockQuestRepository) UpsertQuestProgress(ctx context.Context, userID string, questID uuid.UUID, amount int) (int, error) {
	args := m.Called(ctx, userID, questID, amount)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestRepository) MarkQuestCompleted(ctx context.Context, userID string, questID uuid.UUID) error {
	args := m.Called(ctx, userID, questID)
	return args.Error(0)
}

func (m *MockQuestRepository) UserQuests(ctx context.Context, userID, today string) ([]*model.QuestWithProgress, error) {
	args := m.Called(ctx, userID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.QuestWithProgress), args.Error(1)
}

func (m *MockQuestRepository) GetQuest(ctx context.Context, questID uuid.UUID) (*model.Quest, error) {
	args := m.Called(ctx, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quest), args.Error(1)
}

func (m *MockQuestRepository) GetUserQuest(ctx context.Context, userID string, questID uuid.UUID) (*model.UserQuest, error) {
	args := m.Called(ctx, userID, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserQuest), args.Error(1)
}

func (m *MockQuestRepository) CommitQuestClaim(ctx context.Context, userID string, questID uuid.UUID, credit model.BalanceCredit) error {
	args := m.Called(ctx, userID, questID, credit)
	return args.Error(0)
}

type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) GetUser(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockTradeRepository) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTradeRepository) CreateTrade(ctx context.Context, t *model.Trade) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTradeRepository) GetTrade(ctx context.Context, tradeID uuid.UUID) (*model.Trade, error) {
	args := m.Called(ctx, tradeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Trade), args.Error(1)
}

func (m *MockTradeRepository) SettleTrade(ctx context.Context, tradeID uuid.UUID, receiverID string) error {
	args := m.Called(ctx, tradeID, receiverID)
	return args.Error(0)
}

func (m *MockTradeRepository) RejectTrade(ctx context.Context, tradeID uuid.UUID, receiverID string) error {
	args := m.Called(ctx, tradeID, receiverID)
	return args.Error(0)
}

func (m *MockTradeRepository) TradesForUser(ctx context.Context, userID string, limit int) ([]*model.Trade, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Trade), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) EnsureUser(ctx context.Context, userID, username string) (*model.User, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockActivityRepository) StartVoiceSession(ctx context.Context, userID, channelID string, joinedAt time.Time) error {
	args := m.Called(ctx, userID, channelID, joinedAt)
	return args.Error(0)
}

func (m *MockActivityRepository) EndVoiceSession(ctx context.Context, userID string, leftAt time.Time, minutes int) error {
	args := m.Called(ctx, userID, leftAt, minutes)
	return args.Error(0)
}

func (m *MockActivityRepository) AddActivity(ctx context.Context, userID, date string, voiceMinutes, messages int) error {
	args := m.Called(ctx, userID, date, voiceMinutes, messages)
	return args.Error(0)
}

type MockAchievementRepository struct {
	mock.Mock
}

func (m *MockAchievementRepository) UserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserStats), args.Error(1)
}

func (m *MockAchievementRepository) UserAchievements(ctx context.Context, userID string) ([]*model.UserAchievement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserAchievement), args.Error(1)
}

func (m *MockAchievementRepository) GrantAchievement(ctx context.Context, userID, achievementID string, credit model.BalanceCredit) error {
	args := m.Called(ctx, userID, achievementID, credit)
	return args.Error(0)
}

type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) EnsureUser(ctx context.Context, userID, username string) (*model.User, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockFriendRepository) AddFriend(ctx context.Context, userID, friendID string) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockFriendRepository) RemoveFriend(ctx context.Context, userID, friendID string) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockFriendRepository) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) Friends(ctx context.Context, userID string) ([]*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockFriendRepository) GiveRespect(ctx context.Context, fromID, toID string, amount int, today string, dailyLimit int) error {
	args := m.Called(ctx, fromID, toID, amount, today, dailyLimit)
	return args.Error(0)
}
