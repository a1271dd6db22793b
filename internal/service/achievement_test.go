package service

import (
	"context"
	"testing"
	"time"

	"guildgems/internal/model"
	"guildgems/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCheck_GrantsNewlyCrossedThresholds(t *testing.T) {
	mockRepo := new(mocks.MockAchievementRepository)
	s := NewAchievementService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("UserStats", ctx, "u1").Return(&model.UserStats{
		TotalVoiceMinutes: 75,
		TotalMessages:     200,
		FriendsCount:      1,
	}, nil)
	mockRepo.On("UserAchievements", ctx, "u1").Return([]*model.UserAchievement{
		{UserID: "u1", AchievementID: "first_friend", UnlockedAt: time.Now()},
	}, nil)
	mockRepo.On("GrantAchievement", ctx, "u1", "voice_novice", mock.MatchedBy(func(credit model.BalanceCredit) bool {
		return credit.Gems == 50 && credit.Type == "achievement"
	})).Return(nil)

	granted, err := s.Check(ctx, "u1")

	assert.NoError(t, err)
	assert.Len(t, granted, 1)
	assert.Equal(t, "voice_novice", granted[0].AchievementID)
	mockRepo.AssertExpectations(t)
}

func TestCheck_NothingBelowThreshold(t *testing.T) {
	mockRepo := new(mocks.MockAchievementRepository)
	s := NewAchievementService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("UserStats", ctx, "u1").Return(&model.UserStats{TotalMessages: 10}, nil)
	mockRepo.On("UserAchievements", ctx, "u1").Return([]*model.UserAchievement{}, nil)

	granted, err := s.Check(ctx, "u1")

	assert.NoError(t, err)
	assert.Empty(t, granted)
	mockRepo.AssertNotCalled(t, "GrantAchievement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserAchievements_ProgressCappedAtThreshold(t *testing.T) {
	mockRepo := new(mocks.MockAchievementRepository)
	s := NewAchievementService(mockRepo, nil)
	ctx := context.Background()

	unlockedAt := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mockRepo.On("UserStats", ctx, "u1").Return(&model.UserStats{TotalVoiceMinutes: 120}, nil)
	mockRepo.On("UserAchievements", ctx, "u1").Return([]*model.UserAchievement{
		{UserID: "u1", AchievementID: "voice_novice", UnlockedAt: unlockedAt},
	}, nil)

	progress, err := s.UserAchievements(ctx, "u1")

	assert.NoError(t, err)
	assert.Len(t, progress, len(Catalog()))

	byID := make(map[string]*model.AchievementProgress)
	for _, p := range progress {
		byID[p.AchievementID] = p
	}

	novice := byID["voice_novice"]
	assert.True(t, novice.Unlocked)
	assert.Equal(t, 60, novice.Progress)
	assert.Equal(t, unlockedAt, *novice.UnlockedAt)

	enthusiast := byID["voice_enthusiast"]
	assert.False(t, enthusiast.Unlocked)
	assert.Equal(t, 120, enthusiast.Progress)
}
