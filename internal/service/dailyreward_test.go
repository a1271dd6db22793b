package service

import (
	"context"
	"testing"
	"time"

	"guildgems/internal/model"
	"guildgems/internal/repository"
	"guildgems/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestDailyRewardService(repo *mocks.MockDailyRewardRepository) *DailyRewardService {
	s := NewDailyRewardService(repo, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestCanClaim_NewUser(t *testing.T) {
	mockRepo := new(mocks.MockDailyRewardRepository)
	s := newTestDailyRewardService(mockRepo)

	mockRepo.On("GetDailyReward", mock.Anything, "u1").Return(nil, repository.ErrNotFound)

	check, err := s.CanClaim(context.Background(), "u1")

	assert.NoError(t, err)
	assert.True(t, check.CanClaim)
	assert.True(t, check.NewUser)
	assert.Equal(t, 1, check.StreakDay)
}

func TestCanClaim_AlreadyClaimedToday(t *testing.T) {
	mockRepo := new(mocks.MockDailyRewardRepository)
	s := newTestDailyRewardService(mockRepo)

	mockRepo.On("GetDailyReward", mock.Anything, "u1").Return(&model.DailyRewardRecord{
		UserID:        "u1",
		CurrentStreak: 4,
		LastClaimDate: "2025-03-10",
	}, nil)

	check, err := s.CanClaim(context.Background(), "u1")

	assert.NoError(t, err)
	assert.False(t, check.CanClaim)
	assert.Equal(t, "already_claimed_today", check.Reason)
}

func TestCanClaim_BrokenStreakRestartsAtDayOne(t *testing.T) {
	mockRepo := new(mocks.MockDailyRewardRepository)
	s := newTestDailyRewardService(mockRepo)

	mockRepo.On("GetDailyReward", mock.Anything, "u1").Return(&model.DailyRewardRecord{
		UserID:        "u1",
		CurrentStreak: 20,
		LastClaimDate: "2025-03-07",
	}, nil)

	check, err := s.CanClaim(context.Background(), "u1")

	assert.NoError(t, err)
	assert.True(t, check.CanClaim)
	assert.True(t, check.StreakBroken)
	assert.Equal(t, 1, check.StreakDay)
}

func TestClaim_DaySevenMilestone(t *testing.T) {
	mockRepo := new(mocks.MockDailyRewardRepository)
	s := newTestDailyRewardService(mockRepo)
	ctx := context.Background()

	mockRepo.On("EnsureUser", ctx, "u1", "alice").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetDailyReward", ctx, "u1").Return(&model.DailyRewardRecord{
		UserID:        "u1",
		CurrentStreak: 6,
		LastClaimDate: "2025-03-09",
	}, nil)
	mockRepo.On("CommitClaim", ctx,
		mock.MatchedBy(func(rec *model.DailyRewardRecord) bool {
			return rec.CurrentStreak == 7 &&
				rec.LastClaimDate == "2025-03-10" &&
				rec.NextMilestone == 14
		}),
		mock.MatchedBy(func(claim *model.ClaimRecord) bool {
			return claim.Day == 7 && claim.Gems == 100
		}),
		mock.MatchedBy(func(credit model.BalanceCredit) bool {
			return credit.Gems == 100 && credit.Respect == 10 && credit.Type == "daily_reward"
		}),
	).Return(nil)

	result, err := s.Claim(ctx, "u1", "alice")

	assert.NoError(t, err)
	assert.Equal(t, 7, result.StreakDay)
	assert.True(t, result.Reward.Special)
	assert.Equal(t, 14, result.NextMilestone)
	mockRepo.AssertExpectations(t)
}

func TestClaim_SameDayRefused(t *testing.T) {
	mockRepo := new(mocks.MockDailyRewardRepository)
	s := newTestDailyRewardService(mockRepo)
	ctx := context.Background()

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetDailyReward", ctx, "u1").Return(&model.DailyRewardRecord{
		UserID:        "u1",
		CurrentStreak: 3,
		LastClaimDate: "2025-03-10",
	}, nil)

	_, err := s.Claim(ctx, "u1", "")

	assert.ErrorIs(t, err, ErrAlreadyClaimedToday)
	mockRepo.AssertNotCalled(t, "CommitClaim", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaim_BrokenStreakStillPaysDayOne(t *testing.T) {
	mockRepo := new(mocks.MockDailyRewardRepository)
	s := newTestDailyRewardService(mockRepo)
	ctx := context.Background()

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetDailyReward", ctx, "u1").Return(&model.DailyRewardRecord{
		UserID:        "u1",
		CurrentStreak: 15,
		LastClaimDate: "2025-03-01",
	}, nil)
	mockRepo.On("CommitClaim", ctx,
		mock.MatchedBy(func(rec *model.DailyRewardRecord) bool {
			return rec.CurrentStreak == 1 && rec.NextMilestone == 7
		}),
		mock.Anything,
		mock.MatchedBy(func(credit model.BalanceCredit) bool {
			return credit.Gems == 10 && credit.Respect == 1
		}),
	).Return(nil)

	result, err := s.Claim(ctx, "u1", "")

	assert.NoError(t, err)
	assert.True(t, result.StreakBroken)
	assert.Equal(t, 1, result.StreakDay)
	mockRepo.AssertExpectations(t)
}

func TestRewardForDay(t *testing.T) {
	testCases := []struct {
		day         int
		gems        int
		respect     int
		special     bool
		description string
	}{
		{1, 10, 1, false, "Day 1"},
		{6, 40, 3, false, "Day 6"},
		{7, 100, 10, true, "Week Milestone!"},
		{8, 50, 4, false, "Day 8"},
		{10, 50, 4, false, "Day 10"},
		{15, 55, 4, false, "Day 15"},
		{30, 500, 50, true, "Month Milestone!"},
		{90, 2000, 200, true, "3-Month Milestone!"},
	}

	for _, tc := range testCases {
		reward := rewardForDay(tc.day)
		assert.Equal(t, tc.gems, reward.Gems, "day %d gems", tc.day)
		assert.Equal(t, tc.respect, reward.Respect, "day %d respect", tc.day)
		assert.Equal(t, tc.special, reward.Special, "day %d special", tc.day)
		assert.Equal(t, tc.description, reward.Description, "day %d description", tc.day)
	}
}

func TestUpcoming_PreviewsNextSevenDays(t *testing.T) {
	s := newTestDailyRewardService(new(mocks.MockDailyRewardRepository))

	upcoming := s.Upcoming(5)

	assert.Len(t, upcoming, 7)
	assert.Equal(t, 6, upcoming[0].Day)
	assert.Equal(t, 7, upcoming[1].Day)
	assert.True(t, upcoming[1].IsMilestone)
	assert.Equal(t, 12, upcoming[6].Day)
}
