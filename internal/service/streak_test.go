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

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStreakService(repo *mocks.MockStreakRepository) *StreakService {
	s := NewStreakService(repo, nil)
	s.now = func() time.Time { return fixedNow }
	s.settings = &model.StreakSettings{
		RequiredVoiceMinutes: 5,
		RequiredMessages:     5,
		RewardGems:           10,
		Milestones:           map[int]int{7: 50, 14: 100, 30: 250, 60: 500, 90: 1000},
	}
	return s
}

func TestTrackActivity_NewUser(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetActivityStreak", ctx, "u1").Return(nil, repository.ErrNotFound)
	mockRepo.On("CreateActivityStreak", ctx, mock.AnythingOfType("*model.ActivityStreak")).Return(nil)
	mockRepo.On("CommitStreakUpdate", ctx, mock.MatchedBy(func(st *model.ActivityStreak) bool {
		return st.TodayVoiceMinutes == 5 && st.TodayMessages == 0 && !st.QualifiedToday
	}), mock.Anything).Return(nil)

	result, err := s.TrackActivity(ctx, "u1", 5, 0)

	assert.NoError(t, err)
	assert.False(t, result.Qualified)
	assert.Equal(t, 5, result.Voice)
	assert.Equal(t, 0, result.Messages)
	mockRepo.AssertExpectations(t)
}

func TestTrackActivity_NewUserQualifiesImmediately(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetActivityStreak", ctx, "u1").Return(nil, repository.ErrNotFound)
	mockRepo.On("CreateActivityStreak", ctx, mock.AnythingOfType("*model.ActivityStreak")).Return(nil)
	mockRepo.On("CommitStreakUpdate", ctx, mock.Anything, mock.MatchedBy(func(credits []model.BalanceCredit) bool {
		return len(credits) == 1 && credits[0].Gems == 10
	})).Return(nil)

	result, err := s.TrackActivity(ctx, "u1", 5, 5)

	assert.NoError(t, err)
	assert.True(t, result.Qualified)
	assert.Equal(t, 10, result.Reward)
	assert.Equal(t, 5, result.Voice)
	assert.Equal(t, 5, result.Messages)
	mockRepo.AssertExpectations(t)
}

func TestTrackActivity_CrossingThresholdsQualifiesOnce(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	streak := &model.ActivityStreak{
		UserID:            "u1",
		CurrentStreak:     3,
		LongestStreak:     3,
		LastActivityDate:  "2025-03-10",
		TodayVoiceMinutes: 4,
		TodayMessages:     5,
	}

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetActivityStreak", ctx, "u1").Return(streak, nil)
	mockRepo.On("CommitStreakUpdate", ctx, mock.MatchedBy(func(st *model.ActivityStreak) bool {
		return st.QualifiedToday && st.TodayVoiceMinutes == 5
	}), mock.MatchedBy(func(credits []model.BalanceCredit) bool {
		return len(credits) == 1 && credits[0].Gems == 10 && credits[0].Type == "streak_daily"
	})).Return(nil)

	result, err := s.TrackActivity(ctx, "u1", 1, 0)

	assert.NoError(t, err)
	assert.True(t, result.Qualified)
	assert.Equal(t, 10, result.Reward)
	mockRepo.AssertExpectations(t)
}

func TestTrackActivity_AlreadyQualifiedNoSecondReward(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	streak := &model.ActivityStreak{
		UserID:            "u1",
		LastActivityDate:  "2025-03-10",
		TodayVoiceMinutes: 30,
		TodayMessages:     10,
		QualifiedToday:    true,
	}

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetActivityStreak", ctx, "u1").Return(streak, nil)
	mockRepo.On("CommitStreakUpdate", ctx, mock.Anything, mock.MatchedBy(func(credits []model.BalanceCredit) bool {
		return len(credits) == 0
	})).Return(nil)

	result, err := s.TrackActivity(ctx, "u1", 10, 0)

	assert.NoError(t, err)
	assert.False(t, result.Qualified)
	assert.Equal(t, 40, result.Voice)
	mockRepo.AssertExpectations(t)
}

func TestTrackActivity_QualifiedYesterdayExtendsStreak(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	streak := &model.ActivityStreak{
		UserID:            "u1",
		CurrentStreak:     3,
		LongestStreak:     5,
		LastActivityDate:  "2025-03-09",
		TodayVoiceMinutes: 12,
		TodayMessages:     8,
		QualifiedToday:    true,
		TotalStreakDays:   3,
	}

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetActivityStreak", ctx, "u1").Return(streak, nil)
	mockRepo.On("CommitStreakUpdate", ctx, mock.MatchedBy(func(st *model.ActivityStreak) bool {
		return st.CurrentStreak == 4 &&
			st.LastActivityDate == "2025-03-10" &&
			st.TodayVoiceMinutes == 2 &&
			st.TodayMessages == 1 &&
			!st.QualifiedToday &&
			st.TotalStreakDays == 4
	}), mock.MatchedBy(func(credits []model.BalanceCredit) bool {
		return len(credits) == 0
	})).Return(nil)

	result, err := s.TrackActivity(ctx, "u1", 2, 1)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.MilestoneDay)
	assert.Equal(t, 2, result.Voice)
	mockRepo.AssertExpectations(t)
}

func TestTrackActivity_MilestonePaysOut(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	streak := &model.ActivityStreak{
		UserID:           "u1",
		CurrentStreak:    6,
		LongestStreak:    6,
		LastActivityDate: "2025-03-09",
		QualifiedToday:   true,
		TotalStreakDays:  6,
	}

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetActivityStreak", ctx, "u1").Return(streak, nil)
	mockRepo.On("CommitStreakUpdate", ctx, mock.MatchedBy(func(st *model.ActivityStreak) bool {
		return st.CurrentStreak == 7 && st.LongestStreak == 7
	}), mock.MatchedBy(func(credits []model.BalanceCredit) bool {
		return len(credits) == 1 &&
			credits[0].Gems == 50 &&
			credits[0].Type == "streak_milestone"
	})).Return(nil)

	result, err := s.TrackActivity(ctx, "u1", 1, 0)

	assert.NoError(t, err)
	assert.Equal(t, 7, result.MilestoneDay)
	assert.Equal(t, 50, result.MilestoneReward)
	mockRepo.AssertExpectations(t)
}

func TestTrackActivity_MilestoneAndQualificationSameCall(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	streak := &model.ActivityStreak{
		UserID:           "u1",
		CurrentStreak:    6,
		LongestStreak:    6,
		LastActivityDate: "2025-03-09",
		QualifiedToday:   true,
		TotalStreakDays:  6,
	}

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetActivityStreak", ctx, "u1").Return(streak, nil)
	mockRepo.On("CommitStreakUpdate", ctx, mock.MatchedBy(func(st *model.ActivityStreak) bool {
		return st.CurrentStreak == 7 && st.QualifiedToday
	}), mock.MatchedBy(func(credits []model.BalanceCredit) bool {
		if len(credits) != 2 {
			return false
		}
		total := credits[0].Gems + credits[1].Gems
		return total == 60
	})).Return(nil)

	result, err := s.TrackActivity(ctx, "u1", 5, 5)

	assert.NoError(t, err)
	assert.True(t, result.Qualified)
	assert.Equal(t, 10, result.Reward)
	assert.Equal(t, 7, result.MilestoneDay)
	assert.Equal(t, 50, result.MilestoneReward)
	mockRepo.AssertExpectations(t)
}

func TestTrackActivity_UnqualifiedYesterdayKeepsStreakCount(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	streak := &model.ActivityStreak{
		UserID:            "u1",
		CurrentStreak:     5,
		LongestStreak:     5,
		LastActivityDate:  "2025-03-09",
		TodayVoiceMinutes: 2,
		TodayMessages:     1,
		QualifiedToday:    false,
		TotalStreakDays:   5,
	}

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetActivityStreak", ctx, "u1").Return(streak, nil)
	mockRepo.On("CommitStreakUpdate", ctx, mock.MatchedBy(func(st *model.ActivityStreak) bool {
		return st.CurrentStreak == 5 &&
			st.TodayVoiceMinutes == 3 &&
			st.TotalStreakDays == 5
	}), mock.Anything).Return(nil)

	_, err := s.TrackActivity(ctx, "u1", 3, 0)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestTrackActivity_GapResetsStreak(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	streak := &model.ActivityStreak{
		UserID:           "u1",
		CurrentStreak:    12,
		LongestStreak:    12,
		LastActivityDate: "2025-03-07",
		QualifiedToday:   true,
		TotalStreakDays:  12,
	}

	mockRepo.On("EnsureUser", ctx, "u1", "").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("GetActivityStreak", ctx, "u1").Return(streak, nil)
	mockRepo.On("CommitStreakUpdate", ctx, mock.MatchedBy(func(st *model.ActivityStreak) bool {
		return st.CurrentStreak == 0 &&
			st.LongestStreak == 12 &&
			st.LastActivityDate == "2025-03-10"
	}), mock.Anything).Return(nil)

	_, err := s.TrackActivity(ctx, "u1", 1, 1)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestGetStatus_StaleDayPresentsZeroCounters(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)
	ctx := context.Background()

	streak := &model.ActivityStreak{
		UserID:            "u1",
		CurrentStreak:     4,
		LongestStreak:     9,
		LastActivityDate:  "2025-03-08",
		TodayVoiceMinutes: 45,
		TodayMessages:     20,
		QualifiedToday:    true,
	}

	mockRepo.On("GetActivityStreak", ctx, "u1").Return(streak, nil)

	status, err := s.GetStatus(ctx, "u1")

	assert.NoError(t, err)
	assert.Equal(t, 4, status.CurrentStreak)
	assert.Equal(t, 0, status.TodayVoiceMinutes)
	assert.Equal(t, 0, status.TodayMessages)
	assert.False(t, status.QualifiedToday)
	assert.Equal(t, 5, status.VoiceRemaining)
	assert.Equal(t, 7, status.NextMilestone)
}

func TestUpdateSettings_RejectsUnknownKey(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)

	err := s.UpdateSettings(context.Background(), map[string]string{"gem_multiplier": "2"}, "admin1")

	assert.ErrorIs(t, err, ErrUnknownSettingKey)
	mockRepo.AssertNotCalled(t, "UpdateStreakSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSettings_RejectsNonNumericValue(t *testing.T) {
	mockRepo := new(mocks.MockStreakRepository)
	s := newTestStreakService(mockRepo)

	err := s.UpdateSettings(context.Background(), map[string]string{"required_messages": "lots"}, "admin1")

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "UpdateStreakSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestNextMilestone(t *testing.T) {
	milestones := map[int]int{7: 50, 14: 100, 30: 250, 60: 500, 90: 1000}

	testCases := []struct {
		current  int
		expected int
	}{
		{0, 7},
		{6, 7},
		{7, 14},
		{14, 30},
		{29, 30},
		{60, 90},
		{90, 0},
		{120, 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, nextMilestone(tc.current, milestones), "current=%d", tc.current)
	}
}
