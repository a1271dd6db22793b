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

type trackCall struct {
	userID  string
	voice   int
	message int
}

type fakeStreakTracker struct {
	calls []trackCall
}

func (f *fakeStreakTracker) TrackActivity(_ context.Context, userID string, voiceMinutes, messages int) (*model.TrackResult, error) {
	f.calls = append(f.calls, trackCall{userID, voiceMinutes, messages})
	return &model.TrackResult{}, nil
}

type progressCall struct {
	userID          string
	requirementType string
	amount          int
}

type fakeQuestProgressor struct {
	calls []progressCall
}

func (f *fakeQuestProgressor) UpdateProgress(_ context.Context, userID, requirementType string, amount int) error {
	f.calls = append(f.calls, progressCall{userID, requirementType, amount})
	return nil
}

func TestVoiceSessionLifecycle(t *testing.T) {
	mockRepo := new(mocks.MockActivityRepository)
	streaks := &fakeStreakTracker{}
	quests := &fakeQuestProgressor{}
	s := NewIngestService(mockRepo, streaks, quests)
	ctx := context.Background()

	joined := fixedNow
	current := joined
	s.now = func() time.Time { return current }

	mockRepo.On("EnsureUser", ctx, "u1", "alice").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("StartVoiceSession", ctx, "u1", "general", joined).Return(nil)

	assert.NoError(t, s.StartVoiceSession(ctx, "u1", "alice", "general"))
	assert.Len(t, s.ActiveSessions(), 1)

	current = joined.Add(30 * time.Minute)
	mockRepo.On("EndVoiceSession", ctx, "u1", current, 30).Return(nil)
	mockRepo.On("AddActivity", ctx, "u1", "2025-03-10", 30, 0).Return(nil)

	minutes, err := s.EndVoiceSession(ctx, "u1")

	assert.NoError(t, err)
	assert.Equal(t, 30, minutes)
	assert.Empty(t, s.ActiveSessions())
	assert.Equal(t, []trackCall{{"u1", 30, 0}}, streaks.calls)
	assert.Equal(t, []progressCall{{"u1", model.RequirementVoice, 30}}, quests.calls)
	mockRepo.AssertExpectations(t)
}

func TestEndVoiceSession_NoOpenSession(t *testing.T) {
	s := NewIngestService(new(mocks.MockActivityRepository), &fakeStreakTracker{}, &fakeQuestProgressor{})

	_, err := s.EndVoiceSession(context.Background(), "u1")

	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestStartVoiceSession_RejoinReplacesSession(t *testing.T) {
	mockRepo := new(mocks.MockActivityRepository)
	s := NewIngestService(mockRepo, &fakeStreakTracker{}, &fakeQuestProgressor{})
	ctx := context.Background()

	s.now = func() time.Time { return fixedNow }

	mockRepo.On("EnsureUser", ctx, "u1", "alice").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("StartVoiceSession", ctx, "u1", mock.Anything, fixedNow).Return(nil)

	assert.NoError(t, s.StartVoiceSession(ctx, "u1", "alice", "general"))
	assert.NoError(t, s.StartVoiceSession(ctx, "u1", "alice", "gaming"))

	sessions := s.ActiveSessions()
	assert.Len(t, sessions, 1)
	assert.Equal(t, "gaming", sessions[0].ChannelID)
}

func TestRecordMessage(t *testing.T) {
	mockRepo := new(mocks.MockActivityRepository)
	streaks := &fakeStreakTracker{}
	quests := &fakeQuestProgressor{}
	s := NewIngestService(mockRepo, streaks, quests)
	ctx := context.Background()

	s.now = func() time.Time { return fixedNow }

	mockRepo.On("EnsureUser", ctx, "u1", "alice").Return(&model.User{UserID: "u1"}, nil)
	mockRepo.On("AddActivity", ctx, "u1", "2025-03-10", 0, 1).Return(nil)

	assert.NoError(t, s.RecordMessage(ctx, "u1", "alice"))
	assert.Equal(t, []trackCall{{"u1", 0, 1}}, streaks.calls)
	assert.Equal(t, []progressCall{{"u1", model.RequirementMessages, 1}}, quests.calls)
	mockRepo.AssertExpectations(t)
}
