package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"guildgems/internal/model"
	"guildgems/pkg/dates"
	"guildgems/pkg/logger"

	"go.uber.org/zap"
)

type streakTracker interface {
	TrackActivity(ctx context.Context, userID string, voiceMinutes, messages int) (*model.TrackResult, error)
}

type questProgressor interface {
	UpdateProgress(ctx context.Context, userID, requirementType string, amount int) error
}

// IngestService turns raw gateway events into activity deltas and fans them
// out to the streak and quest engines. Live voice presence is held in memory;
// the repository keeps the durable session trail.
type IngestService struct {
	repo    ActivityRepository
	streaks streakTracker
	quests  questProgressor
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*model.VoiceSession
}

func NewIngestService(repo ActivityRepository, streaks streakTracker, quests questProgressor) *IngestService {
	return &IngestService{
		repo:     repo,
		streaks:  streaks,
		quests:   quests,
		now:      time.Now,
		sessions: make(map[string]*model.VoiceSession),
	}
}

// StartVoiceSession opens a presence for the user. A join while a session is
// already open replaces it, which covers channel hops without double-counting
// the elapsed time.
func (s *IngestService) StartVoiceSession(ctx context.Context, userID, username, channelID string) error {
	if _, err := s.repo.EnsureUser(ctx, userID, username); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}

	joinedAt := s.now()

	s.mu.Lock()
	s.sessions[userID] = &model.VoiceSession{
		UserID:    userID,
		ChannelID: channelID,
		JoinedAt:  joinedAt,
	}
	s.mu.Unlock()

	if err := s.repo.StartVoiceSession(ctx, userID, channelID, joinedAt); err != nil {
		return fmt.Errorf("failed to record voice session: %w", err)
	}

	logger.Logger().Info("voice session started",
		zap.String("user_id", userID),
		zap.String("channel_id", channelID),
	)
	return nil
}

// EndVoiceSession closes the user's presence and feeds the elapsed minutes to
// stats, streak, and quests. The streak and quest updates are best effort;
// a failure there does not undo the recorded session.
func (s *IngestService) EndVoiceSession(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
	}
	s.mu.Unlock()

	if !ok {
		return 0, ErrNoActiveSession
	}

	leftAt := s.now()
	minutes := int(leftAt.Sub(session.JoinedAt).Round(time.Minute) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}

	if err := s.repo.EndVoiceSession(ctx, userID, leftAt, minutes); err != nil {
		return 0, fmt.Errorf("failed to close voice session: %w", err)
	}
	if err := s.repo.AddActivity(ctx, userID, dates.Day(leftAt), minutes, 0); err != nil {
		return 0, fmt.Errorf("failed to record activity: %w", err)
	}

	log := logger.Logger()
	if _, err := s.streaks.TrackActivity(ctx, userID, minutes, 0); err != nil {
		log.Error("streak tracking failed", zap.String("user_id", userID), zap.Error(err))
	}
	if minutes > 0 {
		if err := s.quests.UpdateProgress(ctx, userID, model.RequirementVoice, minutes); err != nil {
			log.Error("quest progress failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	log.Info("voice session ended",
		zap.String("user_id", userID),
		zap.Int("minutes", minutes),
	)
	return minutes, nil
}

// RecordMessage counts one message toward stats, streak, and quests.
func (s *IngestService) RecordMessage(ctx context.Context, userID, username string) error {
	if _, err := s.repo.EnsureUser(ctx, userID, username); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}

	if err := s.repo.AddActivity(ctx, userID, dates.Day(s.now()), 0, 1); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	log := logger.Logger()
	if _, err := s.streaks.TrackActivity(ctx, userID, 0, 1); err != nil {
		log.Error("streak tracking failed", zap.String("user_id", userID), zap.Error(err))
	}
	if err := s.quests.UpdateProgress(ctx, userID, model.RequirementMessages, 1); err != nil {
		log.Error("quest progress failed", zap.String("user_id", userID), zap.Error(err))
	}

	return nil
}

// ActiveSessions snapshots the live voice presences.
func (s *IngestService) ActiveSessions() []*model.VoiceSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.VoiceSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		copied := *session
		out = append(out, &copied)
	}
	return out
}
