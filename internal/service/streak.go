package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"guildgems/internal/model"
	"guildgems/internal/repository"
	"guildgems/pkg/dates"
	"guildgems/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Defaults used until an admin writes the settings rows.
const (
	DefaultRequiredVoiceMinutes = 5
	DefaultRequiredMessages     = 5
	DefaultStreakRewardGems     = 10
)

var defaultMilestones = map[int]int{7: 50, 14: 100, 30: 250, 60: 500, 90: 1000}

var settingKeys = map[string]bool{
	"required_voice_minutes":  true,
	"required_messages":       true,
	"streak_reward_gems":      true,
	"streak_milestone_7_gems": true,
	"streak_milestone_14_gems": true,
	"streak_milestone_30_gems": true,
	"streak_milestone_60_gems": true,
	"streak_milestone_90_gems": true,
}

// StreakService is the per-user daily qualification state machine. All day
// comparisons use UTC calendar-day strings from pkg/dates.
type StreakService struct {
	repo     StreakRepository
	notifier *Notifier
	now      func() time.Time

	mu       sync.RWMutex
	settings *model.StreakSettings
}

func NewStreakService(repo StreakRepository, notifier *Notifier) *StreakService {
	return &StreakService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// Settings returns the typed threshold configuration, reading through the
// cache. Missing or malformed rows fall back to defaults so tracking keeps
// working on a fresh database.
func (s *StreakService) Settings(ctx context.Context) model.StreakSettings {
	s.mu.RLock()
	cached := s.settings
	s.mu.RUnlock()
	if cached != nil {
		return *cached
	}

	loaded := s.loadSettings(ctx)

	s.mu.Lock()
	s.settings = &loaded
	s.mu.Unlock()

	return loaded
}

func (s *StreakService) loadSettings(ctx context.Context) model.StreakSettings {
	settings := model.StreakSettings{
		RequiredVoiceMinutes: DefaultRequiredVoiceMinutes,
		RequiredMessages:     DefaultRequiredMessages,
		RewardGems:           DefaultStreakRewardGems,
		Milestones:           make(map[int]int, len(defaultMilestones)),
	}
	for day, gems := range defaultMilestones {
		settings.Milestones[day] = gems
	}

	raw, err := s.repo.GetStreakSettings(ctx)
	if err != nil {
		logger.Logger().Error("failed to load streak settings, using defaults", zap.Error(err))
		return settings
	}

	if v, ok := parseSetting(raw, "required_voice_minutes"); ok {
		settings.RequiredVoiceMinutes = v
	}
	if v, ok := parseSetting(raw, "required_messages"); ok {
		settings.RequiredMessages = v
	}
	if v, ok := parseSetting(raw, "streak_reward_gems"); ok {
		settings.RewardGems = v
	}
	for day := range defaultMilestones {
		if v, ok := parseSetting(raw, fmt.Sprintf("streak_milestone_%d_gems", day)); ok {
			settings.Milestones[day] = v
		}
	}

	return settings
}

func parseSetting(raw map[string]string, key string) (int, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// UpdateSettings persists an allowlisted partial settings map with the
// updater's identity, then refreshes the cache.
func (s *StreakService) UpdateSettings(ctx context.Context, values map[string]string, updatedBy string) error {
	for key, value := range values {
		if !settingKeys[key] {
			return errors.Wrap(ErrUnknownSettingKey, key)
		}
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("setting %s must be numeric: %w", key, err)
		}
	}

	if err := s.repo.UpdateStreakSettings(ctx, values, updatedBy); err != nil {
		return fmt.Errorf("failed to update streak settings: %w", err)
	}

	loaded := s.loadSettings(ctx)
	s.mu.Lock()
	s.settings = &loaded
	s.mu.Unlock()

	logger.Logger().Info("streak settings updated", zap.String("updated_by", updatedBy))
	return nil
}

// TrackActivity folds an activity delta into today's counters, running the
// day-rollover transition first when the calendar day has advanced:
//
//	continued: yesterday qualified, the streak advances and milestones pay out
//	carried:   yesterday active but unqualified, the streak count survives
//	broken:    a gap of two or more days, the streak resets to zero
//
// Crossing both thresholds marks the day qualified exactly once and credits
// the daily reward. State and payouts commit in one transaction.
func (s *StreakService) TrackActivity(ctx context.Context, userID string, voiceMinutes, messages int) (*model.TrackResult, error) {
	if _, err := s.repo.EnsureUser(ctx, userID, ""); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	settings := s.Settings(ctx)
	now := s.now()
	today := dates.Day(now)
	yesterday := dates.Yesterday(now)

	streak, err := s.repo.GetActivityStreak(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		streak = &model.ActivityStreak{UserID: userID, LastActivityDate: today}
		if err := s.repo.CreateActivityStreak(ctx, streak); err != nil {
			return nil, fmt.Errorf("failed to create activity streak: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get activity streak: %w", err)
	}

	result := &model.TrackResult{
		RequiredVoice:    settings.RequiredVoiceMinutes,
		RequiredMessages: settings.RequiredMessages,
	}
	var credits []model.BalanceCredit

	switch {
	case streak.LastActivityDate == today:
		streak.TodayVoiceMinutes += voiceMinutes
		streak.TodayMessages += messages

	case streak.LastActivityDate == yesterday && streak.QualifiedToday:
		streak.CurrentStreak++
		if streak.CurrentStreak > streak.LongestStreak {
			streak.LongestStreak = streak.CurrentStreak
		}
		streak.TotalStreakDays++
		streak.LastActivityDate = today
		streak.TodayVoiceMinutes = voiceMinutes
		streak.TodayMessages = messages
		streak.QualifiedToday = false

		if reward, ok := settings.Milestones[streak.CurrentStreak]; ok {
			result.MilestoneDay = streak.CurrentStreak
			result.MilestoneReward = reward
			credits = append(credits, model.BalanceCredit{
				UserID:      userID,
				Gems:        reward,
				Type:        "streak_milestone",
				Description: fmt.Sprintf("Streak milestone: Day %d", streak.CurrentStreak),
			})
		}

	case streak.LastActivityDate == yesterday:
		// Active yesterday without qualifying: day moves on, streak count
		// carries unchanged.
		streak.LastActivityDate = today
		streak.TodayVoiceMinutes = voiceMinutes
		streak.TodayMessages = messages
		streak.QualifiedToday = false

	default:
		streak.CurrentStreak = 0
		streak.LastActivityDate = today
		streak.TodayVoiceMinutes = voiceMinutes
		streak.TodayMessages = messages
		streak.QualifiedToday = false
	}

	result.Voice = streak.TodayVoiceMinutes
	result.Messages = streak.TodayMessages

	if !streak.QualifiedToday &&
		streak.TodayVoiceMinutes >= settings.RequiredVoiceMinutes &&
		streak.TodayMessages >= settings.RequiredMessages {
		streak.QualifiedToday = true
		result.Qualified = true
		result.Reward = settings.RewardGems
		credits = append(credits, model.BalanceCredit{
			UserID:      userID,
			Gems:        settings.RewardGems,
			Type:        "streak_daily",
			Description: "Daily streak qualification",
		})
	}

	if err := s.repo.CommitStreakUpdate(ctx, streak, credits); err != nil {
		return nil, fmt.Errorf("failed to commit streak update: %w", err)
	}

	if result.Qualified {
		s.notifier.Publish(Event{
			Type:   EventStreakQualified,
			UserID: userID,
			Payload: map[string]any{
				"reward": result.Reward,
				"streak": streak.CurrentStreak,
			},
		})
	}
	if result.MilestoneReward > 0 {
		s.notifier.Publish(Event{
			Type:   EventStreakMilestone,
			UserID: userID,
			Payload: map[string]any{
				"day":    result.MilestoneDay,
				"reward": result.MilestoneReward,
			},
		})
	}

	return result, nil
}

// GetStatus reports the user's streak with today's progress. A record from an
// earlier day is presented with zeroed today-counters; the stored row is left
// untouched until the next activity event runs the rollover.
func (s *StreakService) GetStatus(ctx context.Context, userID string) (*model.StreakStatus, error) {
	settings := s.Settings(ctx)
	today := dates.Day(s.now())

	status := &model.StreakStatus{
		NextMilestone: nextMilestone(0, settings.Milestones),
		Settings:      settings,
	}

	streak, err := s.repo.GetActivityStreak(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		status.VoiceRemaining = settings.RequiredVoiceMinutes
		status.MessagesRemaining = settings.RequiredMessages
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity streak: %w", err)
	}

	if streak.LastActivityDate != today {
		streak.TodayVoiceMinutes = 0
		streak.TodayMessages = 0
		streak.QualifiedToday = false
	}

	status.CurrentStreak = streak.CurrentStreak
	status.LongestStreak = streak.LongestStreak
	status.TotalStreakDays = streak.TotalStreakDays
	status.TodayVoiceMinutes = streak.TodayVoiceMinutes
	status.TodayMessages = streak.TodayMessages
	status.QualifiedToday = streak.QualifiedToday
	status.VoiceRemaining = maxInt(0, settings.RequiredVoiceMinutes-streak.TodayVoiceMinutes)
	status.MessagesRemaining = maxInt(0, settings.RequiredMessages-streak.TodayMessages)
	status.NextMilestone = nextMilestone(streak.CurrentStreak, settings.Milestones)

	return status, nil
}

func (s *StreakService) Leaderboard(ctx context.Context, limit int) ([]*model.StreakLeader, error) {
	leaders, err := s.repo.StreakLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak leaderboard: %w", err)
	}
	return leaders, nil
}

// nextMilestone is the smallest configured milestone strictly above the
// current streak, or 0 once the ladder is exhausted.
func nextMilestone(current int, milestones map[int]int) int {
	days := make([]int, 0, len(milestones))
	for day := range milestones {
		days = append(days, day)
	}
	sort.Ints(days)

	for _, day := range days {
		if day > current {
			return day
		}
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
