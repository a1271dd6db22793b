package service

import (
	"context"
	"fmt"
	"time"

	"guildgems/internal/model"
	"guildgems/internal/repository"
	"guildgems/pkg/dates"
	"guildgems/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Named entries of the reward table. Days past seven without an entry scale
// by the week number in rewardForDay.
var dailyRewardTable = map[int]model.Reward{
	1:  {Gems: 10, Respect: 1, Description: "Day 1"},
	2:  {Gems: 15, Respect: 1, Description: "Day 2"},
	3:  {Gems: 20, Respect: 2, Description: "Day 3"},
	4:  {Gems: 25, Respect: 2, Description: "Day 4"},
	5:  {Gems: 30, Respect: 3, Description: "Day 5"},
	6:  {Gems: 40, Respect: 3, Description: "Day 6"},
	7:  {Gems: 100, Respect: 10, Description: "Week Milestone!", Special: true},
	14: {Gems: 250, Respect: 25, Description: "2-Week Milestone!", Special: true},
	30: {Gems: 500, Respect: 50, Description: "Month Milestone!", Special: true},
	60: {Gems: 1000, Respect: 100, Description: "2-Month Milestone!", Special: true},
	90: {Gems: 2000, Respect: 200, Description: "3-Month Milestone!", Special: true},
}

// DailyRewardService runs the claim-driven streak. It is deliberately
// independent of the activity streak: this one only advances when the user
// presses the button.
type DailyRewardService struct {
	repo     DailyRewardRepository
	notifier *Notifier
	now      func() time.Time
}

func NewDailyRewardService(repo DailyRewardRepository, notifier *Notifier) *DailyRewardService {
	return &DailyRewardService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

func rewardForDay(day int) model.Reward {
	if reward, ok := dailyRewardTable[day]; ok {
		return reward
	}
	week := (day-1)/7 + 1
	return model.Reward{
		Gems:        40 + 5*week,
		Respect:     3 + week/2,
		Description: fmt.Sprintf("Day %d", day),
	}
}

// storedNextMilestone caps at 90 so the persisted column always points at a
// real milestone; the API-facing value comes from nextRewardMilestone.
func storedNextMilestone(streak int) int {
	switch {
	case streak >= 90:
		return 90
	case streak >= 60:
		return 90
	case streak >= 30:
		return 60
	case streak >= 14:
		return 30
	case streak >= 7:
		return 14
	default:
		return 7
	}
}

// nextRewardMilestone is 0 once the ladder is exhausted.
func nextRewardMilestone(streak int) int {
	switch {
	case streak >= 90:
		return 0
	case streak >= 60:
		return 90
	case streak >= 30:
		return 60
	case streak >= 14:
		return 30
	case streak >= 7:
		return 14
	default:
		return 7
	}
}

// CanClaim reports claim eligibility without mutating anything. A broken
// streak is claimable at day one; only a same-day repeat is refused.
func (s *DailyRewardService) CanClaim(ctx context.Context, userID string) (*model.ClaimCheck, error) {
	now := s.now()
	today := dates.Day(now)
	yesterday := dates.Yesterday(now)

	rec, err := s.repo.GetDailyReward(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.ClaimCheck{CanClaim: true, StreakDay: 1, NewUser: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily reward record: %w", err)
	}

	switch {
	case rec.LastClaimDate == today:
		return &model.ClaimCheck{
			CanClaim:  false,
			StreakDay: rec.CurrentStreak,
			Reason:    "already_claimed_today",
		}, nil
	case rec.LastClaimDate == yesterday || rec.LastClaimDate == "":
		return &model.ClaimCheck{CanClaim: true, StreakDay: rec.CurrentStreak + 1}, nil
	default:
		return &model.ClaimCheck{CanClaim: true, StreakDay: 1, StreakBroken: true}, nil
	}
}

// Claim settles today's reward: record, audit row, and balance credit land in
// one transaction. On a broken streak the claim still succeeds at day one.
func (s *DailyRewardService) Claim(ctx context.Context, userID, username string) (*model.ClaimResult, error) {
	if _, err := s.repo.EnsureUser(ctx, userID, username); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	check, err := s.CanClaim(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !check.CanClaim {
		return nil, ErrAlreadyClaimedToday
	}

	now := s.now()
	today := dates.Day(now)
	reward := rewardForDay(check.StreakDay)

	rec := &model.DailyRewardRecord{
		UserID:        userID,
		CurrentStreak: check.StreakDay,
		LastClaimDate: today,
		NextMilestone: storedNextMilestone(check.StreakDay),
	}
	claim := &model.ClaimRecord{
		UserID: userID,
		Date:   today,
		Day:    check.StreakDay,
		Gems:   reward.Gems,
	}
	credit := model.BalanceCredit{
		UserID:      userID,
		Gems:        reward.Gems,
		Respect:     reward.Respect,
		Type:        "daily_reward",
		Description: fmt.Sprintf("Daily reward: Day %d", check.StreakDay),
	}

	if err := s.repo.CommitClaim(ctx, rec, claim, credit); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	logger.Logger().Info("daily reward claimed",
		zap.String("user_id", userID),
		zap.Int("streak_day", check.StreakDay),
		zap.Int("gems", reward.Gems),
	)

	s.notifier.Publish(Event{
		Type:   EventDailyReward,
		UserID: userID,
		Payload: map[string]any{
			"day":     check.StreakDay,
			"gems":    reward.Gems,
			"respect": reward.Respect,
			"special": reward.Special,
		},
	})

	return &model.ClaimResult{
		Reward:        reward,
		StreakDay:     check.StreakDay,
		NextMilestone: nextRewardMilestone(check.StreakDay),
		StreakBroken:  check.StreakBroken,
	}, nil
}

// Status is the dashboard view: current streak, the reward waiting on the
// next claim, and whether the streak is still alive today.
func (s *DailyRewardService) Status(ctx context.Context, userID string) (*model.RewardStatus, error) {
	now := s.now()
	today := dates.Day(now)
	yesterday := dates.Yesterday(now)

	check, err := s.CanClaim(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &model.RewardStatus{
		CanClaim:      check.CanClaim,
		NextReward:    rewardForDay(check.StreakDay),
		NextRewardDay: check.StreakDay,
	}

	rec, err := s.repo.GetDailyReward(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		status.NextMilestone = nextRewardMilestone(0)
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily reward record: %w", err)
	}

	status.CurrentStreak = rec.CurrentStreak
	status.TotalClaims = rec.TotalClaims
	status.LastClaimDate = rec.LastClaimDate
	status.NextMilestone = nextRewardMilestone(rec.CurrentStreak)
	status.StreakActive = rec.LastClaimDate == today || rec.LastClaimDate == yesterday

	return status, nil
}

// Upcoming previews the next seven claim days from the given streak.
func (s *DailyRewardService) Upcoming(currentStreak int) []*model.UpcomingReward {
	upcoming := make([]*model.UpcomingReward, 0, 7)
	for i := 1; i <= 7; i++ {
		day := currentStreak + i
		reward := rewardForDay(day)
		upcoming = append(upcoming, &model.UpcomingReward{
			Day:         day,
			Gems:        reward.Gems,
			Respect:     reward.Respect,
			Description: reward.Description,
			IsMilestone: reward.Special,
		})
	}
	return upcoming
}

func (s *DailyRewardService) History(ctx context.Context, userID string, limit int) ([]*model.ClaimRecord, error) {
	records, err := s.repo.ClaimHistory(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get claim history: %w", err)
	}
	return records, nil
}
