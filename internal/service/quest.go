package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"guildgems/internal/model"
	"guildgems/internal/repository"
	"guildgems/pkg/dates"
	"guildgems/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	dailyQuestCount  = 3
	weeklyQuestCount = 2

	schedulerInterval = time.Minute
)

var dailyQuestTemplates = []model.QuestTemplate{
	{RequirementType: model.RequirementVoice, Name: "Vocal Legend", Description: "Stay in voice for 30 minutes", Requirement: 30, Gems: 5, Respect: 2},
	{RequirementType: model.RequirementVoice, Name: "Chatterbox", Description: "Stay in voice for 60 minutes", Requirement: 60, Gems: 10, Respect: 5},
	{RequirementType: model.RequirementMessages, Name: "Text Master", Description: "Send 20 messages", Requirement: 20, Gems: 5, Respect: 2},
	{RequirementType: model.RequirementMessages, Name: "Conversation King", Description: "Send 50 messages", Requirement: 50, Gems: 10, Respect: 5},
	{RequirementType: model.RequirementRespect, Name: "Generous Soul", Description: "Give 3 Respect", Requirement: 3, Gems: 5, Respect: 0},
	{RequirementType: model.RequirementFriends, Name: "Social Butterfly", Description: "Add 2 new friends", Requirement: 2, Gems: 10, Respect: 3},
}

var weeklyQuestTemplates = []model.QuestTemplate{
	{RequirementType: model.RequirementVoice, Name: "Weekly Warrior", Description: "Stay in voice for 300 minutes", Requirement: 300, Gems: 50, Respect: 20},
	{RequirementType: model.RequirementMessages, Name: "Message Marathon", Description: "Send 500 messages", Requirement: 500, Gems: 50, Respect: 20},
	{RequirementType: model.RequirementStreak, Name: "Streak Master", Description: "Keep a 7 day streak", Requirement: 7, Gems: 100, Respect: 30},
	{RequirementType: model.RequirementRespect, Name: "Respectful", Description: "Give 20 Respect", Requirement: 20, Gems: 75, Respect: 10},
}

// QuestService generates the rotating quest pools and scores progress
// against them. Generation is idempotent per period, so several instances
// racing at startup produce one set.
type QuestService struct {
	repo     QuestRepository
	notifier *Notifier
	now      func() time.Time
	pick     func(n, k int) []int
}

func NewQuestService(repo QuestRepository, notifier *Notifier) *QuestService {
	return &QuestService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		pick:     randomPick,
	}
}

// randomPick returns k distinct indices from [0, n).
func randomPick(n, k int) []int {
	perm := rand.Perm(n)
	if k > n {
		k = n
	}
	return perm[:k]
}

func questsFromTemplates(templates []model.QuestTemplate, picks []int, questType, startDate, endDate string, weekly bool) []*model.Quest {
	quests := make([]*model.Quest, 0, len(picks))
	for _, i := range picks {
		t := templates[i]
		quests = append(quests, &model.Quest{
			QuestID:          uuid.New(),
			QuestType:        questType,
			Name:             t.Name,
			Description:      t.Description,
			RequirementType:  t.RequirementType,
			RequirementValue: t.Requirement,
			RewardGems:       t.Gems,
			RewardRespect:    t.Respect,
			StartDate:        startDate,
			EndDate:          endDate,
			Weekly:           weekly,
		})
	}
	return quests
}

// EnsureDailyQuests creates today's quest set if it does not exist yet.
func (s *QuestService) EnsureDailyQuests(ctx context.Context) error {
	now := s.now()
	today := dates.Day(now)
	tomorrow := dates.AddDays(today, 1)

	count, err := s.repo.CountQuests(ctx, today, false)
	if err != nil {
		return fmt.Errorf("failed to count daily quests: %w", err)
	}
	if count > 0 {
		return nil
	}

	picks := s.pick(len(dailyQuestTemplates), dailyQuestCount)
	quests := questsFromTemplates(dailyQuestTemplates, picks, model.QuestTypeDaily, today, tomorrow, false)

	if err := s.repo.CreateQuests(ctx, quests); err != nil {
		return fmt.Errorf("failed to create daily quests: %w", err)
	}

	logger.Logger().Info("daily quests generated",
		zap.String("start_date", today),
		zap.Int("count", len(quests)),
	)
	return nil
}

// EnsureWeeklyQuests creates this week's quest set if it does not exist yet.
// Weeks start on Sunday.
func (s *QuestService) EnsureWeeklyQuests(ctx context.Context) error {
	now := s.now()
	weekStart := dates.WeekStart(now)
	weekEnd := dates.AddDays(weekStart, 7)

	count, err := s.repo.CountQuests(ctx, weekStart, true)
	if err != nil {
		return fmt.Errorf("failed to count weekly quests: %w", err)
	}
	if count > 0 {
		return nil
	}

	picks := s.pick(len(weeklyQuestTemplates), weeklyQuestCount)
	quests := questsFromTemplates(weeklyQuestTemplates, picks, model.QuestTypeWeekly, weekStart, weekEnd, true)

	if err := s.repo.CreateQuests(ctx, quests); err != nil {
		return fmt.Errorf("failed to create weekly quests: %w", err)
	}

	logger.Logger().Info("weekly quests generated",
		zap.String("week_start", weekStart),
		zap.Int("count", len(quests)),
	)
	return nil
}

// RunScheduler generates both pools now and then keeps them fresh across day
// and week boundaries until the context is cancelled.
func (s *QuestService) RunScheduler(ctx context.Context) {
	log := logger.Logger()

	tick := func() {
		if err := s.EnsureDailyQuests(ctx); err != nil {
			log.Error("daily quest generation failed", zap.Error(err))
		}
		if err := s.EnsureWeeklyQuests(ctx); err != nil {
			log.Error("weekly quest generation failed", zap.Error(err))
		}
	}

	tick()

	ticker := time.NewTicker(schedulerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

func (s *QuestService) UserQuests(ctx context.Context, userID string) ([]*model.QuestWithProgress, error) {
	quests, err := s.repo.UserQuests(ctx, userID, dates.Day(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to get user quests: %w", err)
	}
	return quests, nil
}

// UpdateProgress adds amount to every active, uncompleted quest of the given
// requirement type and flips the ones that cross their target. Progress past
// a completed quest is not recorded.
func (s *QuestService) UpdateProgress(ctx context.Context, userID, requirementType string, amount int) error {
	if amount <= 0 {
		return nil
	}

	today := dates.Day(s.now())
	quests, err := s.repo.ActiveQuestsByType(ctx, userID, requirementType, today)
	if err != nil {
		return fmt.Errorf("failed to get active quests: %w", err)
	}

	for _, q := range quests {
		progress, err := s.repo.UpsertQuestProgress(ctx, userID, q.QuestID, amount)
		if err != nil {
			return fmt.Errorf("failed to update progress for quest %s: %w", q.QuestID, err)
		}

		if progress < q.RequirementValue {
			continue
		}

		if err := s.repo.MarkQuestCompleted(ctx, userID, q.QuestID); err != nil {
			return fmt.Errorf("failed to complete quest %s: %w", q.QuestID, err)
		}

		s.notifier.Publish(Event{
			Type:   EventQuestCompleted,
			UserID: userID,
			Payload: map[string]any{
				"quest_id":   q.QuestID.String(),
				"quest_name": q.Name,
				"gems":       q.RewardGems,
				"respect":    q.RewardRespect,
			},
		})
	}

	return nil
}

// ClaimReward pays out a completed quest once.
func (s *QuestService) ClaimReward(ctx context.Context, userID string, questID uuid.UUID) (*model.Quest, error) {
	q, err := s.repo.GetQuest(ctx, questID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestNotClaimable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}

	uq, err := s.repo.GetUserQuest(ctx, userID, questID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestNotClaimable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user quest: %w", err)
	}
	if !uq.Completed || uq.Claimed {
		return nil, ErrQuestNotClaimable
	}

	credit := model.BalanceCredit{
		UserID:      userID,
		Gems:        q.RewardGems,
		Respect:     q.RewardRespect,
		Type:        "quest_reward",
		Description: fmt.Sprintf("Quest: %s", q.Name),
	}

	err = s.repo.CommitQuestClaim(ctx, userID, questID, credit)
	if errors.Is(err, repository.ErrQuestNotClaimable) {
		return nil, ErrQuestNotClaimable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to commit quest claim: %w", err)
	}

	logger.Logger().Info("quest reward claimed",
		zap.String("user_id", userID),
		zap.String("quest", q.Name),
		zap.Int("gems", q.RewardGems),
	)

	return q, nil
}
