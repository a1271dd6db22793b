package service

import (
	"context"
	"testing"
	"time"

	"guildgems/internal/model"
	"guildgems/internal/repository"
	"guildgems/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestQuestService(repo *mocks.MockQuestRepository) *QuestService {
	s := NewQuestService(repo, nil)
	s.now = func() time.Time { return fixedNow }
	s.pick = func(n, k int) []int {
		picks := make([]int, k)
		for i := range picks {
			picks[i] = i
		}
		return picks
	}
	return s
}

func TestEnsureDailyQuests_CreatesThreeForToday(t *testing.T) {
	mockRepo := new(mocks.MockQuestRepository)
	s := newTestQuestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("CountQuests", ctx, "2025-03-10", false).Return(0, nil)
	mockRepo.On("CreateQuests", ctx, mock.MatchedBy(func(quests []*model.Quest) bool {
		if len(quests) != 3 {
			return false
		}
		for _, q := range quests {
			if q.StartDate != "2025-03-10" || q.EndDate != "2025-03-11" || q.Weekly {
				return false
			}
		}
		return quests[0].Name == "Vocal Legend"
	})).Return(nil)

	err := s.EnsureDailyQuests(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestEnsureDailyQuests_IdempotentWhenSetExists(t *testing.T) {
	mockRepo := new(mocks.MockQuestRepository)
	s := newTestQuestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("CountQuests", ctx, "2025-03-10", false).Return(3, nil)

	err := s.EnsureDailyQuests(ctx)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "CreateQuests", mock.Anything, mock.Anything)
}

func TestEnsureWeeklyQuests_SundayWindow(t *testing.T) {
	mockRepo := new(mocks.MockQuestRepository)
	s := newTestQuestService(mockRepo)
	ctx := context.Background()

	// 2025-03-10 is a Monday; the week started Sunday the 9th.
	mockRepo.On("CountQuests", ctx, "2025-03-09", true).Return(0, nil)
	mockRepo.On("CreateQuests", ctx, mock.MatchedBy(func(quests []*model.Quest) bool {
		if len(quests) != 2 {
			return false
		}
		for _, q := range quests {
			if q.StartDate != "2025-03-09" || q.EndDate != "2025-03-16" || !q.Weekly {
				return false
			}
		}
		return true
	})).Return(nil)

	err := s.EnsureWeeklyQuests(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdateProgress_CompletesAtRequirement(t *testing.T) {
	mockRepo := new(mocks.MockQuestRepository)
	s := newTestQuestService(mockRepo)
	ctx := context.Background()

	questID := uuid.New()
	q := &model.Quest{
		QuestID:          questID,
		Name:             "Vocal Legend",
		RequirementType:  model.RequirementVoice,
		RequirementValue: 21,
		RewardGems:       5,
	}

	mockRepo.On("ActiveQuestsByType", ctx, "u1", model.RequirementVoice, "2025-03-10").
		Return([]*model.Quest{q}, nil).Times(3)
	mockRepo.On("UpsertQuestProgress", ctx, "u1", questID, 7).Return(7, nil).Once()
	mockRepo.On("UpsertQuestProgress", ctx, "u1", questID, 7).Return(14, nil).Once()
	mockRepo.On("UpsertQuestProgress", ctx, "u1", questID, 7).Return(21, nil).Once()
	mockRepo.On("MarkQuestCompleted", ctx, "u1", questID).Return(nil).Once()

	for i := 0; i < 3; i++ {
		assert.NoError(t, s.UpdateProgress(ctx, "u1", model.RequirementVoice, 7))
	}

	mockRepo.AssertExpectations(t)
}

func TestUpdateProgress_IgnoresNonPositiveAmounts(t *testing.T) {
	mockRepo := new(mocks.MockQuestRepository)
	s := newTestQuestService(mockRepo)

	assert.NoError(t, s.UpdateProgress(context.Background(), "u1", model.RequirementVoice, 0))
	mockRepo.AssertNotCalled(t, "ActiveQuestsByType", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimReward_PaysCompletedQuest(t *testing.T) {
	mockRepo := new(mocks.MockQuestRepository)
	s := newTestQuestService(mockRepo)
	ctx := context.Background()

	questID := uuid.New()
	q := &model.Quest{
		QuestID:       questID,
		Name:          "Text Master",
		RewardGems:    5,
		RewardRespect: 2,
	}

	mockRepo.On("GetQuest", ctx, questID).Return(q, nil)
	mockRepo.On("GetUserQuest", ctx, "u1", questID).Return(&model.UserQuest{
		UserID:    "u1",
		QuestID:   questID,
		Progress:  20,
		Completed: true,
	}, nil)
	mockRepo.On("CommitQuestClaim", ctx, "u1", questID, mock.MatchedBy(func(credit model.BalanceCredit) bool {
		return credit.Gems == 5 && credit.Respect == 2 && credit.Type == "quest_reward"
	})).Return(nil)

	claimed, err := s.ClaimReward(ctx, "u1", questID)

	assert.NoError(t, err)
	assert.Equal(t, "Text Master", claimed.Name)
	mockRepo.AssertExpectations(t)
}

func TestClaimReward_DoubleClaimFails(t *testing.T) {
	mockRepo := new(mocks.MockQuestRepository)
	s := newTestQuestService(mockRepo)
	ctx := context.Background()

	questID := uuid.New()
	mockRepo.On("GetQuest", ctx, questID).Return(&model.Quest{QuestID: questID}, nil)
	mockRepo.On("GetUserQuest", ctx, "u1", questID).Return(&model.UserQuest{
		UserID:    "u1",
		QuestID:   questID,
		Completed: true,
		Claimed:   true,
	}, nil)

	_, err := s.ClaimReward(ctx, "u1", questID)

	assert.ErrorIs(t, err, ErrQuestNotClaimable)
	mockRepo.AssertNotCalled(t, "CommitQuestClaim", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimReward_IncompleteQuestFails(t *testing.T) {
	mockRepo := new(mocks.MockQuestRepository)
	s := newTestQuestService(mockRepo)
	ctx := context.Background()

	questID := uuid.New()
	mockRepo.On("GetQuest", ctx, questID).Return(&model.Quest{QuestID: questID}, nil)
	mockRepo.On("GetUserQuest", ctx, "u1", questID).Return(&model.UserQuest{
		UserID:   "u1",
		QuestID:  questID,
		Progress: 10,
	}, nil)

	_, err := s.ClaimReward(ctx, "u1", questID)

	assert.ErrorIs(t, err, ErrQuestNotClaimable)
}

func TestClaimReward_UnknownQuest(t *testing.T) {
	mockRepo := new(mocks.MockQuestRepository)
	s := newTestQuestService(mockRepo)
	ctx := context.Background()

	questID := uuid.New()
	mockRepo.On("GetQuest", ctx, questID).Return(nil, repository.ErrNotFound)

	_, err := s.ClaimReward(ctx, "u1", questID)

	assert.ErrorIs(t, err, ErrQuestNotClaimable)
}
