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

// DailyRespectLimit caps how much respect one user can gift per UTC day.
const DailyRespectLimit = 10

// FriendService manages the symmetric friendship relation trades depend on,
// plus the respect gifting that runs along it.
type FriendService struct {
	repo   FriendRepository
	quests questProgressor
	now    func() time.Time
}

func NewFriendService(repo FriendRepository, quests questProgressor) *FriendService {
	return &FriendService{repo: repo, quests: quests, now: time.Now}
}

// Add links two users in both directions. Adding an existing friend is a
// no-op; both sides get quest credit on a fresh link.
func (s *FriendService) Add(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return ErrSelfReference
	}

	if _, err := s.repo.EnsureUser(ctx, userID, ""); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	if _, err := s.repo.EnsureUser(ctx, friendID, ""); err != nil {
		return fmt.Errorf("failed to ensure friend: %w", err)
	}

	already, err := s.repo.AreFriends(ctx, userID, friendID)
	if err != nil {
		return fmt.Errorf("failed to check friendship: %w", err)
	}
	if already {
		return nil
	}

	if err := s.repo.AddFriend(ctx, userID, friendID); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}

	log := logger.Logger()
	for _, id := range []string{userID, friendID} {
		if err := s.quests.UpdateProgress(ctx, id, model.RequirementFriends, 1); err != nil {
			log.Error("quest progress failed", zap.String("user_id", id), zap.Error(err))
		}
	}

	log.Info("friendship created",
		zap.String("user_id", userID),
		zap.String("friend_id", friendID),
	)
	return nil
}

func (s *FriendService) Remove(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return ErrSelfReference
	}
	if err := s.repo.RemoveFriend(ctx, userID, friendID); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

// GiveRespect gifts respect to another user against the giver's daily
// allowance; the gift is minted, so the giver's balance is untouched. A
// successful gift drives respect quest progress for the giver.
func (s *FriendService) GiveRespect(ctx context.Context, fromID, toID string, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrSelfReference
	}

	if _, err := s.repo.EnsureUser(ctx, fromID, ""); err != nil {
		return fmt.Errorf("failed to ensure giver: %w", err)
	}
	if _, err := s.repo.EnsureUser(ctx, toID, ""); err != nil {
		return fmt.Errorf("failed to ensure recipient: %w", err)
	}

	today := dates.Day(s.now())
	err := s.repo.GiveRespect(ctx, fromID, toID, amount, today, DailyRespectLimit)
	if errors.Is(err, repository.ErrRespectLimitReached) {
		return ErrRespectLimitReached
	}
	if err != nil {
		return fmt.Errorf("failed to give respect: %w", err)
	}

	log := logger.Logger()
	if err := s.quests.UpdateProgress(ctx, fromID, model.RequirementRespect, amount); err != nil {
		log.Error("quest progress failed", zap.String("user_id", fromID), zap.Error(err))
	}

	log.Info("respect given",
		zap.String("from", fromID),
		zap.String("to", toID),
		zap.Int("amount", amount),
	)
	return nil
}

func (s *FriendService) List(ctx context.Context, userID string) ([]*model.User, error) {
	friends, err := s.repo.Friends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}
