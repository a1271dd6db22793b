package service

import (
	"context"
	"fmt"

	"guildgems/internal/model"
	"guildgems/internal/repository"

	"github.com/pkg/errors"
)

// Profile is a user joined with their recent balance history.
type Profile struct {
	User         *model.User
	Transactions []*model.Transaction
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Login upserts the Discord identity so display fields stay fresh across
// username changes.
func (s *UserService) Login(ctx context.Context, u *model.User) (*model.User, error) {
	if err := s.repo.UpsertDiscordUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	user, err := s.repo.GetUser(ctx, u.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, userID string, txLimit int) (*Profile, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	txs, err := s.repo.RecentTransactions(ctx, userID, txLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return &Profile{User: user, Transactions: txs}, nil
}

func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	entries, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}
