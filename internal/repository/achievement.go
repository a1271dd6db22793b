package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guildgems/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type userAchievement struct {
	UserID        string    `db:"user_id"`
	AchievementID string    `db:"achievement_id"`
	UnlockedAt    time.Time `db:"unlocked_at"`
}

func (r *Repository) UserAchievements(ctx context.Context, userID string) ([]*model.UserAchievement, error) {
	query, args, err := squirrel.
		Select("user_id", "achievement_id", "unlocked_at").
		From("user_achievements").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []userAchievement
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get user achievements: %w", err)
	}

	out := make([]*model.UserAchievement, len(rows))
	for i, row := range rows {
		out[i] = &model.UserAchievement{
			UserID:        row.UserID,
			AchievementID: row.AchievementID,
			UnlockedAt:    row.UnlockedAt,
		}
	}
	return out, nil
}

// GrantAchievement unlocks once and pays the reward in the same transaction.
// A second grant for the same achievement returns ErrAchievementUnlocked.
func (r *Repository) GrantAchievement(ctx context.Context, userID, achievementID string, credit model.BalanceCredit) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("user_achievements").
			SetMap(map[string]interface{}{
				"user_id":        userID,
				"achievement_id": achievementID,
			}).
			Suffix("ON CONFLICT (user_id, achievement_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert user achievement: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAchievementUnlocked
		}

		if credit.Gems == 0 && credit.Respect == 0 {
			return nil
		}
		return applyCredit(ctx, tx, credit)
	})
}

// UserStats assembles the cumulative snapshot the achievement rules read.
func (r *Repository) UserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &model.UserStats{
		TotalVoiceMinutes: user.TotalVoiceMinutes,
		TotalMessages:     user.TotalMessages,
		Respect:           user.Respect,
	}

	streak, err := r.GetActivityStreak(ctx, userID)
	if err == nil {
		stats.CurrentStreak = streak.CurrentStreak
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if stats.FriendsCount, err = r.FriendCount(ctx, userID); err != nil {
		return nil, err
	}
	if stats.TradesCompleted, err = r.AcceptedTradeCount(ctx, userID); err != nil {
		return nil, err
	}
	if stats.QuestsCompleted, err = r.CompletedQuestCount(ctx, userID); err != nil {
		return nil, err
	}

	return stats, nil
}
