package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guildgems/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type activityStreak struct {
	UserID            string `db:"user_id"`
	CurrentStreak     int    `db:"current_streak"`
	LongestStreak     int    `db:"longest_streak"`
	LastActivityDate  string `db:"last_activity_date"`
	TodayVoiceMinutes int    `db:"today_voice_minutes"`
	TodayMessages     int    `db:"today_messages"`
	QualifiedToday    bool   `db:"qualified_today"`
	TotalStreakDays   int    `db:"total_streak_days"`
}

func (s *activityStreak) toModel() *model.ActivityStreak {
	return &model.ActivityStreak{
		UserID:            s.UserID,
		CurrentStreak:     s.CurrentStreak,
		LongestStreak:     s.LongestStreak,
		LastActivityDate:  s.LastActivityDate,
		TodayVoiceMinutes: s.TodayVoiceMinutes,
		TodayMessages:     s.TodayMessages,
		QualifiedToday:    s.QualifiedToday,
		TotalStreakDays:   s.TotalStreakDays,
	}
}

func (r *Repository) GetActivityStreak(ctx context.Context, userID string) (*model.ActivityStreak, error) {
	var streak activityStreak
	query, args, err := squirrel.
		Select("*").
		From("activity_streaks").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &streak, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return streak.toModel(), nil
}

func (r *Repository) CreateActivityStreak(ctx context.Context, streak *model.ActivityStreak) error {
	query, args, err := squirrel.
		Insert("activity_streaks").
		SetMap(map[string]interface{}{
			"user_id":             streak.UserID,
			"current_streak":      streak.CurrentStreak,
			"longest_streak":      streak.LongestStreak,
			"last_activity_date":  streak.LastActivityDate,
			"today_voice_minutes": streak.TodayVoiceMinutes,
			"today_messages":      streak.TodayMessages,
			"qualified_today":     streak.QualifiedToday,
			"total_streak_days":   streak.TotalStreakDays,
		}).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create activity streak: %w", err)
	}
	return nil
}

// CommitStreakUpdate writes the new streak state and any payouts it earned
// in one transaction, so a day transition can never land without its
// milestone credit or vice versa.
func (r *Repository) CommitStreakUpdate(ctx context.Context, streak *model.ActivityStreak, credits []model.BalanceCredit) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("activity_streaks").
			SetMap(map[string]interface{}{
				"current_streak":      streak.CurrentStreak,
				"longest_streak":      streak.LongestStreak,
				"last_activity_date":  streak.LastActivityDate,
				"today_voice_minutes": streak.TodayVoiceMinutes,
				"today_messages":      streak.TodayMessages,
				"qualified_today":     streak.QualifiedToday,
				"total_streak_days":   streak.TotalStreakDays,
			}).
			Where(squirrel.Eq{"user_id": streak.UserID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update activity streak: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}

		for _, credit := range credits {
			if err := applyCredit(ctx, tx, credit); err != nil {
				return err
			}
		}
		return nil
	})
}

type streakSetting struct {
	Key   string `db:"setting_key"`
	Value string `db:"setting_value"`
}

func (r *Repository) GetStreakSettings(ctx context.Context) (map[string]string, error) {
	query, args, err := squirrel.
		Select("setting_key", "setting_value").
		From("streak_settings").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []streakSetting
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get streak settings: %w", err)
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// UpdateStreakSettings upserts the given keys with the updater's identity.
// Key validation happens at the service layer.
func (r *Repository) UpdateStreakSettings(ctx context.Context, values map[string]string, updatedBy string) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		for key, value := range values {
			query, args, err := squirrel.
				Insert("streak_settings").
				SetMap(map[string]interface{}{
					"setting_key":   key,
					"setting_value": value,
					"updated_at":    squirrel.Expr("now()"),
					"updated_by":    updatedBy,
				}).
				Suffix(`ON CONFLICT (setting_key) DO UPDATE SET
					setting_value = EXCLUDED.setting_value,
					updated_at = EXCLUDED.updated_at,
					updated_by = EXCLUDED.updated_by`).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to upsert setting %s: %w", key, err)
			}
		}
		return nil
	})
}

type streakLeader struct {
	UserID          string `db:"user_id"`
	Username        string `db:"username"`
	GlobalName      string `db:"global_name"`
	Avatar          string `db:"avatar"`
	CurrentStreak   int    `db:"current_streak"`
	LongestStreak   int    `db:"longest_streak"`
	TotalStreakDays int    `db:"total_streak_days"`
}

func (r *Repository) StreakLeaderboard(ctx context.Context, limit int) ([]*model.StreakLeader, error) {
	query, args, err := squirrel.
		Select(
			"u.user_id", "u.username", "u.global_name", "u.avatar",
			"a.current_streak", "a.longest_streak", "a.total_streak_days",
		).
		From("activity_streaks a").
		Join("users u ON a.user_id = u.user_id").
		Where(squirrel.Gt{"a.current_streak": 0}).
		OrderBy("a.current_streak DESC", "a.longest_streak DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []streakLeader
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get streak leaderboard: %w", err)
	}

	out := make([]*model.StreakLeader, len(rows))
	for i, row := range rows {
		out[i] = &model.StreakLeader{
			UserID:          row.UserID,
			Username:        row.Username,
			GlobalName:      row.GlobalName,
			Avatar:          row.Avatar,
			CurrentStreak:   row.CurrentStreak,
			LongestStreak:   row.LongestStreak,
			TotalStreakDays: row.TotalStreakDays,
		}
	}
	return out, nil
}
