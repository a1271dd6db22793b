package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"guildgems/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type user struct {
	UserID            string    `db:"user_id"`
	Username          string    `db:"username"`
	GlobalName        string    `db:"global_name"`
	Avatar            string    `db:"avatar"`
	Gems              int       `db:"gems"`
	Respect           int       `db:"respect"`
	TotalVoiceMinutes int       `db:"total_voice_minutes"`
	TotalMessages     int       `db:"total_messages"`
	CreatedAt         time.Time `db:"created_at"`
}

func (u *user) toModel() *model.User {
	return &model.User{
		UserID:            u.UserID,
		Username:          u.Username,
		GlobalName:        u.GlobalName,
		Avatar:            u.Avatar,
		Gems:              u.Gems,
		Respect:           u.Respect,
		TotalVoiceMinutes: u.TotalVoiceMinutes,
		TotalMessages:     u.TotalMessages,
		CreatedAt:         u.CreatedAt,
	}
}

type transaction struct {
	ID          int64     `db:"id"`
	UserID      string    `db:"user_id"`
	Type        string    `db:"transaction_type"`
	Amount      int       `db:"amount"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// EnsureUser lazily creates the user row on first interaction. Existing rows
// get their username refreshed when one is supplied.
func (r *Repository) EnsureUser(ctx context.Context, userID, username string) (*model.User, error) {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"user_id":  userID,
			"username": username,
		}).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET username = CASE WHEN EXCLUDED.username <> '' THEN EXCLUDED.username ELSE users.username END").
		Suffix("RETURNING user_id, username, global_name, avatar, gems, respect, total_voice_minutes, total_messages, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u user
	if err := r.db.GetContext(ctx, &u, query, args...); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	return u.toModel(), nil
}

// UpsertDiscordUser refreshes identity fields from a Discord profile.
func (r *Repository) UpsertDiscordUser(ctx context.Context, u *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"user_id":     u.UserID,
			"username":    u.Username,
			"global_name": u.GlobalName,
			"avatar":      u.Avatar,
		}).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			global_name = EXCLUDED.global_name,
			avatar = EXCLUDED.avatar`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var u user
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return u.toModel(), nil
}

func getUserWithTx(ctx context.Context, tx *sqlx.Tx, userID string) (*model.User, error) {
	var u user
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = tx.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return u.toModel(), nil
}

// Credit applies a standalone balance credit in its own transaction. Engines
// with multi-step mutations pass credits into their commit methods instead.
func (r *Repository) Credit(ctx context.Context, credit model.BalanceCredit) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return applyCredit(ctx, tx, credit)
	})
}

// AddActivity bumps cumulative counters and the per-day activity row.
func (r *Repository) AddActivity(ctx context.Context, userID, date string, voiceMinutes, messages int) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("users").
			Set("total_voice_minutes", squirrel.Expr("total_voice_minutes + ?", voiceMinutes)).
			Set("total_messages", squirrel.Expr("total_messages + ?", messages)).
			Where(squirrel.Eq{"user_id": userID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update activity counters: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}

		dailyQuery, dailyArgs, err := squirrel.
			Insert("daily_activity").
			SetMap(map[string]interface{}{
				"user_id":        userID,
				"date":           date,
				"voice_minutes":  voiceMinutes,
				"messages_count": messages,
			}).
			Suffix(`ON CONFLICT (user_id, date) DO UPDATE SET
				voice_minutes = daily_activity.voice_minutes + EXCLUDED.voice_minutes,
				messages_count = daily_activity.messages_count + EXCLUDED.messages_count`).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, dailyQuery, dailyArgs...); err != nil {
			return fmt.Errorf("failed to upsert daily activity: %w", err)
		}
		return nil
	})
}

func (r *Repository) RecentTransactions(ctx context.Context, userID string, limit int) ([]*model.Transaction, error) {
	query, args, err := squirrel.
		Select("id", "user_id", "transaction_type", "amount", "description", "created_at").
		From("transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []transaction
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	out := make([]*model.Transaction, len(rows))
	for i, t := range rows {
		out[i] = &model.Transaction{
			ID:          t.ID,
			UserID:      t.UserID,
			Type:        t.Type,
			Amount:      t.Amount,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		}
	}
	return out, nil
}

type leaderboardRow struct {
	UserID            string `db:"user_id"`
	Username          string `db:"username"`
	GlobalName        string `db:"global_name"`
	Avatar            string `db:"avatar"`
	Gems              int    `db:"gems"`
	Respect           int    `db:"respect"`
	TotalVoiceMinutes int    `db:"total_voice_minutes"`
	TotalMessages     int    `db:"total_messages"`
	Score             int    `db:"score"`
}

// Leaderboard ranks users by the community activity score: voice minutes,
// half a point per message, ten per respect.
func (r *Repository) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	query, args, err := squirrel.
		Select(
			"user_id", "username", "global_name", "avatar",
			"gems", "respect", "total_voice_minutes", "total_messages",
			"(total_voice_minutes + total_messages / 2 + respect * 10) AS score",
		).
		From("users").
		OrderBy("score DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []leaderboardRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	out := make([]*model.LeaderboardEntry, len(rows))
	for i, row := range rows {
		out[i] = &model.LeaderboardEntry{
			UserID:            row.UserID,
			Username:          row.Username,
			GlobalName:        row.GlobalName,
			Avatar:            row.Avatar,
			Gems:              row.Gems,
			Respect:           row.Respect,
			TotalVoiceMinutes: row.TotalVoiceMinutes,
			TotalMessages:     row.TotalMessages,
			Score:             row.Score,
		}
	}
	return out, nil
}
