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

type dailyRewardRecord struct {
	UserID        string `db:"user_id"`
	CurrentStreak int    `db:"current_streak"`
	LastClaimDate string `db:"last_claim_date"`
	TotalClaims   int    `db:"total_claims"`
	NextMilestone int    `db:"next_milestone"`
}

func (r *Repository) GetDailyReward(ctx context.Context, userID string) (*model.DailyRewardRecord, error) {
	var rec dailyRewardRecord
	query, args, err := squirrel.
		Select("user_id", "current_streak", "last_claim_date", "total_claims", "next_milestone").
		From("daily_rewards").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &rec, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.DailyRewardRecord{
		UserID:        rec.UserID,
		CurrentStreak: rec.CurrentStreak,
		LastClaimDate: rec.LastClaimDate,
		TotalClaims:   rec.TotalClaims,
		NextMilestone: rec.NextMilestone,
	}, nil
}

// CommitClaim settles one daily claim atomically: record upsert, audit row in
// reward_claims, and the balance credit. The unique (user_id, claim_date)
// constraint backstops double claims that race past the service check.
func (r *Repository) CommitClaim(ctx context.Context, rec *model.DailyRewardRecord, claim *model.ClaimRecord, credit model.BalanceCredit) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("daily_rewards").
			SetMap(map[string]interface{}{
				"user_id":         rec.UserID,
				"current_streak":  rec.CurrentStreak,
				"last_claim_date": rec.LastClaimDate,
				"total_claims":    1,
				"next_milestone":  rec.NextMilestone,
			}).
			Suffix(`ON CONFLICT (user_id) DO UPDATE SET
				current_streak = EXCLUDED.current_streak,
				last_claim_date = EXCLUDED.last_claim_date,
				total_claims = daily_rewards.total_claims + 1,
				next_milestone = EXCLUDED.next_milestone`).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to upsert daily reward record: %w", err)
		}

		claimQuery, claimArgs, err := squirrel.
			Insert("reward_claims").
			SetMap(map[string]interface{}{
				"user_id":      claim.UserID,
				"claim_date":   claim.Date,
				"day_number":   claim.Day,
				"reward_type":  "daily",
				"reward_value": claim.Gems,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, claimQuery, claimArgs...); err != nil {
			return fmt.Errorf("failed to insert reward claim: %w", err)
		}

		return applyCredit(ctx, tx, credit)
	})
}

type claimRecord struct {
	UserID    string    `db:"user_id"`
	Date      string    `db:"claim_date"`
	Day       int       `db:"day_number"`
	Gems      int       `db:"reward_value"`
	ClaimedAt time.Time `db:"claimed_at"`
}

func (r *Repository) ClaimHistory(ctx context.Context, userID string, limit int) ([]*model.ClaimRecord, error) {
	query, args, err := squirrel.
		Select("user_id", "claim_date", "day_number", "reward_value", "claimed_at").
		From("reward_claims").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("claimed_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []claimRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get claim history: %w", err)
	}

	out := make([]*model.ClaimRecord, len(rows))
	for i, row := range rows {
		out[i] = &model.ClaimRecord{
			UserID:    row.UserID,
			Date:      row.Date,
			Day:       row.Day,
			Gems:      row.Gems,
			ClaimedAt: row.ClaimedAt,
		}
	}
	return out, nil
}
