package repository

import (
	"context"
	"fmt"

	"guildgems/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// AddFriend inserts both directions; friendship is always mutual.
func (r *Repository) AddFriend(ctx context.Context, userID, friendID string) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, pair := range [][2]string{{userID, friendID}, {friendID, userID}} {
			query, args, err := squirrel.
				Insert("friends").
				SetMap(map[string]interface{}{
					"user_id":   pair[0],
					"friend_id": pair[1],
				}).
				Suffix("ON CONFLICT (user_id, friend_id) DO NOTHING").
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to insert friendship: %w", err)
			}
		}
		return nil
	})
}

func (r *Repository) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Delete("friends").
			Where(squirrel.Or{
				squirrel.Eq{"user_id": userID, "friend_id": friendID},
				squirrel.Eq{"user_id": friendID, "friend_id": userID},
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to remove friendship: %w", err)
		}
		return nil
	})
}

func (r *Repository) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("friends").
		Where(squirrel.Eq{"user_id": userID, "friend_id": friendID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return count > 0, nil
}

func (r *Repository) Friends(ctx context.Context, userID string) ([]*model.User, error) {
	query, args, err := squirrel.
		Select("u.user_id", "u.username", "u.global_name", "u.avatar",
			"u.gems", "u.respect", "u.total_voice_minutes", "u.total_messages", "u.created_at").
		From("friends f").
		Join("users u ON f.friend_id = u.user_id").
		Where(squirrel.Eq{"f.user_id": userID}).
		OrderBy("u.username").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []user
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}

	out := make([]*model.User, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *Repository) FriendCount(ctx context.Context, userID string) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("friends").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count friends: %w", err)
	}
	return count, nil
}

// GiveRespect moves a respect gift from one user to another, enforcing the
// giver's daily allowance inside the transaction. Gifts are minted, not
// transferred; the giver spends allowance, not balance.
func (r *Repository) GiveRespect(ctx context.Context, fromID, toID string, amount int, today string, dailyLimit int) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Select("COALESCE(SUM(amount), 0)").
			From("transactions").
			Where(squirrel.Eq{"user_id": fromID, "transaction_type": "respect_give"}).
			Where(squirrel.Expr("created_at::date = ?::date", today)).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var givenToday int
		if err := tx.GetContext(ctx, &givenToday, query, args...); err != nil {
			return fmt.Errorf("failed to sum respect given: %w", err)
		}
		if givenToday+amount > dailyLimit {
			return ErrRespectLimitReached
		}

		credit := model.BalanceCredit{
			UserID:      toID,
			Respect:     amount,
			Type:        "respect_received",
			Description: fmt.Sprintf("Respect from %s", fromID),
		}
		if err := applyCredit(ctx, tx, credit); err != nil {
			return err
		}

		return insertTransaction(ctx, tx, fromID, "respect_give", amount,
			fmt.Sprintf("Respect to %s", toID))
	})
}
