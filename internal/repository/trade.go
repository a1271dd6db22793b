package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"guildgems/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type trade struct {
	TradeID      uuid.UUID `db:"trade_id"`
	SenderID     string    `db:"sender_id"`
	ReceiverID   string    `db:"receiver_id"`
	OfferType    string    `db:"offer_type"`
	OfferValue   int       `db:"offer_value"`
	RequestType  string    `db:"request_type"`
	RequestValue int       `db:"request_value"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (t *trade) toModel() *model.Trade {
	return &model.Trade{
		TradeID:      t.TradeID,
		SenderID:     t.SenderID,
		ReceiverID:   t.ReceiverID,
		OfferType:    t.OfferType,
		OfferValue:   t.OfferValue,
		RequestType:  t.RequestType,
		RequestValue: t.RequestValue,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (r *Repository) CreateTrade(ctx context.Context, t *model.Trade) error {
	query, args, err := squirrel.
		Insert("trades").
		SetMap(map[string]interface{}{
			"trade_id":      t.TradeID,
			"sender_id":     t.SenderID,
			"receiver_id":   t.ReceiverID,
			"offer_type":    t.OfferType,
			"offer_value":   t.OfferValue,
			"request_type":  t.RequestType,
			"request_value": t.RequestValue,
			"status":        model.TradeStatusPending,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

func (r *Repository) GetTrade(ctx context.Context, tradeID uuid.UUID) (*model.Trade, error) {
	var t trade
	query, args, err := squirrel.
		Select("*").
		From("trades").
		Where(squirrel.Eq{"trade_id": tradeID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &t, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return t.toModel(), nil
}

func balanceFor(u *model.User, resource string) int {
	if resource == model.ResourceRespect {
		return u.Respect
	}
	return u.Gems
}

func insufficientErr(resource string) error {
	if resource == model.ResourceRespect {
		return ErrInsufficientRespect
	}
	return ErrInsufficientGems
}

func debitLeg(ctx context.Context, tx *sqlx.Tx, userID, resource string, amount int) error {
	return creditLeg(ctx, tx, userID, resource, -amount)
}

func creditLeg(ctx context.Context, tx *sqlx.Tx, userID, resource string, amount int) error {
	column := "gems"
	if resource == model.ResourceRespect {
		column = "respect"
	}

	query, args, err := squirrel.
		Update("users").
		Set(column, squirrel.Expr(column+" + ?", amount)).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to move %s: %w", resource, err)
	}
	return nil
}

// SettleTrade applies the whole exchange atomically: both sides re-validated
// at accept time, the four balance legs, the status flip, and both audit
// rows. Any failed precondition rolls everything back.
func (r *Repository) SettleTrade(ctx context.Context, tradeID uuid.UUID, receiverID string) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		var t trade
		query, args, err := squirrel.
			Select("*").
			From("trades").
			Where(squirrel.Eq{
				"trade_id":    tradeID,
				"receiver_id": receiverID,
				"status":      model.TradeStatusPending,
			}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &t, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTradeNotPending
			}
			return err
		}

		receiver, err := getUserWithTx(ctx, tx, t.ReceiverID)
		if err != nil {
			return err
		}
		if balanceFor(receiver, t.RequestType) < t.RequestValue {
			return insufficientErr(t.RequestType)
		}

		sender, err := getUserWithTx(ctx, tx, t.SenderID)
		if err != nil {
			return err
		}
		if balanceFor(sender, t.OfferType) < t.OfferValue {
			return insufficientErr(t.OfferType)
		}

		if err := debitLeg(ctx, tx, t.SenderID, t.OfferType, t.OfferValue); err != nil {
			return err
		}
		if err := creditLeg(ctx, tx, t.SenderID, t.RequestType, t.RequestValue); err != nil {
			return err
		}
		if err := debitLeg(ctx, tx, t.ReceiverID, t.RequestType, t.RequestValue); err != nil {
			return err
		}
		if err := creditLeg(ctx, tx, t.ReceiverID, t.OfferType, t.OfferValue); err != nil {
			return err
		}

		statusQuery, statusArgs, err := squirrel.
			Update("trades").
			Set("status", model.TradeStatusAccepted).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"trade_id": tradeID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, statusQuery, statusArgs...); err != nil {
			return fmt.Errorf("failed to update trade status: %w", err)
		}

		desc := fmt.Sprintf("Trade with %s", t.ReceiverID)
		if err := insertTransaction(ctx, tx, t.SenderID, "trade", -t.OfferValue, desc); err != nil {
			return err
		}
		desc = fmt.Sprintf("Trade with %s", t.SenderID)
		return insertTransaction(ctx, tx, t.ReceiverID, "trade", -t.RequestValue, desc)
	})
}

// RejectTrade flips a pending trade owned by the receiver; no balances move.
func (r *Repository) RejectTrade(ctx context.Context, tradeID uuid.UUID, receiverID string) error {
	query, args, err := squirrel.
		Update("trades").
		Set("status", model.TradeStatusRejected).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{
			"trade_id":    tradeID,
			"receiver_id": receiverID,
			"status":      model.TradeStatusPending,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to reject trade: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTradeNotPending
	}
	return nil
}

func (r *Repository) TradesForUser(ctx context.Context, userID string, limit int) ([]*model.Trade, error) {
	query, args, err := squirrel.
		Select("*").
		From("trades").
		Where(squirrel.Or{
			squirrel.Eq{"sender_id": userID},
			squirrel.Eq{"receiver_id": userID},
		}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []trade
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get trades: %w", err)
	}

	out := make([]*model.Trade, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

// AcceptedTradeCount feeds the achievement evaluator.
func (r *Repository) AcceptedTradeCount(ctx context.Context, userID string) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("trades").
		Where(squirrel.Eq{"status": model.TradeStatusAccepted}).
		Where(squirrel.Or{
			squirrel.Eq{"sender_id": userID},
			squirrel.Eq{"receiver_id": userID},
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}
