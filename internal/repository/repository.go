package repository

import (
	"context"
	"fmt"

	"guildgems/internal/model"
	"guildgems/pkg/logger"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrQuestNotClaimable   = errors.New("quest not completed or already claimed")
	ErrTradeNotPending     = errors.New("trade not found or already processed")
	ErrInsufficientGems    = errors.New("insufficient gems")
	ErrInsufficientRespect = errors.New("insufficient respect")
	ErrAchievementUnlocked = errors.New("achievement already unlocked")
	ErrRespectLimitReached = errors.New("daily respect limit reached")
)

type Repository struct {
	db *sqlx.DB
}

type Config struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

func New(cfg Config) (*Repository, error) {
	db, err := sqlx.Connect("pgx", cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Logger().Info("Connected to database successfully")

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Transaction(ctx context.Context, t func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	err = t(tx)
	if err != nil {
		txErr := tx.Rollback()
		if txErr != nil {
			return errors.Wrapf(err, "rollback error: %v", txErr)
		}
		return err
	}
	return tx.Commit()
}

// applyCredit stages one balance mutation inside tx: the users-row delta plus
// its append-only transactions record. Every engine payout funnels through
// here so no credit commits without an audit row.
func applyCredit(ctx context.Context, tx *sqlx.Tx, credit model.BalanceCredit) error {
	query, args, err := squirrel.
		Update("users").
		Set("gems", squirrel.Expr("gems + ?", credit.Gems)).
		Set("respect", squirrel.Expr("respect + ?", credit.Respect)).
		Where(squirrel.Eq{"user_id": credit.UserID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update balances: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return insertTransaction(ctx, tx, credit.UserID, credit.Type, credit.Gems, credit.Description)
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, userID, txType string, amount int, description string) error {
	query, args, err := squirrel.
		Insert("transactions").
		SetMap(map[string]interface{}{
			"user_id":          userID,
			"transaction_type": txType,
			"amount":           amount,
			"description":      description,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}
