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

type quest struct {
	QuestID          uuid.UUID `db:"quest_id"`
	QuestType        string    `db:"quest_type"`
	Name             string    `db:"quest_name"`
	Description      string    `db:"quest_description"`
	RequirementType  string    `db:"requirement_type"`
	RequirementValue int       `db:"requirement_value"`
	RewardGems       int       `db:"reward_gems"`
	RewardRespect    int       `db:"reward_respect"`
	StartDate        string    `db:"start_date"`
	EndDate          string    `db:"end_date"`
	Weekly           bool      `db:"is_weekly"`
}

func (q *quest) toModel() model.Quest {
	return model.Quest{
		QuestID:          q.QuestID,
		QuestType:        q.QuestType,
		Name:             q.Name,
		Description:      q.Description,
		RequirementType:  q.RequirementType,
		RequirementValue: q.RequirementValue,
		RewardGems:       q.RewardGems,
		RewardRespect:    q.RewardRespect,
		StartDate:        q.StartDate,
		EndDate:          q.EndDate,
		Weekly:           q.Weekly,
	}
}

// CountQuests reports how many quests of the given kind start on startDate.
// Generation uses it as the idempotency check for the period.
func (r *Repository) CountQuests(ctx context.Context, startDate string, weekly bool) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("quests").
		Where(squirrel.Eq{"start_date": startDate, "is_weekly": weekly}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count quests: %w", err)
	}
	return count, nil
}

func (r *Repository) CreateQuests(ctx context.Context, quests []*model.Quest) error {
	if len(quests) == 0 {
		return nil
	}

	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		builder := squirrel.
			Insert("quests").
			Columns("quest_id", "quest_type", "quest_name", "quest_description",
				"requirement_type", "requirement_value", "reward_gems", "reward_respect",
				"start_date", "end_date", "is_weekly")

		for _, q := range quests {
			builder = builder.Values(q.QuestID, q.QuestType, q.Name, q.Description,
				q.RequirementType, q.RequirementValue, q.RewardGems, q.RewardRespect,
				q.StartDate, q.EndDate, q.Weekly)
		}

		query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert quests: %w", err)
		}
		return nil
	})
}

// ActiveQuestsByType returns quests of the requirement type whose window
// covers today and that the user has not completed yet.
func (r *Repository) ActiveQuestsByType(ctx context.Context, userID, requirementType, today string) ([]*model.Quest, error) {
	query, args, err := squirrel.
		Select("q.quest_id", "q.quest_type", "q.quest_name", "q.quest_description",
			"q.requirement_type", "q.requirement_value", "q.reward_gems", "q.reward_respect",
			"q.start_date", "q.end_date", "q.is_weekly").
		From("quests q").
		LeftJoin("user_quests uq ON q.quest_id = uq.quest_id AND uq.user_id = ?", userID).
		Where(squirrel.Eq{"q.requirement_type": requirementType}).
		Where(squirrel.LtOrEq{"q.start_date": today}).
		Where(squirrel.Gt{"q.end_date": today}).
		Where(squirrel.Or{
			squirrel.Eq{"uq.completed": nil},
			squirrel.Eq{"uq.completed": false},
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []quest
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get active quests: %w", err)
	}

	out := make([]*model.Quest, len(rows))
	for i := range rows {
		q := rows[i].toModel()
		out[i] = &q
	}
	return out, nil
}

// UpsertQuestProgress adds amount to the user's progress row, creating it on
// first touch, and returns the updated progress.
func (r *Repository) UpsertQuestProgress(ctx context.Context, userID string, questID uuid.UUID, amount int) (int, error) {
	query, args, err := squirrel.
		Insert("user_quests").
		SetMap(map[string]interface{}{
			"user_id":  userID,
			"quest_id": questID,
			"progress": amount,
		}).
		Suffix("ON CONFLICT (user_id, quest_id) DO UPDATE SET progress = user_quests.progress + EXCLUDED.progress").
		Suffix("RETURNING progress").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var progress int
	if err := r.db.GetContext(ctx, &progress, query, args...); err != nil {
		return 0, fmt.Errorf("failed to upsert quest progress: %w", err)
	}
	return progress, nil
}

// MarkQuestCompleted is a one-way transition; completed rows stay completed.
func (r *Repository) MarkQuestCompleted(ctx context.Context, userID string, questID uuid.UUID) error {
	query, args, err := squirrel.
		Update("user_quests").
		Set("completed", true).
		Where(squirrel.Eq{"user_id": userID, "quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark quest completed: %w", err)
	}
	return nil
}

type questWithProgress struct {
	quest
	Progress  *int  `db:"progress"`
	Completed *bool `db:"completed"`
	Claimed   *bool `db:"claimed"`
}

// UserQuests lists all quests active today joined with the user's progress.
func (r *Repository) UserQuests(ctx context.Context, userID, today string) ([]*model.QuestWithProgress, error) {
	query, args, err := squirrel.
		Select("q.quest_id", "q.quest_type", "q.quest_name", "q.quest_description",
			"q.requirement_type", "q.requirement_value", "q.reward_gems", "q.reward_respect",
			"q.start_date", "q.end_date", "q.is_weekly",
			"uq.progress", "uq.completed", "uq.claimed").
		From("quests q").
		LeftJoin("user_quests uq ON q.quest_id = uq.quest_id AND uq.user_id = ?", userID).
		Where(squirrel.LtOrEq{"q.start_date": today}).
		Where(squirrel.Gt{"q.end_date": today}).
		OrderBy("q.is_weekly", "q.quest_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []questWithProgress
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get user quests: %w", err)
	}

	out := make([]*model.QuestWithProgress, len(rows))
	for i := range rows {
		qp := &model.QuestWithProgress{Quest: rows[i].toModel()}
		if rows[i].Progress != nil {
			qp.Progress = *rows[i].Progress
		}
		if rows[i].Completed != nil {
			qp.Completed = *rows[i].Completed
		}
		if rows[i].Claimed != nil {
			qp.Claimed = *rows[i].Claimed
		}
		out[i] = qp
	}
	return out, nil
}

func (r *Repository) GetQuest(ctx context.Context, questID uuid.UUID) (*model.Quest, error) {
	var q quest
	query, args, err := squirrel.
		Select("*").
		From("quests").
		Where(squirrel.Eq{"quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &q, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m := q.toModel()
	return &m, nil
}

type userQuest struct {
	UserID    string    `db:"user_id"`
	QuestID   uuid.UUID `db:"quest_id"`
	Progress  int       `db:"progress"`
	Completed bool      `db:"completed"`
	Claimed   bool      `db:"claimed"`
	StartedAt time.Time `db:"started_at"`
}

func (r *Repository) GetUserQuest(ctx context.Context, userID string, questID uuid.UUID) (*model.UserQuest, error) {
	var uq userQuest
	query, args, err := squirrel.
		Select("*").
		From("user_quests").
		Where(squirrel.Eq{"user_id": userID, "quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &uq, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.UserQuest{
		UserID:    uq.UserID,
		QuestID:   uq.QuestID,
		Progress:  uq.Progress,
		Completed: uq.Completed,
		Claimed:   uq.Claimed,
		StartedAt: uq.StartedAt,
	}, nil
}

// CommitQuestClaim flips claimed and pays the reward in one transaction. The
// guarded update makes a concurrent double claim lose with ErrQuestNotClaimable.
func (r *Repository) CommitQuestClaim(ctx context.Context, userID string, questID uuid.UUID, credit model.BalanceCredit) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("user_quests").
			Set("claimed", true).
			Where(squirrel.Eq{
				"user_id":   userID,
				"quest_id":  questID,
				"completed": true,
				"claimed":   false,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to claim quest: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrQuestNotClaimable
		}

		return applyCredit(ctx, tx, credit)
	})
}

// CompletedQuestCount feeds the achievement evaluator.
func (r *Repository) CompletedQuestCount(ctx context.Context, userID string) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("user_quests").
		Where(squirrel.Eq{"user_id": userID, "completed": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count completed quests: %w", err)
	}
	return count, nil
}
