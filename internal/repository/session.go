package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// StartVoiceSession records a voice join. The in-memory registry in the
// ingest service owns liveness; this row is the durable trail.
func (r *Repository) StartVoiceSession(ctx context.Context, userID, channelID string, joinedAt time.Time) error {
	query, args, err := squirrel.
		Insert("voice_sessions").
		SetMap(map[string]interface{}{
			"user_id":    userID,
			"channel_id": channelID,
			"join_time":  joinedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert voice session: %w", err)
	}
	return nil
}

// EndVoiceSession closes the user's open session rows with the final duration.
func (r *Repository) EndVoiceSession(ctx context.Context, userID string, leftAt time.Time, minutes int) error {
	query, args, err := squirrel.
		Update("voice_sessions").
		Set("leave_time", leftAt).
		Set("duration_minutes", minutes).
		Where(squirrel.Eq{"user_id": userID, "leave_time": nil}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to close voice session: %w", err)
	}
	return nil
}
