package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

const (
	insertChoiceHistoryQuery = `
		INSERT INTO ChoiceHistories (player_session_id, act_number, choice_id, made_at)
		VALUES (?, ?, ?, ?)`

	listChoiceHistoryBySessionQuery = `
		SELECT id, player_session_id, act_number, choice_id, made_at
		FROM ChoiceHistories
		WHERE player_session_id = ?
		ORDER BY made_at, id`

	countChoiceHistoryByStoryQuery = `
		SELECT COUNT(*)
		FROM ChoiceHistories h
		JOIN Choices c ON c.id = h.choice_id
		JOIN Acts a ON a.id = c.act_id
		WHERE a.story_id = ?`
)

type choiceHistoryRow struct {
	ID              int64 `db:"id"`
	PlayerSessionID int64 `db:"player_session_id"`
	ActNumber       int   `db:"act_number"`
	ChoiceID        int64 `db:"choice_id"`
	MadeAt          int64 `db:"made_at"`
}

var _ interfaces.ChoiceHistoryRepository = (*sqliteChoiceHistoryRepository)(nil)

type sqliteChoiceHistoryRepository struct {
	logger *zap.Logger
}

// NewSQLiteChoiceHistoryRepository creates the append-only choice log repository.
func NewSQLiteChoiceHistoryRepository(logger *zap.Logger) interfaces.ChoiceHistoryRepository {
	return &sqliteChoiceHistoryRepository{
		logger: logger.Named("SQLiteChoiceHistoryRepo"),
	}
}

func (r *sqliteChoiceHistoryRepository) Append(ctx context.Context, querier interfaces.DBTX, entry *models.ChoiceHistory) error {
	if entry.MadeAt.IsZero() {
		entry.MadeAt = time.Now().UTC()
	}
	logFields := []zap.Field{
		zap.Int64("sessionID", entry.PlayerSessionID),
		zap.Int("actNumber", entry.ActNumber),
		zap.Int64("choiceID", entry.ChoiceID),
	}

	res, err := querier.ExecContext(ctx, insertChoiceHistoryQuery,
		entry.PlayerSessionID,
		entry.ActNumber,
		entry.ChoiceID,
		toMillis(entry.MadeAt),
	)
	if err != nil {
		r.logger.Error("Failed to append choice history", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to append choice history: %w", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read choice history id: %w", err)
	}
	return nil
}

func (r *sqliteChoiceHistoryRepository) ListBySession(ctx context.Context, querier interfaces.DBTX, sessionID int64) ([]*models.ChoiceHistory, error) {
	rows, err := selectAll[choiceHistoryRow](ctx, querier, listChoiceHistoryBySessionQuery, sessionID)
	if err != nil {
		r.logger.Error("Failed to list choice history", zap.Int64("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list choice history of session %d: %w", sessionID, err)
	}
	history := make([]*models.ChoiceHistory, 0, len(rows))
	for _, row := range rows {
		history = append(history, &models.ChoiceHistory{
			ID:              row.ID,
			PlayerSessionID: row.PlayerSessionID,
			ActNumber:       row.ActNumber,
			ChoiceID:        row.ChoiceID,
			MadeAt:          fromMillis(row.MadeAt),
		})
	}
	return history, nil
}

func (r *sqliteChoiceHistoryRepository) CountByStory(ctx context.Context, querier interfaces.DBTX, storyID int64) (int, error) {
	var count int
	if err := querier.QueryRowContext(ctx, countChoiceHistoryByStoryQuery, storyID).Scan(&count); err != nil {
		r.logger.Error("Failed to count choice history", zap.Int64("storyID", storyID), zap.Error(err))
		return 0, fmt.Errorf("failed to count choice history of story %d: %w", storyID, err)
	}
	return count, nil
}
