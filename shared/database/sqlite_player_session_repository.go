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
	sessionFields = `id, user_id, character_name, character_id, story_id, current_act_number, is_completed, created_at, updated_at`

	insertSessionQuery = `
		INSERT INTO PlayerSessions (user_id, character_name, character_id, story_id, current_act_number, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	getSessionByIDQuery = `SELECT ` + sessionFields + ` FROM PlayerSessions WHERE id = ?`

	listSessionsByUserQuery = `
		SELECT ` + sessionFields + `
		FROM PlayerSessions
		WHERE user_id = ?
		ORDER BY updated_at DESC, id DESC`

	// The WHERE clause is the optimistic guard: it only matches when the row
	// still holds the progress the caller read.
	updateSessionProgressQuery = `
		UPDATE PlayerSessions
		SET current_act_number = ?, is_completed = ?, updated_at = ?
		WHERE id = ? AND current_act_number = ? AND is_completed = ?`

	touchSessionQuery  = `UPDATE PlayerSessions SET updated_at = ? WHERE id = ?`
	deleteSessionQuery = `DELETE FROM PlayerSessions WHERE id = ?`
)

// sessionRow mirrors the PlayerSessions table; timestamps are unix millis.
type sessionRow struct {
	ID               int64  `db:"id"`
	UserID           int64  `db:"user_id"`
	CharacterName    string `db:"character_name"`
	CharacterID      int64  `db:"character_id"`
	StoryID          int64  `db:"story_id"`
	CurrentActNumber int    `db:"current_act_number"`
	IsCompleted      bool   `db:"is_completed"`
	CreatedAt        int64  `db:"created_at"`
	UpdatedAt        int64  `db:"updated_at"`
}

func (row *sessionRow) toModel() *models.PlayerSession {
	return &models.PlayerSession{
		ID:               row.ID,
		UserID:           uint64(row.UserID),
		CharacterName:    row.CharacterName,
		CharacterID:      row.CharacterID,
		StoryID:          row.StoryID,
		CurrentActNumber: row.CurrentActNumber,
		IsCompleted:      row.IsCompleted,
		CreatedAt:        fromMillis(row.CreatedAt),
		UpdatedAt:        fromMillis(row.UpdatedAt),
	}
}

var _ interfaces.PlayerSessionRepository = (*sqlitePlayerSessionRepository)(nil)

type sqlitePlayerSessionRepository struct {
	logger *zap.Logger
}

// NewSQLitePlayerSessionRepository creates a player session repository.
func NewSQLitePlayerSessionRepository(logger *zap.Logger) interfaces.PlayerSessionRepository {
	return &sqlitePlayerSessionRepository{
		logger: logger.Named("SQLitePlayerSessionRepo"),
	}
}

func (r *sqlitePlayerSessionRepository) Create(ctx context.Context, querier interfaces.DBTX, session *models.PlayerSession) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = session.CreatedAt

	logFields := []zap.Field{
		zap.Uint64("userID", session.UserID),
		zap.Int64("storyID", session.StoryID),
		zap.Int64("characterID", session.CharacterID),
	}

	res, err := querier.ExecContext(ctx, insertSessionQuery,
		int64(session.UserID),
		session.CharacterName,
		session.CharacterID,
		session.StoryID,
		session.CurrentActNumber,
		boolToInt(session.IsCompleted),
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
	)
	if err != nil {
		r.logger.Error("Failed to insert player session", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to insert player session: %w", err)
	}
	if session.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read session id: %w", err)
	}
	r.logger.Info("Player session created", append(logFields, zap.Int64("sessionID", session.ID))...)
	return nil
}

func (r *sqlitePlayerSessionRepository) GetByID(ctx context.Context, querier interfaces.DBTX, sessionID int64) (*models.PlayerSession, error) {
	row, err := getOne[sessionRow](ctx, querier, getSessionByIDQuery, sessionID)
	if err != nil {
		if isNoRows(err) {
			r.logger.Warn("Player session not found", zap.Int64("sessionID", sessionID))
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get player session", zap.Int64("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get player session %d: %w", sessionID, err)
	}
	return row.toModel(), nil
}

func (r *sqlitePlayerSessionRepository) ListByUser(ctx context.Context, querier interfaces.DBTX, userID uint64) ([]*models.PlayerSession, error) {
	rows, err := selectAll[sessionRow](ctx, querier, listSessionsByUserQuery, int64(userID))
	if err != nil {
		r.logger.Error("Failed to list player sessions", zap.Uint64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list sessions of user %d: %w", userID, err)
	}
	sessions := make([]*models.PlayerSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toModel())
	}
	return sessions, nil
}

func (r *sqlitePlayerSessionRepository) UpdateProgress(
	ctx context.Context,
	querier interfaces.DBTX,
	session *models.PlayerSession,
	expectedActNumber int,
	expectedCompleted bool,
) error {
	session.UpdatedAt = time.Now().UTC()
	logFields := []zap.Field{
		zap.Int64("sessionID", session.ID),
		zap.Int("fromAct", expectedActNumber),
		zap.Int("toAct", session.CurrentActNumber),
		zap.Bool("isCompleted", session.IsCompleted),
	}

	res, err := querier.ExecContext(ctx, updateSessionProgressQuery,
		session.CurrentActNumber,
		boolToInt(session.IsCompleted),
		toMillis(session.UpdatedAt),
		session.ID,
		expectedActNumber,
		boolToInt(expectedCompleted),
	)
	if err != nil {
		r.logger.Error("Failed to update session progress", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to update progress of session %d: %w", session.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		r.logger.Warn("Session progress guard matched no row", logFields...)
		return models.ErrConcurrentUpdate
	}
	r.logger.Debug("Session progress updated", logFields...)
	return nil
}

func (r *sqlitePlayerSessionRepository) Touch(ctx context.Context, querier interfaces.DBTX, sessionID int64, at time.Time) error {
	res, err := querier.ExecContext(ctx, touchSessionQuery, toMillis(at), sessionID)
	if err != nil {
		r.logger.Error("Failed to touch session", zap.Int64("sessionID", sessionID), zap.Error(err))
		return fmt.Errorf("failed to touch session %d: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return models.ErrSessionNotFound
	}
	return nil
}

func (r *sqlitePlayerSessionRepository) Delete(ctx context.Context, querier interfaces.DBTX, sessionID int64) error {
	res, err := querier.ExecContext(ctx, deleteSessionQuery, sessionID)
	if err != nil {
		r.logger.Error("Failed to delete player session", zap.Int64("sessionID", sessionID), zap.Error(err))
		return fmt.Errorf("failed to delete session %d: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		r.logger.Warn("Player session to delete not found", zap.Int64("sessionID", sessionID))
		return models.ErrSessionNotFound
	}
	r.logger.Info("Player session deleted", zap.Int64("sessionID", sessionID))
	return nil
}
