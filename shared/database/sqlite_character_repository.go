package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

const (
	insertCharacterQuery           = `INSERT INTO Characters (head, body, pose_id) VALUES (?, ?, ?)`
	getCharacterByIDQuery          = `SELECT id, head, body, pose_id FROM Characters WHERE id = ?`
	updateCharacterAppearanceQuery = `UPDATE Characters SET head = ?, body = ?, pose_id = ? WHERE id = ?`
	deleteCharacterQuery           = `DELETE FROM Characters WHERE id = ?`
)

var _ interfaces.CharacterRepository = (*sqliteCharacterRepository)(nil)

type sqliteCharacterRepository struct {
	logger *zap.Logger
}

// NewSQLiteCharacterRepository creates a character repository.
func NewSQLiteCharacterRepository(logger *zap.Logger) interfaces.CharacterRepository {
	return &sqliteCharacterRepository{
		logger: logger.Named("SQLiteCharacterRepo"),
	}
}

func (r *sqliteCharacterRepository) Create(ctx context.Context, querier interfaces.DBTX, character *models.Character) error {
	res, err := querier.ExecContext(ctx, insertCharacterQuery, character.Head, character.Body, character.PoseID)
	if err != nil {
		r.logger.Error("Failed to insert character", zap.Error(err))
		return fmt.Errorf("failed to insert character: %w", err)
	}
	if character.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read character id: %w", err)
	}
	r.logger.Debug("Character created", zap.Int64("characterID", character.ID))
	return nil
}

func (r *sqliteCharacterRepository) GetByID(ctx context.Context, querier interfaces.DBTX, characterID int64) (*models.Character, error) {
	character, err := getOne[models.Character](ctx, querier, getCharacterByIDQuery, characterID)
	if err != nil {
		if isNoRows(err) {
			r.logger.Warn("Character not found", zap.Int64("characterID", characterID))
			return nil, models.ErrCharacterNotFound
		}
		r.logger.Error("Failed to get character", zap.Int64("characterID", characterID), zap.Error(err))
		return nil, fmt.Errorf("failed to get character %d: %w", characterID, err)
	}
	return character, nil
}

func (r *sqliteCharacterRepository) UpdateAppearance(ctx context.Context, querier interfaces.DBTX, character *models.Character) error {
	logFields := []zap.Field{zap.Int64("characterID", character.ID)}

	res, err := querier.ExecContext(ctx, updateCharacterAppearanceQuery,
		character.Head,
		character.Body,
		character.PoseID,
		character.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update character appearance", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to update character %d: %w", character.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		r.logger.Warn("Character to update not found", logFields...)
		return models.ErrCharacterNotFound
	}
	return nil
}

func (r *sqliteCharacterRepository) Delete(ctx context.Context, querier interfaces.DBTX, characterID int64) error {
	res, err := querier.ExecContext(ctx, deleteCharacterQuery, characterID)
	if err != nil {
		r.logger.Error("Failed to delete character", zap.Int64("characterID", characterID), zap.Error(err))
		return fmt.Errorf("failed to delete character %d: %w", characterID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return models.ErrCharacterNotFound
	}
	return nil
}
