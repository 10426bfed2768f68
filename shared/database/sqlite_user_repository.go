package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

const ensureUserQuery = `
	INSERT INTO Users (id, username, created_at) VALUES (?, ?, ?)
	ON CONFLICT (id) DO NOTHING`

var _ interfaces.UserRepository = (*sqliteUserRepository)(nil)

type sqliteUserRepository struct {
	logger *zap.Logger
}

// NewSQLiteUserRepository creates a repository for the local user rows.
func NewSQLiteUserRepository(logger *zap.Logger) interfaces.UserRepository {
	return &sqliteUserRepository{
		logger: logger.Named("SQLiteUserRepo"),
	}
}

func (r *sqliteUserRepository) Ensure(ctx context.Context, querier interfaces.DBTX, user *models.User) error {
	if _, err := querier.ExecContext(ctx, ensureUserQuery, int64(user.ID), user.Username, toMillis(time.Now())); err != nil {
		r.logger.Error("Failed to ensure user", zap.Uint64("userID", user.ID), zap.Error(err))
		return fmt.Errorf("failed to ensure user %d: %w", user.ID, err)
	}
	return nil
}
