package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

const (
	listPosesQuery   = `SELECT id, name, image_url, character_type FROM CharacterPoses ORDER BY id`
	getPoseByIDQuery = `SELECT id, name, image_url, character_type FROM CharacterPoses WHERE id = ?`
	insertPoseQuery  = `INSERT INTO CharacterPoses (name, image_url, character_type) VALUES (?, ?, ?)`
	updatePoseQuery  = `UPDATE CharacterPoses SET name = ?, image_url = ?, character_type = ? WHERE id = ?`
	deletePoseQuery  = `DELETE FROM CharacterPoses WHERE id = ?`
)

var _ interfaces.PoseRepository = (*sqlitePoseRepository)(nil)

type sqlitePoseRepository struct {
	logger *zap.Logger
}

// NewSQLitePoseRepository creates a pose catalog repository.
func NewSQLitePoseRepository(logger *zap.Logger) interfaces.PoseRepository {
	return &sqlitePoseRepository{
		logger: logger.Named("SQLitePoseRepo"),
	}
}

func (r *sqlitePoseRepository) List(ctx context.Context, querier interfaces.DBTX) ([]*models.CharacterPose, error) {
	poses, err := selectAll[models.CharacterPose](ctx, querier, listPosesQuery)
	if err != nil {
		r.logger.Error("Failed to list poses", zap.Error(err))
		return nil, fmt.Errorf("failed to list poses: %w", err)
	}
	return poses, nil
}

func (r *sqlitePoseRepository) GetByID(ctx context.Context, querier interfaces.DBTX, poseID int64) (*models.CharacterPose, error) {
	pose, err := getOne[models.CharacterPose](ctx, querier, getPoseByIDQuery, poseID)
	if err != nil {
		if isNoRows(err) {
			r.logger.Warn("Pose not found", zap.Int64("poseID", poseID))
			return nil, models.ErrPoseNotFound
		}
		r.logger.Error("Failed to get pose", zap.Int64("poseID", poseID), zap.Error(err))
		return nil, fmt.Errorf("failed to get pose %d: %w", poseID, err)
	}
	return pose, nil
}

func (r *sqlitePoseRepository) Create(ctx context.Context, querier interfaces.DBTX, pose *models.CharacterPose) error {
	res, err := querier.ExecContext(ctx, insertPoseQuery, pose.Name, pose.ImageURL, pose.CharacterType)
	if err != nil {
		r.logger.Error("Failed to insert pose", zap.String("name", pose.Name), zap.Error(err))
		return fmt.Errorf("failed to insert pose: %w", err)
	}
	if pose.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read pose id: %w", err)
	}
	r.logger.Info("Pose created", zap.Int64("poseID", pose.ID), zap.String("name", pose.Name))
	return nil
}

func (r *sqlitePoseRepository) Update(ctx context.Context, querier interfaces.DBTX, pose *models.CharacterPose) error {
	res, err := querier.ExecContext(ctx, updatePoseQuery, pose.Name, pose.ImageURL, pose.CharacterType, pose.ID)
	if err != nil {
		r.logger.Error("Failed to update pose", zap.Int64("poseID", pose.ID), zap.Error(err))
		return fmt.Errorf("failed to update pose %d: %w", pose.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		r.logger.Warn("Pose to update not found", zap.Int64("poseID", pose.ID))
		return models.ErrPoseNotFound
	}
	return nil
}

func (r *sqlitePoseRepository) Delete(ctx context.Context, querier interfaces.DBTX, poseID int64) error {
	res, err := querier.ExecContext(ctx, deletePoseQuery, poseID)
	if err != nil {
		r.logger.Error("Failed to delete pose", zap.Int64("poseID", poseID), zap.Error(err))
		return fmt.Errorf("failed to delete pose %d: %w", poseID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		r.logger.Warn("Pose to delete not found", zap.Int64("poseID", poseID))
		return models.ErrPoseNotFound
	}
	r.logger.Info("Pose deleted", zap.Int64("poseID", poseID))
	return nil
}
