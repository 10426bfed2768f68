package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

// PoseService manages the character pose catalog.
type PoseService interface {
	List(ctx context.Context) ([]*models.CharacterPose, error)
	Get(ctx context.Context, poseID int64) (*models.CharacterPose, error)
	Create(ctx context.Context, pose *models.CharacterPose) (*models.CharacterPose, error)
	Update(ctx context.Context, pose *models.CharacterPose) (*models.CharacterPose, error)
	// Delete removes a pose. Characters that used it keep no pose.
	Delete(ctx context.Context, poseID int64) error
}

type poseServiceImpl struct {
	poses  interfaces.PoseRepository
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPoseService(poses interfaces.PoseRepository, db interfaces.DBTX, logger *zap.Logger) PoseService {
	return &poseServiceImpl{
		poses:  poses,
		db:     db,
		logger: logger.Named("PoseService"),
	}
}

func (s *poseServiceImpl) List(ctx context.Context) ([]*models.CharacterPose, error) {
	poses, err := s.poses.List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list poses: %w", err)
	}
	return poses, nil
}

func (s *poseServiceImpl) Get(ctx context.Context, poseID int64) (*models.CharacterPose, error) {
	return s.poses.GetByID(ctx, s.db, poseID)
}

func (s *poseServiceImpl) Create(ctx context.Context, pose *models.CharacterPose) (*models.CharacterPose, error) {
	if err := s.poses.Create(ctx, s.db, pose); err != nil {
		return nil, fmt.Errorf("create pose: %w", err)
	}
	s.logger.Info("Pose created", zap.Int64("poseID", pose.ID), zap.String("name", pose.Name))
	return pose, nil
}

func (s *poseServiceImpl) Update(ctx context.Context, pose *models.CharacterPose) (*models.CharacterPose, error) {
	if err := s.poses.Update(ctx, s.db, pose); err != nil {
		return nil, fmt.Errorf("update pose %d: %w", pose.ID, err)
	}
	s.logger.Info("Pose updated", zap.Int64("poseID", pose.ID))
	return pose, nil
}

func (s *poseServiceImpl) Delete(ctx context.Context, poseID int64) error {
	if err := s.poses.Delete(ctx, s.db, poseID); err != nil {
		return fmt.Errorf("delete pose %d: %w", poseID, err)
	}
	s.logger.Info("Pose deleted", zap.Int64("poseID", poseID))
	return nil
}
