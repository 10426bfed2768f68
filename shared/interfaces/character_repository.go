package interfaces

import (
	"context"

	"fallen-dragon-server/shared/models"
)

// CharacterRepository manages the characters owned by player sessions.
type CharacterRepository interface {
	// Create inserts the character and sets character.ID.
	Create(ctx context.Context, querier DBTX, character *models.Character) error

	// GetByID returns models.ErrCharacterNotFound if the character does not exist.
	GetByID(ctx context.Context, querier DBTX, characterID int64) (*models.Character, error)

	// UpdateAppearance overwrites head, body and pose_id.
	// Returns models.ErrCharacterNotFound if no row was updated.
	UpdateAppearance(ctx context.Context, querier DBTX, character *models.Character) error

	// Delete returns models.ErrCharacterNotFound if no row was deleted.
	Delete(ctx context.Context, querier DBTX, characterID int64) error
}

// PoseRepository manages the character pose catalog.
type PoseRepository interface {
	List(ctx context.Context, querier DBTX) ([]*models.CharacterPose, error)

	// GetByID returns models.ErrPoseNotFound if the pose does not exist.
	GetByID(ctx context.Context, querier DBTX, poseID int64) (*models.CharacterPose, error)

	// Create inserts the pose and sets pose.ID.
	Create(ctx context.Context, querier DBTX, pose *models.CharacterPose) error

	// Update returns models.ErrPoseNotFound if no row was updated.
	Update(ctx context.Context, querier DBTX, pose *models.CharacterPose) error

	// Delete removes the pose; characters using it end up with a NULL pose_id.
	// Returns models.ErrPoseNotFound if no row was deleted.
	Delete(ctx context.Context, querier DBTX, poseID int64) error
}

// UserRepository keeps the minimal local user rows.
type UserRepository interface {
	// Ensure inserts the user if it is not there yet. Existing rows are left untouched.
	Ensure(ctx context.Context, querier DBTX, user *models.User) error
}
