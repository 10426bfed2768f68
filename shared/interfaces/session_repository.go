package interfaces

import (
	"context"
	"time"

	"fallen-dragon-server/shared/models"
)

// PlayerSessionRepository stores player sessions.
type PlayerSessionRepository interface {
	// Create inserts the session and sets session.ID.
	Create(ctx context.Context, querier DBTX, session *models.PlayerSession) error

	// GetByID returns models.ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, querier DBTX, sessionID int64) (*models.PlayerSession, error)

	// ListByUser returns the sessions of a user, most recently updated first.
	ListByUser(ctx context.Context, querier DBTX, userID uint64) ([]*models.PlayerSession, error)

	// UpdateProgress persists CurrentActNumber, IsCompleted and UpdatedAt of the session,
	// but only if the stored row still has expectedActNumber and expectedCompleted.
	// Returns models.ErrConcurrentUpdate when the guard matches no row.
	UpdateProgress(ctx context.Context, querier DBTX, session *models.PlayerSession, expectedActNumber int, expectedCompleted bool) error

	// Touch bumps updated_at.
	Touch(ctx context.Context, querier DBTX, sessionID int64, at time.Time) error

	// Delete removes the session; its choice history cascades.
	// Returns models.ErrSessionNotFound if no row was deleted.
	Delete(ctx context.Context, querier DBTX, sessionID int64) error
}

// ChoiceHistoryRepository is the append-only log of choices made in sessions.
type ChoiceHistoryRepository interface {
	// Append inserts the entry and sets entry.ID.
	Append(ctx context.Context, querier DBTX, entry *models.ChoiceHistory) error

	// ListBySession returns the entries of a session ordered by made_at, id.
	ListBySession(ctx context.Context, querier DBTX, sessionID int64) ([]*models.ChoiceHistory, error)

	// CountByStory counts entries referencing choices of the story's acts.
	CountByStory(ctx context.Context, querier DBTX, storyID int64) (int, error)
}
