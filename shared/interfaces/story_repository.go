package interfaces

import (
	"context"

	"fallen-dragon-server/shared/models"
)

// StoryRepository reads and writes the story graph (stories, acts, choices).
type StoryRepository interface {
	// List returns all stories without their acts, ordered by id.
	List(ctx context.Context, querier DBTX) ([]*models.StorySummary, error)

	// GetByID returns the story with its act count.
	// Returns models.ErrStoryNotFound if the story does not exist.
	GetByID(ctx context.Context, querier DBTX, storyID int64) (*models.StorySummary, error)

	// GetByTitle is used by the seed loader to find a story to replace.
	// Returns models.ErrStoryNotFound if no story has that title.
	GetByTitle(ctx context.Context, querier DBTX, title string) (*models.Story, error)

	// GetActByNumber returns the act of a story with its choices ordered by id.
	// Returns models.ErrActNotFound if the story has no such act.
	GetActByNumber(ctx context.Context, querier DBTX, storyID int64, actNumber int) (*models.Act, error)

	// Create inserts the story row and sets story.ID.
	Create(ctx context.Context, querier DBTX, story *models.Story) error

	// UpdateDescription changes the description of an existing story.
	UpdateDescription(ctx context.Context, querier DBTX, storyID int64, description string) error

	// CreateAct inserts the act with its choices and sets their ids.
	CreateAct(ctx context.Context, querier DBTX, act *models.Act) error

	// DeleteActs removes every act of a story (choices cascade).
	// Fails when choice history still references one of its choices.
	DeleteActs(ctx context.Context, querier DBTX, storyID int64) error
}

// StoryCache is implemented by caching decorators of StoryRepository.
type StoryCache interface {
	// InvalidateStory drops every cached act of a story.
	InvalidateStory(ctx context.Context, storyID int64) error
}
