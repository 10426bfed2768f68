package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

const (
	listStoriesQuery = `
		SELECT s.id, s.title, s.description,
		       (SELECT COUNT(*) FROM Acts a WHERE a.story_id = s.id) AS act_count
		FROM Stories s
		ORDER BY s.id`

	getStoryByIDQuery = `
		SELECT s.id, s.title, s.description,
		       (SELECT COUNT(*) FROM Acts a WHERE a.story_id = s.id) AS act_count
		FROM Stories s
		WHERE s.id = ?`

	getStoryByTitleQuery = `SELECT id, title, description FROM Stories WHERE title = ?`

	getActByNumberQuery = `
		SELECT id, story_id, act_number, text, is_ending
		FROM Acts
		WHERE story_id = ? AND act_number = ?`

	listChoicesByActQuery = `
		SELECT id, act_id, text, next_act_number
		FROM Choices
		WHERE act_id = ?
		ORDER BY id`

	insertStoryQuery       = `INSERT INTO Stories (title, description) VALUES (?, ?)`
	updateStoryDescQuery   = `UPDATE Stories SET description = ? WHERE id = ?`
	insertActQuery         = `INSERT INTO Acts (story_id, act_number, text, is_ending) VALUES (?, ?, ?, ?)`
	insertChoiceQuery      = `INSERT INTO Choices (act_id, text, next_act_number) VALUES (?, ?, ?)`
	deleteActsByStoryQuery = `DELETE FROM Acts WHERE story_id = ?`
)

// Compile-time check to ensure sqliteStoryRepository implements the interface
var _ interfaces.StoryRepository = (*sqliteStoryRepository)(nil)

type sqliteStoryRepository struct {
	logger *zap.Logger
}

// NewSQLiteStoryRepository creates a story graph repository.
func NewSQLiteStoryRepository(logger *zap.Logger) interfaces.StoryRepository {
	return &sqliteStoryRepository{
		logger: logger.Named("SQLiteStoryRepo"),
	}
}

func (r *sqliteStoryRepository) List(ctx context.Context, querier interfaces.DBTX) ([]*models.StorySummary, error) {
	stories, err := selectAll[models.StorySummary](ctx, querier, listStoriesQuery)
	if err != nil {
		r.logger.Error("Failed to list stories", zap.Error(err))
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

func (r *sqliteStoryRepository) GetByID(ctx context.Context, querier interfaces.DBTX, storyID int64) (*models.StorySummary, error) {
	logFields := []zap.Field{zap.Int64("storyID", storyID)}

	story, err := getOne[models.StorySummary](ctx, querier, getStoryByIDQuery, storyID)
	if err != nil {
		if isNoRows(err) {
			r.logger.Warn("Story not found", logFields...)
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to get story %d: %w", storyID, err)
	}
	return story, nil
}

func (r *sqliteStoryRepository) GetByTitle(ctx context.Context, querier interfaces.DBTX, title string) (*models.Story, error) {
	story, err := getOne[models.Story](ctx, querier, getStoryByTitleQuery, title)
	if err != nil {
		if isNoRows(err) {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story by title", zap.String("title", title), zap.Error(err))
		return nil, fmt.Errorf("failed to get story by title: %w", err)
	}
	return story, nil
}

func (r *sqliteStoryRepository) GetActByNumber(ctx context.Context, querier interfaces.DBTX, storyID int64, actNumber int) (*models.Act, error) {
	logFields := []zap.Field{
		zap.Int64("storyID", storyID),
		zap.Int("actNumber", actNumber),
	}

	act, err := getOne[models.Act](ctx, querier, getActByNumberQuery, storyID, actNumber)
	if err != nil {
		if isNoRows(err) {
			r.logger.Warn("Act not found", logFields...)
			return nil, models.ErrActNotFound
		}
		r.logger.Error("Failed to get act", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to get act %d of story %d: %w", actNumber, storyID, err)
	}

	choices, err := selectAll[models.Choice](ctx, querier, listChoicesByActQuery, act.ID)
	if err != nil {
		r.logger.Error("Failed to list choices", append(logFields, zap.Int64("actID", act.ID), zap.Error(err))...)
		return nil, fmt.Errorf("failed to list choices of act %d: %w", act.ID, err)
	}
	act.Choices = choices
	return act, nil
}

func (r *sqliteStoryRepository) Create(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	res, err := querier.ExecContext(ctx, insertStoryQuery, story.Title, story.Description)
	if err != nil {
		r.logger.Error("Failed to insert story", zap.String("title", story.Title), zap.Error(err))
		return fmt.Errorf("failed to insert story: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read story id: %w", err)
	}
	story.ID = id
	r.logger.Info("Story created", zap.Int64("storyID", id), zap.String("title", story.Title))
	return nil
}

func (r *sqliteStoryRepository) UpdateDescription(ctx context.Context, querier interfaces.DBTX, storyID int64, description string) error {
	res, err := querier.ExecContext(ctx, updateStoryDescQuery, description, storyID)
	if err != nil {
		r.logger.Error("Failed to update story description", zap.Int64("storyID", storyID), zap.Error(err))
		return fmt.Errorf("failed to update story %d: %w", storyID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return models.ErrStoryNotFound
	}
	return nil
}

func (r *sqliteStoryRepository) CreateAct(ctx context.Context, querier interfaces.DBTX, act *models.Act) error {
	logFields := []zap.Field{
		zap.Int64("storyID", act.StoryID),
		zap.Int("actNumber", act.ActNumber),
	}

	res, err := querier.ExecContext(ctx, insertActQuery, act.StoryID, act.ActNumber, act.Text, boolToInt(act.IsEnding))
	if err != nil {
		r.logger.Error("Failed to insert act", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to insert act %d: %w", act.ActNumber, err)
	}
	if act.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read act id: %w", err)
	}

	for _, choice := range act.Choices {
		choice.ActID = act.ID
		res, err := querier.ExecContext(ctx, insertChoiceQuery, choice.ActID, choice.Text, choice.NextActNumber)
		if err != nil {
			r.logger.Error("Failed to insert choice", append(logFields, zap.Error(err))...)
			return fmt.Errorf("failed to insert choice of act %d: %w", act.ActNumber, err)
		}
		if choice.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read choice id: %w", err)
		}
	}
	return nil
}

func (r *sqliteStoryRepository) DeleteActs(ctx context.Context, querier interfaces.DBTX, storyID int64) error {
	if _, err := querier.ExecContext(ctx, deleteActsByStoryQuery, storyID); err != nil {
		r.logger.Error("Failed to delete acts", zap.Int64("storyID", storyID), zap.Error(err))
		return fmt.Errorf("failed to delete acts of story %d: %w", storyID, err)
	}
	return nil
}
