package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

// Result reports what Load did with a story.
type Result string

const (
	ResultCreated   Result = "created"
	ResultReplaced  Result = "replaced"
	ResultUnchanged Result = "unchanged"
)

// Loader upserts seed stories by title.
type Loader struct {
	stories interfaces.StoryRepository
	history interfaces.ChoiceHistoryRepository
	tx      interfaces.TxManager
	cache   interfaces.StoryCache
	logger  *zap.Logger
}

// NewLoader creates a seed loader. cache may be nil.
func NewLoader(
	stories interfaces.StoryRepository,
	history interfaces.ChoiceHistoryRepository,
	tx interfaces.TxManager,
	cache interfaces.StoryCache,
	logger *zap.Logger,
) *Loader {
	return &Loader{
		stories: stories,
		history: history,
		tx:      tx,
		cache:   cache,
		logger:  logger.Named("SeedLoader"),
	}
}

// LoadFile reads, validates and loads a story file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*models.Story, Result, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return l.Load(ctx, f)
}

// Load writes the story in one transaction. An existing story with the same
// title is left alone when identical, otherwise its acts are replaced. Stories
// whose choices are referenced by choice history cannot be replaced (ErrStoryInUse).
func (l *Loader) Load(ctx context.Context, f *File) (*models.Story, Result, error) {
	if err := f.Validate(); err != nil {
		return nil, "", err
	}
	story := f.ToModel()
	log := l.logger.With(zap.String("title", story.Title))

	var result Result
	err := l.tx.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		existing, err := l.stories.GetByTitle(ctx, tx, story.Title)
		switch {
		case errors.Is(err, models.ErrStoryNotFound):
			if err := l.stories.Create(ctx, tx, story); err != nil {
				return err
			}
			result = ResultCreated
			return l.createActs(ctx, tx, story)
		case err != nil:
			return err
		}

		story.ID = existing.ID
		same, err := l.matchesStored(ctx, tx, existing, story)
		if err != nil {
			return err
		}
		if same {
			result = ResultUnchanged
			return nil
		}

		used, err := l.history.CountByStory(ctx, tx, story.ID)
		if err != nil {
			return err
		}
		if used > 0 {
			return fmt.Errorf("%w: %q has %d recorded choices", models.ErrStoryInUse, story.Title, used)
		}

		if err := l.stories.UpdateDescription(ctx, tx, story.ID, story.Description); err != nil {
			return err
		}
		if err := l.stories.DeleteActs(ctx, tx, story.ID); err != nil {
			return err
		}
		result = ResultReplaced
		return l.createActs(ctx, tx, story)
	})
	if err != nil {
		log.Error("Failed to load seed story", zap.Error(err))
		return nil, "", fmt.Errorf("load story %q: %w", story.Title, err)
	}

	if result == ResultReplaced && l.cache != nil {
		if err := l.cache.InvalidateStory(ctx, story.ID); err != nil {
			log.Warn("Story cache was not invalidated; stale acts expire with the TTL", zap.Error(err))
		}
	}

	log.Info("Seed story loaded",
		zap.Int64("storyID", story.ID),
		zap.String("result", string(result)),
		zap.Int("acts", len(story.Acts)))
	return story, result, nil
}

func (l *Loader) createActs(ctx context.Context, tx interfaces.DBTX, story *models.Story) error {
	for _, act := range story.Acts {
		act.StoryID = story.ID
		if err := l.stories.CreateAct(ctx, tx, act); err != nil {
			return err
		}
	}
	return nil
}

// matchesStored compares the stored graph to the file content, ignoring ids.
func (l *Loader) matchesStored(ctx context.Context, tx interfaces.DBTX, existing, story *models.Story) (bool, error) {
	if existing.Description != story.Description {
		return false, nil
	}
	summary, err := l.stories.GetByID(ctx, tx, existing.ID)
	if err != nil {
		return false, err
	}
	if summary.ActCount != len(story.Acts) {
		return false, nil
	}

	for _, want := range story.Acts {
		got, err := l.stories.GetActByNumber(ctx, tx, story.ID, want.ActNumber)
		if errors.Is(err, models.ErrActNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !sameAct(got, want) {
			return false, nil
		}
	}
	return true, nil
}

func sameAct(a, b *models.Act) bool {
	if a.Text != b.Text || a.IsEnding != b.IsEnding || len(a.Choices) != len(b.Choices) {
		return false
	}
	for i := range a.Choices {
		if a.Choices[i].Text != b.Choices[i].Text || a.Choices[i].NextActNumber != b.Choices[i].NextActNumber {
			return false
		}
	}
	return true
}
