package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fallen-dragon-server/shared/interfaces"
)

// StoryCache is a mock of interfaces.StoryCache.
type StoryCache struct{ mock.Mock }

func (m *StoryCache) InvalidateStory(ctx context.Context, storyID int64) error {
	return m.Called(ctx, storyID).Error(0)
}

var _ interfaces.StoryCache = (*StoryCache)(nil)
