package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/messaging"
)

// SessionEventPublisher is a mock of interfaces.SessionEventPublisher.
type SessionEventPublisher struct{ mock.Mock }

func (m *SessionEventPublisher) PublishSessionEvent(ctx context.Context, event messaging.SessionEvent) error {
	return m.Called(ctx, event).Error(0)
}

var _ interfaces.SessionEventPublisher = (*SessionEventPublisher)(nil)
