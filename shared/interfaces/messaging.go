package interfaces

import (
	"context"

	"fallen-dragon-server/shared/messaging"
)

// SessionEventPublisher sends session lifecycle events to the message broker.
type SessionEventPublisher interface {
	PublishSessionEvent(ctx context.Context, event messaging.SessionEvent) error
}
