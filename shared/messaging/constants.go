package messaging

// Queue Names
const (
	// SessionEventsQueueName is the default durable queue for session events.
	SessionEventsQueueName = "story_session_events"
)

// SessionEventType определяет тип события сессии
type SessionEventType string

const (
	SessionEventStarted   SessionEventType = "session_started"
	SessionEventChoice    SessionEventType = "choice_made"
	SessionEventCompleted SessionEventType = "session_completed"
)
