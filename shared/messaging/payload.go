package messaging

import "time"

// SessionEvent is published after a session transaction commits.
type SessionEvent struct {
	EventType     SessionEventType `json:"eventType"`
	SessionID     int64            `json:"sessionId"`
	UserID        uint64           `json:"userId"`
	StoryID       int64            `json:"storyId"`
	ActNumber     int              `json:"actNumber"`               // Act the session was in when the event happened
	NextActNumber *int             `json:"nextActNumber,omitempty"` // Only for choice_made
	ChoiceID      *int64           `json:"choiceId,omitempty"`      // Only for choice_made
	OccurredAt    time.Time        `json:"occurredAt"`
}
