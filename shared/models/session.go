package models

import "time"

// PlayerSession is one playthrough of one story by one user.
type PlayerSession struct {
	ID               int64     `json:"sessionId"`
	UserID           uint64    `json:"-"`
	CharacterName    string    `json:"characterName"`
	CharacterID      int64     `json:"characterId"`
	StoryID          int64     `json:"storyId"`
	CurrentActNumber int       `json:"currentActNumber"`
	IsCompleted      bool      `json:"isCompleted"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Character is populated by operations that load it alongside the session.
	Character *Character `json:"-"`
}

// ChoiceHistory records a choice made in a session. ActNumber is the act
// the choice was made from. Entries are append-only.
type ChoiceHistory struct {
	ID              int64     `json:"id"`
	PlayerSessionID int64     `json:"playerSessionId"`
	ActNumber       int       `json:"actNumber"`
	ChoiceID        int64     `json:"choiceId"`
	MadeAt          time.Time `json:"madeAt"`
}

// User is the minimal local user row. Identity lives in the external provider.
type User struct {
	ID       uint64 `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}
