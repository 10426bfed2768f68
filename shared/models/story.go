package models

// Story is authored out of band (seed data) and owns its acts.
type Story struct {
	ID          int64  `json:"storyId" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Acts        []*Act `json:"acts,omitempty" db:"-"`
}

// Act is one numbered page of a story. ActNumber is unique within the story
// and is the key sessions and choices address acts by.
type Act struct {
	ID        int64     `json:"actId" db:"id"`
	StoryID   int64     `json:"storyId" db:"story_id"`
	ActNumber int       `json:"actNumber" db:"act_number"`
	Text      string    `json:"text" db:"text"`
	IsEnding  bool      `json:"isEnding" db:"is_ending"`
	Choices   []*Choice `json:"choices" db:"-"`
}

// Choice leads from its act to the act numbered NextActNumber.
// A NextActNumber <= 0 ends the story and does not have to exist as an act.
type Choice struct {
	ID            int64  `json:"choiceId" db:"id"`
	ActID         int64  `json:"actId" db:"act_id"`
	Text          string `json:"text" db:"text"`
	NextActNumber int    `json:"nextActNumber" db:"next_act_number"`
}

// StorySummary is a story with its act count instead of its acts.
type StorySummary struct {
	Story
	ActCount int `json:"actCount" db:"act_count"`
}

// IsTerminalActNumber reports whether a choice target ends the story.
func IsTerminalActNumber(n int) bool {
	return n <= 0
}

// FindChoiceTo returns the first choice (choices are kept in id order) whose
// target is nextActNumber.
func (a *Act) FindChoiceTo(nextActNumber int) (*Choice, bool) {
	for _, c := range a.Choices {
		if c.NextActNumber == nextActNumber {
			return c, true
		}
	}
	return nil, false
}
