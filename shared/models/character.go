package models

// Character is the appearance picked by a player for one session.
type Character struct {
	ID     int64  `json:"id" db:"id"`
	Head   string `json:"head" db:"head"`
	Body   string `json:"body" db:"body"`
	PoseID *int64 `json:"poseId" db:"pose_id"`
}

// Appearance is the mutable part of a Character.
type Appearance struct {
	Head   string
	Body   string
	PoseID *int64
}

// Apply overwrites the character's appearance.
func (c *Character) Apply(a Appearance) {
	c.Head = a.Head
	c.Body = a.Body
	c.PoseID = a.PoseID
}

// CharacterPose is an entry of the read-mostly pose catalog.
type CharacterPose struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	ImageURL      string  `json:"imageUrl" db:"image_url"`
	CharacterType *string `json:"characterType,omitempty" db:"character_type"`
}
