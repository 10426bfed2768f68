package handler

import (
	"time"

	"fallen-dragon-server/shared/models"
)

// --- Requests ---

type characterRequest struct {
	Head   string `json:"head" binding:"required,max=255"`
	Body   string `json:"body" binding:"required,max=255"`
	PoseID *int64 `json:"poseId" binding:"omitempty,gt=0"`
}

func (r *characterRequest) toAppearance() models.Appearance {
	return models.Appearance{Head: r.Head, Body: r.Body, PoseID: r.PoseID}
}

type startStoryRequest struct {
	StoryID       int64             `json:"storyId" binding:"required,gt=0"`
	CharacterName string            `json:"characterName" binding:"required,min=1,max=50,alphanumspace"`
	Character     *characterRequest `json:"character" binding:"required"`
}

// nextActRequest uses a pointer so that 0 (a valid ending target) passes "required".
type nextActRequest struct {
	NextActNumber *int `json:"nextActNumber" binding:"required"`
}

type poseRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=100"`
	ImageURL      string  `json:"imageUrl" binding:"required,max=1024"`
	CharacterType *string `json:"characterType" binding:"omitempty,max=50"`
}

func (r *poseRequest) toModel(id int64) *models.CharacterPose {
	return &models.CharacterPose{ID: id, Name: r.Name, ImageURL: r.ImageURL, CharacterType: r.CharacterType}
}

// --- Responses ---

type choiceResponse struct {
	Text          string `json:"text"`
	NextActNumber int    `json:"nextActNumber"`
}

// actResponse hides act and choice ids from the client.
type actResponse struct {
	ActNumber int              `json:"actNumber"`
	Text      string           `json:"text"`
	IsEnding  bool             `json:"isEnding"`
	Choices   []choiceResponse `json:"choices"`
}

func newActResponse(act *models.Act) actResponse {
	resp := actResponse{
		ActNumber: act.ActNumber,
		Text:      act.Text,
		IsEnding:  act.IsEnding,
		Choices:   make([]choiceResponse, 0, len(act.Choices)),
	}
	for _, c := range act.Choices {
		resp.Choices = append(resp.Choices, choiceResponse{Text: c.Text, NextActNumber: c.NextActNumber})
	}
	return resp
}

type historyEntryResponse struct {
	ID        int64     `json:"id"`
	ActNumber int       `json:"actNumber"`
	ChoiceID  int64     `json:"choiceId"`
	MadeAt    time.Time `json:"madeAt"`
}

func newHistoryResponse(history []*models.ChoiceHistory) []historyEntryResponse {
	resp := make([]historyEntryResponse, 0, len(history))
	for _, h := range history {
		resp = append(resp, historyEntryResponse{ID: h.ID, ActNumber: h.ActNumber, ChoiceID: h.ChoiceID, MadeAt: h.MadeAt})
	}
	return resp
}

type storyListItemResponse struct {
	ID          int64  `json:"storyId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type storyResponse struct {
	storyListItemResponse
	ActCount int `json:"actCount"`
}

func newStoryResponse(story *models.StorySummary) storyResponse {
	return storyResponse{
		storyListItemResponse: storyListItemResponse{ID: story.ID, Title: story.Title, Description: story.Description},
		ActCount:              story.ActCount,
	}
}
