package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary Start a story session
// @Description Creates the character and a session positioned at act 1
// @Tags story
// @Accept json
// @Produce json
// @Param request body startStoryRequest true "Story and character"
// @Success 200 {object} models.PlayerSession "Created session"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/story/start [post]
func (h *StoryHandler) startStory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req startStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid start story request", zap.Error(err))
		abortBadRequest(c, bindErrorMessage(err))
		return
	}

	session, err := h.storyService.CreateSession(c.Request.Context(), userID, req.StoryID, req.CharacterName, req.Character.toAppearance())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary Get the current act
// @Description Returns the act the session is positioned at
// @Tags story
// @Produce json
// @Param sessionId path int true "Session ID"
// @Success 200 {object} actResponse "Current act"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/story/currentAct/{sessionId} [get]
func (h *StoryHandler) getCurrentAct(c *gin.Context) {
	userID, sessionID, ok := sessionRequest(c)
	if !ok {
		return
	}

	_, act, err := h.storyService.GetCurrentAct(c.Request.Context(), userID, sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newActResponse(act))
}

// @Summary Advance to the next act
// @Description Applies the choice leading to nextActNumber and records it in the history
// @Tags story
// @Accept json
// @Produce json
// @Param sessionId path int true "Session ID"
// @Param request body nextActRequest true "Requested act"
// @Success 200 {object} models.PlayerSession "Updated session"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 409 {object} models.ErrorResponse "Session already completed"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/story/nextAct/{sessionId} [post]
func (h *StoryHandler) nextAct(c *gin.Context) {
	userID, sessionID, ok := sessionRequest(c)
	if !ok {
		return
	}

	var req nextActRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, bindErrorMessage(err))
		return
	}

	session, err := h.storyService.Advance(c.Request.Context(), userID, sessionID, *req.NextActNumber)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary Update the character appearance
// @Tags story
// @Accept json
// @Produce json
// @Param sessionId path int true "Session ID"
// @Param request body characterRequest true "Appearance"
// @Success 200 {object} models.PlayerSession "Updated session"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/story/updateCharacter/{sessionId} [put]
func (h *StoryHandler) updateCharacter(c *gin.Context) {
	userID, sessionID, ok := sessionRequest(c)
	if !ok {
		return
	}

	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, bindErrorMessage(err))
		return
	}

	session, err := h.storyService.UpdateCharacterAppearance(c.Request.Context(), userID, sessionID, req.toAppearance())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary Get the character of a session
// @Tags characters
// @Produce json
// @Param sessionId path int true "Session ID"
// @Success 200 {object} models.Character "Character"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/characters/{sessionId} [get]
func (h *StoryHandler) getCharacter(c *gin.Context) {
	userID, sessionID, ok := sessionRequest(c)
	if !ok {
		return
	}

	character, err := h.storyService.GetCharacter(c.Request.Context(), userID, sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// @Summary List sessions of the caller
// @Description Most recently updated first
// @Tags story
// @Produce json
// @Success 200 {array} models.PlayerSession "Sessions"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/story/sessions [get]
func (h *StoryHandler) listSessions(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	sessions, err := h.storyService.ListSessions(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// @Summary Get a session
// @Tags story
// @Produce json
// @Param sessionId path int true "Session ID"
// @Success 200 {object} models.PlayerSession "Session"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/story/session/{sessionId} [get]
func (h *StoryHandler) getSession(c *gin.Context) {
	userID, sessionID, ok := sessionRequest(c)
	if !ok {
		return
	}

	session, err := h.storyService.GetSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary Delete a session
// @Description Removes the session with its character and history
// @Tags story
// @Produce json
// @Param sessionId path int true "Session ID"
// @Success 204 "Deleted"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/story/session/{sessionId} [delete]
func (h *StoryHandler) deleteSession(c *gin.Context) {
	userID, sessionID, ok := sessionRequest(c)
	if !ok {
		return
	}

	if err := h.storyService.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get the choice history of a session
// @Tags story
// @Produce json
// @Param sessionId path int true "Session ID"
// @Success 200 {array} historyEntryResponse "History"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/story/history/{sessionId} [get]
func (h *StoryHandler) getHistory(c *gin.Context) {
	userID, sessionID, ok := sessionRequest(c)
	if !ok {
		return
	}

	history, err := h.storyService.GetHistory(c.Request.Context(), userID, sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newHistoryResponse(history))
}

// @Summary List stories
// @Tags stories
// @Produce json
// @Success 200 {array} storyListItemResponse "Stories"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/stories [get]
func (h *StoryHandler) listStories(c *gin.Context) {
	stories, err := h.storyService.ListStories(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := make([]storyListItemResponse, 0, len(stories))
	for _, s := range stories {
		resp = append(resp, storyListItemResponse{ID: s.ID, Title: s.Title, Description: s.Description})
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get a story
// @Tags stories
// @Produce json
// @Param storyId path int true "Story ID"
// @Success 200 {object} storyResponse "Story"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/stories/{storyId} [get]
func (h *StoryHandler) getStory(c *gin.Context) {
	storyID, ok := parseIDParam(c, "storyId")
	if !ok {
		return
	}

	story, err := h.storyService.GetStory(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newStoryResponse(story))
}
