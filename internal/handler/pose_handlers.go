package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary List poses
// @Tags poses
// @Produce json
// @Success 200 {array} models.CharacterPose "Poses"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/poses [get]
func (h *StoryHandler) listPoses(c *gin.Context) {
	poses, err := h.poseService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, poses)
}

// @Summary Get a pose
// @Tags poses
// @Produce json
// @Param poseId path int true "Pose ID"
// @Success 200 {object} models.CharacterPose "Pose"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/poses/{poseId} [get]
func (h *StoryHandler) getPose(c *gin.Context) {
	poseID, ok := parseIDParam(c, "poseId")
	if !ok {
		return
	}

	pose, err := h.poseService.Get(c.Request.Context(), poseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pose)
}

// @Summary Create a pose
// @Tags poses
// @Accept json
// @Produce json
// @Param request body poseRequest true "Pose"
// @Success 201 {object} models.CharacterPose "Created pose"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/poses [post]
func (h *StoryHandler) createPose(c *gin.Context) {
	var req poseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, bindErrorMessage(err))
		return
	}

	pose, err := h.poseService.Create(c.Request.Context(), req.toModel(0))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pose)
}

// @Summary Update a pose
// @Tags poses
// @Accept json
// @Produce json
// @Param poseId path int true "Pose ID"
// @Param request body poseRequest true "Pose"
// @Success 200 {object} models.CharacterPose "Updated pose"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/poses/{poseId} [put]
func (h *StoryHandler) updatePose(c *gin.Context) {
	poseID, ok := parseIDParam(c, "poseId")
	if !ok {
		return
	}

	var req poseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, bindErrorMessage(err))
		return
	}

	pose, err := h.poseService.Update(c.Request.Context(), req.toModel(poseID))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pose)
}

// @Summary Delete a pose
// @Description Characters using the pose keep their appearance without a pose
// @Tags poses
// @Produce json
// @Param poseId path int true "Pose ID"
// @Success 204 "Deleted"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /api/poses/{poseId} [delete]
func (h *StoryHandler) deletePose(c *gin.Context) {
	poseID, ok := parseIDParam(c, "poseId")
	if !ok {
		return
	}

	if err := h.poseService.Delete(c.Request.Context(), poseID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
