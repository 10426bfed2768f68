package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fallen-dragon-server/internal/service"
	"fallen-dragon-server/shared/models"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type StoryHandler struct {
	storyService service.StoryService
	poseService  service.PoseService
	db           Pinger
	logger       *zap.Logger
}

func NewStoryHandler(storyService service.StoryService, poseService service.PoseService, db Pinger, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
		poseService:  poseService,
		db:           db,
		logger:       logger.Named("StoryHandler"),
	}
}

// RegisterRoutes mounts /health and the authenticated /api routes.
func (h *StoryHandler) RegisterRoutes(router gin.IRouter, authMiddleware gin.HandlerFunc) {
	router.GET("/health", h.health)

	api := router.Group("/api")
	api.Use(authMiddleware)
	{
		story := api.Group("/story")
		story.POST("/start", h.startStory)
		story.GET("/currentAct/:sessionId", h.getCurrentAct)
		story.POST("/nextAct/:sessionId", h.nextAct)
		story.PUT("/updateCharacter/:sessionId", h.updateCharacter)
		story.GET("/sessions", h.listSessions)
		story.GET("/session/:sessionId", h.getSession)
		story.DELETE("/session/:sessionId", h.deleteSession)
		story.GET("/history/:sessionId", h.getHistory)

		api.GET("/characters/:sessionId", h.getCharacter)

		api.GET("/stories", h.listStories)
		api.GET("/stories/:storyId", h.getStory)

		poses := api.Group("/poses")
		poses.GET("", h.listPoses)
		poses.POST("", h.createPose)
		poses.GET("/:poseId", h.getPose)
		poses.PUT("/:poseId", h.updatePose)
		poses.DELETE("/:poseId", h.deletePose)
	}
}

func (h *StoryHandler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getUserIDFromContext aborts with 401 when the auth middleware did not run.
func getUserIDFromContext(c *gin.Context) (uint64, bool) {
	if raw, exists := c.Get(string(models.UserContextKey)); exists {
		if userID, ok := raw.(uint64); ok && userID != 0 {
			return userID, true
		}
	}
	handleServiceError(c, models.ErrUnauthorized)
	return 0, false
}

// parseIDParam aborts with 400 when the path parameter is not a positive integer.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// sessionRequest resolves the caller and the :sessionId parameter.
func sessionRequest(c *gin.Context) (uint64, int64, bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return 0, 0, false
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return 0, 0, false
	}
	return userID, sessionID, true
}
