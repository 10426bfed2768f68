package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"fallen-dragon-server/shared/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(verifier TokenVerifier) *gin.Engine {
	router := gin.New()
	router.Use(GinZapLogger(zap.NewNop()))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	api := router.Group("/api", GinAuthMiddleware(verifier, zap.NewNop()))
	api.GET("/me", func(c *gin.Context) {
		userID, ok := models.GetUserIDFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		username, _ := models.GetUsernameFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"userId": userID, "username": username})
	})
	return router
}

func TestGinAuthMiddleware(t *testing.T) {
	verifier := func(_ context.Context, token string) (*models.Claims, error) {
		switch token {
		case "good":
			return &models.Claims{UserID: 7, Username: "knight"}, nil
		case "expired":
			return nil, models.ErrTokenExpired
		case "broken":
			return nil, errors.New("keystore unavailable")
		default:
			return nil, models.ErrTokenInvalid
		}
	}
	router := newTestRouter(verifier)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer good", http.StatusOK, `{"userId":7,"username":"knight"}`},
		{"missing header", "", http.StatusUnauthorized, `{"message":"Unauthorized: Missing token"}`},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, `{"message":"Unauthorized: Malformed token header"}`},
		{"expired", "Bearer expired", http.StatusUnauthorized, `{"message":"Unauthorized: Token expired"}`},
		{"invalid", "Bearer other", http.StatusUnauthorized, `{"message":"Unauthorized: Invalid token"}`},
		{"verifier failure", "Bearer broken", http.StatusInternalServerError, `{"message":"Internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestGinZapLoggerRequestID(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}
