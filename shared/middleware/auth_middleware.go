package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fallen-dragon-server/shared/models"
)

// TokenVerifier проверяет строку токена и возвращает claims.
// Ошибки: models.ErrTokenInvalid, models.ErrTokenExpired, models.ErrTokenMalformed.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// GinAuthMiddleware requires a valid bearer token and stores the user in both
// the gin context and the request context (models.UserContextKey).
func GinAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("AuthMiddleware")

	return func(c *gin.Context) {
		log := logger.With(zap.String("path", c.Request.URL.Path))

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Authorization header missing")
			abortUnauthorized(c, "Unauthorized: Missing token")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			log.Warn("Malformed Authorization header")
			abortUnauthorized(c, "Unauthorized: Malformed token header")
			return
		}

		claims, err := verifier(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, models.ErrTokenExpired):
				abortUnauthorized(c, "Unauthorized: Token expired")
			case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
				abortUnauthorized(c, "Unauthorized: Invalid token")
			default:
				log.Error("Unexpected token verification error", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Internal server error"})
			}
			return
		}

		c.Set(string(models.UserContextKey), claims.UserID)
		c.Request = c.Request.WithContext(models.WithUser(c.Request.Context(), claims.UserID, claims.Username))

		log.Debug("User authorized", zap.Uint64("userID", claims.UserID))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Message: message})
}
