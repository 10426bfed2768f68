package models

import "context"

// contextKey is private so keys never collide with other packages.
type contextKey string

const (
	// UserContextKey stores the authenticated UserID (uint64) in a request context.
	UserContextKey contextKey = "userID"
	// UsernameContextKey stores the username claim, when the token carries one.
	UsernameContextKey contextKey = "username"
)

// GetUserIDFromContext extracts the UserID placed by the auth middleware.
// Returns 0 and false when the key is missing or has the wrong type.
func GetUserIDFromContext(ctx context.Context) (uint64, bool) {
	userID, ok := ctx.Value(UserContextKey).(uint64)
	return userID, ok
}

// GetUsernameFromContext extracts the username claim, if any.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameContextKey).(string)
	return username, ok && username != ""
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, userID uint64, username string) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, userID)
	if username != "" {
		ctx = context.WithValue(ctx, UsernameContextKey, username)
	}
	return ctx
}
