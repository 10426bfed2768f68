package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound          = errors.New("resource not found") // General not found
	ErrStoryNotFound     = errors.New("story not found")
	ErrActNotFound       = errors.New("act not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrPoseNotFound      = errors.New("pose not found")
	ErrConcurrentUpdate  = errors.New("session was modified concurrently")

	// Session state machine errors
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrSessionAlreadyCompleted = errors.New("session is already completed")

	// ErrUnknownPose is returned when a character references a pose that does not exist.
	// Unlike ErrPoseNotFound it is a client error on the character, not a missing resource.
	ErrUnknownPose = errors.New("pose does not exist")

	// ErrStoryInUse is returned by the seed loader when replacing a story would drop
	// choices that players have already made.
	ErrStoryInUse = errors.New("story has recorded choice history")

	// User & Authentication Errors
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// General Request Errors
	ErrInvalidInput = errors.New("invalid input data")
)
