package models

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Message string `json:"message"`
}
