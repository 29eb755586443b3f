// Package errors defines user-facing API errors. Services return them and the
// HTTP layer maps them to a status code and an {error: message} envelope.
package errors

import (
	"fmt"
	"net/http"
)

// APIError is an error that is safe to show to the caller.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewErrNoSessionToken() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: "No session token"}
}

func NewErrInvalidSession() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: "Invalid session"}
}

func NewErrSessionExpired() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: "Session expired"}
}

func NewErrSessionRequired() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: "Valid session required to change PIN"}
}

// NewErrInvalidCredential covers unknown users, inactive users and wrong PINs alike.
func NewErrInvalidCredential() *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: "Invalid username or PIN"}
}

func NewErrForbidden(message string) *APIError {
	return &APIError{Status: http.StatusForbidden, Message: message}
}

func NewErrValidation(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

func NewErrUsernameTaken(username string) *APIError {
	return &APIError{Status: http.StatusConflict, Message: fmt.Sprintf("Username %q already exists", username)}
}

func NewErrNotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message}
}

// NewErrUpstream reports a failed call to the completion API. The upstream
// message is passed through.
func NewErrUpstream(message string) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Message: message}
}

func NewErrBodyTooLarge() *APIError {
	return &APIError{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
}
