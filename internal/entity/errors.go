package entity

import "errors"

// Domain errors
var (
	// Retrieval errors
	ErrIndexNotReady = errors.New("index not ready")
	ErrEmptyQuery    = errors.New("empty query")
	ErrInvalidK      = errors.New("k out of range")

	// Chat errors
	ErrEmptyMessage    = errors.New("empty message")
	ErrSessionNotFound = errors.New("session not found")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
