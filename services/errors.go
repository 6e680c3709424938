package services

import "errors"

var (
	// ErrInsufficientBalance is returned when a purchase costs more run
	// points than the user holds.
	ErrInsufficientBalance = errors.New("insufficient run points balance")
	// ErrWeeklyLimitExceeded is returned when the per-week purchase cap for
	// an item is already reached.
	ErrWeeklyLimitExceeded = errors.New("weekly purchase limit exceeded")
	// ErrItemNotFound is returned for unknown shop item codes.
	ErrItemNotFound = errors.New("shop item not found")
	// ErrSessionNotFound is returned when a tracking session token is
	// unknown or expired.
	ErrSessionNotFound = errors.New("tracking session not found")
	// ErrSessionForbidden is returned when a tracking session belongs to a
	// different user.
	ErrSessionForbidden = errors.New("tracking session belongs to another user")
)
