package models

import "errors"

// Error taxonomy for the engine. DayClosed is a valid terminal outcome,
// not a failure; it exists as a sentinel so callers can skip the day.
var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrDayClosed            = errors.New("day closed")
	ErrBackendUnavailable   = errors.New("backend unavailable")
	ErrConflict             = errors.New("slot already booked")
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
)
