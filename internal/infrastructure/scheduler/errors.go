package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrRunInProgress is returned when a manual run overlaps a running batch
	ErrRunInProgress = errors.New("listing sync run already in progress")
)
