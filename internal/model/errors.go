package model

import "errors"

// Error kinds for a simulation run. All of them are fatal: a run that hits one
// aborts immediately with no partial result, because continuing past bad input
// silently corrupts every number downstream.
var (
	// ErrAlignment means a target-weight series does not match its bar series
	// timestamp-for-timestamp. Never auto-reindexed.
	ErrAlignment = errors.New("target series not aligned with bar series")

	// ErrInsufficientData means a required symbol has no bars in the run window.
	ErrInsufficientData = errors.New("insufficient bar data")

	// ErrInvalidPrice means a bar carries a non-positive or NaN price.
	ErrInvalidPrice = errors.New("invalid bar price")

	// ErrConfig means cost/leverage/reference-price parameters are outside their
	// documented domain. Raised at construction, before any simulation step.
	ErrConfig = errors.New("invalid configuration")
)
