package service

import "errors"

// Sentinel errors for service-layer error classification.
// Validation and not-found failures are reported with crud.ErrValidation
// and crud.ErrNotFound.
var (
	// ErrInvalidFilter indicates an unsupported filterBy value (HTTP 400).
	ErrInvalidFilter = errors.New("invalid filter")
)
