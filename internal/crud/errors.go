package crud

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for service-layer error classification.
// Handlers use errors.Is() to map them onto HTTP responses.
var (
	// ErrValidation indicates the validator rejected the input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownRepository indicates a list repository name that was never registered.
	ErrUnknownRepository = errors.New("unknown repository")
)

// ValidationErrors maps field names to messages.
type ValidationErrors map[string]string

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ErrValidation.Error()
	}

	b, err := json.Marshal(map[string]string(e))
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Is makes errors.Is(err, ErrValidation) hold for ValidationErrors.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Clone returns an independent copy.
func (e ValidationErrors) Clone() ValidationErrors {
	if e == nil {
		return nil
	}
	out := make(ValidationErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
