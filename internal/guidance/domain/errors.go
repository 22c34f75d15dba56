package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrScorerUnavailable = errors.New("risk scorer unavailable")
	ErrScorerBadResponse = errors.New("risk scorer returned an invalid response")
	ErrModelNotLoaded    = errors.New("model artifact not loaded")
)

// FieldError describes one offending request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request is malformed. It is always
// recovered locally by rejecting the request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// DependencyError wraps a failure of the risk-scoring collaborator.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// Unavailable reports whether the collaborator could not be reached at all,
// as opposed to answering with something unusable.
func (e *DependencyError) Unavailable() bool {
	return !errors.Is(e.Err, ErrScorerBadResponse)
}
