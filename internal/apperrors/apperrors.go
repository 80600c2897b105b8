package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")

	ErrMissingInput = errors.New("missing pipeline input")
)

// MissingInputError names every handoff source that produced nothing.
type MissingInputError struct{ Sources []string }

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing pipeline input: no data from %s", strings.Join(e.Sources, ", "))
}
func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

type WorkItemFetchError struct {
	WorkItemID int
	Err        error
}

func (e *WorkItemFetchError) Error() string {
	return fmt.Sprintf("work item %d could not be fetched: %v", e.WorkItemID, e.Err)
}
func (e *WorkItemFetchError) Unwrap() error { return e.Err }
