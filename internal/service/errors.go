package service

import (
	"errors"
	"fmt"
)

// ErrIncompleteRequirements is returned when recommendations are requested
// before all four requirement fields have been collected. The conversation
// manager gates on completeness, so seeing this error means a caller bug.
var ErrIncompleteRequirements = errors.New("requirements must be complete before fetching recommendations")

// ErrNoMoreResults signals that the provider has no further pages for the
// current search criteria. Pagination treats it as a clean stop, not a failure.
var ErrNoMoreResults = errors.New("no more funeral home results")

// OracleError represents a failure of the LLM extraction backend. Extraction
// recovers from it by falling back to keyword matching.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s failed: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// ProviderError represents a failure of the funeral home provider API.
// Pagination recovers from it by returning the results accumulated so far.
type ProviderError struct {
	Op   string
	Page int
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("provider %s failed on page %d: %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
