package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrMissingField  = errors.New("missing required field")
	ErrDuplicate     = errors.New("duplicate entry")
	ErrNoRows        = errors.New("no valid rows")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrFetchFailed   = errors.New("fetch failed")
	ErrRetryBudget   = errors.New("retry budget exhausted")
	ErrCacheClosed   = errors.New("page cache closed")
)
