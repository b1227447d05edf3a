package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrNotSignedIn      = errors.New("not signed in")
	ErrNotEligible      = errors.New("batch not insert-eligible")
	ErrTimeout          = errors.New("timed out")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidSchema    = errors.New("invalid surface schema")
)
