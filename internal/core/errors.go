package core

import "errors"

// Input errors are detected before any backend call.
var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidKind   = errors.New("invalid transaction type")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrNoSelection   = errors.New("no transaction selected")
)

// Backend errors are produced by the persistence adapters.
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrValidationRejected = errors.New("rejected by backend")
	ErrNotFound           = errors.New("transaction not found")
)

// Controller errors.
var (
	ErrBusy  = errors.New("another operation is in progress")
	ErrStale = errors.New("result superseded by a newer request")
)

// IsInputError reports whether err is a user-input problem rather than a
// backend failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrNoSelection)
}
