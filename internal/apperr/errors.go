package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when the target status is not reachable from the current one.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrCourierUnavailable is returned when the courier cannot take the delivery.
var ErrCourierUnavailable = errors.New("courier unavailable")

// ErrConcurrencyConflict means the record changed between read and write. Callers re-read and retry.
var ErrConcurrencyConflict = errors.New("concurrency conflict")
