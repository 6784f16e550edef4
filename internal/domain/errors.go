package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// trip, item, or member does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, malformed time of day).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned by repo Save when the stored trip has moved on since
// it was read (optimistic version mismatch), and by Create when a unique
// column collides. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrTimeClash is the sentinel wrapped by TimeClashError.
// Handlers should map this to HTTP 409 and expose the clash detail.
var ErrTimeClash = errors.New("time clash")

// ErrUpstreamUnavailable is returned by the assistant client when the AI text
// service failed, timed out, or returned nothing usable. The chat flow
// recovers from it locally.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ErrMalformedAction is returned by the action parser when an embedded
// payload cannot be decoded. Callers discard the action and keep the text.
var ErrMalformedAction = errors.New("malformed action")

// TimeClashError reports the existing item a candidate overlaps.
// errors.Is(err, ErrTimeClash) is true for any *TimeClashError.
type TimeClashError struct {
	Title     string
	Day       int
	StartTime string
	EndTime   string
}

func (e *TimeClashError) Error() string {
	return fmt.Sprintf("time clash with %q on day %d (%s-%s)", e.Title, e.Day, e.StartTime, e.EndTime)
}

// Is lets errors.Is match the ErrTimeClash sentinel.
func (e *TimeClashError) Is(target error) bool {
	return target == ErrTimeClash
}
