package domain

// Default and maximum number of chat messages returned by a single list call.
const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

// NewMessageLimit builds a list limit from an optional HTTP query param.
// A nil or non-positive value falls back to DefaultMessageLimit; the result
// is capped at MaxMessageLimit to prevent runaway queries.
func NewMessageLimit(limit *int) int {
	if limit == nil || *limit < 1 {
		return DefaultMessageLimit
	}
	if *limit > MaxMessageLimit {
		return MaxMessageLimit
	}
	return *limit
}
