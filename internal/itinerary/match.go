package itinerary

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// fold returns the case-folded, trimmed form of s.
// A Caser carries state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// SameTitle reports whether two titles are equal ignoring case.
func SameTitle(a, b string) bool {
	return fold(a) == fold(b)
}

// TitlesOverlap reports whether either title contains the other, ignoring
// case. Blank titles never match.
func TitlesOverlap(a, b string) bool {
	fa, fb := fold(a), fold(b)
	if fa == "" || fb == "" {
		return false
	}
	return strings.Contains(fa, fb) || strings.Contains(fb, fa)
}

// RemoveByTitle deletes every item on one of days whose title equals one of
// titles (ignoring case). It returns the remaining items and the count removed.
func RemoveByTitle(items []domain.Item, titles []string, days []int) ([]domain.Item, int) {
	if len(titles) == 0 {
		return items, 0
	}
	if len(days) == 0 {
		days = []int{1}
	}
	kept := lo.Reject(items, func(it domain.Item, _ int) bool {
		if !lo.Contains(days, it.Day) {
			return false
		}
		return lo.ContainsBy(titles, func(t string) bool { return SameTitle(t, it.Title) })
	})
	return kept, len(items) - len(kept)
}

// MatchIndex returns the index of the first item (storage order) on day whose
// title overlaps hint, or -1.
func MatchIndex(items []domain.Item, hint string, day int) int {
	for i, it := range items {
		if it.Day == day && TitlesOverlap(hint, it.Title) {
			return i
		}
	}
	return -1
}

// Retime applies u to the item MatchIndex picks for u.TitleHint and u.Day
// and returns its index. Times in u must already be normalized.
// Returns domain.ErrNotFound when no item matches and domain.ErrValidation
// when the result would end at or before its start; items is unchanged on
// error.
func Retime(items []domain.Item, u domain.TimeUpdate) (int, error) {
	i := MatchIndex(items, u.TitleHint, u.Day)
	if i < 0 {
		return -1, fmt.Errorf("item matching %q on day %d: %w", u.TitleHint, u.Day, domain.ErrNotFound)
	}
	it := items[i]
	if u.NewStartTime != nil {
		it.StartTime = *u.NewStartTime
	}
	if u.NewEndTime != nil {
		it.EndTime = *u.NewEndTime
	}
	if it.Timed() {
		if it.EndTime <= it.StartTime {
			return -1, fmt.Errorf("%w: end time must be after start time", domain.ErrValidation)
		}
		it.Duration = Span(it.StartTime, it.EndTime)
	}
	items[i] = it
	return i, nil
}
