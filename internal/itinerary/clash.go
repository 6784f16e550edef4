package itinerary

import "github.com/pkordes/trip-planner/backend/internal/domain"

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Inputs are normalized "HH:MM" strings, so string comparison
// matches time-of-day ordering. Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// FindClash returns the first item in existing (storage order) on the
// candidate's day whose interval overlaps the candidate's. Rejected items and
// items without both endpoints are ignored, as is a candidate without both.
func FindClash(existing []domain.Item, candidate domain.Item) (domain.Item, bool) {
	if !candidate.Timed() {
		return domain.Item{}, false
	}
	for _, it := range existing {
		if it.Day != candidate.Day || it.Status == domain.StatusRejected || !it.Timed() {
			continue
		}
		if it.ID != "" && it.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate.StartTime, candidate.EndTime, it.StartTime, it.EndTime) {
			return it, true
		}
	}
	return domain.Item{}, false
}

// ClashError builds the error reported for a clash with it.
func ClashError(it domain.Item) error {
	return &domain.TimeClashError{
		Title:     it.Title,
		Day:       it.Day,
		StartTime: it.StartTime,
		EndTime:   it.EndTime,
	}
}
