package itinerary

import (
	"cmp"
	"math"
	"slices"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Reorder sets Order to the position in ids of every item on day that ids
// names. Unlisted items and ids that are not on day are left alone, so
// partial lists are fine. It returns the number of items reordered.
func Reorder(items []domain.Item, day int, ids []string) int {
	n := 0
	for pos, id := range ids {
		for i := range items {
			if items[i].ID != id || items[i].Day != day {
				continue
			}
			p := pos
			items[i].Order = &p
			n++
		}
	}
	return n
}

// Sort orders items for display: by day, then explicit order (ordered items
// first), then start time (TBD last), then creation time.
func Sort(items []domain.Item) {
	slices.SortStableFunc(items, func(a, b domain.Item) int {
		if c := cmp.Compare(a.Day, b.Day); c != 0 {
			return c
		}
		if c := cmp.Compare(orderKey(a), orderKey(b)); c != 0 {
			return c
		}
		if c := cmp.Compare(startKey(a), startKey(b)); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

func orderKey(it domain.Item) int {
	if it.Order == nil {
		return math.MaxInt
	}
	return *it.Order
}

// startKey sorts TBD items after every real time.
func startKey(it domain.Item) string {
	if it.StartTime == "" {
		return "~"
	}
	return it.StartTime
}
