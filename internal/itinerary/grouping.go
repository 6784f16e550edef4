package itinerary

import (
	"github.com/samber/lo"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// SanitizeDraft clears time fields an assistant got wrong instead of failing
// the whole batch: unparsable times and ends not after their start become TBD.
func SanitizeDraft(d domain.ItemDraft) domain.ItemDraft {
	start, err := NormalizeClock(d.StartTime)
	if err != nil {
		start = ""
	}
	end, err := NormalizeClock(d.EndTime)
	if err != nil {
		end = ""
	}
	if start == "" || (end != "" && end <= start) {
		end = ""
	}
	if d.Duration < 0 {
		d.Duration = 0
	}
	d.StartTime, d.EndTime = start, end
	return d
}

// ForceSharedWindow coerces every item into the time window of the first
// item and puts them all in one group. The window defaults to
// DefaultOptionStart-DefaultOptionEnd when the first item has no start time.
// Items are modified in place.
func ForceSharedWindow(items []domain.Item, groupID string) {
	if len(items) == 0 {
		return
	}
	first := items[0]
	start, end, duration := first.StartTime, first.EndTime, first.Duration
	if start == "" {
		start, end, duration = DefaultOptionStart, DefaultOptionEnd, DefaultOptionDuration
	}
	if end == "" {
		if duration <= 0 {
			duration = DefaultOptionDuration
		}
		end = AddMinutes(start, duration)
	}
	if duration <= 0 {
		duration = Span(start, end)
	}
	for i := range items {
		items[i].StartTime = start
		items[i].EndTime = end
		items[i].Duration = duration
		items[i].GroupID = groupID
	}
}

type slot struct {
	day        int
	start, end string
}

func slotOf(it domain.Item) slot {
	return slot{day: it.Day, start: it.StartTime, end: it.EndTime}
}

// GroupSharedSlots assigns a fresh group id to every set of two or more items
// that share an exact (day, start, end) slot. Singletons and items without a
// start time get no group. newGroupID is called once per multi-item slot, in
// order of the slot's first appearance.
func GroupSharedSlots(items []domain.Item, newGroupID func() string) {
	timed := lo.Filter(items, func(it domain.Item, _ int) bool { return it.StartTime != "" })
	counts := lo.CountValuesBy(timed, slotOf)

	ids := make(map[slot]string)
	for i := range items {
		if items[i].StartTime == "" {
			continue
		}
		key := slotOf(items[i])
		if counts[key] < 2 {
			continue
		}
		id, ok := ids[key]
		if !ok {
			id = newGroupID()
			ids[key] = id
		}
		items[i].GroupID = id
	}
}

// Days returns the distinct days of items in first-seen order, or [1] when
// items is empty.
func Days(items []domain.ItemDraft) []int {
	if len(items) == 0 {
		return []int{1}
	}
	return lo.Uniq(lo.Map(items, func(d domain.ItemDraft, _ int) int {
		if d.Day < 1 {
			return 1
		}
		return d.Day
	}))
}
