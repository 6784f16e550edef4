// Package itinerary holds the pure scheduling rules of the trip planner:
// time-of-day handling, clash detection, option grouping, voting, title
// matching, and within-day ordering. Nothing here touches storage; the
// service layer loads a trip, applies these rules, and saves it back.
package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

const clockLayout = "15:04"

// lastMinute caps derived end times so they never wrap past midnight, which
// would break the lexicographic ordering of "HH:MM" strings.
const lastMinute = 23*60 + 59

// Defaults for an option batch whose first item carries no time.
const (
	DefaultOptionStart    = "09:00"
	DefaultOptionEnd      = "11:00"
	DefaultOptionDuration = 120
)

// NormalizeClock parses a 24-hour time of day ("9:05" or "09:05") and returns
// it zero-padded. Zero-padded "HH:MM" strings compare lexicographically in the
// same order as the times they denote, which the clash rule relies on.
// An empty input is returned unchanged (time to be decided).
func NormalizeClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: time %q must be HH:MM (24-hour)", domain.ErrValidation, s)
	}
	return t.Format(clockLayout), nil
}

// minutesOf converts a normalized "HH:MM" to minutes after midnight.
func minutesOf(s string) int {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

func clockOf(minutes int) string {
	if minutes > lastMinute {
		minutes = lastMinute
	}
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes returns start shifted by d minutes, clamped to the same day.
func AddMinutes(start string, d int) string {
	return clockOf(minutesOf(start) + d)
}

// Span returns the minutes between two normalized times, or 0 when end is
// not after start.
func Span(start, end string) int {
	d := minutesOf(end) - minutesOf(start)
	if d < 0 {
		return 0
	}
	return d
}

// CompleteTimes fills the derived time fields of an item:
// duration from start/end when absent, end from start+duration when absent.
func CompleteTimes(it *domain.Item) {
	switch {
	case it.StartTime != "" && it.EndTime != "" && it.Duration <= 0:
		it.Duration = Span(it.StartTime, it.EndTime)
	case it.StartTime != "" && it.EndTime == "" && it.Duration > 0:
		it.EndTime = AddMinutes(it.StartTime, it.Duration)
	}
}

// NewItem builds an item from a draft: times are normalized, day defaults
// to 1, and derived times are filled in. Status and votes are left zero.
func NewItem(d domain.ItemDraft) (domain.Item, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return domain.Item{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	start, err := NormalizeClock(d.StartTime)
	if err != nil {
		return domain.Item{}, err
	}
	end, err := NormalizeClock(d.EndTime)
	if err != nil {
		return domain.Item{}, err
	}
	if start != "" && end != "" && end <= start {
		return domain.Item{}, fmt.Errorf("%w: end time must be after start time", domain.ErrValidation)
	}
	if d.Duration < 0 {
		return domain.Item{}, fmt.Errorf("%w: duration must not be negative", domain.ErrValidation)
	}
	day := d.Day
	if day < 1 {
		day = 1
	}
	it := domain.Item{
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Location:    strings.TrimSpace(d.Location),
		Day:         day,
		StartTime:   start,
		EndTime:     end,
		Duration:    d.Duration,
	}
	CompleteTimes(&it)
	return it, nil
}
