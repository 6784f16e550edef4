// Package calendar renders a trip itinerary as an iCalendar document.
package calendar

import (
	"fmt"
	"slices"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/itinerary"
)

const productID = "-//trip-planner//itinerary//EN"

// floatingLayout is a local date-time without zone. Item times are wall-clock
// times at the destination, whose zone the trip does not record.
const floatingLayout = "20060102T150405"

// Render returns the trip's non-rejected items as VEVENTs. Day N of the trip
// falls on Settings.StartDate + N-1. Timed items become floating events and
// TBD items all-day events; approved items are CONFIRMED and pending ones
// TENTATIVE. An item's group id is emitted as a category.
// Returns domain.ErrValidation if the trip has no start date.
func Render(trip domain.Trip, stamp time.Time) (string, error) {
	if trip.Settings.StartDate == "" {
		return "", fmt.Errorf("%w: trip has no start_date", domain.ErrValidation)
	}
	first, err := time.Parse(time.DateOnly, trip.Settings.StartDate)
	if err != nil {
		return "", fmt.Errorf("%w: start_date must be YYYY-MM-DD", domain.ErrValidation)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(trip.Name)

	items := slices.DeleteFunc(slices.Clone(trip.Itinerary), func(it domain.Item) bool {
		return it.Status == domain.StatusRejected
	})
	itinerary.Sort(items)

	for _, it := range items {
		ev := cal.AddEvent(fmt.Sprintf("%s@%s", it.ID, trip.ID))
		ev.SetDtStampTime(stamp)
		ev.SetCreatedTime(it.CreatedAt)
		ev.SetSummary(it.Title)
		if it.Description != "" {
			ev.SetDescription(it.Description)
		}
		if it.Location != "" {
			ev.SetLocation(it.Location)
		}

		day := first.AddDate(0, 0, it.Day-1)
		if it.StartTime == "" {
			ev.SetAllDayStartAt(day)
			ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		} else {
			ev.SetProperty(ics.ComponentPropertyDtStart, at(day, it.StartTime).Format(floatingLayout))
			if it.EndTime != "" {
				ev.SetProperty(ics.ComponentPropertyDtEnd, at(day, it.EndTime).Format(floatingLayout))
			}
		}

		if it.Status == domain.StatusApproved {
			ev.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			ev.SetStatus(ics.ObjectStatusTentative)
		}
		if it.GroupID != "" {
			ev.AddProperty(ics.ComponentPropertyCategories, it.GroupID)
		}
	}
	return cal.Serialize(), nil
}

// at combines a date with a normalized "HH:MM" time of day.
func at(day time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}
