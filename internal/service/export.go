package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/calendar"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/itinerary"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// ExportService renders a trip's itinerary for use outside the app.
type ExportService struct {
	trips repo.TripRepo
	env
}

// NewExportService constructs an ExportService backed by the provided TripRepo.
func NewExportService(trips repo.TripRepo, opts ...Option) *ExportService {
	return &ExportService{trips: trips, env: newEnv(opts)}
}

// Calendar returns the itinerary as an iCalendar document.
// Returns domain.ErrValidation if the trip has no start date.
func (s *ExportService) Calendar(ctx context.Context, tripID uuid.UUID) (string, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return "", fmt.Errorf("service.ExportService.Calendar: %w", err)
	}
	out, err := calendar.Render(trip, s.now())
	if err != nil {
		return "", fmt.Errorf("service.ExportService.Calendar: %w", err)
	}
	return out, nil
}

// Rows returns one ExportRow per item in display order, rejected items
// included. Always returns a non-nil slice.
func (s *ExportService) Rows(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Rows: %w", err)
	}

	var first time.Time
	if trip.Settings.StartDate != "" {
		first, _ = time.Parse(time.DateOnly, trip.Settings.StartDate)
	}

	items := slices.Clone(trip.Itinerary)
	itinerary.Sort(items)

	rows := make([]domain.ExportRow, 0, len(items))
	for _, it := range items {
		row := domain.ExportRow{
			TripName:    trip.Name,
			Day:         it.Day,
			Title:       it.Title,
			StartTime:   it.StartTime,
			EndTime:     it.EndTime,
			Duration:    it.Duration,
			Location:    it.Location,
			Status:      it.Status,
			GroupID:     it.GroupID,
			YesVotes:    len(it.Votes.Yes),
			NoVotes:     len(it.Votes.No),
			SuggestedBy: it.SuggestedBy,
		}
		if !first.IsZero() {
			row.Date = first.AddDate(0, 0, it.Day-1).Format(time.DateOnly)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
