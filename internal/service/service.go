// Package service contains the business logic for the trip planner API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// maxSaveAttempts bounds the fetch-mutate-save cycle when concurrent writers
// keep winning the version race.
const maxSaveAttempts = 3

// Option configures the clock and id source shared by all services.
type Option func(*env)

type env struct {
	now   func() time.Time
	newID func() string
}

func newEnv(opts []Option) env {
	e := env{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WithClock replaces the wall clock used for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(e *env) { e.now = now }
}

// WithIDGenerator replaces the generator for item, member, and group ids.
func WithIDGenerator(newID func() string) Option {
	return func(e *env) { e.newID = newID }
}

// mutateTrip loads the trip, applies fn, and saves the result, retrying the
// whole cycle when Save reports a version conflict. fn may run more than once,
// so it must derive everything it records from the trip it is given.
func mutateTrip(ctx context.Context, trips repo.TripRepo, now func() time.Time, id uuid.UUID, fn func(*domain.Trip) error) (domain.Trip, error) {
	var err error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		var trip domain.Trip
		trip, err = trips.GetByID(ctx, id)
		if err != nil {
			return domain.Trip{}, err
		}
		if err := fn(&trip); err != nil {
			return domain.Trip{}, err
		}
		trip.UpdatedAt = now()

		var saved domain.Trip
		saved, err = trips.Save(ctx, trip)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return domain.Trip{}, err
		}
	}
	return domain.Trip{}, fmt.Errorf("gave up after %d attempts: %w", maxSaveAttempts, err)
}
