package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// inviteCacheTTL is how long an invite code to trip id mapping is kept.
// Codes are immutable once issued.
const inviteCacheTTL = 10 * time.Minute

const inviteCodeLen = 8

// TripService implements business logic for Trip operations: creation,
// joining by invite code, and settings updates.
type TripService struct {
	trips repo.TripRepo
	codes *cache.Cache
	env
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(trips repo.TripRepo, opts ...Option) *TripService {
	return &TripService{
		trips: trips,
		codes: cache.New(inviteCacheTTL, 2*inviteCacheTTL),
		env:   newEnv(opts),
	}
}

// Create validates and persists a new trip whose only member is its creator.
// DaysCount defaults to 1 when unset.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, name, creatorName string, settings domain.Settings) (domain.Trip, error) {
	name = strings.TrimSpace(name)
	creatorName = strings.TrimSpace(creatorName)
	if name == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if creatorName == "" {
		return domain.Trip{}, fmt.Errorf("%w: creator name is required", domain.ErrValidation)
	}
	if settings.DaysCount == 0 {
		settings.DaysCount = 1
	}
	settings = trimSettings(settings)
	if err := validateSettings(settings); err != nil {
		return domain.Trip{}, err
	}

	now := s.now()
	trip := domain.Trip{
		Name:     name,
		Settings: settings,
		Members: []domain.Member{
			{ID: s.newID(), Name: creatorName, IsCreator: true, JoinedAt: now},
		},
		Itinerary: []domain.Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// A fresh code is drawn on every collision with an existing trip.
	var err error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		trip.ID = uuid.New()
		trip.InviteCode = newInviteCode()

		var created domain.Trip
		created, err = s.trips.Create(ctx, trip)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
}

// Get returns a single trip by ID.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) Get(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// Join appends a new member named name to the trip identified by code.
// Codes are matched ignoring case.
// Returns domain.ErrNotFound if no trip uses the code.
func (s *TripService) Join(ctx context.Context, code, name string) (domain.Trip, domain.Member, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return domain.Trip{}, domain.Member{}, fmt.Errorf("%w: invite code is required", domain.ErrValidation)
	}
	if name == "" {
		return domain.Trip{}, domain.Member{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	tripID, err := s.resolveCode(ctx, code)
	if err != nil {
		return domain.Trip{}, domain.Member{}, fmt.Errorf("service.TripService.Join: %w", err)
	}

	var member domain.Member
	trip, err := mutateTrip(ctx, s.trips, s.now, tripID, func(t *domain.Trip) error {
		member = domain.Member{ID: s.newID(), Name: name, JoinedAt: s.now()}
		t.Members = append(t.Members, member)
		return nil
	})
	if err != nil {
		return domain.Trip{}, domain.Member{}, fmt.Errorf("service.TripService.Join: %w", err)
	}
	return trip, member, nil
}

// resolveCode maps an upper-cased invite code to its trip id, consulting the
// in-process cache first.
func (s *TripService) resolveCode(ctx context.Context, code string) (uuid.UUID, error) {
	if v, ok := s.codes.Get(code); ok {
		return v.(uuid.UUID), nil
	}
	trip, err := s.trips.GetByInviteCode(ctx, code)
	if err != nil {
		return uuid.Nil, err
	}
	s.codes.Set(code, trip.ID, cache.DefaultExpiration)
	return trip.ID, nil
}

// UpdateSettings applies a partial update to the trip's name and settings.
// Nil patch fields are left untouched; the merged result is validated as a
// whole.
func (s *TripService) UpdateSettings(ctx context.Context, id uuid.UUID, patch domain.SettingsPatch) (domain.Trip, error) {
	trip, err := mutateTrip(ctx, s.trips, s.now, id, func(t *domain.Trip) error {
		if patch.Name != nil {
			t.Name = strings.TrimSpace(*patch.Name)
			if t.Name == "" {
				return fmt.Errorf("%w: name must not be blank", domain.ErrValidation)
			}
		}
		t.Settings = trimSettings(applyPatch(t.Settings, patch))
		return validateSettings(t.Settings)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateSettings: %w", err)
	}
	return trip, nil
}

func applyPatch(st domain.Settings, p domain.SettingsPatch) domain.Settings {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&st.Destination, p.Destination)
	set(&st.AgeGroup, p.AgeGroup)
	set(&st.StartDate, p.StartDate)
	set(&st.Airline, p.Airline)
	set(&st.FlightNumber, p.FlightNumber)
	set(&st.HotelName, p.HotelName)
	set(&st.HotelAddress, p.HotelAddress)
	if p.DaysCount != nil {
		st.DaysCount = *p.DaysCount
	}
	if p.NightsCount != nil {
		st.NightsCount = *p.NightsCount
	}
	return st
}

func trimSettings(st domain.Settings) domain.Settings {
	for _, f := range []*string{
		&st.Destination, &st.AgeGroup, &st.StartDate, &st.Airline,
		&st.FlightNumber, &st.HotelName, &st.HotelAddress,
	} {
		*f = strings.TrimSpace(*f)
	}
	return st
}

// validateSettings enforces the rules shared by Create and UpdateSettings.
//   - Destination must be non-empty.
//   - DaysCount must be at least 1, NightsCount not negative.
//   - StartDate, when set, must be a YYYY-MM-DD date.
func validateSettings(st domain.Settings) error {
	if st.Destination == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if st.DaysCount < 1 {
		return fmt.Errorf("%w: days_count must be at least 1", domain.ErrValidation)
	}
	if st.NightsCount < 0 {
		return fmt.Errorf("%w: nights_count must not be negative", domain.ErrValidation)
	}
	if st.StartDate != "" {
		if _, err := time.Parse(time.DateOnly, st.StartDate); err != nil {
			return fmt.Errorf("%w: start_date must be YYYY-MM-DD", domain.ErrValidation)
		}
	}
	return nil
}

// newInviteCode returns 8 upper-case hex characters.
func newInviteCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:inviteCodeLen])
}
