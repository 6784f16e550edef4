package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	create          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	getByInviteCode func(ctx context.Context, code string) (domain.Trip, error)
	save            func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) GetByInviteCode(ctx context.Context, code string) (domain.Trip, error) {
	return m.getByInviteCode(ctx, code)
}
func (m *mockTripRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.save(ctx, trip)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockMessageRepo is a hand-written test double for repo.MessageRepo.
type mockMessageRepo struct {
	append     func(ctx context.Context, msg domain.Message) (domain.Message, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error)
}

func (m *mockMessageRepo) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	return m.append(ctx, msg)
}
func (m *mockMessageRepo) ListByTrip(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error) {
	return m.listByTrip(ctx, tripID, limit)
}

// compile-time check: mockMessageRepo must satisfy repo.MessageRepo.
var _ repo.MessageRepo = (*mockMessageRepo)(nil)

// ---- stateful doubles ------------------------------------------------------

// tripStore wires a mockTripRepo to a single in-memory trip with the same
// version semantics as the real drivers, so fetch-mutate-save flows can be
// exercised end to end. saves counts successful saves.
type tripStore struct {
	mu    sync.Mutex
	trip  domain.Trip
	saves int
}

func newTripStore(trip domain.Trip) *tripStore {
	if trip.Version == 0 {
		trip.Version = 1
	}
	return &tripStore{trip: trip}
}

func (s *tripStore) repo() *mockTripRepo {
	return &mockTripRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if id != s.trip.ID {
				return domain.Trip{}, domain.ErrNotFound
			}
			return cloneTrip(s.trip), nil
		},
		save: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if t.ID != s.trip.ID {
				return domain.Trip{}, domain.ErrNotFound
			}
			if t.Version != s.trip.Version {
				return domain.Trip{}, domain.ErrConflict
			}
			t.Version++
			s.trip = cloneTrip(t)
			s.saves++
			return cloneTrip(t), nil
		},
	}
}

func (s *tripStore) current() domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTrip(s.trip)
}

// cloneTrip deep-copies the slices a service may mutate.
func cloneTrip(t domain.Trip) domain.Trip {
	t.Members = append([]domain.Member(nil), t.Members...)
	items := make([]domain.Item, len(t.Itinerary))
	for i, it := range t.Itinerary {
		it.Votes.Yes = append([]string(nil), it.Votes.Yes...)
		it.Votes.No = append([]string(nil), it.Votes.No...)
		items[i] = it
	}
	t.Itinerary = items
	return t
}

// ---- helpers ---------------------------------------------------------------

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// sequentialIDs returns an id generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testOpts() []service.Option {
	return []service.Option{service.WithClock(fixedClock), service.WithIDGenerator(sequentialIDs())}
}

// tripWithMembers returns a trip whose members are named by ids; the first
// is the creator.
func tripWithMembers(ids ...string) domain.Trip {
	members := make([]domain.Member, 0, len(ids))
	for i, id := range ids {
		members = append(members, domain.Member{ID: id, Name: id, IsCreator: i == 0, JoinedAt: fixedNow})
	}
	return domain.Trip{
		ID:         uuid.New(),
		Name:       "Kyoto",
		InviteCode: "ABCD1234",
		Settings:   domain.Settings{Destination: "Kyoto", DaysCount: 3, StartDate: "2025-10-01"},
		Members:    members,
		Itinerary:  []domain.Item{},
		Version:    1,
	}
}

func item(id, title string, day int, start, end string) domain.Item {
	return domain.Item{
		ID:        id,
		Title:     title,
		Day:       day,
		StartTime: start,
		EndTime:   end,
		Status:    domain.StatusPending,
	}
}
