package repo_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/testutil"
)

// store is one storage driver under test. Every repo test runs against each
// store so the Postgres and SQLite drivers stay behaviourally identical.
type store struct {
	name string
	open func(t *testing.T) (repo.TripRepo, repo.MessageRepo)
}

func stores() []store {
	return []store{
		{name: "postgres", open: openPostgres},
		{name: "sqlite", open: openSQLite},
	}
}

// openPostgres returns repos backed by a transaction that is rolled back when
// the test finishes. Skips when TEST_DATABASE_URL is not set.
func openPostgres(t *testing.T) (repo.TripRepo, repo.MessageRepo) {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")
	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewTripRepo(tx), repo.NewMessageRepo(tx)
}

// openSQLite returns repos backed by a fresh in-memory database.
func openSQLite(t *testing.T) (repo.TripRepo, repo.MessageRepo) {
	t.Helper()
	db := testutil.NewSQLite(t)
	return repo.NewSQLiteTripRepo(db), repo.NewSQLiteMessageRepo(db)
}

var (
	fixtureCreated = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	fixtureUpdated = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
)

// tripFixture returns a trip with one creator and one item. Callers can
// override fields after calling it.
func tripFixture() domain.Trip {
	order := 0
	return domain.Trip{
		ID:         uuid.New(),
		Name:       "Lisbon Long Weekend",
		InviteCode: strings.ToUpper(uuid.NewString()[:8]),
		Settings: domain.Settings{
			Destination: "Lisbon",
			DaysCount:   3,
			NightsCount: 2,
			StartDate:   "2025-07-04",
		},
		Members: []domain.Member{
			{ID: "m-ana", Name: "Ana", IsCreator: true, JoinedAt: fixtureCreated},
		},
		Itinerary: []domain.Item{
			{
				ID:          "i-tram",
				Title:       "Tram 28",
				Day:         1,
				StartTime:   "10:00",
				EndTime:     "11:30",
				Duration:    90,
				Order:       &order,
				Votes:       domain.Votes{Yes: []string{"m-ana"}},
				Status:      domain.StatusApproved,
				SuggestedBy: "m-ana",
				CreatedAt:   fixtureCreated,
			},
		},
		CreatedAt: fixtureCreated,
		UpdatedAt: fixtureCreated,
	}
}

func messageFixture(tripID uuid.UUID, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		TripID:     tripID,
		SenderID:   "m-ana",
		SenderName: "Ana",
		Content:    content,
		CreatedAt:  at,
	}
}
