// Package repo contains all storage access for the trip planner.
// Each resource has its own file with an interface and a Postgres
// implementation; sqlite.go provides an embedded SQLite implementation of the
// same interfaces. No business logic lives here, only queries and mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolation is the Postgres SQLSTATE for a unique index collision.
const uniqueViolation = "23505"

// TripRepo stores whole trip documents. The service layer depends on this
// interface, not on a concrete driver.
type TripRepo interface {
	// Create inserts a new trip with the caller-assigned ID and returns the
	// persisted record with Version set to 1.
	// Returns domain.ErrConflict if the invite code is already taken.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a trip by its UUID.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetByInviteCode retrieves a trip by invite code, ignoring case.
	// Returns domain.ErrNotFound if no trip uses that code.
	GetByInviteCode(ctx context.Context, code string) (domain.Trip, error)

	// Save replaces the mutable parts of the stored trip (name, settings,
	// members, itinerary, updated_at) provided trip.Version still matches the
	// stored version, and returns the saved record with Version incremented.
	// Returns domain.ErrConflict when another writer saved first and
	// domain.ErrNotFound when the trip does not exist.
	Save(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
// The settings, members, and itinerary are stored as JSONB columns.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, name, invite_code, settings, members, itinerary, version, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (id, name, invite_code, settings, members, itinerary, version, created_at, updated_at)
		VALUES (@id, @name, @invite_code, @settings, @members, @itinerary, 1, @created_at, @updated_at)
		RETURNING ` + tripColumns

	args, err := tripArgs(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	args["invite_code"] = trip.InviteCode
	args["created_at"] = trip.CreatedAt

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: invite code: %w", domain.ErrConflict)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByInviteCode retrieves a trip by its invite code.
func (r *pgTripRepo) GetByInviteCode(ctx context.Context, code string) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE upper(invite_code) = upper(@code)`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByInviteCode: %w", err)
	}
	return result, nil
}

// Save performs a version-checked whole-document update.
func (r *pgTripRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET name       = @name,
		    settings   = @settings,
		    members    = @members,
		    itinerary  = @itinerary,
		    version    = version + 1,
		    updated_at = @updated_at
		WHERE id = @id AND version = @version
		RETURNING ` + tripColumns

	args, err := tripArgs(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Save: %w", err)
	}
	args["version"] = trip.Version

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, domain.ErrNotFound) {
		// Either the row is gone or its version moved on; tell them apart.
		var exists bool
		const probe = `SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`
		if perr := r.db.QueryRow(ctx, probe, pgx.NamedArgs{"id": trip.ID}).Scan(&exists); perr != nil {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Save: probe: %w", perr)
		}
		if exists {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Save: %w", domain.ErrConflict)
		}
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Save: %w", err)
	}
	return result, nil
}

// tripArgs encodes the shared named arguments of Create and Save.
// The JSONB documents are marshalled here so pgx passes them through verbatim.
func tripArgs(trip domain.Trip) (pgx.NamedArgs, error) {
	settings, err := json.Marshal(trip.Settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	members, err := json.Marshal(nonNil(trip.Members))
	if err != nil {
		return nil, fmt.Errorf("marshal members: %w", err)
	}
	items, err := json.Marshal(nonNil(trip.Itinerary))
	if err != nil {
		return nil, fmt.Errorf("marshal itinerary: %w", err)
	}
	return pgx.NamedArgs{
		"id":         trip.ID,
		"name":       trip.Name,
		"settings":   settings,
		"members":    members,
		"itinerary":  items,
		"updated_at": trip.UpdatedAt,
	}, nil
}

// nonNil turns a nil slice into an empty one so it encodes as [] not null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip, decoding the JSONB
// columns.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t                        domain.Trip
		id                       pgtype.UUID
		settings, members, items []byte
	)

	err := s.Scan(&id, &t.Name, &t.InviteCode, &settings, &members, &items, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	if err := decodeDocument(&t, settings, members, items); err != nil {
		return domain.Trip{}, err
	}
	return t, nil
}

// decodeDocument unmarshals the embedded trip collections. Shared by the
// Postgres and SQLite drivers.
func decodeDocument(t *domain.Trip, settings, members, itinerary []byte) error {
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &t.Settings); err != nil {
			return fmt.Errorf("decode settings: %w", err)
		}
	}
	t.Members = []domain.Member{}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &t.Members); err != nil {
			return fmt.Errorf("decode members: %w", err)
		}
	}
	t.Itinerary = []domain.Item{}
	if len(itinerary) > 0 {
		if err := json.Unmarshal(itinerary, &t.Itinerary); err != nil {
			return fmt.Errorf("decode itinerary: %w", err)
		}
	}
	return nil
}
