package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// MessageRepo stores the append-only chat log of each trip.
type MessageRepo interface {
	// Append inserts a message with its caller-assigned ID and returns the
	// persisted record.
	Append(ctx context.Context, msg domain.Message) (domain.Message, error)

	// ListByTrip returns the most recent limit messages of a trip in
	// chronological (append) order.
	ListByTrip(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error)
}

// pgMessageRepo is the Postgres implementation of MessageRepo.
type pgMessageRepo struct {
	db db
}

// NewMessageRepo constructs a MessageRepo backed by the provided db connection.
func NewMessageRepo(db db) MessageRepo {
	return &pgMessageRepo{db: db}
}

const messageColumns = `id, trip_id, sender_id, sender_name, content, is_ai_mention, created_at`

// Append inserts a message row.
func (r *pgMessageRepo) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	const q = `
		INSERT INTO messages (id, trip_id, sender_id, sender_name, content, is_ai_mention, created_at)
		VALUES (@id, @trip_id, @sender_id, @sender_name, @content, @is_ai_mention, @created_at)
		RETURNING ` + messageColumns

	args := pgx.NamedArgs{
		"id":            msg.ID,
		"trip_id":       msg.TripID,
		"sender_id":     msg.SenderID,
		"sender_name":   msg.SenderName,
		"content":       msg.Content,
		"is_ai_mention": msg.IsAIMention,
		"created_at":    msg.CreatedAt,
	}

	result, err := scanMessage(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Message{}, fmt.Errorf("repo.MessageRepo.Append: %w", err)
	}
	return result, nil
}

// ListByTrip selects the newest limit rows and flips them back to ascending
// order.
func (r *pgMessageRepo) ListByTrip(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error) {
	const q = `
		SELECT ` + messageColumns + `
		FROM (
			SELECT ` + messageColumns + `, seq
			FROM messages
			WHERE trip_id = @trip_id
			ORDER BY seq DESC
			LIMIT @limit
		) recent
		ORDER BY seq ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.MessageRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	msgs := []domain.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.MessageRepo.ListByTrip: scan: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MessageRepo.ListByTrip: rows: %w", err)
	}
	return msgs, nil
}

// scanMessage maps a single database row into a domain.Message.
func scanMessage(s scanner) (domain.Message, error) {
	var (
		m      domain.Message
		id     pgtype.UUID
		tripID pgtype.UUID
	)
	err := s.Scan(&id, &tripID, &m.SenderID, &m.SenderName, &m.Content, &m.IsAIMention, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Message{}, domain.ErrNotFound
		}
		return domain.Message{}, err
	}
	m.ID = uuid.UUID(id.Bytes)
	m.TripID = uuid.UUID(tripID.Bytes)
	return m, nil
}
