package repo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// tripRow is the SQLite shape of a trip. The embedded collections are kept as
// JSON blobs, mirroring the JSONB columns of the Postgres schema.
type tripRow struct {
	ID         string `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	InviteCode string `gorm:"not null"`
	// InviteKey is the upper-cased code; it carries the unique index so
	// lookups ignore case.
	InviteKey string    `gorm:"not null;uniqueIndex"`
	Settings  []byte    `gorm:"not null"`
	Members   []byte    `gorm:"not null"`
	Itinerary []byte    `gorm:"not null"`
	Version   int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (tripRow) TableName() string { return "trips" }

// messageRow is the SQLite shape of a chat message. Seq is the rowid alias
// and gives the log its append order.
type messageRow struct {
	Seq         int64     `gorm:"primaryKey;autoIncrement"`
	ID          string    `gorm:"not null;uniqueIndex"`
	TripID      string    `gorm:"not null;index"`
	SenderID    string    `gorm:"not null"`
	SenderName  string    `gorm:"not null"`
	Content     string    `gorm:"not null"`
	IsAIMention bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
}

func (messageRow) TableName() string { return "messages" }

// OpenSQLite opens (creating if needed) the SQLite database at path and
// migrates its schema. Pass ":memory:" for a throwaway database; the pool is
// pinned to one connection so every caller sees the same in-memory schema.
func OpenSQLite(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&tripRow{}, &messageRow{}); err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: migrate: %w", err)
	}
	return gdb, nil
}

// sqliteTripRepo is the SQLite implementation of TripRepo.
type sqliteTripRepo struct {
	db *gorm.DB
}

// NewSQLiteTripRepo constructs a TripRepo backed by a database from OpenSQLite.
func NewSQLiteTripRepo(db *gorm.DB) TripRepo {
	return &sqliteTripRepo{db: db}
}

func (r *sqliteTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	args, err := tripArgs(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.Create: %w", err)
	}
	row := tripRow{
		ID:         trip.ID.String(),
		Name:       trip.Name,
		InviteCode: trip.InviteCode,
		InviteKey:  strings.ToUpper(trip.InviteCode),
		Settings:   args["settings"].([]byte),
		Members:    args["members"].([]byte),
		Itinerary:  args["itinerary"].([]byte),
		Version:    1,
		CreatedAt:  trip.CreatedAt,
		UpdatedAt:  trip.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isSQLiteUnique(err) {
			return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.Create: invite code: %w", domain.ErrConflict)
		}
		return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.Create: %w", err)
	}
	return rowToTrip(row)
}

func (r *sqliteTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	var row tripRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id.String()).Error; err != nil {
		return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.GetByID: %w", notFound(err))
	}
	return rowToTrip(row)
}

func (r *sqliteTripRepo) GetByInviteCode(ctx context.Context, code string) (domain.Trip, error) {
	var row tripRow
	err := r.db.WithContext(ctx).First(&row, "invite_key = ?", strings.ToUpper(code)).Error
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.GetByInviteCode: %w", notFound(err))
	}
	return rowToTrip(row)
}

func (r *sqliteTripRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	args, err := tripArgs(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.Save: %w", err)
	}
	res := r.db.WithContext(ctx).Model(&tripRow{}).
		Where("id = ? AND version = ?", trip.ID.String(), trip.Version).
		Updates(map[string]any{
			"name":       trip.Name,
			"settings":   args["settings"],
			"members":    args["members"],
			"itinerary":  args["itinerary"],
			"version":    gorm.Expr("version + 1"),
			"updated_at": trip.UpdatedAt,
		})
	if res.Error != nil {
		return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.Save: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&tripRow{}).Where("id = ?", trip.ID.String()).Count(&n).Error; err != nil {
			return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.Save: probe: %w", err)
		}
		if n == 0 {
			return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.Save: %w", domain.ErrNotFound)
		}
		return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.Save: %w", domain.ErrConflict)
	}
	saved, err := r.GetByID(ctx, trip.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.SQLiteTripRepo.Save: reload: %w", err)
	}
	return saved, nil
}

func rowToTrip(row tripRow) (domain.Trip, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("parse trip id: %w", err)
	}
	t := domain.Trip{
		ID:         id,
		Name:       row.Name,
		InviteCode: row.InviteCode,
		Version:    row.Version,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if err := decodeDocument(&t, row.Settings, row.Members, row.Itinerary); err != nil {
		return domain.Trip{}, err
	}
	return t, nil
}

// sqliteMessageRepo is the SQLite implementation of MessageRepo.
type sqliteMessageRepo struct {
	db *gorm.DB
}

// NewSQLiteMessageRepo constructs a MessageRepo backed by a database from OpenSQLite.
func NewSQLiteMessageRepo(db *gorm.DB) MessageRepo {
	return &sqliteMessageRepo{db: db}
}

func (r *sqliteMessageRepo) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	row := messageRow{
		ID:          msg.ID.String(),
		TripID:      msg.TripID.String(),
		SenderID:    msg.SenderID,
		SenderName:  msg.SenderName,
		Content:     msg.Content,
		IsAIMention: msg.IsAIMention,
		CreatedAt:   msg.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Message{}, fmt.Errorf("repo.SQLiteMessageRepo.Append: %w", err)
	}
	return rowToMessage(row)
}

func (r *sqliteMessageRepo) ListByTrip(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error) {
	var rows []messageRow
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID.String()).
		Order("seq DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteMessageRepo.ListByTrip: %w", err)
	}
	slices.Reverse(rows)

	msgs := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		m, err := rowToMessage(row)
		if err != nil {
			return nil, fmt.Errorf("repo.SQLiteMessageRepo.ListByTrip: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func rowToMessage(row messageRow) (domain.Message, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("parse message id: %w", err)
	}
	tripID, err := uuid.Parse(row.TripID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("parse trip id: %w", err)
	}
	return domain.Message{
		ID:          id,
		TripID:      tripID,
		SenderID:    row.SenderID,
		SenderName:  row.SenderName,
		Content:     row.Content,
		IsAIMention: row.IsAIMention,
		CreatedAt:   row.CreatedAt,
	}, nil
}

// notFound maps gorm's missing-row error onto domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func isSQLiteUnique(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
