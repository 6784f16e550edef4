package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/handler"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create         func(ctx context.Context, name, creatorName string, settings domain.Settings) (domain.Trip, error)
	get            func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	join           func(ctx context.Context, code, name string) (domain.Trip, domain.Member, error)
	updateSettings func(ctx context.Context, id uuid.UUID, patch domain.SettingsPatch) (domain.Trip, error)
}

func (m *mockTripServicer) Create(ctx context.Context, name, creatorName string, settings domain.Settings) (domain.Trip, error) {
	return m.create(ctx, name, creatorName, settings)
}
func (m *mockTripServicer) Get(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, id)
}
func (m *mockTripServicer) Join(ctx context.Context, code, name string) (domain.Trip, domain.Member, error) {
	return m.join(ctx, code, name)
}
func (m *mockTripServicer) UpdateSettings(ctx context.Context, id uuid.UUID, patch domain.SettingsPatch) (domain.Trip, error) {
	return m.updateSettings(ctx, id, patch)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockItineraryServicer is a test double for handler.ItineraryServicer.
type mockItineraryServicer struct {
	addItem        func(ctx context.Context, tripID uuid.UUID, draft domain.ItemDraft, suggestedBy string) (domain.Item, error)
	addBatch       func(ctx context.Context, tripID uuid.UUID, b domain.Batch) (domain.BatchResult, error)
	removeItems    func(ctx context.Context, tripID uuid.UUID, titles []string, days []int) (int, error)
	vote           func(ctx context.Context, tripID uuid.UUID, itemID, memberID string, choice domain.Choice) (domain.VoteResult, error)
	updateItemTime func(ctx context.Context, tripID uuid.UUID, u domain.TimeUpdate) (domain.Item, error)
	reorder        func(ctx context.Context, tripID uuid.UUID, day int, ids []string) (int, error)
	listItinerary  func(ctx context.Context, tripID uuid.UUID) ([]domain.Item, error)
}

func (m *mockItineraryServicer) AddItem(ctx context.Context, tripID uuid.UUID, draft domain.ItemDraft, suggestedBy string) (domain.Item, error) {
	return m.addItem(ctx, tripID, draft, suggestedBy)
}
func (m *mockItineraryServicer) AddBatch(ctx context.Context, tripID uuid.UUID, b domain.Batch) (domain.BatchResult, error) {
	return m.addBatch(ctx, tripID, b)
}
func (m *mockItineraryServicer) RemoveItems(ctx context.Context, tripID uuid.UUID, titles []string, days []int) (int, error) {
	return m.removeItems(ctx, tripID, titles, days)
}
func (m *mockItineraryServicer) Vote(ctx context.Context, tripID uuid.UUID, itemID, memberID string, choice domain.Choice) (domain.VoteResult, error) {
	return m.vote(ctx, tripID, itemID, memberID, choice)
}
func (m *mockItineraryServicer) UpdateItemTime(ctx context.Context, tripID uuid.UUID, u domain.TimeUpdate) (domain.Item, error) {
	return m.updateItemTime(ctx, tripID, u)
}
func (m *mockItineraryServicer) Reorder(ctx context.Context, tripID uuid.UUID, day int, ids []string) (int, error) {
	return m.reorder(ctx, tripID, day, ids)
}
func (m *mockItineraryServicer) ListItinerary(ctx context.Context, tripID uuid.UUID) ([]domain.Item, error) {
	return m.listItinerary(ctx, tripID)
}

var _ handler.ItineraryServicer = (*mockItineraryServicer)(nil)

// mockChatServicer is a test double for handler.ChatServicer.
type mockChatServicer struct {
	sendMessage  func(ctx context.Context, tripID uuid.UUID, senderID, content string) (service.SendResult, error)
	listMessages func(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error)
}

func (m *mockChatServicer) SendMessage(ctx context.Context, tripID uuid.UUID, senderID, content string) (service.SendResult, error) {
	return m.sendMessage(ctx, tripID, senderID, content)
}
func (m *mockChatServicer) ListMessages(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error) {
	return m.listMessages(ctx, tripID, limit)
}

var _ handler.ChatServicer = (*mockChatServicer)(nil)

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	calendar func(ctx context.Context, tripID uuid.UUID) (string, error)
	rows     func(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Calendar(ctx context.Context, tripID uuid.UUID) (string, error) {
	return m.calendar(ctx, tripID)
}
func (m *mockExportServicer) Rows(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error) {
	return m.rows(ctx, tripID)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// deps groups the mocks a test wires in; unset fields stay nil.
type deps struct {
	trips     *mockTripServicer
	itinerary *mockItineraryServicer
	chat      *mockChatServicer
	export    *mockExportServicer
}

// newHTTPHandler wires a Server with the given mocks into a chi router.
// This mirrors how main.go mounts the routes in production.
func newHTTPHandler(d deps) http.Handler {
	var (
		trips handler.TripServicer
		itin  handler.ItineraryServicer
		chat  handler.ChatServicer
		exp   handler.ExportServicer
	)
	if d.trips != nil {
		trips = d.trips
	}
	if d.itinerary != nil {
		itin = d.itinerary
	}
	if d.chat != nil {
		chat = d.chat
	}
	if d.export != nil {
		exp = d.export
	}
	return handler.NewServer(trips, itin, chat, exp, nil).Handler()
}

var fixtureTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:         uuid.New(),
		Name:       "Kyoto in autumn",
		InviteCode: "ABCD1234",
		Settings:   domain.Settings{Destination: "Kyoto", DaysCount: 3, StartDate: "2025-10-01"},
		Members: []domain.Member{
			{ID: "m-1", Name: "Ana", IsCreator: true, JoinedAt: fixtureTime},
		},
		Itinerary: []domain.Item{},
		Version:   1,
		CreatedAt: fixtureTime,
		UpdatedAt: fixtureTime,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
