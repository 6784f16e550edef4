// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, itinerary.go, etc.) but share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, name, creatorName string, settings domain.Settings) (domain.Trip, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Join(ctx context.Context, code, name string) (domain.Trip, domain.Member, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, patch domain.SettingsPatch) (domain.Trip, error)
}

// ItineraryServicer defines the itinerary operations the handlers depend on.
type ItineraryServicer interface {
	AddItem(ctx context.Context, tripID uuid.UUID, draft domain.ItemDraft, suggestedBy string) (domain.Item, error)
	AddBatch(ctx context.Context, tripID uuid.UUID, b domain.Batch) (domain.BatchResult, error)
	RemoveItems(ctx context.Context, tripID uuid.UUID, titles []string, days []int) (int, error)
	Vote(ctx context.Context, tripID uuid.UUID, itemID, memberID string, choice domain.Choice) (domain.VoteResult, error)
	UpdateItemTime(ctx context.Context, tripID uuid.UUID, u domain.TimeUpdate) (domain.Item, error)
	Reorder(ctx context.Context, tripID uuid.UUID, day int, ids []string) (int, error)
	ListItinerary(ctx context.Context, tripID uuid.UUID) ([]domain.Item, error)
}

// ChatServicer defines the chat operations the handlers depend on.
type ChatServicer interface {
	SendMessage(ctx context.Context, tripID uuid.UUID, senderID, content string) (service.SendResult, error)
	ListMessages(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error)
}

// ExportServicer defines the export operations the handlers depend on.
type ExportServicer interface {
	Calendar(ctx context.Context, tripID uuid.UUID) (string, error)
	Rows(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error)
}

// Server serves every API endpoint. Mount it with Routes.
type Server struct {
	trips     TripServicer
	itinerary ItineraryServicer
	chat      ChatServicer
	export    ExportServicer
	logger    *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger discards output.
func NewServer(trips TripServicer, itin ItineraryServicer, chat ChatServicer, export ExportServicer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{trips: trips, itinerary: itin, chat: chat, export: export, logger: logger}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil)
}

// Routes registers every endpoint on r. main.go mounts it on the router that
// carries the global middleware; tests call Handler for a bare router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Post("/trips", s.CreateTrip)
	r.Post("/trips/join", s.JoinTrip)
	r.Route("/trips/{tripId}", func(r chi.Router) {
		r.Get("/", s.GetTrip)
		r.Patch("/", s.UpdateTrip)

		r.Get("/itinerary", s.ListItinerary)
		r.Post("/itinerary", s.AddItem)
		r.Post("/itinerary/batch", s.AddBatch)
		r.Post("/itinerary/remove", s.RemoveItems)
		r.Post("/itinerary/reschedule", s.RescheduleItem)
		r.Post("/itinerary/reorder", s.ReorderItems)
		r.Post("/itinerary/{itemId}/vote", s.VoteItem)
		r.Get("/itinerary.ics", s.ExportCalendar)
		r.Get("/itinerary.csv", s.ExportCSV)

		r.Get("/messages", s.ListMessages)
		r.Post("/messages", s.SendMessage)
	})
}

// Handler returns a chi router with every endpoint mounted and no middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
