package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/pkordes/trip-planner/backend/internal/aiaction"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// AssistantName is the sender name shown on assistant replies.
const AssistantName = "AI Assistant"

// Generator produces the assistant's reply to query given the trip and the
// recent chat history. Any failure is reported as domain.ErrUpstreamUnavailable.
type Generator interface {
	Generate(ctx context.Context, query string, trip domain.Trip, history []domain.Message) (string, error)
}

// ChatConfig tunes the assistant hand-off.
type ChatConfig struct {
	// Trigger is the token that summons the assistant, matched ignoring case.
	Trigger string
	// HistoryLimit is how many recent messages are sent as context.
	HistoryLimit int
	// Timeout bounds a single Generate call.
	Timeout time.Duration
}

// SendResult is what SendMessage stored.
type SendResult struct {
	Message domain.Message
	// Reply is the assistant's message, nil when it was not mentioned or
	// could not answer.
	Reply  *domain.Message
	Action *aiaction.Outcome
}

// ChatService appends chat messages and runs the assistant when a message
// mentions it. Assistant failures never fail the sender's request.
type ChatService struct {
	trips      repo.TripRepo
	messages   repo.MessageRepo
	reconciler aiaction.Reconciler
	gen        Generator
	cfg        ChatConfig
	trigger    *regexp.Regexp
	logger     *slog.Logger
	env
}

// NewChatService constructs a ChatService. gen may be nil, in which case
// mentions are stored but never answered.
func NewChatService(trips repo.TripRepo, messages repo.MessageRepo, reconciler aiaction.Reconciler, gen Generator, cfg ChatConfig, logger *slog.Logger, opts ...Option) *ChatService {
	if cfg.Trigger == "" {
		cfg.Trigger = "@ai"
	}
	if cfg.HistoryLimit < 1 {
		cfg.HistoryLimit = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &ChatService{
		trips:      trips,
		messages:   messages,
		reconciler: reconciler,
		gen:        gen,
		cfg:        cfg,
		trigger:    regexp.MustCompile(`(?i)` + regexp.QuoteMeta(cfg.Trigger)),
		logger:     logger,
		env:        newEnv(opts),
	}
}

// SendMessage stores content from senderID and, when it mentions the
// assistant, stores the assistant's reply after applying any itinerary
// action it carries.
// Returns domain.ErrNotFound if the trip or sender does not exist and
// domain.ErrValidation for blank content.
func (s *ChatService) SendMessage(ctx context.Context, tripID uuid.UUID, senderID, content string) (SendResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return SendResult{}, fmt.Errorf("service.ChatService.SendMessage: %w: content is required", domain.ErrValidation)
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return SendResult{}, fmt.Errorf("service.ChatService.SendMessage: %w", err)
	}
	sender, ok := trip.Member(senderID)
	if !ok {
		return SendResult{}, fmt.Errorf("service.ChatService.SendMessage: member %q: %w", senderID, domain.ErrNotFound)
	}

	msg, err := s.messages.Append(ctx, domain.Message{
		ID:          uuid.New(),
		TripID:      tripID,
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		Content:     content,
		IsAIMention: s.trigger.MatchString(content),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("service.ChatService.SendMessage: %w", err)
	}

	res := SendResult{Message: msg}
	if !msg.IsAIMention || s.gen == nil {
		return res, nil
	}

	reply, outcome, ok := s.ask(ctx, trip, msg)
	if !ok {
		return res, nil
	}

	stored, err := s.messages.Append(ctx, domain.Message{
		ID:         uuid.New(),
		TripID:     tripID,
		SenderID:   domain.AssistantID,
		SenderName: AssistantName,
		Content:    reply,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("service.ChatService.SendMessage: store reply: %w", err)
	}
	res.Reply = &stored
	res.Action = &outcome
	return res, nil
}

// ask runs the assistant for msg. ok is false when no reply should be
// stored; the cause has been logged.
func (s *ChatService) ask(ctx context.Context, trip domain.Trip, msg domain.Message) (string, aiaction.Outcome, bool) {
	log := s.logger.With("trip_id", trip.ID.String(), "message_id", msg.ID.String())

	history, err := s.messages.ListByTrip(ctx, trip.ID, s.cfg.HistoryLimit+1)
	if err != nil {
		log.Warn("chat: load history failed", "err", err)
		return "", aiaction.Outcome{}, false
	}
	history = lo.Reject(history, func(m domain.Message, _ int) bool { return m.ID == msg.ID })
	if len(history) > s.cfg.HistoryLimit {
		history = history[len(history)-s.cfg.HistoryLimit:]
	}

	query := strings.TrimSpace(s.trigger.ReplaceAllString(msg.Content, ""))
	if query == "" {
		query = msg.Content
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	text, err := s.gen.Generate(genCtx, query, trip, history)
	if err != nil {
		log.Warn("chat: assistant unavailable", "err", err)
		return "", aiaction.Outcome{}, false
	}

	outcome, err := aiaction.Apply(ctx, s.reconciler, trip.ID, text)
	if err != nil {
		log.Warn("chat: assistant action not applied", "action", outcome.Kind.String(), "err", err)
	} else if outcome.Applied {
		log.Info("chat: assistant action applied",
			"action", outcome.Kind.String(),
			"added", outcome.Added,
			"removed", outcome.Removed,
			"rescheduled", outcome.Rescheduled,
		)
	}
	return outcome.Text, outcome, true
}

// ListMessages returns the trip's most recent messages in chronological
// order. limit is clamped to [1, domain.MaxMessageLimit], with values below 1
// meaning domain.DefaultMessageLimit.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *ChatService) ListMessages(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.ChatService.ListMessages: %w", err)
	}
	msgs, err := s.messages.ListByTrip(ctx, tripID, domain.NewMessageLimit(&limit))
	if err != nil {
		return nil, fmt.Errorf("service.ChatService.ListMessages: %w", err)
	}
	if msgs == nil {
		return []domain.Message{}, nil
	}
	return msgs, nil
}
