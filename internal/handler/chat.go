package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/backend/internal/aiaction"
	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// SendMessageRequest is the body of POST /trips/{tripId}/messages.
type SendMessageRequest struct {
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}

// SendMessageResponse carries the stored message and, when the assistant
// answered, its reply and what its action changed.
type SendMessageResponse struct {
	Message domain.Message  `json:"message"`
	Reply   *domain.Message `json:"reply,omitempty"`
	Action  *ActionSummary  `json:"action,omitempty"`
}

// ActionSummary reports the itinerary changes made by an assistant reply.
type ActionSummary struct {
	Kind        string `json:"kind"`
	Applied     bool   `json:"applied"`
	Added       int    `json:"added"`
	Removed     int    `json:"removed"`
	Rescheduled int    `json:"rescheduled"`
	Missed      int    `json:"missed"`
}

// ListMessages handles GET /trips/{tripId}/messages.
// Supports ?limit= (default 50, max 200).
func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}

	msgs, err := s.chat.ListMessages(r.Context(), id, domain.NewMessageLimit(limit))
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

// SendMessage handles POST /trips/{tripId}/messages.
// Assistant failures never fail the request; the reply is simply absent.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body SendMessageRequest
	if !decodeBody(w, r, &body) {
		return
	}

	res, err := s.chat.SendMessage(r.Context(), id, body.SenderID, body.Content)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	resp := SendMessageResponse{Message: res.Message, Reply: res.Reply}
	if res.Action != nil && res.Action.Kind != aiaction.KindUnknown {
		resp.Action = outcomeToSummary(*res.Action)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func outcomeToSummary(o aiaction.Outcome) *ActionSummary {
	return &ActionSummary{
		Kind:        o.Kind.String(),
		Applied:     o.Applied,
		Added:       o.Added,
		Removed:     o.Removed,
		Rescheduled: o.Rescheduled,
		Missed:      o.Missed,
	}
}
