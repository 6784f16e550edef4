package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// ItemRequest is one proposed itinerary item.
type ItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Day         int    `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Duration    int    `json:"duration"`
}

// AddItemRequest is the body of POST /trips/{tripId}/itinerary.
type AddItemRequest struct {
	ItemRequest
	// SuggestedBy is a member id; it defaults to the assistant marker.
	SuggestedBy string `json:"suggested_by"`
}

// RescheduleRequest retimes the first item on Day whose title matches
// TitleHint.
type RescheduleRequest struct {
	TitleHint    string  `json:"title_hint"`
	Day          int     `json:"day"`
	NewStartTime *string `json:"new_start_time"`
	NewEndTime   *string `json:"new_end_time"`
}

// AddBatchRequest is the body of POST /trips/{tripId}/itinerary/batch.
// Mode is one of "none", "forced_options" or "slot_detected" (the default).
type AddBatchRequest struct {
	Items        []ItemRequest       `json:"items"`
	Mode         string              `json:"mode"`
	RemoveTitles []string            `json:"remove_titles"`
	Reschedule   []RescheduleRequest `json:"reschedule"`
}

// RemoveItemsRequest is the body of POST /trips/{tripId}/itinerary/remove.
type RemoveItemsRequest struct {
	Titles []string `json:"titles"`
	Days   []int    `json:"days"`
}

// ReorderRequest is the body of POST /trips/{tripId}/itinerary/reorder.
type ReorderRequest struct {
	Day     int      `json:"day"`
	ItemIDs []string `json:"item_ids"`
}

// VoteRequest is the body of POST /trips/{tripId}/itinerary/{itemId}/vote.
type VoteRequest struct {
	MemberID string        `json:"member_id"`
	Choice   domain.Choice `json:"choice"`
}

// CountResponse reports how many items an operation touched.
type CountResponse struct {
	Count int `json:"count"`
}

// ListItinerary handles GET /trips/{tripId}/itinerary.
func (s *Server) ListItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	items, err := s.itinerary.ListItinerary(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// AddItem handles POST /trips/{tripId}/itinerary.
// A clash with an existing item yields 409 with the clash detail.
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body AddItemRequest
	if !decodeBody(w, r, &body) {
		return
	}

	suggestedBy := body.SuggestedBy
	if suggestedBy == "" {
		suggestedBy = domain.AssistantID
	}
	item, err := s.itinerary.AddItem(r.Context(), id, requestToDraft(body.ItemRequest, 0), suggestedBy)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// AddBatch handles POST /trips/{tripId}/itinerary/batch.
func (s *Server) AddBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body AddBatchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	mode, err := parseMode(body.Mode)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}

	res, err := s.itinerary.AddBatch(r.Context(), id, domain.Batch{
		Items:        lo.Map(body.Items, requestToDraft),
		Mode:         mode,
		RemoveTitles: body.RemoveTitles,
		Reschedule:   lo.Map(body.Reschedule, requestToUpdate),
	})
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// RemoveItems handles POST /trips/{tripId}/itinerary/remove.
func (s *Server) RemoveItems(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body RemoveItemsRequest
	if !decodeBody(w, r, &body) {
		return
	}

	n, err := s.itinerary.RemoveItems(r.Context(), id, body.Titles, body.Days)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// RescheduleItem handles POST /trips/{tripId}/itinerary/reschedule.
func (s *Server) RescheduleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body RescheduleRequest
	if !decodeBody(w, r, &body) {
		return
	}

	item, err := s.itinerary.UpdateItemTime(r.Context(), id, requestToUpdate(body, 0))
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// ReorderItems handles POST /trips/{tripId}/itinerary/reorder.
func (s *Server) ReorderItems(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body ReorderRequest
	if !decodeBody(w, r, &body) {
		return
	}

	n, err := s.itinerary.Reorder(r.Context(), id, body.Day, body.ItemIDs)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// VoteItem handles POST /trips/{tripId}/itinerary/{itemId}/vote.
func (s *Server) VoteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body VoteRequest
	if !decodeBody(w, r, &body) {
		return
	}

	res, err := s.itinerary.Vote(r.Context(), id, chi.URLParam(r, "itemId"), body.MemberID, body.Choice)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// --- mapping helpers --------------------------------------------------------

func requestToDraft(it ItemRequest, _ int) domain.ItemDraft {
	return domain.ItemDraft{
		Title:       it.Title,
		Description: it.Description,
		Location:    it.Location,
		Day:         it.Day,
		StartTime:   it.StartTime,
		EndTime:     it.EndTime,
		Duration:    it.Duration,
	}
}

func requestToUpdate(u RescheduleRequest, _ int) domain.TimeUpdate {
	return domain.TimeUpdate{
		TitleHint:    u.TitleHint,
		Day:          u.Day,
		NewStartTime: u.NewStartTime,
		NewEndTime:   u.NewEndTime,
	}
}

var groupingModes = map[string]domain.GroupingMode{
	"":               domain.GroupingSlotDetected,
	"slot_detected":  domain.GroupingSlotDetected,
	"forced_options": domain.GroupingForcedOptions,
	"none":           domain.GroupingNone,
}

func parseMode(s string) (domain.GroupingMode, error) {
	m, ok := groupingModes[s]
	if !ok {
		return 0, fmt.Errorf("mode must be one of none, forced_options, slot_detected")
	}
	return m, nil
}
