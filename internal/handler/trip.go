package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// CreateTripRequest is the body of POST /trips.
type CreateTripRequest struct {
	Name        string          `json:"name"`
	CreatorName string          `json:"creator_name"`
	Settings    domain.Settings `json:"settings"`
}

// JoinTripRequest is the body of POST /trips/join.
type JoinTripRequest struct {
	InviteCode string `json:"invite_code"`
	Name       string `json:"name"`
}

// JoinTripResponse returns the joined trip and the member just created, so
// the client can remember its own member id.
type JoinTripResponse struct {
	Trip   domain.Trip   `json:"trip"`
	Member domain.Member `json:"member"`
}

// UpdateTripRequest is the body of PATCH /trips/{tripId}. Omitted fields are
// left unchanged.
type UpdateTripRequest struct {
	Name         *string `json:"name"`
	Destination  *string `json:"destination"`
	DaysCount    *int    `json:"days_count"`
	NightsCount  *int    `json:"nights_count"`
	AgeGroup     *string `json:"age_group"`
	StartDate    *string `json:"start_date"`
	Airline      *string `json:"airline"`
	FlightNumber *string `json:"flight_number"`
	HotelName    *string `json:"hotel_name"`
	HotelAddress *string `json:"hotel_address"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.trips.Create(r.Context(), body.Name, body.CreatorName, body.Settings)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// JoinTrip handles POST /trips/join.
func (s *Server) JoinTrip(w http.ResponseWriter, r *http.Request) {
	var body JoinTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	trip, member, err := s.trips.Join(r.Context(), body.InviteCode, body.Name)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, JoinTripResponse{Trip: trip, Member: member})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PATCH /trips/{tripId}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.trips.UpdateSettings(r.Context(), id, requestToPatch(body))
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// --- mapping helpers --------------------------------------------------------

func requestToPatch(body UpdateTripRequest) domain.SettingsPatch {
	return domain.SettingsPatch{
		Name:         body.Name,
		Destination:  body.Destination,
		DaysCount:    body.DaysCount,
		NightsCount:  body.NightsCount,
		AgeGroup:     body.AgeGroup,
		StartDate:    body.StartDate,
		Airline:      body.Airline,
		FlightNumber: body.FlightNumber,
		HotelName:    body.HotelName,
		HotelAddress: body.HotelAddress,
	}
}
