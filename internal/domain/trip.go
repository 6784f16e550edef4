// Package domain contains the core data types for the trip planner.
// This package depends only on uuid and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssistantID is the sender and suggester marker used for anything the AI
// assistant produced. It never collides with a member id.
const AssistantID = "ai"

// Trip is the top-level aggregate. It owns its members and itinerary: both are
// stored inside the trip document and have no lifecycle of their own.
type Trip struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	Settings   Settings  `json:"settings"`
	Members    []Member  `json:"members"`
	Itinerary  []Item    `json:"itinerary"`
	// Version increments on every successful save. Save rejects a trip whose
	// Version no longer matches the stored row.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settings holds the owner-editable planning parameters of a trip.
type Settings struct {
	Destination string `json:"destination"`
	DaysCount   int    `json:"days_count"`
	NightsCount int    `json:"nights_count"`
	AgeGroup    string `json:"age_group,omitempty"`
	// StartDate is a "2006-01-02" date; empty when the dates are not fixed yet.
	StartDate    string `json:"start_date,omitempty"`
	Airline      string `json:"airline,omitempty"`
	FlightNumber string `json:"flight_number,omitempty"`
	HotelName    string `json:"hotel_name,omitempty"`
	HotelAddress string `json:"hotel_address,omitempty"`
}

// SettingsPatch carries a partial settings update. Nil fields are left as-is.
type SettingsPatch struct {
	Name         *string
	Destination  *string
	DaysCount    *int
	NightsCount  *int
	AgeGroup     *string
	StartDate    *string
	Airline      *string
	FlightNumber *string
	HotelName    *string
	HotelAddress *string
}

// Member is a participant of a trip. The first member is always the creator.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsCreator bool      `json:"is_creator"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Member returns the member with the given id and whether it was found.
func (t Trip) Member(id string) (Member, bool) {
	for _, m := range t.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// ItemIndex returns the position of the item with the given id, or -1.
func (t Trip) ItemIndex(id string) int {
	for i, it := range t.Itinerary {
		if it.ID == id {
			return i
		}
	}
	return -1
}
