package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the voting state of an itinerary item.
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
)

var statusNames = map[Status]string{
	StatusPending:  "pending",
	StatusApproved: "approved",
	StatusRejected: "rejected",
}

// String returns the wire name of the status.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus maps a wire name back to a Status.
func ParseStatus(s string) (Status, error) {
	for k, v := range statusNames {
		if v == s {
			return k, nil
		}
	}
	return StatusPending, fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// MarshalText encodes the status as its wire name so the stored document
// and API stay readable.
func (s Status) MarshalText() ([]byte, error) {
	n, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("domain: invalid status %d", int(s))
	}
	return []byte(n), nil
}

// UnmarshalText decodes a wire name.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Terminal reports whether the status is approved or rejected.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Choice is a member's vote on an item.
type Choice string

const (
	ChoiceYes Choice = "yes"
	ChoiceNo  Choice = "no"
)

// Valid reports whether c is yes or no.
func (c Choice) Valid() bool {
	return c == ChoiceYes || c == ChoiceNo
}

// Votes holds two disjoint sets of member ids.
type Votes struct {
	Yes []string `json:"yes"`
	No  []string `json:"no"`
}

// MarshalJSON always emits arrays, never null, for empty vote sets.
func (v Votes) MarshalJSON() ([]byte, error) {
	type plain Votes
	out := plain(v)
	if out.Yes == nil {
		out.Yes = []string{}
	}
	if out.No == nil {
		out.No = []string{}
	}
	return json.Marshal(out)
}

// Item is a single candidate or confirmed activity on the itinerary.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Day         int    `json:"day"`
	// StartTime and EndTime are zero-padded "15:04" strings, empty for TBD.
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Duration  int    `json:"duration,omitempty"` // minutes
	Order     *int   `json:"order,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
	Votes     Votes  `json:"votes"`
	Status    Status `json:"status"`
	// SuggestedBy is AssistantID or a member id.
	SuggestedBy string    `json:"suggested_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Timed reports whether both ends of the item's interval are known.
func (it Item) Timed() bool {
	return it.StartTime != "" && it.EndTime != ""
}

// ItemDraft is the caller-supplied part of a new item.
type ItemDraft struct {
	Title       string
	Description string
	Location    string
	Day         int
	StartTime   string
	EndTime     string
	Duration    int
}
