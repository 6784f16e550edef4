// Package aiaction extracts structured itinerary actions embedded in the
// assistant's reply text and applies them through the itinerary reconciler.
//
// A reply carries at most one action, either as a fenced ```json block or as
// a bare object starting with {"action": "<kind>"}. Replies without a
// recognised action pass through untouched.
package aiaction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Kind is the closed set of actions the assistant may request.
type Kind int

const (
	// KindUnknown is any action name this build does not understand.
	// Such payloads are ignored.
	KindUnknown Kind = iota
	KindAddItems
	KindSmartSchedule
	KindUpdateItems
)

var kindNames = map[Kind]string{
	KindAddItems:      "add_items",
	KindSmartSchedule: "smart_schedule",
	KindUpdateItems:   "update_items",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind maps a wire action name to its Kind, or KindUnknown.
func ParseKind(s string) Kind {
	for k, n := range kindNames {
		if n == s {
			return k
		}
	}
	return KindUnknown
}

// Action is a decoded assistant payload.
type Action struct {
	Kind Kind
	// Items holds add_items.items or smart_schedule.newItems.
	Items []domain.ItemDraft
	// IsOptions marks a smart_schedule batch as mutually exclusive options.
	IsOptions  bool
	Remove     []string
	Reschedule []domain.TimeUpdate
	// Updates holds update_items.updates.
	Updates []domain.TimeUpdate
}

// Span is the byte range [Start, End) of the reply occupied by the payload,
// including any code fence.
type Span struct {
	Start, End int
}

var (
	fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	bareAction = regexp.MustCompile(`\{\s*"action"\s*:\s*"(?:add_items|smart_schedule|update_items)"`)
)

// Extract locates the payload in text. A fenced json block wins over a bare
// object; a bare object runs from its opening brace to the last closing brace
// in text.
func Extract(text string) (payload string, span Span, ok bool) {
	if m := fencedJSON.FindStringSubmatchIndex(text); m != nil {
		return strings.TrimSpace(text[m[2]:m[3]]), Span{Start: m[0], End: m[1]}, true
	}
	loc := bareAction.FindStringIndex(text)
	if loc == nil {
		return "", Span{}, false
	}
	end := strings.LastIndex(text, "}")
	if end < loc[0] {
		return "", Span{}, false
	}
	return text[loc[0] : end+1], Span{Start: loc[0], End: end + 1}, true
}

// Parse extracts and decodes the action in text. ok is false when text holds
// no payload. A payload that is not valid JSON yields domain.ErrMalformedAction;
// a valid payload naming an unknown action decodes with KindUnknown.
func Parse(text string) (a Action, span Span, ok bool, err error) {
	payload, span, ok := Extract(text)
	if !ok {
		return Action{}, Span{}, false, nil
	}

	var w wirePayload
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return Action{}, span, true, fmt.Errorf("%w: %v", domain.ErrMalformedAction, err)
	}

	a = Action{Kind: ParseKind(w.Action)}
	switch a.Kind {
	case KindAddItems:
		a.Items = drafts(w.Items)
	case KindSmartSchedule:
		a.Items = drafts(w.NewItems)
		a.IsOptions = w.IsOptions
		a.Remove = w.ItemsToRemove
		a.Reschedule = updates(w.Reschedule)
	case KindUpdateItems:
		a.Updates = updates(w.Updates)
	}
	return a, span, true, nil
}

type wireItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Day         flexInt `json:"day"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Duration    flexInt `json:"duration"`
}

type wireUpdate struct {
	OriginalTitle string  `json:"originalTitle"`
	Day           flexInt `json:"day"`
	NewStartTime  *string `json:"newStartTime"`
	NewEndTime    *string `json:"newEndTime"`
}

type wirePayload struct {
	Action        string       `json:"action"`
	Items         []wireItem   `json:"items"`
	IsOptions     bool         `json:"isOptions"`
	NewItems      []wireItem   `json:"newItems"`
	ItemsToRemove []string     `json:"itemsToRemove"`
	Reschedule    []wireUpdate `json:"reschedule"`
	Updates       []wireUpdate `json:"updates"`
}

// flexInt decodes a JSON number or a numeric string. null decodes to 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = flexInt(n)
	return nil
}

func drafts(in []wireItem) []domain.ItemDraft {
	out := make([]domain.ItemDraft, 0, len(in))
	for _, w := range in {
		out = append(out, domain.ItemDraft{
			Title:       w.Title,
			Description: w.Description,
			Location:    w.Location,
			Day:         int(w.Day),
			StartTime:   w.StartTime,
			EndTime:     w.EndTime,
			Duration:    int(w.Duration),
		})
	}
	return out
}

func updates(in []wireUpdate) []domain.TimeUpdate {
	out := make([]domain.TimeUpdate, 0, len(in))
	for _, w := range in {
		out = append(out, domain.TimeUpdate{
			TitleHint:    w.OriginalTitle,
			Day:          int(w.Day),
			NewStartTime: w.NewStartTime,
			NewEndTime:   w.NewEndTime,
		})
	}
	return out
}
