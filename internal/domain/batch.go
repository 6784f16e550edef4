package domain

// GroupingMode selects how AddBatch assigns group ids.
type GroupingMode int

const (
	// GroupingNone keeps every item's own times and assigns no group.
	GroupingNone GroupingMode = iota
	// GroupingForcedOptions coerces the whole batch into the first item's
	// time window and puts every item into one group.
	GroupingForcedOptions
	// GroupingSlotDetected groups items that share an exact
	// (day, start, end) slot with at least one other item.
	GroupingSlotDetected
)

// TimeUpdate retimes the first item on Day whose title matches TitleHint.
// Nil fields are left untouched.
type TimeUpdate struct {
	TitleHint    string
	Day          int
	NewStartTime *string
	NewEndTime   *string
}

// Batch is a set of items proposed together, plus the removals and
// reschedules that accompany them.
type Batch struct {
	Items        []ItemDraft
	Mode         GroupingMode
	RemoveTitles []string
	Reschedule   []TimeUpdate
}

// BatchResult counts what AddBatch changed.
type BatchResult struct {
	Added       int    `json:"added"`
	Removed     int    `json:"removed"`
	Rescheduled int    `json:"rescheduled"`
	Items       []Item `json:"items"`
}

// VoteResult is the outcome of a single vote.
type VoteResult struct {
	Item         Item   `json:"item"`
	Status       Status `json:"status"`
	YesCount     int    `json:"yes_count"`
	NoCount      int    `json:"no_count"`
	TotalMembers int    `json:"total_members"`
}
