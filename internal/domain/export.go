package domain

// ExportRow is one itinerary item flattened for spreadsheet export.
// Date is empty when the trip has no start date.
type ExportRow struct {
	TripName    string
	Day         int
	Date        string
	Title       string
	StartTime   string
	EndTime     string
	Duration    int
	Location    string
	Status      Status
	GroupID     string
	YesVotes    int
	NoVotes     int
	SuggestedBy string
}
