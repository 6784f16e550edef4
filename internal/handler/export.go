package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_name", "day", "date", "title", "start_time", "end_time",
	"duration_minutes", "location", "status", "group_id",
	"yes_votes", "no_votes", "suggested_by",
}

// ExportCalendar handles GET /trips/{tripId}/itinerary.ics.
// A trip without a start date cannot be placed on a calendar and yields 422.
func (s *Server) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	doc, err := s.export.Calendar(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.ics"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write([]byte(doc))
}

// ExportCSV handles GET /trips/{tripId}/itinerary.csv.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	rows, err := s.export.Rows(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "trip")
		return
	}

	buf := buildCSV(rows)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	buf.WriteTo(w)
}

// buildCSV encodes rows as CSV with a header line.
func buildCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(rowToCSVRecord(r))
	}
	w.Flush()
	return &buf
}

// rowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// A zero duration is written as an empty cell.
func rowToCSVRecord(r domain.ExportRow) []string {
	duration := ""
	if r.Duration > 0 {
		duration = strconv.Itoa(r.Duration)
	}
	return []string{
		r.TripName,
		strconv.Itoa(r.Day),
		r.Date,
		r.Title,
		r.StartTime,
		r.EndTime,
		duration,
		r.Location,
		r.Status.String(),
		r.GroupID,
		strconv.Itoa(r.YesVotes),
		strconv.Itoa(r.NoVotes),
		r.SuggestedBy,
	}
}
