package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/handler"
)

// ---- POST /trips -----------------------------------------------------------

func TestCreateTrip_201(t *testing.T) {
	fixture := tripFixture()
	var gotName, gotCreator string
	var gotSettings domain.Settings
	svc := &mockTripServicer{
		create: func(_ context.Context, name, creatorName string, settings domain.Settings) (domain.Trip, error) {
			gotName, gotCreator, gotSettings = name, creatorName, settings
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"name":         "Kyoto in autumn",
		"creator_name": "Ana",
		"settings":     map[string]any{"destination": "Kyoto", "days_count": 3, "start_date": "2025-10-01"},
	})
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Kyoto in autumn", gotName)
	assert.Equal(t, "Ana", gotCreator)
	assert.Equal(t, domain.Settings{Destination: "Kyoto", DaysCount: 3, StartDate: "2025-10-01"}, gotSettings)

	var resp domain.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	assert.Equal(t, "ABCD1234", resp.InviteCode)
}

func TestCreateTrip_422_ValidationError(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _, _ string, _ domain.Settings) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: destination is required", domain.ErrValidation)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trips", jsonBody(t, map[string]any{"name": "x", "creator_name": "y"}))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec.Body)
	assert.Equal(t, "validation_error", resp.Error.Code)
	assert.Equal(t, "destination is required", resp.Error.Message)
}

func TestCreateTrip_422_MalformedBody(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _, _ string, _ domain.Settings) (domain.Trip, error) {
			t.Fatal("service must not be called for a malformed body")
			return domain.Trip{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(`{"name":`))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "request body must be valid JSON", decodeError(t, rec.Body).Error.Message)
}

func TestCreateTrip_422_MissingBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/trips", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: &mockTripServicer{}}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "request body is required", decodeError(t, rec.Body).Error.Message)
}

func TestCreateTrip_500_UnknownError(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _, _ string, _ domain.Settings) (domain.Trip, error) {
			return domain.Trip{}, errors.New("connection reset")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trips", jsonBody(t, map[string]any{"name": "x"}))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec.Body)
	assert.Equal(t, "internal_error", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "connection reset")
}

// ---- POST /trips/join ------------------------------------------------------

func TestJoinTrip_200(t *testing.T) {
	fixture := tripFixture()
	member := domain.Member{ID: "m-2", Name: "Ben", JoinedAt: fixtureTime}
	fixture.Members = append(fixture.Members, member)
	svc := &mockTripServicer{
		join: func(_ context.Context, code, name string) (domain.Trip, domain.Member, error) {
			assert.Equal(t, "abcd1234", code)
			assert.Equal(t, "Ben", name)
			return fixture, member, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trips/join", jsonBody(t, map[string]any{"invite_code": "abcd1234", "name": "Ben"}))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.JoinTripResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "m-2", resp.Member.ID)
	assert.Len(t, resp.Trip.Members, 2)
}

func TestJoinTrip_404_UnknownCode(t *testing.T) {
	svc := &mockTripServicer{
		join: func(_ context.Context, _, _ string) (domain.Trip, domain.Member, error) {
			return domain.Trip{}, domain.Member{}, fmt.Errorf("service.TripService.Join: %w", domain.ErrNotFound)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/trips/join", jsonBody(t, map[string]any{"invite_code": "NOPE0000", "name": "Ben"}))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec.Body)
	assert.Equal(t, "not_found", resp.Error.Code)
	assert.Equal(t, "trip not found", resp.Error.Message)
}

// ---- GET /trips/{tripId} ---------------------------------------------------

func TestGetTrip_200(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		get: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.Name, resp.Name)
	assert.Equal(t, "Kyoto", resp.Settings.Destination)
}

func TestGetTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		get: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", domain.ErrNotFound)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTrip_422_BadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/trips/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: &mockTripServicer{}}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "tripId must be a UUID", decodeError(t, rec.Body).Error.Message)
}

// ---- PATCH /trips/{tripId} -------------------------------------------------

func TestUpdateTrip_200_OnlyProvidedFields(t *testing.T) {
	fixture := tripFixture()
	var got domain.SettingsPatch
	svc := &mockTripServicer{
		updateSettings: func(_ context.Context, _ uuid.UUID, patch domain.SettingsPatch) (domain.Trip, error) {
			got = patch
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"hotel_name": "Ryokan Sakura", "days_count": 4})
	req := httptest.NewRequest(http.MethodPatch, "/trips/"+fixture.ID.String(), body)
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.HotelName)
	assert.Equal(t, "Ryokan Sakura", *got.HotelName)
	require.NotNil(t, got.DaysCount)
	assert.Equal(t, 4, *got.DaysCount)
	assert.Nil(t, got.Name)
	assert.Nil(t, got.Destination)
	assert.Nil(t, got.StartDate)
}

func TestUpdateTrip_409_Conflict(t *testing.T) {
	svc := &mockTripServicer{
		updateSettings: func(_ context.Context, _ uuid.UUID, _ domain.SettingsPatch) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.UpdateSettings: gave up after 3 attempts: %w", domain.ErrConflict)
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/trips/"+uuid.NewString(), jsonBody(t, map[string]any{"name": "x"}))
	rec := httptest.NewRecorder()

	newHTTPHandler(deps{trips: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec.Body).Error.Code)
}
