package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// tripID binds the {tripId} path parameter. On failure it writes a 422 and
// returns false.
func tripID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "tripId", chi.URLParam(r, "tripId"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("tripId must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt binds an optional integer query parameter. A missing parameter
// leaves the result nil.
func queryInt(r *http.Request, name string) (*int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

// decodeBody decodes the JSON request body into dst. On failure it writes a
// 422 (or 413 when the body limit tripped) and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{
				Code:    "payload_too_large",
				Message: "request body is too large",
			}})
			return false
		}
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body must be valid JSON"))
		return false
	}
	return true
}
