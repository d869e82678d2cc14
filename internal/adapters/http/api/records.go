package api

import (
	"context"
	"net/http"

	service "github.com/okian/agegrader/internal/app"
	"github.com/okian/agegrader/internal/domain/model"
)

// RecordDependencies defines the interface for record lookups.
type RecordDependencies interface {
	Record(ctx context.Context, q service.RecordQuery) (model.Bracket, error)
}

// DistanceDependencies defines the interface for listing table distances.
type DistanceDependencies interface {
	Distances(ctx context.Context, gender string) ([]float64, error)
}

// RecordsHandler handles record requests.
type RecordsHandler struct {
	deps RecordDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleGetRecords handles GET /records requests.
func (h *RecordsHandler) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	gender, err := required(q, "gender")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	distance, err := parseDistance(q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	age, err := parseAge(q, true)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	b, err := h.deps.Record(r.Context(), service.RecordQuery{Age: age, Gender: gender, DistanceKM: distance})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// DistancesHandler handles distance listing requests.
type DistancesHandler struct {
	deps DistanceDependencies
}

// NewDistancesHandler creates a new distances handler.
func NewDistancesHandler(deps DistanceDependencies) *DistancesHandler {
	return &DistancesHandler{deps: deps}
}

type distancesResponse struct {
	Gender    string    `json:"gender"`
	Distances []float64 `json:"distances_km"`
}

// HandleGetDistances handles GET /distances requests.
func (h *DistancesHandler) HandleGetDistances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw, err := required(r.URL.Query(), "gender")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	ds, err := h.deps.Distances(r.Context(), raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	g, _ := model.ParseGender(raw)
	writeJSON(w, http.StatusOK, distancesResponse{Gender: g.String(), Distances: ds})
}
