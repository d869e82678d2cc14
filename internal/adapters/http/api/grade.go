package api

import (
	"context"
	"net/http"

	service "github.com/okian/agegrader/internal/app"
	"github.com/okian/agegrader/internal/domain/model"
	"github.com/okian/agegrader/internal/domain/units"
)

// GradeDependencies defines the interface for grading operations.
type GradeDependencies interface {
	Grade(ctx context.Context, q service.Query) (model.Grade, error)
}

// GradeHandler handles grade requests.
type GradeHandler struct {
	deps GradeDependencies
}

// NewGradeHandler creates a new grade handler.
func NewGradeHandler(deps GradeDependencies) *GradeHandler {
	return &GradeHandler{deps: deps}
}

// gradeResponse adds display strings to model.Grade.
type gradeResponse struct {
	model.Grade
	FinishTimeText *string `json:"age_graded_time,omitempty"`
	PaceText       *string `json:"age_graded_pace_per_mile,omitempty"`
}

// HandleGetGrade handles GET /grade requests.
func (h *GradeHandler) HandleGetGrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	age, err := parseAge(q, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
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
	seconds, err := parseSeconds(q)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	g, err := h.deps.Grade(r.Context(), service.Query{
		Age:        age,
		Gender:     gender,
		DistanceKM: distance,
		Seconds:    seconds,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := gradeResponse{Grade: g}
	if g.Available {
		finish := units.FormatDuration(*g.FinishTime)
		pace := units.FormatDuration(*g.SecondsPerMile)
		resp.FinishTimeText = &finish
		resp.PaceText = &pace
	}
	writeJSON(w, http.StatusOK, resp)
}
