package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/agegrader/internal/domain/units"
)

func required(q url.Values, name string) (string, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return "", fmt.Errorf("%w: %w: %s", ErrBadRequest, ErrMissing, name)
	}
	return v, nil
}

func parseAge(q url.Values, optional bool) (int, error) {
	raw := strings.TrimSpace(q.Get("age"))
	if raw == "" && optional {
		return 0, nil
	}
	if raw == "" {
		return 0, fmt.Errorf("%w: %w: age", ErrBadRequest, ErrMissing)
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: age must be an integer", ErrBadRequest)
	}
	return age, nil
}

func parseDistance(q url.Values) (float64, error) {
	raw, err := required(q, "distance")
	if err != nil {
		return 0, err
	}
	return units.ParseDistance(raw)
}

// parseSeconds reads "seconds" as a number or "time" as H:MM:SS / MM:SS.
func parseSeconds(q url.Values) (float64, error) {
	if raw := strings.TrimSpace(q.Get("seconds")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: seconds must be a finite number", ErrBadRequest)
		}
		return v, nil
	}
	if raw := strings.TrimSpace(q.Get("time")); raw != "" {
		return units.ParseDuration(raw)
	}
	return 0, fmt.Errorf("%w: %w: seconds or time", ErrBadRequest, ErrMissing)
}
