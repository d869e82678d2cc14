package cli

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUsage       = errors.New("usage")
	ErrUnavailable = errors.New("age-graded result unavailable")
)

// Config holds one grading request from the command line.
type Config struct {
	Age       int    // Runner age in years
	Gender    string // m, male, f, female, w, women, men
	Distance  string // km number or named distance
	Time      string // H:MM:SS, MM:SS or seconds
	TablePath string // Reference table override; empty uses the bundled one
	JSON      bool   // Emit the grade as JSON
	Verbose   bool   // Enable debug logging
}

// Result is the JSON shape printed with -json.
type Result struct {
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	DistanceKM        float64  `json:"distance_km"`
	Seconds           float64  `json:"seconds"`
	Available         bool     `json:"available"`
	PerformanceFactor *float64 `json:"performance_factor"`
	FinishTime        *string  `json:"age_graded_time"`
	PacePerMile       *string  `json:"age_graded_pace_per_mile"`
}
