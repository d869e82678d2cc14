// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGender is returned when a gender string cannot be normalized.
var ErrUnknownGender = errors.New("unknown gender")

// Gender selects which half of the reference table a query reads.
type Gender int

// Supported genders. The zero value is deliberately invalid.
const (
	GenderUnknown Gender = iota
	Male
	Female
)

// Genders lists the genders a reference table may contain, in table order.
var Genders = []Gender{Male, Female}

// ParseGender normalizes a case-insensitive gender string.
// Accepts: m, male, men, f, female, w, women.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "men":
		return Male, nil
	case "f", "female", "w", "women":
		return Female, nil
	default:
		return GenderUnknown, fmt.Errorf("%w: %q", ErrUnknownGender, s)
	}
}

// String returns the single-letter code used by reference table files.
func (g Gender) String() string {
	switch g {
	case Male:
		return "M"
	case Female:
		return "F"
	default:
		return "unknown"
	}
}

// AgeRecord is the world-best time for one age at a given gender and distance.
type AgeRecord struct {
	Age     int
	Seconds float64
}

// ReferenceEntry is one (gender, distance) row of the reference table.
type ReferenceEntry struct {
	Gender   Gender
	Distance float64 // kilometers
	Seconds  float64 // open-class world best
	Ages     []AgeRecord
}

// Grade is the full age-graded evaluation of a single race result.
// Metric fields are nil when Available is false.
type Grade struct {
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	DistanceKM        float64  `json:"distance_km"`
	Seconds           float64  `json:"seconds"`
	Available         bool     `json:"available"`
	OpenRecord        float64  `json:"open_record_seconds"`
	AgeRecord         *float64 `json:"age_record_seconds"`
	PerformanceFactor *float64 `json:"performance_factor"`
	FinishTime        *float64 `json:"age_graded_seconds"`
	SecondsPerMile    *float64 `json:"age_graded_seconds_per_mile"`
}

// Bracket describes how a distance was resolved against the table.
type Bracket struct {
	Gender     string   `json:"gender"`
	DistanceKM float64  `json:"distance_km"`
	LowerKM    float64  `json:"lower_km"`
	HigherKM   float64  `json:"higher_km"`
	Ratio      float64  `json:"ratio"`
	OpenRecord float64  `json:"open_record_seconds"`
	Age        int      `json:"age,omitempty"`
	AgeRecord  *float64 `json:"age_record_seconds"`
}
