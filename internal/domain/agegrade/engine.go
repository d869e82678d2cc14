package agegrade

import (
	"fmt"
	"math"

	"github.com/okian/agegrader/internal/domain/model"
	"github.com/okian/agegrader/internal/domain/units"
)

// Engine answers age-grading queries against one immutable Table.
// Every method is a pure function of the table and its arguments.
//
// Methods returning (value, ok, err) report ok == false when the requested age
// has no record at one of the bracketing distances. That is an expected
// outcome, not an error; err is reserved for missing gender data and invalid
// input.
type Engine struct {
	table *Table
}

// New returns an Engine over table.
func New(table *Table) *Engine {
	return &Engine{table: table}
}

// Table returns the reference table the engine reads.
func (e *Engine) Table() *Table { return e.table }

// DistanceRatio returns where distance falls between its bracketing table
// distances: 0 at the lower one, 1 at the higher one. An exact match or a
// clamped distance yields 0.
func (e *Engine) DistanceRatio(g model.Gender, distance float64) (float64, error) {
	lo, hi, err := e.table.bracket(g, distance)
	if err != nil {
		return 0, err
	}
	return ratio(lo, hi, distance), nil
}

// GenderDistanceRecord estimates the open-class world best for g at distance.
func (e *Engine) GenderDistanceRecord(g model.Gender, distance float64) (float64, error) {
	lo, hi, err := e.table.bracket(g, distance)
	if err != nil {
		return 0, err
	}
	return interpolate(lo.seconds, hi.seconds, ratio(lo, hi, distance)), nil
}

// AgeGenderDistanceRecord estimates the world best for a runner of age and g
// at distance.
func (e *Engine) AgeGenderDistanceRecord(age int, g model.Gender, distance float64) (float64, bool, error) {
	lo, hi, err := e.table.bracket(g, distance)
	if err != nil {
		return 0, false, err
	}
	loSeconds, ok := lo.ages[age]
	if !ok {
		return 0, false, nil
	}
	hiSeconds, ok := hi.ages[age]
	if !ok {
		return 0, false, nil
	}
	return interpolate(loSeconds, hiSeconds, ratio(lo, hi, distance)), true, nil
}

// PerformanceFactor returns the age/gender record divided by the runner's
// time; 1.0 matches the record for that age.
func (e *Engine) PerformanceFactor(age int, g model.Gender, distance, seconds float64) (float64, bool, error) {
	if !positive(seconds) {
		return 0, false, fmt.Errorf("%w: seconds must be positive and finite, got %v", ErrInvalidInput, seconds)
	}
	record, ok, err := e.AgeGenderDistanceRecord(age, g, distance)
	if err != nil || !ok {
		return 0, false, err
	}
	return record / seconds, true, nil
}

// FinishTime returns the equivalent open-class finish time in seconds.
func (e *Engine) FinishTime(age int, g model.Gender, distance, seconds float64) (float64, bool, error) {
	factor, ok, err := e.PerformanceFactor(age, g, distance, seconds)
	if err != nil || !ok {
		return 0, false, err
	}
	open, err := e.GenderDistanceRecord(g, distance)
	if err != nil {
		return 0, false, err
	}
	return open / factor, true, nil
}

// SecondsPerMile returns the age-graded pace in seconds per mile.
func (e *Engine) SecondsPerMile(age int, g model.Gender, distance, seconds float64) (float64, bool, error) {
	if !positive(distance) {
		return 0, false, fmt.Errorf("%w: distance must be positive and finite, got %v", ErrInvalidInput, distance)
	}
	finish, ok, err := e.FinishTime(age, g, distance, seconds)
	if err != nil || !ok {
		return 0, false, err
	}
	return finish / units.KilometersToMiles(distance), true, nil
}

// Grade evaluates every metric for one race result in a single pass over the
// table. When the age record is unavailable the metric fields stay nil.
func (e *Engine) Grade(age int, g model.Gender, distance, seconds float64) (model.Grade, error) {
	out := model.Grade{Age: age, Gender: g.String(), DistanceKM: distance, Seconds: seconds}
	if !positive(seconds) || !positive(distance) {
		return out, fmt.Errorf("%w: distance and seconds must be positive and finite", ErrInvalidInput)
	}

	open, err := e.GenderDistanceRecord(g, distance)
	if err != nil {
		return out, err
	}
	out.OpenRecord = open

	record, ok, err := e.AgeGenderDistanceRecord(age, g, distance)
	if err != nil {
		return out, err
	}
	if !ok {
		return out, nil
	}

	factor := record / seconds
	finish := open / factor
	pace := finish / units.KilometersToMiles(distance)

	out.Available = true
	out.AgeRecord = &record
	out.PerformanceFactor = &factor
	out.FinishTime = &finish
	out.SecondsPerMile = &pace
	return out, nil
}

// Bracket describes how distance resolves for g, including the age record
// when age is positive.
func (e *Engine) Bracket(age int, g model.Gender, distance float64) (model.Bracket, error) {
	out := model.Bracket{Gender: g.String(), DistanceKM: distance, Age: age}
	lo, hi, err := e.table.bracket(g, distance)
	if err != nil {
		return out, err
	}
	r := ratio(lo, hi, distance)
	out.LowerKM = lo.distance
	out.HigherKM = hi.distance
	out.Ratio = r
	out.OpenRecord = interpolate(lo.seconds, hi.seconds, r)
	if age > 0 {
		if record, ok, _ := e.AgeGenderDistanceRecord(age, g, distance); ok {
			out.AgeRecord = &record
		}
	}
	return out, nil
}

// positive reports whether v is a finite number greater than zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func ratio(lo, hi *entry, distance float64) float64 {
	diff := hi.distance - lo.distance
	if diff == 0 {
		return 0
	}
	return (distance - lo.distance) / diff
}

func interpolate(lower, higher, r float64) float64 {
	return lower + r*(higher-lower)
}
