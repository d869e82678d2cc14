// Package units converts race distances and durations between the forms
// runners write them in and the kilometers/seconds the engine works with.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MilesPerKilometer is the fixed conversion factor used by age grading.
const MilesPerKilometer = 0.621371

const (
	secondsPerMinute = 60
	minutesPerHour   = 60
)

// Sentinel error kinds for this package.
var (
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidDistance = errors.New("invalid distance")
)

// namedDistances maps common race names to kilometers.
var namedDistances = map[string]float64{
	"marathon":      42.195,
	"half":          21.0975,
	"half-marathon": 21.0975,
	"halfmarathon":  21.0975,
	"hm":            21.0975,
}

// KilometersToMiles converts km to miles.
func KilometersToMiles(km float64) float64 {
	return km * MilesPerKilometer
}

// MilesToKilometers converts miles to km.
func MilesToKilometers(miles float64) float64 {
	return miles / MilesPerKilometer
}

// FormatDuration renders seconds as H:MM:SS. Fractional seconds are truncated.
func FormatDuration(seconds float64) string {
	total := int64(seconds)
	minutes, secs := total/secondsPerMinute, total%secondsPerMinute
	hours, minutes := minutes/minutesPerHour, minutes%minutesPerHour
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
}

// ParseDuration accepts H:MM:SS, MM:SS or a plain number of seconds.
// The last component may carry a fraction ("20:34.5").
func ParseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		if !last && v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		// Minutes and seconds after the leading component must be < 60.
		if i > 0 && v >= secondsPerMinute {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		total = total*secondsPerMinute + v
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return total, nil
}

// ParseDistance accepts a race name ("marathon", "half"), a number with a
// unit suffix ("5k", "10km", "5mi", "13.1 miles", "1500m") or a bare number of
// kilometers.
func ParseDistance(s string) (float64, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if km, ok := namedDistances[in]; ok {
		return km, nil
	}

	num, factor := in, 1.0
	switch {
	case strings.HasSuffix(in, "miles"):
		num, factor = strings.TrimSuffix(in, "miles"), 1/MilesPerKilometer
	case strings.HasSuffix(in, "mile"):
		num, factor = strings.TrimSuffix(in, "mile"), 1/MilesPerKilometer
	case strings.HasSuffix(in, "mi"):
		num, factor = strings.TrimSuffix(in, "mi"), 1/MilesPerKilometer
	case strings.HasSuffix(in, "km"):
		num = strings.TrimSuffix(in, "km")
	case strings.HasSuffix(in, "k"):
		num = strings.TrimSuffix(in, "k")
	case strings.HasSuffix(in, "m"):
		num, factor = strings.TrimSuffix(in, "m"), 0.001
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDistance, s)
	}
	return v * factor, nil
}
