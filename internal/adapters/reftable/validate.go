package reftable

import (
	"fmt"
	"math"

	"github.com/okian/agegrader/internal/domain/model"
)

type pairKey struct {
	gender   model.Gender
	distance float64
}

// Validate checks the invariants the engine assumes and does not re-check per
// query: a non-empty table, unique (gender, distance) pairs, unique ages per
// entry and strictly positive distances, ages and seconds.
func Validate(entries []model.ReferenceEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrMalformedTable)
	}

	seen := make(map[pairKey]struct{}, len(entries))
	for i, e := range entries {
		if e.Gender != model.Male && e.Gender != model.Female {
			return fmt.Errorf("%w: entry %d: unknown gender", ErrMalformedTable, i)
		}
		if !finitePositive(e.Distance) {
			return fmt.Errorf("%w: entry %d: distance must be positive", ErrMalformedTable, i)
		}
		if !finitePositive(e.Seconds) {
			return fmt.Errorf("%w: entry %d (%s %.3fkm): seconds must be positive", ErrMalformedTable, i, e.Gender, e.Distance)
		}
		key := pairKey{gender: e.Gender, distance: e.Distance}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate entry %s %.3fkm", ErrMalformedTable, e.Gender, e.Distance)
		}
		seen[key] = struct{}{}

		ages := make(map[int]struct{}, len(e.Ages))
		for _, a := range e.Ages {
			if a.Age <= 0 {
				return fmt.Errorf("%w: %s %.3fkm: age must be positive, got %d", ErrMalformedTable, e.Gender, e.Distance, a.Age)
			}
			if !finitePositive(a.Seconds) {
				return fmt.Errorf("%w: %s %.3fkm age %d: seconds must be positive", ErrMalformedTable, e.Gender, e.Distance, a.Age)
			}
			if _, dup := ages[a.Age]; dup {
				return fmt.Errorf("%w: %s %.3fkm: duplicate age %d", ErrMalformedTable, e.Gender, e.Distance, a.Age)
			}
			ages[a.Age] = struct{}{}
		}
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
