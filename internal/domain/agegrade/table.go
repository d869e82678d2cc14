// Package agegrade estimates age-graded performance from a reference table of
// world-best times indexed by gender, distance and age.
//
// Distances missing from the table are estimated by linear interpolation
// between the nearest tabulated distances. Ages are never interpolated: an age
// must be present in both bracketing entries or the result is unavailable.
package agegrade

import (
	"sort"

	"github.com/okian/agegrader/internal/domain/model"
)

// entry is the indexed form of a model.ReferenceEntry.
type entry struct {
	distance float64
	seconds  float64
	ages     map[int]float64
}

// genderIndex holds one gender's entries sorted by ascending distance.
// distances[i] == entries[i].distance.
type genderIndex struct {
	distances []float64
	entries   []entry
}

// Table is an immutable, pre-sorted view of the reference data. It is safe for
// concurrent use by any number of readers.
type Table struct {
	byGender map[model.Gender]*genderIndex
	size     int
	ageCount int
}

// NewTable indexes entries once. The input must satisfy the reference table
// invariants (unique gender/distance pairs, unique ages, positive seconds);
// when a pair repeats, the last one wins.
func NewTable(entries []model.ReferenceEntry) *Table {
	t := &Table{byGender: make(map[model.Gender]*genderIndex)}

	grouped := make(map[model.Gender]map[float64]entry)
	for _, re := range entries {
		ages := make(map[int]float64, len(re.Ages))
		for _, ar := range re.Ages {
			ages[ar.Age] = ar.Seconds
		}
		if grouped[re.Gender] == nil {
			grouped[re.Gender] = make(map[float64]entry)
		}
		grouped[re.Gender][re.Distance] = entry{distance: re.Distance, seconds: re.Seconds, ages: ages}
	}

	for g, byDistance := range grouped {
		idx := &genderIndex{
			distances: make([]float64, 0, len(byDistance)),
			entries:   make([]entry, 0, len(byDistance)),
		}
		for _, e := range byDistance {
			idx.entries = append(idx.entries, e)
			t.ageCount += len(e.ages)
		}
		sort.Slice(idx.entries, func(i, j int) bool {
			return idx.entries[i].distance < idx.entries[j].distance
		})
		for _, e := range idx.entries {
			idx.distances = append(idx.distances, e.distance)
		}
		t.byGender[g] = idx
		t.size += len(idx.entries)
	}
	return t
}

// Len returns the number of (gender, distance) entries.
func (t *Table) Len() int { return t.size }

// AgeRecordCount returns the total number of age records across all entries.
func (t *Table) AgeRecordCount() int { return t.ageCount }

// Distances returns a copy of the tabulated distances for g in ascending order.
func (t *Table) Distances(g model.Gender) ([]float64, error) {
	idx, err := t.index(g)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(idx.distances))
	copy(out, idx.distances)
	return out, nil
}

// NextLowerDistance returns the largest tabulated distance <= distance, or
// the smallest tabulated distance when every entry is longer.
func (t *Table) NextLowerDistance(g model.Gender, distance float64) (float64, error) {
	idx, err := t.index(g)
	if err != nil {
		return 0, err
	}
	return idx.entries[idx.lower(distance)].distance, nil
}

// NextHigherDistance returns the smallest tabulated distance >= distance, or
// the largest tabulated distance when every entry is shorter.
func (t *Table) NextHigherDistance(g model.Gender, distance float64) (float64, error) {
	idx, err := t.index(g)
	if err != nil {
		return 0, err
	}
	return idx.entries[idx.higher(distance)].distance, nil
}

// bracket resolves the lower and higher entries around distance.
func (t *Table) bracket(g model.Gender, distance float64) (lo, hi *entry, err error) {
	idx, err := t.index(g)
	if err != nil {
		return nil, nil, err
	}
	return &idx.entries[idx.lower(distance)], &idx.entries[idx.higher(distance)], nil
}

func (t *Table) index(g model.Gender) (*genderIndex, error) {
	idx, ok := t.byGender[g]
	if !ok || len(idx.entries) == 0 {
		return nil, &NotFoundError{Gender: g}
	}
	return idx, nil
}

// lower returns the index of the entry chosen by NextLowerDistance.
func (idx *genderIndex) lower(distance float64) int {
	// First index with distances[i] > distance; its predecessor is <= distance.
	i := sort.Search(len(idx.distances), func(i int) bool { return idx.distances[i] > distance })
	if i == 0 {
		return 0
	}
	return i - 1
}

// higher returns the index of the entry chosen by NextHigherDistance.
func (idx *genderIndex) higher(distance float64) int {
	i := sort.SearchFloat64s(idx.distances, distance)
	if i == len(idx.distances) {
		return len(idx.distances) - 1
	}
	return i
}
