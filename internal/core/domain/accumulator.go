package domain

// Accumulator is the ordered, duplicate-free record set of a run.
// It only grows: records are appended and never reordered or removed.
// Not safe for concurrent use.
type Accumulator struct {
	records []Requirement
	seen    map[string]struct{}
}

// NewAccumulator creates an accumulator seeded with previously stored records.
// Duplicates within the seed are collapsed to their first occurrence.
func NewAccumulator(seed []Requirement) *Accumulator {
	a := &Accumulator{
		records: make([]Requirement, 0, len(seed)),
		seen:    make(map[string]struct{}, len(seed)),
	}
	for _, r := range seed {
		a.InsertUnique(r)
	}
	return a
}

// IsDuplicate returns true if a record with the same canonical form is held.
func (a *Accumulator) IsDuplicate(r Requirement) bool {
	_, ok := a.seen[r.Canonical()]
	return ok
}

// InsertUnique appends r unless it is a duplicate.
// Returns true if r was inserted.
func (a *Accumulator) InsertUnique(r Requirement) bool {
	key := r.Canonical()
	if _, ok := a.seen[key]; ok {
		return false
	}
	a.seen[key] = struct{}{}
	a.records = append(a.records, r)
	return true
}

// Records returns a copy of the held records in insertion order.
func (a *Accumulator) Records() []Requirement {
	out := make([]Requirement, len(a.records))
	copy(out, a.records)
	return out
}

// Len returns the number of held records.
func (a *Accumulator) Len() int {
	return len(a.records)
}
