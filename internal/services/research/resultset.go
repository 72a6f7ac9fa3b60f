package research

import "github.com/stockbrief/stockbrief/internal/models"

// ResultSet holds generated research text keyed by unit. A unit absent
// from the set either failed generation or was never requested; the
// two are indistinguishable to consumers, which is what lets digest
// composition stay failure-agnostic.
type ResultSet struct {
	results map[models.ResearchUnit]string
}

// NewResultSet creates an empty result set
func NewResultSet() *ResultSet {
	return &ResultSet{
		results: make(map[models.ResearchUnit]string),
	}
}

// Put stores the generated text for a unit
func (rs *ResultSet) Put(unit models.ResearchUnit, content string) {
	rs.results[unit] = content
}

// Get returns the generated text for a unit, if present
func (rs *ResultSet) Get(unit models.ResearchUnit) (string, bool) {
	content, ok := rs.results[unit]
	return content, ok
}

// Len returns the number of units with generated content
func (rs *ResultSet) Len() int {
	return len(rs.results)
}

// HasAnyOf reports whether at least one of the given units has content
func (rs *ResultSet) HasAnyOf(units []models.ResearchUnit) bool {
	for _, u := range units {
		if _, ok := rs.results[u]; ok {
			return true
		}
	}
	return false
}
