package filter

// CategoryID names one category chip in the UI.
type CategoryID string

// CategoryTable maps a category to the keyword list that defines it. A
// feature matches a category when any keyword substring-matches its name or
// title (case-insensitive). The table is static configuration, independent
// from free-text keyword search.
type CategoryTable map[CategoryID][]string

// State is the current multi-criteria filter. Pure value type; the engine
// recomputes matches whenever a new State is set.
type State struct {
	// Keyword is the free-text search box. Empty means no keyword test.
	Keyword string
	// PeriodDays restricts matches to features whose DateStamp is within
	// the last N days. Zero or negative means all time.
	PeriodDays int
	// Categories are the selected category chips. Empty means no
	// category test. Unknown ids contribute nothing.
	Categories []CategoryID
}

// Active reports whether any filter criterion is set. The distinction
// matters for the "match nothing" sentinel: an empty result with no active
// criteria just means no data exists yet.
func (s State) Active() bool {
	return s.Keyword != "" || s.PeriodDays > 0 || len(s.Categories) > 0
}
