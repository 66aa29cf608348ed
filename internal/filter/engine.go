// Package filter answers live multi-criteria queries against a feature store
// that may still be loading. The full match set drives layer visibility; the
// viewport subset, a spatial intersection with the current map center box,
// feeds the side-panel list.
package filter

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chiblo/poimap/internal/core/model"
	"github.com/chiblo/poimap/internal/core/store"
	"github.com/chiblo/poimap/internal/geo"
	"github.com/chiblo/poimap/internal/util"
)

const secondsPerDay = 86400

// Engine holds the current filter state and keeps the match sets current.
// Recomputation is triggered by SetState (any criterion change), SetViewport
// (map move-end) and Recompute (stream progress/completion); the triggers
// are independent, so a viewport move never waits on a filter change and
// vice versa. No internal debouncing: rapid keystrokes are the caller's
// concern.
type Engine struct {
	holder *store.Holder
	table  CategoryTable
	nowFn  func() time.Time

	mu       sync.RWMutex
	state    State
	viewport *geo.ViewportQuery

	matches      []int64
	matchSet     map[int64]struct{}
	viewportFids []model.Feature
}

// NewEngine creates an engine over the published store. The category table
// may be nil when no category chips are configured.
func NewEngine(holder *store.Holder, table CategoryTable) *Engine {
	return &Engine{
		holder: holder,
		table:  table,
		nowFn:  time.Now,
	}
}

// SetNow overrides the clock used by the period test. Test hook.
func (e *Engine) SetNow(nowFn func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nowFn = nowFn
}

// SetState replaces the filter state and recomputes both the full match set
// and the viewport subset.
func (e *Engine) SetState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
	e.recomputeLocked()
}

// State returns the current filter state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// SetViewport installs the map-move-end query box and recomputes only the
// viewport subset.
func (e *Engine) SetViewport(v geo.ViewportQuery) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = &v
	e.recomputeViewportLocked(e.holder.Current().Snapshot())
}

// Recompute re-evaluates everything against the current store snapshot.
// Called on flush cadence and stream completion to pick up new features.
func (e *Engine) Recompute() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recomputeLocked()
}

// Matches returns the full match set as an ordered fid list (store order,
// no duplicates).
func (e *Engine) Matches() []int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]int64, len(e.matches))
	copy(out, e.matches)
	return out
}

// Contains reports whether fid is in the full match set.
func (e *Engine) Contains(fid int64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.matchSet[fid]
	return ok
}

// Expression translates the full match set into a layer-filter expression.
// Zero matches under active criteria produce the explicit sentinel; with no
// active criteria the engine reports nil, meaning "no filter installed".
func (e *Engine) Expression() Expression {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.state.Active() {
		return nil
	}
	if len(e.matches) == 0 {
		return MatchNothing()
	}
	return IncludeFIDs(e.matches)
}

// ViewportFeatures returns the viewport subset in store order: features in
// the full match set whose projected point lies inside the active query box.
// Nil viewport means no box is active and the subset is empty.
func (e *Engine) ViewportFeatures() []model.Feature {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Feature, len(e.viewportFids))
	copy(out, e.viewportFids)
	return out
}

func (e *Engine) recomputeLocked() {
	snapshot := e.holder.Current().Snapshot()
	now := e.nowFn().Unix()

	e.matches = e.matches[:0]
	e.matchSet = make(map[int64]struct{}, len(snapshot))
	for _, f := range snapshot {
		if !e.matchLocked(f, now) {
			continue
		}
		if _, dup := e.matchSet[f.FID]; dup {
			// Upstream guarantees fid uniqueness; a duplicate here
			// is a data defect, not ours to amplify.
			util.LogWarnf("filter: duplicate fid %d in store, keeping first", f.FID)
			continue
		}
		e.matchSet[f.FID] = struct{}{}
		e.matches = append(e.matches, f.FID)
	}

	e.recomputeViewportLocked(snapshot)
}

func (e *Engine) recomputeViewportLocked(snapshot []model.Feature) {
	e.viewportFids = e.viewportFids[:0]
	if e.viewport == nil {
		return
	}
	for _, f := range snapshot {
		if _, ok := e.matchSet[f.FID]; !ok {
			continue
		}
		if e.viewport.Contains(f.Lon, f.Lat) {
			e.viewportFids = append(e.viewportFids, f)
		}
	}
}

// matchLocked is the AND of the period, keyword and category tests.
func (e *Engine) matchLocked(f model.Feature, now int64) bool {
	return e.matchPeriod(f, now) && e.matchKeyword(f) && e.matchCategories(f)
}

func (e *Engine) matchPeriod(f model.Feature, now int64) bool {
	if e.state.PeriodDays <= 0 {
		return true
	}
	return f.DateStamp >= now-int64(e.state.PeriodDays)*secondsPerDay
}

// matchKeyword keeps the legacy single-box semantics: one keyword tested
// against the combined name/category/blog/title/address target set.
func (e *Engine) matchKeyword(f model.Feature) bool {
	if e.state.Keyword == "" {
		return true
	}
	keyword := strings.ToLower(e.state.Keyword)
	targets := [5]string{f.Name, f.CategoryFlags, f.BlogSource, f.TitleSource, f.Address}
	for _, target := range targets {
		if target != "" && strings.Contains(strings.ToLower(target), keyword) {
			return true
		}
	}
	return false
}

// matchCategories is true when any selected category has any keyword that
// matches the feature's name or title. Unknown category ids are ignored.
func (e *Engine) matchCategories(f model.Feature) bool {
	if len(e.state.Categories) == 0 {
		return true
	}
	name := strings.ToLower(f.Name)
	title := strings.ToLower(f.TitleSource)
	for _, id := range e.state.Categories {
		for _, kw := range e.table[id] {
			kw = strings.ToLower(kw)
			if kw == "" {
				continue
			}
			if strings.Contains(name, kw) || strings.Contains(title, kw) {
				return true
			}
		}
	}
	return false
}

// SortedCategories lists the configured category ids in stable order, for
// the API and help output.
func (t CategoryTable) SortedCategories() []CategoryID {
	ids := make([]CategoryID, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
