package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiblo/poimap/internal/core/model"
	"github.com/chiblo/poimap/internal/core/store"
	"github.com/chiblo/poimap/internal/geo"
)

var testNow = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

func testTable() CategoryTable {
	return CategoryTable{
		"cafe":  {"カフェ", "cafe"},
		"ramen": {"ラーメン"},
		"park":  {"公園"},
	}
}

// newTestEngine publishes the given features and returns an engine with a
// fixed clock.
func newTestEngine(t *testing.T, features ...model.Feature) *Engine {
	t.Helper()
	holder := store.NewHolder()
	s := store.New()
	for _, f := range features {
		s.Append(f)
	}
	holder.Swap(s)

	e := NewEngine(holder, testTable())
	e.SetNow(func() time.Time { return testNow })
	return e
}

func daysAgo(n int) int64 {
	return testNow.AddDate(0, 0, -n).Unix()
}

func TestKeywordThenPeriodNarrows(t *testing.T) {
	// Two features mention the keyword, only one of them is recent.
	e := newTestEngine(t,
		model.Feature{FID: 1, Name: "海浜公園", DateStamp: daysAgo(3)},
		model.Feature{FID: 2, Name: "駅前カフェ", DateStamp: daysAgo(3)},
		model.Feature{FID: 3, Name: "古いカフェ", DateStamp: daysAgo(90)},
	)

	e.SetState(State{Keyword: "カフェ"})
	assert.Equal(t, []int64{2, 3}, e.Matches())

	e.SetState(State{Keyword: "カフェ", PeriodDays: 30})
	assert.Equal(t, []int64{2}, e.Matches())

	// Clearing every criterion restores the full set.
	e.SetState(State{})
	assert.Equal(t, []int64{1, 2, 3}, e.Matches())
}

func TestKeywordCaseInsensitive(t *testing.T) {
	e := newTestEngine(t,
		model.Feature{FID: 1, Name: "Beach Cafe"},
		model.Feature{FID: 2, Name: "らーめん屋"},
	)

	e.SetState(State{Keyword: "CAFE"})
	assert.Equal(t, []int64{1}, e.Matches())
}

func TestKeywordSearchesCombinedTargets(t *testing.T) {
	e := newTestEngine(t,
		model.Feature{FID: 1, Name: "店舗A", BlogSource: "chiblog"},
		model.Feature{FID: 2, Name: "店舗B", TitleSource: "chiblog特集"},
		model.Feature{FID: 3, Name: "店舗C", Address: "千葉県千葉市"},
		model.Feature{FID: 4, Name: "店舗D", CategoryFlags: "cafe,sweets"},
		model.Feature{FID: 5, Name: "店舗E"},
	)

	e.SetState(State{Keyword: "chiblog"})
	assert.Equal(t, []int64{1, 2}, e.Matches())

	e.SetState(State{Keyword: "千葉市"})
	assert.Equal(t, []int64{3}, e.Matches())

	e.SetState(State{Keyword: "sweets"})
	assert.Equal(t, []int64{4}, e.Matches())
}

func TestPeriodTreatsZeroStampAsOldest(t *testing.T) {
	e := newTestEngine(t,
		model.Feature{FID: 1, DateStamp: daysAgo(1)},
		model.Feature{FID: 2}, // no date at all
	)

	e.SetState(State{PeriodDays: 7})
	assert.Equal(t, []int64{1}, e.Matches())

	e.SetState(State{PeriodDays: 0})
	assert.Equal(t, []int64{1, 2}, e.Matches())
}

func TestCategoriesMatchAnyKeywordAnyChip(t *testing.T) {
	e := newTestEngine(t,
		model.Feature{FID: 1, Name: "駅前カフェ"},
		model.Feature{FID: 2, Name: "店舗", TitleSource: "新しいラーメンを食べた"},
		model.Feature{FID: 3, Name: "海浜公園"},
		model.Feature{FID: 4, Name: "無関係な店"},
	)

	e.SetState(State{Categories: []CategoryID{"cafe"}})
	assert.Equal(t, []int64{1}, e.Matches())

	// OR across chips, and title counts as a target.
	e.SetState(State{Categories: []CategoryID{"cafe", "ramen"}})
	assert.Equal(t, []int64{1, 2}, e.Matches())

	// Unknown ids contribute nothing.
	e.SetState(State{Categories: []CategoryID{"onsen"}})
	assert.Empty(t, e.Matches())
}

func TestCriteriaCombineWithAnd(t *testing.T) {
	e := newTestEngine(t,
		model.Feature{FID: 1, Name: "駅前カフェ", DateStamp: daysAgo(2)},
		model.Feature{FID: 2, Name: "古いカフェ", DateStamp: daysAgo(60)},
		model.Feature{FID: 3, Name: "海浜公園", DateStamp: daysAgo(2)},
	)

	e.SetState(State{
		Keyword:    "カフェ",
		PeriodDays: 30,
		Categories: []CategoryID{"cafe"},
	})
	assert.Equal(t, []int64{1}, e.Matches())
	assert.True(t, e.Contains(1))
	assert.False(t, e.Contains(2))
}

func TestExpressionStates(t *testing.T) {
	e := newTestEngine(t,
		model.Feature{FID: 1, Name: "駅前カフェ"},
		model.Feature{FID: 2, Name: "海浜公園"},
	)

	// No active criteria: no filter installed at all.
	e.SetState(State{})
	assert.Nil(t, e.Expression())

	e.SetState(State{Keyword: "カフェ"})
	assert.Equal(t, Expression{"in", "fid", int64(1)}, e.Expression())

	// Active criteria with zero matches must use the explicit sentinel,
	// never an empty include list.
	e.SetState(State{Keyword: "存在しない"})
	expr := e.Expression()
	require.True(t, IsMatchNothing(expr), "got %v", expr)
}

func TestViewportSubsetOfMatches(t *testing.T) {
	e := newTestEngine(t,
		model.Feature{FID: 1, Name: "駅前カフェ", Lon: 140.1, Lat: 35.6},
		model.Feature{FID: 2, Name: "遠いカフェ", Lon: 140.5, Lat: 35.9},
		model.Feature{FID: 3, Name: "海浜公園", Lon: 140.1001, Lat: 35.6001},
	)

	e.SetState(State{Keyword: "カフェ"})
	e.SetViewport(geo.NewViewportQuery(140.1, 35.6, 14, 30))

	subset := e.ViewportFeatures()
	require.Len(t, subset, 1)
	assert.Equal(t, int64(1), subset[0].FID)

	// Nearby non-match stays out; the subset is always within the match set.
	for _, f := range subset {
		assert.True(t, e.Contains(f.FID))
	}
}

func TestViewportWithoutFilterShowsNearby(t *testing.T) {
	e := newTestEngine(t,
		model.Feature{FID: 1, Lon: 140.1, Lat: 35.6},
		model.Feature{FID: 2, Lon: 140.1001, Lat: 35.6001},
		model.Feature{FID: 3, Lon: 141.0, Lat: 36.0},
	)

	e.SetState(State{})
	e.SetViewport(geo.NewViewportQuery(140.1, 35.6, 14, 30))

	subset := e.ViewportFeatures()
	require.Len(t, subset, 2)
	assert.Equal(t, int64(1), subset[0].FID)
	assert.Equal(t, int64(2), subset[1].FID)
}

func TestNoViewportMeansEmptySubset(t *testing.T) {
	e := newTestEngine(t, model.Feature{FID: 1, Lon: 140.1, Lat: 35.6})
	e.SetState(State{})
	assert.Empty(t, e.ViewportFeatures())
}

func TestRecomputePicksUpNewFeatures(t *testing.T) {
	holder := store.NewHolder()
	s := store.New()
	s.Append(model.Feature{FID: 1, Name: "駅前カフェ"})
	holder.Swap(s)

	e := NewEngine(holder, testTable())
	e.SetState(State{Keyword: "カフェ"})
	assert.Equal(t, []int64{1}, e.Matches())

	// Stream progress appends more features; the cadence flush recomputes.
	s.Append(model.Feature{FID: 2, Name: "新しいカフェ"})
	s.Append(model.Feature{FID: 3, Name: "海浜公園"})
	e.Recompute()
	assert.Equal(t, []int64{1, 2}, e.Matches())
}

func TestDuplicateFIDKeptOnce(t *testing.T) {
	e := newTestEngine(t,
		model.Feature{FID: 1, Name: "駅前カフェ"},
		model.Feature{FID: 1, Name: "重複カフェ"},
	)

	e.SetState(State{Keyword: "カフェ"})
	assert.Equal(t, []int64{1}, e.Matches())
}

func TestSortedCategories(t *testing.T) {
	ids := testTable().SortedCategories()
	assert.Equal(t, []CategoryID{"cafe", "park", "ramen"}, ids)
}
