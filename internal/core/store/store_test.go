package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiblo/poimap/internal/core/model"
)

func TestAppendAndSnapshot(t *testing.T) {
	s := New()
	assert.Zero(t, s.Len())

	s.Append(model.Feature{FID: 1, Name: "店舗A"})
	s.Append(model.Feature{FID: 2, Name: "店舗B"})

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(1), snap[0].FID)
	assert.Equal(t, int64(2), snap[1].FID)
	assert.Equal(t, 2, s.Len())
}

func TestSnapshotUnaffectedByLaterAppends(t *testing.T) {
	s := New()
	s.Append(model.Feature{FID: 1})

	snap := s.Snapshot()
	s.Append(model.Feature{FID: 2})
	s.Append(model.Feature{FID: 3})

	assert.Len(t, snap, 1)
	assert.Equal(t, int64(1), snap[0].FID)
	assert.Len(t, s.Snapshot(), 3)
}

func TestFreezeDropsAppends(t *testing.T) {
	s := New()
	s.Append(model.Feature{FID: 1})
	assert.False(t, s.Frozen())

	s.Freeze()
	assert.True(t, s.Frozen())

	s.Append(model.Feature{FID: 2})
	assert.Equal(t, 1, s.Len())
}

func TestHolderStartsNonNil(t *testing.T) {
	h := NewHolder()
	require.NotNil(t, h.Current())
	assert.Zero(t, h.Current().Len())
}

func TestHolderSwapFreezesOutgoing(t *testing.T) {
	h := NewHolder()
	old := h.Current()
	old.Append(model.Feature{FID: 1})

	next := New()
	next.Append(model.Feature{FID: 10})
	returned := h.Swap(next)

	assert.Same(t, old, returned)
	assert.True(t, old.Frozen())
	assert.Same(t, next, h.Current())

	// A stale decode continuation must not grow the replaced store.
	old.Append(model.Feature{FID: 2})
	assert.Equal(t, 1, old.Len())
}
