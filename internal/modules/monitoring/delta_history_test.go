package monitoring

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaHistory_RecordAndPrevious(t *testing.T) {
	h := NewDeltaHistory("")

	_, ok := h.Previous("p1")
	assert.False(t, ok)

	h.Record("p1", -0.32)
	v, ok := h.Previous("p1")
	require.True(t, ok)
	assert.InDelta(t, -0.32, v, 1e-12)
}

func TestDeltaHistory_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "delta_history.msgpack")

	h := NewDeltaHistory(path)
	h.Record("p1", -0.32)
	h.Record("p2", 0.15)
	require.NoError(t, h.Save())

	restored := NewDeltaHistory(path)
	require.NoError(t, restored.Load())
	assert.Equal(t, 2, restored.Len())

	v, ok := restored.Previous("p1")
	require.True(t, ok)
	assert.InDelta(t, -0.32, v, 1e-12)
}

func TestDeltaHistory_LoadMissingFileIsNoop(t *testing.T) {
	h := NewDeltaHistory(filepath.Join(t.TempDir(), "absent.msgpack"))
	require.NoError(t, h.Load())
	assert.Zero(t, h.Len())
}

func TestDeltaHistory_InMemorySkipsPersistence(t *testing.T) {
	h := NewDeltaHistory("")
	h.Record("p1", 0.1)
	require.NoError(t, h.Save())
	require.NoError(t, h.Load())
	assert.Equal(t, 1, h.Len())
}

func TestDeltaHistory_PruneDropsClosedPositions(t *testing.T) {
	h := NewDeltaHistory("")
	h.Record("open", -0.3)
	h.Record("closed", -0.5)

	h.Prune(map[string]struct{}{"open": {}})

	assert.Equal(t, 1, h.Len())
	_, ok := h.Previous("closed")
	assert.False(t, ok)
	_, ok = h.Previous("open")
	assert.True(t, ok)
}
