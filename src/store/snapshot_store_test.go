package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSnapshotUpsertsSameDay(t *testing.T) {
	store := NewSnapshotStore(newTestDB(t))

	require.NoError(t, store.Record(1, "2024-01-02", 1000, 0))
	// Recording again the same day overwrites: later means more complete.
	require.NoError(t, store.Record(1, "2024-01-02", 1100, 0))
	require.NoError(t, store.Record(1, "2024-01-03", 1200, 0))

	snapshots, err := store.List(1, 0)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "2024-01-02", snapshots[0].Date)
	assert.InDelta(t, 1100.0, snapshots[0].TotalValue, 1e-9)
	assert.Equal(t, "2024-01-03", snapshots[1].Date)
	assert.InDelta(t, 1200.0, snapshots[1].TotalValue, 1e-9)
}

func TestSnapshotsScopedByBrokerAndUser(t *testing.T) {
	store := NewSnapshotStore(newTestDB(t))

	require.NoError(t, store.Record(1, "2024-01-02", 1000, 0))
	require.NoError(t, store.Record(1, "2024-01-02", 400, 7))
	require.NoError(t, store.Record(2, "2024-01-02", 9999, 0))

	wholePortfolio, err := store.List(1, 0)
	require.NoError(t, err)
	require.Len(t, wholePortfolio, 1)
	assert.InDelta(t, 1000.0, wholePortfolio[0].TotalValue, 1e-9)

	perBroker, err := store.List(1, 7)
	require.NoError(t, err)
	require.Len(t, perBroker, 1)
	assert.InDelta(t, 400.0, perBroker[0].TotalValue, 1e-9)
}
