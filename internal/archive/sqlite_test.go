package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Archive {
	t.Helper()

	a, err := Open(filepath.Join(t.TempDir(), "archive.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func snapshot(at time.Time, web monitor.Status, latency int32) monitor.Snapshot {
	return monitor.Snapshot{
		Updated: at,
		Observers: []monitor.Entry{
			{ID: "WEB", Name: "Web", Status: web, Value: latency},
			{ID: "LOAD", Name: "Load", Unit: "%", Status: monitor.StatusValue, Value: 52},
		},
	}
}

func TestRecordAndRecent(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, a.Record(ctx, snapshot(base, monitor.StatusRunning, 4)))
	require.NoError(t, a.Record(ctx, snapshot(base.Add(time.Minute), monitor.StatusDown, 0)))
	require.NoError(t, a.Record(ctx, snapshot(base.Add(2*time.Minute), monitor.StatusRunning, 6)))

	rows, err := a.Recent(ctx, "WEB", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, base.Add(2*time.Minute).UnixMilli(), rows[0].Time.UnixMilli())
	assert.Equal(t, monitor.StatusRunning, rows[0].Status)
	assert.Equal(t, int32(6), rows[0].Value)
	assert.Equal(t, monitor.StatusDown, rows[1].Status)

	all, err := a.Recent(ctx, "WEB", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := a.Recent(ctx, "MISSING", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordSkipsEmptySnapshots(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()

	require.NoError(t, a.Record(ctx, monitor.Snapshot{}))
	require.NoError(t, a.Record(ctx, monitor.Snapshot{Updated: time.Now()}))

	counts, err := a.Counts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestCounts(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Record(ctx, snapshot(base.Add(time.Duration(i)*time.Minute), monitor.StatusRunning, 1)))
	}

	counts, err := a.Counts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "LOAD", counts[0].ObserverID)
	assert.Equal(t, "WEB", counts[1].ObserverID)
	assert.Equal(t, 3, counts[1].Samples)
	assert.Equal(t, base.UnixMilli(), counts[1].First.UnixMilli())
	assert.Equal(t, base.Add(2*time.Minute).UnixMilli(), counts[1].Last.UnixMilli())
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	ctx := context.Background()

	a, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, a.Record(ctx, snapshot(time.Now(), monitor.StatusRunning, 1)))
	require.NoError(t, a.Close())

	b, err := Open(path, nil)
	require.NoError(t, err)
	defer b.Close()

	counts, err := b.Counts(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, 2)
}
