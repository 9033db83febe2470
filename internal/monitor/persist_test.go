package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadHistoryFile(t *testing.T) {
	clock := newFakeClock()
	src := NewRegistry("LOOKOUT", nil, WithClock(clock))
	src.AddObserver(newStub("WEB", Result{Status: StatusRunning, Value: 7}))
	for i := 0; i < 4; i++ {
		src.Update(context.Background())
		clock.Advance(time.Minute)
	}

	path := filepath.Join(t.TempDir(), "state", "history.txt")
	require.NoError(t, SaveHistory(src, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[WEB]\n")

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	dst := NewRegistry("LOOKOUT", nil)
	dst.AddObserver(newStub("WEB", Result{}))
	require.NoError(t, LoadHistory(dst, path))
	assert.Equal(t, src.History("WEB"), dst.History("WEB"))
}

func TestLoadHistoryMissingFile(t *testing.T) {
	r := NewRegistry("LOOKOUT", nil)
	err := LoadHistory(r, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
