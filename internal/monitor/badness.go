package monitor

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// MaxBadnessAge is how old a badness file may get before its writer is
// considered dead
const MaxBadnessAge = time.Hour

const maxBadnessBytes = 20

// FileBadnessObserver reads a small failure counter that another process
// keeps in a sidecar file
type FileBadnessObserver struct {
	identity
	fs    afero.Fs
	path  string
	clock Clock
}

// NewFileBadnessObserver creates a badness probe. The file path is set
// through the <ID> configuration key.
func NewFileBadnessObserver(id, name string, fs afero.Fs, clock Clock) *FileBadnessObserver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &FileBadnessObserver{
		identity: identity{name: name, id: id},
		fs:       fs,
		clock:    clock,
	}
}

// HandleConfiguration accepts the exact key <ID> as the file path
func (f *FileBadnessObserver) HandleConfiguration(key, value string) (bool, error) {
	if !f.is(key, "") {
		return false, nil
	}
	f.path = strings.TrimSpace(value)
	return true, nil
}

// Check reads the counter and reports its latency
func (f *FileBadnessObserver) Check(ctx context.Context) (Result, error) {
	return timedCheck(ctx, f.clock, f)
}

// CheckStatus classifies the counter file. A missing or stale file means
// the writer is down; a counter above one means it is failing.
func (f *FileBadnessObserver) CheckStatus(ctx context.Context) (Status, error) {
	if f.path == "" {
		return StatusDown, nil
	}

	content, err := f.read()
	if err != nil {
		return StatusDown, nil
	}

	mtime, err := f.modTime()
	if err != nil {
		return StatusDown, nil
	}
	if f.clock.Now().Sub(mtime) > MaxBadnessAge {
		return StatusDown, nil
	}

	// The writer truncates before rewriting
	text := strings.TrimSpace(string(content))
	if text == "" {
		return StatusRunning, nil
	}

	badness, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return StatusBroken, nil
	}
	if badness > 1 {
		return StatusBroken, nil
	}
	return StatusRunning, nil
}

func (f *FileBadnessObserver) read() ([]byte, error) {
	file, err := f.fs.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, maxBadnessBytes)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

// modTime looks the file up in its directory listing
func (f *FileBadnessObserver) modTime() (time.Time, error) {
	dir, name := filepath.Split(f.path)
	if dir == "" {
		dir = "."
	}

	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		return time.Time{}, err
	}
	for _, entry := range entries {
		if entry.Name() == name {
			return entry.ModTime(), nil
		}
	}
	return time.Time{}, errors.New("badness file vanished from its directory")
}
