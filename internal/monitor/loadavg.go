package monitor

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/spf13/afero"
)

// DefaultLoadAvgPath is the Linux load average pseudo-file
const DefaultLoadAvgPath = "/proc/loadavg"

// LoadAverageObserver reports the one-minute load average as a percentage
// of one CPU
type LoadAverageObserver struct {
	identity
	fs   afero.Fs
	path string
}

// NewLoadAverageObserver creates a load probe reading path, or
// DefaultLoadAvgPath when path is empty
func NewLoadAverageObserver(id, name string, fs afero.Fs, path string) *LoadAverageObserver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if path == "" {
		path = DefaultLoadAvgPath
	}
	return &LoadAverageObserver{
		identity: identity{name: name, id: id},
		fs:       fs,
		path:     path,
	}
}

// Unit returns the reading's unit
func (l *LoadAverageObserver) Unit() string {
	return "%"
}

// HandleConfiguration accepts no keys
func (l *LoadAverageObserver) HandleConfiguration(key, value string) (bool, error) {
	return false, nil
}

// Check reads the first load figure. A file that cannot be opened is an
// error; unparsable content is an unknown result.
func (l *LoadAverageObserver) Check(ctx context.Context) (Result, error) {
	file, err := l.fs.Open(l.path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", l.path, err)
	}
	defer file.Close()

	buf := make([]byte, 64)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return Result{}, fmt.Errorf("failed to read %s: %w", l.path, err)
	}

	value, ok := parseLoad(buf[:n])
	if !ok {
		return Result{}, nil
	}
	return Result{Status: StatusValue, Value: value}, nil
}

// parseLoad reads a leading decimal with up to two fractional digits and
// returns it scaled by 100
func parseLoad(data []byte) (int32, bool) {
	i := 0
	for i < len(data) && (data[i] == ' ' || data[i] == '\t' || data[i] == '\n') {
		i++
	}

	var whole int64
	digits := 0
	for i < len(data) && data[i] >= '0' && data[i] <= '9' && whole < 1<<24 {
		whole = whole*10 + int64(data[i]-'0')
		digits++
		i++
	}

	var frac int64
	if i < len(data) && data[i] == '.' {
		i++
		scale := int64(10)
		for n := 0; n < 2 && i < len(data) && data[i] >= '0' && data[i] <= '9'; n++ {
			frac += int64(data[i]-'0') * scale
			scale /= 10
			digits++
			i++
		}
	}

	if digits == 0 {
		return 0, false
	}
	value := whole*100 + frac
	if value > math.MaxInt32 {
		value = math.MaxInt32
	}
	return int32(value), true
}
