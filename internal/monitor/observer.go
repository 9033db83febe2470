package monitor

import (
	"context"
	"math"
	"strings"
	"time"
)

// Observer defines the interface every probe implements
type Observer interface {
	// Name is the human-readable label
	Name() string
	// ID is the stable machine key, used for configuration and persistence
	ID() string
	// Unit is shown next to StatusValue readings
	Unit() string
	// HandleConfiguration offers a key/value pair to the observer. It
	// reports whether the key was consumed, and fails on malformed values.
	HandleConfiguration(key, value string) (bool, error)
	// Check probes the target once
	Check(ctx context.Context) (Result, error)
}

// StatusChecker is implemented by observers whose result is a plain status
type StatusChecker interface {
	CheckStatus(ctx context.Context) (Status, error)
}

// Clock is the time source used for timestamps and latency measurement
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// identity holds the fields every observer shares
type identity struct {
	name string
	id   string
}

func (i identity) Name() string { return i.name }
func (i identity) ID() string   { return i.id }
func (i identity) Unit() string { return "" }

// is reports whether key names this observer, optionally with a suffix
// such as ".HOST"
func (i identity) is(key, suffix string) bool {
	return strings.EqualFold(key, i.id+suffix)
}

// timedCheck runs a status check and reports its latency for running
// targets
func timedCheck(ctx context.Context, clock Clock, c StatusChecker) (Result, error) {
	start := clock.Now()
	status, err := c.CheckStatus(ctx)
	if err != nil {
		return Result{}, err
	}

	if status != StatusRunning {
		return Result{Status: status}, nil
	}

	ms := clock.Now().Sub(start).Milliseconds()
	if ms > math.MaxInt32 {
		ms = math.MaxInt32
	}
	return Result{Status: StatusRunning, Value: int32(ms)}, nil
}
