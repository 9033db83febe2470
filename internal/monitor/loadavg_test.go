package monitor

import (
	"context"
	"math"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAverageObserver(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Result
	}{
		{"typical", "0.52 0.58 0.59 1/123 4567\n", Result{Status: StatusValue, Value: 52}},
		{"above one", "1.5 0.58 0.59 1/123 4567\n", Result{Status: StatusValue, Value: 150}},
		{"extra digits", "  12.345 1.00 1.00\n", Result{Status: StatusValue, Value: 1234}},
		{"integer", "3 2 1\n", Result{Status: StatusValue, Value: 300}},
		{"huge", "99999999.00 1.00 1.00\n", Result{Status: StatusValue, Value: math.MaxInt32}},
		{"long digits", "123456789012345 1.00\n", Result{Status: StatusValue, Value: math.MaxInt32}},
		{"garbage", "abc\n", Result{}},
		{"empty", "", Result{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/proc/loadavg", []byte(tt.content), 0444))

			o := NewLoadAverageObserver("LOAD", "Load", fs, "")
			result, err := o.Check(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestLoadAverageObserverMissingFile(t *testing.T) {
	o := NewLoadAverageObserver("LOAD", "Load", afero.NewMemMapFs(), "/nope/loadavg")

	_, err := o.Check(context.Background())
	assert.Error(t, err)
}

func TestLoadAverageObserverIdentity(t *testing.T) {
	o := NewLoadAverageObserver("LOAD", "Load average", nil, "")

	assert.Equal(t, "LOAD", o.ID())
	assert.Equal(t, "Load average", o.Name())
	assert.Equal(t, "%", o.Unit())

	ok, err := o.HandleConfiguration("LOAD", "anything")
	assert.False(t, ok)
	assert.NoError(t, err)
}
