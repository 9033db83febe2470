package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureSends(t *testing.T) *[]string {
	t.Helper()

	var titles []string
	orig := send
	send = func(title, message string) {
		titles = append(titles, title)
	}
	t.Cleanup(func() { send = orig })
	return &titles
}

func TestNotifyStatusChange(t *testing.T) {
	tests := []struct {
		name     string
		from, to Status
		want     string
	}{
		{"first failure", StatusUnknown, StatusDown, "⚠️  Redis - down"},
		{"running to broken", StatusRunning, StatusBroken, "⚠️  Redis - broken"},
		{"recovery", StatusDown, StatusRunning, "✅ Redis - Recovered"},
		{"first success", StatusUnknown, StatusRunning, ""},
		{"broken to down", StatusBroken, StatusDown, ""},
		{"unchanged", StatusDown, StatusDown, ""},
		{"value reading", StatusUnknown, StatusValue, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			titles := captureSends(t)

			n := NewNotifier(true)
			err := n.NotifyStatusChange(Transition{Name: "Redis", From: tt.from, To: tt.to, Value: 3})
			assert.NoError(t, err)

			if tt.want == "" {
				assert.Empty(t, *titles)
				return
			}
			assert.Equal(t, []string{tt.want}, *titles)
		})
	}
}

func TestDisabledNotifier(t *testing.T) {
	titles := captureSends(t)

	n := NewNotifier(false)
	assert.NoError(t, n.NotifyStatusChange(Transition{Name: "Web", From: StatusRunning, To: StatusDown}))
	assert.NoError(t, n.NotifyFailure(Transition{Name: "Web"}))
	assert.NoError(t, n.NotifyRecovery(Transition{Name: "Web"}))
	assert.Empty(t, *titles)
}
