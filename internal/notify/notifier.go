package notify

import (
	"fmt"

	"github.com/martinlindhe/notify"
)

// Status mirrors the monitor status names
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusRunning Status = "running"
	StatusBroken  Status = "broken"
	StatusDown    Status = "down"
	StatusValue   Status = "value"
)

// Transition describes an observer changing status between two cycles
type Transition struct {
	Name  string
	From  Status
	To    Status
	Value int32
}

// send delivers a desktop notification; replaced in tests
var send = func(title, message string) {
	notify.Notify("Lookout", title, message, "")
}

// Notifier sends desktop notifications for status transitions
type Notifier struct {
	enabled bool
}

// NewNotifier creates a new notifier instance
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
	}
}

// NotifyFailure sends a desktop notification when an observer fails
func (n *Notifier) NotifyFailure(t Transition) error {
	if !n.enabled {
		return nil
	}

	title := fmt.Sprintf("⚠️  %s - %s", t.Name, t.To)
	message := fmt.Sprintf("Status changed from %s to %s", t.From, t.To)

	send(title, message)
	return nil
}

// NotifyRecovery sends a desktop notification when an observer recovers
func (n *Notifier) NotifyRecovery(t Transition) error {
	if !n.enabled {
		return nil
	}

	title := fmt.Sprintf("✅ %s - Recovered", t.Name)
	message := fmt.Sprintf("Response time: %d ms", t.Value)

	send(title, message)
	return nil
}

// NotifyStatusChange picks the notification for a transition. Moves into
// broken or down from a healthy or unknown state notify a failure, moves
// from broken or down back to running notify a recovery. Everything else,
// including broken <-> down, is silent.
func (n *Notifier) NotifyStatusChange(t Transition) error {
	if !n.enabled || t.From == t.To {
		return nil
	}

	if failing(t.To) && !failing(t.From) {
		return n.NotifyFailure(t)
	}

	if t.To == StatusRunning && failing(t.From) {
		return n.NotifyRecovery(t)
	}

	return nil
}

func failing(s Status) bool {
	return s == StatusBroken || s == StatusDown
}
