package monitor

// Status represents the health status of an observed service
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusRunning Status = "running"
	StatusBroken  Status = "broken"
	StatusDown    Status = "down"
	StatusValue   Status = "value"
)

// Result represents the outcome of a single check. For StatusRunning, Value
// is the latency in milliseconds; for StatusValue it is the metric reading.
type Result struct {
	Status Status `json:"status"`
	Value  int32  `json:"value"`
}

// Valid reports whether the result carries a value worth charting
func (r Result) Valid() bool {
	return r.Status == StatusRunning || r.Status == StatusValue
}
