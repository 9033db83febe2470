package monitor

import (
	"context"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/juststeveking/lookout/internal/series"
	"go.uber.org/zap"
)

const (
	// DefaultMaxHistory is the number of samples kept per observer before
	// the oldest half is compacted
	DefaultMaxHistory = 2000

	// HistoryWidth and HistoryHeight size the charts of RenderHistory
	HistoryWidth  = 600
	HistoryHeight = 200
)

// TransitionFunc is called after an update for every observer whose status
// changed
type TransitionFunc func(o Observer, from, to Result)

// Option configures a Registry
type Option func(*Registry)

// WithClock sets the time source used to stamp samples
func WithClock(c Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithTransitionHook registers a callback for status changes
func WithTransitionHook(fn TransitionFunc) Option {
	return func(r *Registry) {
		r.onTransition = fn
	}
}

// Registry owns every observer, its history and its last result. All
// methods are safe for concurrent use.
type Registry struct {
	prefix       string
	log          *zap.Logger
	clock        Clock
	onTransition TransitionFunc

	mu          sync.Mutex
	observers   []Observer
	series      []*series.Series
	lastResults []Result
	lastUpdate  time.Time
	maxHistory  int
}

// Entry is the exported view of one observer's current state
type Entry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Unit    string `json:"unit,omitempty"`
	Status  Status `json:"status"`
	Value   int32  `json:"value"`
	Samples int    `json:"samples"`
}

// Snapshot is a copy of the registry state after an update
type Snapshot struct {
	Updated   time.Time `json:"updated"`
	Observers []Entry   `json:"observers"`
}

// NewRegistry creates an empty registry. prefix names the registry's own
// configuration keys, e.g. <PREFIX>.HISTORY.
func NewRegistry(prefix string, log *zap.Logger, opts ...Option) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		prefix:     prefix,
		log:        log,
		clock:      SystemClock{},
		maxHistory: DefaultMaxHistory,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddObserver registers an observer. Nil observers are ignored.
func (r *Registry) AddObserver(o Observer) {
	if o == nil {
		return
	}
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

// Observers returns the registered observers in registration order
func (r *Registry) Observers() []Observer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Observer(nil), r.observers...)
}

// MaxHistory returns the per-observer sample cap
func (r *Registry) MaxHistory() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxHistory
}

// HandleConfiguration offers key/value to every observer and handles
// <PREFIX>.HISTORY itself. A malformed value is returned as an error
// straight away.
func (r *Registry) HandleConfiguration(key, value string) (bool, error) {
	consumed := false

	if strings.EqualFold(key, r.prefix+".HISTORY") {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return true, fmt.Errorf("invalid history size %q: must be a positive integer", value)
		}
		r.mu.Lock()
		r.maxHistory = n
		r.mu.Unlock()
		consumed = true
	}

	for _, o := range r.Observers() {
		ok, err := o.HandleConfiguration(key, value)
		if err != nil {
			return true, fmt.Errorf("%s: %w", o.Name(), err)
		}
		consumed = consumed || ok
	}

	return consumed, nil
}

// Update checks every observer and merges the results. Checks run
// concurrently and outside the lock; a failing or panicking observer is
// recorded as broken without affecting the others.
func (r *Registry) Update(ctx context.Context) {
	observers := r.Observers()

	results := make([]Result, len(observers))
	errs := make([]error, len(observers))

	var wg sync.WaitGroup
	for i, o := range observers {
		wg.Add(1)
		go func(i int, o Observer) {
			defer wg.Done()
			results[i], errs[i] = r.check(ctx, o)
		}(i, o)
	}
	wg.Wait()

	type transition struct {
		o        Observer
		from, to Result
	}
	var changed []transition

	r.mu.Lock()
	now := r.clock.Now()
	for len(r.series) < len(r.observers) {
		r.series = append(r.series, series.New())
	}

	for i, o := range observers {
		prev := Result{Status: StatusUnknown}
		if i < len(r.lastResults) {
			prev = r.lastResults[i]
		}

		res := results[i]
		if errs[i] != nil {
			res = Result{Status: StatusBroken}
			if prev.Status != StatusBroken {
				r.log.Warn("probe failed", zap.String("observer", o.Name()), zap.Error(errs[i]))
			} else {
				r.log.Debug("probe still failing", zap.String("observer", o.Name()), zap.Error(errs[i]))
			}
			results[i] = res
		}

		if res.Status != prev.Status {
			r.log.Info("status changed",
				zap.String("observer", o.Name()),
				zap.String("from", string(prev.Status)),
				zap.String("to", string(res.Status)),
			)
			changed = append(changed, transition{o: o, from: prev, to: res})
		}

		s := r.series[i]
		s.Add(now, res.Valid(), res.Value)
		if s.Len() > r.maxHistory {
			s.Compact(0, s.Len()/2, 2)
		}
	}

	r.lastResults = results
	r.lastUpdate = now
	r.mu.Unlock()

	if r.onTransition != nil {
		for _, c := range changed {
			r.onTransition(c.o, c.from, c.to)
		}
	}
}

// check runs one observer, turning a panic into an error
func (r *Registry) check(ctx context.Context, o Observer) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("probe panicked: %v", p)
		}
	}()
	return o.Check(ctx)
}

// Render returns the current status of every observer as HTML blocks,
// along with the time of the update they come from
func (r *Registry) Render() (string, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for i, o := range r.observers {
		res := Result{Status: StatusUnknown}
		if i < len(r.lastResults) {
			res = r.lastResults[i]
		}

		id := html.EscapeString(o.ID())
		name := html.EscapeString(o.Name())

		switch res.Status {
		case StatusRunning:
			fmt.Fprintf(&b, `<div class="status active" id="status-%s"><span class="name">%s</span><span class="state">active</span><span class="value">%d ms</span></div>`, id, name, res.Value)
		case StatusBroken:
			fmt.Fprintf(&b, `<div class="status broken" id="status-%s"><span class="name">%s</span><span class="state">broken</span></div>`, id, name)
		case StatusDown:
			fmt.Fprintf(&b, `<div class="status failed" id="status-%s"><span class="name">%s</span><span class="state">failed</span></div>`, id, name)
		case StatusValue:
			fmt.Fprintf(&b, `<div class="status value" id="status-%s"><span class="name">%s</span><span class="value">%d %s</span></div>`, id, name, res.Value, html.EscapeString(o.Unit()))
		default:
			fmt.Fprintf(&b, `<div class="status unknown" id="status-%s"><span class="name">%s</span><span class="state">unknown</span></div>`, id, name)
		}
		b.WriteString("\n")
	}

	return b.String(), r.lastUpdate
}

// RenderHistory returns one chart block per observer that has a history
func (r *Registry) RenderHistory() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	var b strings.Builder
	for i, s := range r.series {
		if i >= len(r.observers) {
			break
		}
		o := r.observers[i]
		fmt.Fprintf(&b, `<div class="history" id="history-%s"><h3>%s</h3>`, html.EscapeString(o.ID()), html.EscapeString(o.Name()))
		b.WriteString("\n")
		b.WriteString(s.RenderAt(now, HistoryWidth, HistoryHeight))
		b.WriteString("</div>\n")
	}
	return b.String()
}

// Snapshot returns a copy of the current state
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Updated:   r.lastUpdate,
		Observers: make([]Entry, len(r.observers)),
	}
	for i, o := range r.observers {
		e := Entry{ID: o.ID(), Name: o.Name(), Unit: o.Unit(), Status: StatusUnknown}
		if i < len(r.lastResults) {
			e.Status = r.lastResults[i].Status
			e.Value = r.lastResults[i].Value
		}
		if i < len(r.series) {
			e.Samples = r.series[i].Len()
		}
		snap.Observers[i] = e
	}
	return snap
}

// History returns a copy of the samples recorded for the observer id
func (r *Registry) History(id string) []series.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.observers {
		if o.ID() == id && i < len(r.series) {
			return r.series[i].Items()
		}
	}
	return nil
}

// Load reads persisted history into the observers' series, keyed by ID
func (r *Registry) Load(in io.Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.catalog().Load(in)
}

// Save writes every observer's history, keyed by ID
func (r *Registry) Save(out io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.catalog().Save(out)
}

// catalog maps observer IDs to their series. Callers hold the lock.
func (r *Registry) catalog() *series.Catalog {
	for len(r.series) < len(r.observers) {
		r.series = append(r.series, series.New())
	}

	c := series.NewCatalog()
	for i, o := range r.observers {
		c.Register(o.ID(), r.series[i])
	}
	return c
}
