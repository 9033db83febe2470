package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultCheckInterval = 60 * time.Second
	DefaultSaveInterval  = time.Hour
)

// Poller drives a registry: it updates on a fixed interval and persists
// history on a longer one
type Poller struct {
	registry     *Registry
	interval     time.Duration
	saveInterval time.Duration
	save         func() error
	afterUpdate  func(ctx context.Context, snap Snapshot)
	log          *zap.Logger
	done         chan struct{}
}

// NewPoller creates a poller for r
func NewPoller(r *Registry, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		registry:     r,
		interval:     interval,
		saveInterval: DefaultSaveInterval,
		log:          log,
		done:         make(chan struct{}),
	}
}

// WithSave persists history every interval and once more on shutdown
func (p *Poller) WithSave(interval time.Duration, save func() error) *Poller {
	if interval > 0 {
		p.saveInterval = interval
	}
	p.save = save
	return p
}

// WithAfterUpdate registers a callback run with the snapshot of every
// completed cycle
func (p *Poller) WithAfterUpdate(fn func(ctx context.Context, snap Snapshot)) *Poller {
	p.afterUpdate = fn
	return p
}

// Run polls until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	defer close(p.done)

	// Initial check
	p.update(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	saveTicker := time.NewTicker(p.saveInterval)
	defer saveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.persist()
			return
		case <-ticker.C:
			p.update(ctx)
		case <-saveTicker.C:
			p.persist()
		}
	}
}

// Done returns a channel that's closed when polling stops
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) update(ctx context.Context) {
	start := time.Now()
	p.registry.Update(ctx)
	p.log.Debug("update complete", zap.Duration("took", time.Since(start)))

	if p.afterUpdate != nil {
		p.afterUpdate(ctx, p.registry.Snapshot())
	}
}

func (p *Poller) persist() {
	if p.save == nil {
		return
	}
	if err := p.save(); err != nil {
		p.log.Warn("failed to save history", zap.Error(err))
		return
	}
	p.log.Debug("history saved")
}
