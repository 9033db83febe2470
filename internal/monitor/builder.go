package monitor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/juststeveking/lookout/internal/config"
	"github.com/spf13/afero"
)

// ErrUnknownType is returned for an observer type Build does not know
var ErrUnknownType = errors.New("unknown observer type")

// Deps are the collaborators shared by built observers
type Deps struct {
	Fs      afero.Fs
	Clock   Clock
	Timeout time.Duration
}

// NewObserver creates the observer described by spec
func NewObserver(spec config.ObserverSpec, deps Deps) (Observer, error) {
	name := spec.Name
	if name == "" {
		name = spec.ID
	}

	switch strings.ToLower(spec.Type) {
	case "web", "router", "redis", "service":
		flavor := map[string]Flavor{
			"web":     FlavorWeb,
			"router":  FlavorRouter,
			"redis":   FlavorRedis,
			"service": FlavorService,
		}[strings.ToLower(spec.Type)]
		return NewNetworkObserver(flavor, spec.ID, name, spec.Host, spec.Port).WithTimeout(deps.Timeout), nil

	case "badness":
		o := NewFileBadnessObserver(spec.ID, name, deps.Fs, deps.Clock)
		if spec.Path != "" {
			o.HandleConfiguration(spec.ID, spec.Path)
		}
		return o, nil

	case "loadavg":
		return NewLoadAverageObserver(spec.ID, name, deps.Fs, spec.Path), nil

	default:
		return nil, fmt.Errorf("%w: %q for observer %s", ErrUnknownType, spec.Type, spec.ID)
	}
}

// Configure registers every observer of cfg and then feeds the flat
// settings stream to the registry
func Configure(r *Registry, cfg *config.Config, deps Deps) error {
	for _, spec := range cfg.Observers {
		o, err := NewObserver(spec, deps)
		if err != nil {
			return err
		}
		r.AddObserver(o)
	}

	for _, s := range cfg.Stream() {
		if _, err := r.HandleConfiguration(s.Key, s.Value); err != nil {
			return fmt.Errorf("invalid setting %s: %w", s.Key, err)
		}
	}

	return nil
}
