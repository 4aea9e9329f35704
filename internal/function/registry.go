package function

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/born-ml/transform/internal/dispatch"
	"github.com/born-ml/transform/internal/tensor"
)

// Creator builds the Config for a function from its scalar arguments.
type Creator func(args ...float64) (Config, error)

// Registry maps function names to creators.
//
// A registry is filled at start-up and then frozen; lookups on a frozen
// registry never take the write lock.
type Registry struct {
	mu       sync.RWMutex
	creators map[string]Creator
	frozen   bool
}

// NewRegistry creates a registry with all built-in functions.
func NewRegistry() *Registry {
	r := &Registry{
		creators: make(map[string]Creator),
	}

	r.registerActivations()
	r.registerMathOps()

	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the process-wide registry of built-in functions.
// It is frozen: Register on it fails with ErrRegistryFrozen.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Freeze()
	})
	return defaultRegistry
}

// Register adds a creator under name.
func (r *Registry) Register(name string, creator Creator) error {
	if name == "" || creator == nil {
		return errors.Wrapf(ErrInvalidConfig, "register %q: empty name or nil creator", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.Wrapf(ErrRegistryFrozen, "register %q", name)
	}
	if _, ok := r.creators[name]; ok {
		return errors.Wrapf(ErrDuplicateFunction, "register %q", name)
	}
	r.creators[name] = creator
	slog.Debug("function registered", "name", name)
	return nil
}

// mustRegister registers a built-in. Failure is a programming error.
func (r *Registry) mustRegister(name string, creator Creator) {
	if err := r.Register(name, creator); err != nil {
		panic(err)
	}
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Get returns the creator for name.
func (r *Registry) Get(name string) (Creator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.creators[name]
	return c, ok
}

// Create returns the Config of function name built with args.
func (r *Registry) Create(name string, args ...float64) (Config, error) {
	creator, ok := r.Get(name)
	if !ok {
		return Config{}, errors.Wrapf(ErrUnknownFunction, "%q", name)
	}
	cfg, err := creator(args...)
	if err != nil {
		return Config{}, errors.Wrapf(err, "create %s", name)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.creators))
	for name := range r.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates function name from r and binds it to element type T.
// A nil engine means dispatch.Default().
func Build[T tensor.Float](r *Registry, name string, e *dispatch.Engine, args ...float64) (*UnaryTransform[T], error) {
	cfg, err := r.Create(name, args...)
	if err != nil {
		return nil, err
	}
	return New[T](cfg, e)
}

// noArgs wraps a fixed config as a creator that rejects arguments.
func noArgs(cfg Config) Creator {
	return func(args ...float64) (Config, error) {
		if len(args) != 0 {
			return Config{}, errors.Wrapf(ErrInvalidArgument, "%s takes no arguments, got %d", cfg.Name, len(args))
		}
		return cfg, nil
	}
}

// optionalArg returns args[0], or def when no argument is given.
func optionalArg(name string, args []float64, def float64) (float64, error) {
	switch len(args) {
	case 0:
		return def, nil
	case 1:
		return args[0], nil
	default:
		return 0, errors.Wrapf(ErrInvalidArgument, "%s takes at most 1 argument, got %d", name, len(args))
	}
}
