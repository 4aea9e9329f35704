// Package dispatch applies scalar functions across array views.
//
// Every elementwise pass is embarrassingly parallel: output element i depends
// only on the co-indexed input elements. The Engine therefore splits the flat
// index range into chunks and runs them on a persistent worker pool, in no
// particular order.
package dispatch

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/pkg/errors"

	"github.com/born-ml/transform/internal/parallel"
)

// ErrClosed is returned by passes issued after Close.
var ErrClosed = errors.New("dispatch engine closed")

// Config controls an Engine.
type Config struct {
	Parallel parallel.Config // Worker count and minimum chunk size.
	Logger   *slog.Logger    // Nil means slog.Default().
}

// DefaultConfig returns a configuration sized for the current machine.
func DefaultConfig() Config {
	return Config{Parallel: parallel.DefaultConfig()}
}

// Engine runs elementwise passes. It holds no per-call state and is safe
// for concurrent use as long as concurrent passes write to disjoint buffers.
type Engine struct {
	pool   *parallel.Pool
	logger *slog.Logger
	closed atomic.Bool
}

// New creates an engine and starts its workers.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		pool:   parallel.NewPool(cfg.Parallel),
		logger: logger,
	}
	logger.Debug("dispatch engine started",
		"simd", hwy.CurrentName(),
		"workers", e.pool.NumWorkers(),
		"min_chunk", e.pool.Config().MinChunkSize)
	return e
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine, created on first use with
// DefaultConfig. It is never closed.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New(DefaultConfig())
	})
	return defaultEngine
}

// NumWorkers returns the number of goroutines used for large passes.
func (e *Engine) NumWorkers() int {
	return e.pool.NumWorkers()
}

// SIMD returns the name of the vector instruction set kernels dispatch to.
func (e *Engine) SIMD() string {
	return hwy.CurrentName()
}

// Close stops the workers. Passes issued afterwards fail with ErrClosed.
// Close must not race with running passes.
func (e *Engine) Close() {
	if e.closed.Swap(true) {
		return
	}
	e.pool.Close()
	e.logger.Debug("dispatch engine closed")
}

func (e *Engine) check() error {
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}
