// Package parallel provides chunked parallel execution over index ranges.
package parallel

import (
	"runtime"
	"sync"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per chunk to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.GOMAXPROCS(0)
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Pool runs chunked loops on a persistent set of workers.
// A Pool is safe for concurrent use; Close must not race with For.
type Pool struct {
	cfg     Config
	workers *workerpool.Pool // nil when parallelism is disabled
	once    sync.Once
}

// NewPool creates a pool for cfg. Workers are spawned only if cfg.Enabled.
func NewPool(cfg Config) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.GOMAXPROCS(0)
	}
	if cfg.MinChunkSize <= 0 {
		cfg.MinChunkSize = 1
	}
	p := &Pool{cfg: cfg}
	if cfg.Enabled && cfg.NumWorkers > 1 {
		p.workers = workerpool.New(cfg.NumWorkers)
	}
	return p
}

// Config returns the configuration the pool was created with.
func (p *Pool) Config() Config {
	return p.cfg
}

// NumWorkers returns the number of goroutines used for parallel loops.
func (p *Pool) NumWorkers() int {
	if p.workers == nil {
		return 1
	}
	return p.workers.NumWorkers()
}

// For calls f(start, end) over disjoint chunks covering [0, n).
// Falls back to a single sequential call if parallelism is disabled or n is
// below the minimum chunk size.
func (p *Pool) For(n int, f func(start, end int)) {
	if n <= 0 {
		return
	}
	if p.workers == nil || n < p.cfg.MinChunkSize {
		f(0, n)
		return
	}
	p.workers.ParallelForAtomicBatched(n, p.cfg.MinChunkSize, f)
}

// Close stops the workers. Loops issued afterwards run sequentially.
func (p *Pool) Close() {
	p.once.Do(func() {
		if p.workers != nil {
			p.workers.Close()
		}
	})
}
