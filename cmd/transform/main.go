// Package main provides the transform CLI.
package main

import (
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/born-ml/transform/internal/dispatch"
	"github.com/born-ml/transform/internal/parallel"
)

const version = "v0.1.0-dev"

// options holds the global flags and the engine built from them.
type options struct {
	workers     int
	minParallel int
	verbose     bool

	logger *slog.Logger
	engine *dispatch.Engine
}

// setup installs the logger and starts the engine.
func (o *options) setup(w io.Writer) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.logger)

	o.engine = dispatch.New(dispatch.Config{
		Parallel: parallel.Config{
			Enabled:      o.workers > 1,
			NumWorkers:   o.workers,
			MinChunkSize: o.minParallel,
		},
		Logger: o.logger,
	})
}

func (o *options) close() {
	if o.engine != nil {
		o.engine.Close()
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := parallel.DefaultConfig()

	root := &cobra.Command{
		Use:           "transform",
		Short:         "Evaluate and check differentiable unary elementwise functions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.setup(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			opts.close()
		},
	}

	flags := root.PersistentFlags()
	flags.IntVar(&opts.workers, "workers", runtime.GOMAXPROCS(0), "worker goroutines for large arrays (1 disables the pool)")
	flags.IntVar(&opts.minParallel, "min-parallel", defaults.MinChunkSize, "minimum elements per parallel chunk")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newListCmd(),
		newEvalCmd(opts),
		newCheckCmd(),
		newBenchCmd(opts),
		newInfoCmd(opts),
		newVersionCmd(),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
