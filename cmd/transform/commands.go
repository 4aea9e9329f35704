package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/transform/internal/dispatch"
	"github.com/born-ml/transform/internal/function"
	"github.com/born-ml/transform/internal/tensor"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := function.DefaultRegistry()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tIN-PLACE\tSOURCE\tGRAD\tDESCRIPTION")
			for _, name := range r.Names() {
				cfg, err := r.Create(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%t\t%s\t%t\t%s\n", name, cfg.InPlace, cfg.Source, !cfg.NoGrad, cfg.Doc)
			}
			return tw.Flush()
		},
	}
}

func newEvalCmd(opts *options) *cobra.Command {
	var (
		args  []float64
		dtype string
	)
	cmd := &cobra.Command{
		Use:   "eval NAME VALUE...",
		Short: "Evaluate a function and its gradient at the given values",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, argv []string) error {
			values, err := parseValues(argv[1:])
			if err != nil {
				return err
			}
			dt, ok := tensor.ParseDataType(dtype)
			if !ok {
				return errors.Errorf("unknown dtype %q", dtype)
			}
			w := cmd.OutOrStdout()
			if dt == tensor.Float32 {
				return evalAs[float32](w, opts.engine, argv[0], args, values)
			}
			return evalAs[float64](w, opts.engine, argv[0], args, values)
		},
	}
	addArgFlag(cmd.Flags(), &args)
	cmd.Flags().StringVar(&dtype, "dtype", "float64", "element type: float32 or float64")
	return cmd
}

// addArgFlag registers --arg, the creator arguments of the named function.
func addArgFlag(f *pflag.FlagSet, args *[]float64) {
	f.Float64SliceVar(args, "arg", nil, "function argument (repeatable)")
}

func parseValues(s []string) ([]float64, error) {
	values := make([]float64, len(s))
	for i, v := range s {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", i)
		}
		values[i] = f
	}
	return values, nil
}

func evalAs[T tensor.Float](w io.Writer, e *dispatch.Engine, name string, args, values []float64) error {
	fn, err := function.Build[T](function.DefaultRegistry(), name, e, args...)
	if err != nil {
		return err
	}
	return printEval(w, fn, values)
}

// printEval prints x, f(x) and the gradient of sum(f(x)) for each value.
// The gradient column is "-" when fn is not differentiable.
func printEval[T tensor.Float](w io.Writer, fn *function.UnaryTransform[T], values []float64) error {
	n := len(values)
	data := make([]T, n)
	for i, v := range values {
		data[i] = T(v)
	}
	x, err := tensor.FromSlice(data, tensor.Shape{n})
	if err != nil {
		return err
	}
	y, _ := tensor.NewView[T](tensor.Shape{n})
	in, out := []*tensor.View[T]{x}, []*tensor.View[T]{y}
	if err := fn.Forward(in, out); err != nil {
		return err
	}

	var gx *tensor.View[T]
	if fn.Differentiable() {
		gy, _ := tensor.NewView[T](tensor.Shape{n})
		gy.Fill(1)
		gx, _ = tensor.NewView[T](tensor.Shape{n})
		if err := fn.Backward(in, out, []*tensor.View[T]{gy}, []*tensor.View[T]{gx}, nil); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "X\tY\tDX")
	for i := range n {
		dx := "-"
		if gx != nil {
			dx = fmt.Sprint(gx.At(i))
		}
		fmt.Fprintf(tw, "%v\t%v\t%s\n", x.At(i), y.At(i), dx)
	}
	return tw.Flush()
}

func newCheckCmd() *cobra.Command {
	var (
		args      []float64
		lo, hi    float64
		points    int
		step, tol float64
	)
	cmd := &cobra.Command{
		Use:   "check NAME",
		Short: "Compare a function's gradient with finite differences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			if points < 2 || !(lo < hi) {
				return errors.Errorf("need at least 2 points on a non-empty range, got %d on [%g, %g]", points, lo, hi)
			}
			cfg, err := function.DefaultRegistry().Create(argv[0], args...)
			if err != nil {
				return err
			}
			grid := floats.Span(make([]float64, points), lo, hi)
			if err := function.CheckGradient(cfg, grid, step, tol); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: gradient ok at %d points in [%g, %g]\n", cfg.Name, points, lo, hi)
			return nil
		},
	}
	f := cmd.Flags()
	addArgFlag(f, &args)
	f.Float64Var(&lo, "from", -4, "grid start")
	f.Float64Var(&hi, "to", 4, "grid end")
	f.IntVar(&points, "points", 81, "grid points")
	f.Float64Var(&step, "step", 1e-6, "finite difference step")
	f.Float64Var(&tol, "tol", 1e-5, "relative tolerance")
	return cmd
}

func newBenchCmd(opts *options) *cobra.Command {
	var (
		args  []float64
		size  int
		jobs  int
		iters int
	)
	cmd := &cobra.Command{
		Use:   "bench NAME",
		Short: "Measure forward throughput on float32 arrays",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			if size < 1 || jobs < 1 || iters < 1 {
				return errors.Errorf("size, jobs and iters must be positive")
			}
			fn, err := function.Build[float32](function.DefaultRegistry(), argv[0], opts.engine, args...)
			if err != nil {
				return err
			}

			start := time.Now()
			g, ctx := errgroup.WithContext(cmd.Context())
			for j := range jobs {
				g.Go(func() error {
					return benchJob(ctx, fn, size, iters, j)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			elapsed := time.Since(start)

			total := float64(size) * float64(jobs) * float64(iters)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d jobs x %d iters x %d elements in %v (%.1f Melem/s, simd=%s, workers=%d)\n",
				fn.Name(), jobs, iters, size, elapsed.Round(time.Microsecond),
				total/elapsed.Seconds()/1e6, opts.engine.SIMD(), opts.engine.NumWorkers())
			return nil
		},
	}
	f := cmd.Flags()
	addArgFlag(f, &args)
	f.IntVar(&size, "size", 1<<20, "elements per array")
	f.IntVar(&jobs, "jobs", 1, "concurrent forward passes on disjoint arrays")
	f.IntVar(&iters, "iters", 20, "forward passes per job")
	return cmd
}

func benchJob(ctx context.Context, fn *function.UnaryTransform[float32], size, iters, seed int) error {
	x, err := tensor.NewView[float32](tensor.Shape{size})
	if err != nil {
		return err
	}
	y, _ := tensor.NewView[float32](tensor.Shape{size})
	for i := range size {
		x.Set(i, float32((i+seed)%2001-1000)/100)
	}
	in, out := []*tensor.View[float32]{x}, []*tensor.View[float32]{y}
	for range iters {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn.Forward(in, out); err != nil {
			return err
		}
	}
	return nil
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show SIMD target, CPU features and worker configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "version\t%s\n", version)
			fmt.Fprintf(tw, "go\t%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(tw, "simd\t%s\n", opts.engine.SIMD())
			fmt.Fprintf(tw, "workers\t%d\n", opts.engine.NumWorkers())
			fmt.Fprintf(tw, "min-parallel\t%d\n", opts.minParallel)
			for _, f := range cpuFeatures() {
				fmt.Fprintf(tw, "%s\t%t\n", f.name, f.ok)
			}
			return tw.Flush()
		},
	}
}

type feature struct {
	name string
	ok   bool
}

func cpuFeatures() []feature {
	switch runtime.GOARCH {
	case "amd64", "386":
		return []feature{
			{"sse4.1", cpu.X86.HasSSE41},
			{"avx2", cpu.X86.HasAVX2},
			{"fma", cpu.X86.HasFMA},
			{"avx512f", cpu.X86.HasAVX512F},
		}
	case "arm64":
		return []feature{
			{"asimd", cpu.ARM64.HasASIMD},
			{"sve", cpu.ARM64.HasSVE},
			{"sve2", cpu.ARM64.HasSVE2},
		}
	default:
		return nil
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "transform %s\n", version)
		},
	}
}
