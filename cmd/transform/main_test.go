package main

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/transform/internal/function"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--workers", "2", "--min-parallel", "64"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "transform "+version+"\n", out)
}

func TestList(t *testing.T) {
	out, err := run(t, "list")
	require.NoError(t, err)
	for _, name := range function.DefaultRegistry().Names() {
		assert.Contains(t, out, name)
	}
	assert.True(t, strings.HasPrefix(out, "NAME"))
}

func TestEval(t *testing.T) {
	out, err := run(t, "eval", "SoftSign", "--", "-1", "0", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"-1", "-0.5", "0.25"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"0", "0", "1"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"3", "0.75", "0.0625"}, strings.Fields(lines[3]))
}

func TestEvalSign(t *testing.T) {
	out, err := run(t, "eval", "Sign", "--dtype", "float32", "--", "-2", "0")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"-2", "-1", "1"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"0", "1", "1"}, strings.Fields(lines[2]))
}

func TestPrintEvalNoGrad(t *testing.T) {
	fn, err := function.New[float64](function.Config{
		Name:    "Floor",
		Forward: math.Floor,
		NoGrad:  true,
	}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printEval(&out, fn, []float64{2.5}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"2.5", "2", "-"}, strings.Fields(lines[1]))
}

func TestEvalErrors(t *testing.T) {
	_, err := run(t, "eval", "SoftSign", "abc")
	assert.Error(t, err)

	_, err = run(t, "eval", "SoftSign", "--dtype", "int8", "1")
	assert.Error(t, err)

	_, err = run(t, "eval", "Nope", "1")
	assert.ErrorIs(t, err, function.ErrUnknownFunction)
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "SoftSign")
	require.NoError(t, err)
	assert.Contains(t, out, "SoftSign: gradient ok")

	out, err = run(t, "check", "SoftPlus", "--arg", "2", "--points", "11")
	require.NoError(t, err)
	assert.Contains(t, out, "11 points")

	// Straight-through gradients do not match finite differences.
	_, err = run(t, "check", "Sign")
	assert.ErrorIs(t, err, function.ErrGradientCheck)

	_, err = run(t, "check", "SoftSign", "--points", "1")
	assert.Error(t, err)
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "SoftSign", "--size", "1000", "--jobs", "3", "--iters", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "SoftSign: 3 jobs x 2 iters x 1000 elements")

	_, err = run(t, "bench", "SoftSign", "--size", "0")
	assert.Error(t, err)
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "simd")
	assert.Contains(t, out, "workers")
	assert.Contains(t, out, version)
}
