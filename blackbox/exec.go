// Package blackbox provides the two Evaluator implementations
// evalcontrol drives: ExecEvaluator shells out to an external
// executable per spec.md 6's <BB_EXE> <tempfile> contract, and
// FuncEvaluator is an in-process stand-in for tests and for problems
// cheap enough to run without a subprocess, grounded on gonum
// optimize's Problem.Func convention.
package blackbox

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/madscore/mads"
)

// ExecEvaluator runs an external executable against a single temp file
// holding one row per point in the block, and parses the executable's
// stdout as one whitespace-separated output row per point, in order.
// A non-zero exit status, or a line count that doesn't match the
// block, marks every point's Eval as EvalError for the whole block,
// following spec.md 6's ERROR contract.
type ExecEvaluator struct {
	Path  string
	Types mads.BBOutputTypeList
}

// Evaluate runs a single point through EvaluateBlock, so the one-file-
// one-launch batching logic lives in exactly one place.
func (e ExecEvaluator) Evaluate(ctx context.Context, p *mads.EvalPoint, evalType mads.EvalType) error {
	return e.EvaluateBlock(ctx, []*mads.EvalPoint{p}, evalType)
}

// EvaluateBlock writes the whole block to one temporary file, one row
// per point, and launches the executable once against it, per
// spec.md 4.6's "hand the block to the Evaluator (which may submit all
// at once to an external process)" and spec.md 6's <BB_EXE> <tempfile>
// contract: the temp file is reused across the points of this block
// and removed once the process returns.
func (e ExecEvaluator) EvaluateBlock(ctx context.Context, points []*mads.EvalPoint, evalType mads.EvalType) error {
	if len(points) == 0 {
		return nil
	}

	tmp, err := os.CreateTemp("", "mads-bb-*.txt")
	if err != nil {
		return fmt.Errorf("blackbox: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, p := range points {
		for i, c := range p.Point.Coords {
			if i > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprint(w, c.String())
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("blackbox: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("blackbox: closing temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.Path, tmp.Name())
	out, err := cmd.Output()
	if err != nil {
		for _, p := range points {
			p.Eval(evalType).Status = mads.EvalError
		}
		return nil
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != len(points) {
		for _, p := range points {
			p.Eval(evalType).Status = mads.EvalError
		}
		return nil
	}

	for i, p := range points {
		ev := p.Eval(evalType)
		fields := strings.Fields(lines[i])
		raw := make(mads.ArrayOfDouble, len(fields))
		bad := false
		for j, f := range fields {
			v, perr := strconv.ParseFloat(f, 64)
			if perr != nil {
				bad = true
				break
			}
			raw[j] = mads.NewDouble(v)
		}
		if bad {
			ev.Status = mads.EvalError
			continue
		}
		ev.SetOutputs(raw, e.Types)
		ev.Status = mads.EvalOK
	}
	return nil
}

// FuncEvaluator wraps a plain Go function as an Evaluator, for tests
// and for objectives cheap enough to evaluate in-process.
type FuncEvaluator struct {
	Func  func(x []float64) []float64
	Types mads.BBOutputTypeList
}

func (e FuncEvaluator) Evaluate(_ context.Context, p *mads.EvalPoint, evalType mads.EvalType) error {
	raw := e.Func(p.Point.Coords.ToFloat64())
	ev := p.Eval(evalType)
	ev.SetOutputs(mads.ArrayOfDoubleFromFloat64(raw), e.Types)
	ev.Status = mads.EvalOK
	return nil
}
