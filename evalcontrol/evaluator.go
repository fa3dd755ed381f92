// Package evalcontrol runs blackbox evaluations against a work queue
// with a fixed-size worker pool, one single-goroutine aggregator
// serializing every stats update, and the usual MADS stopping and
// opportunism rules layered on top: directly modeled on gonum's
// optimize package worker-pool/aggregator pattern for concurrent
// function evaluation.
package evalcontrol

import (
	"context"

	"github.com/madscore/mads"
)

// Evaluator runs one blackbox (or surrogate/model) evaluation on p,
// filling in p.Eval(evalType) and returning an error only for
// infrastructure failures; a blackbox-reported failure belongs in the
// Eval's Status, not in the returned error. blackbox.ExecEvaluator
// returns an error only when its input temp file cannot be created,
// written or closed; an executable that cannot be launched marks the
// points EvalError and returns nil.
type Evaluator interface {
	Evaluate(ctx context.Context, p *mads.EvalPoint, evalType mads.EvalType) error
}

// BlockEvaluator is the optional block-level entry point spec.md 4.6
// and 6 describe: an evaluator that can submit an entire block to an
// external process in one shot (one temp file, one row per point, one
// launch) rather than once per point. Control prefers EvaluateBlock
// when the configured Evaluator implements it and falls back to
// calling Evaluate once per point otherwise.
type BlockEvaluator interface {
	EvaluateBlock(ctx context.Context, points []*mads.EvalPoint, evalType mads.EvalType) error
}
