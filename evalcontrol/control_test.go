package evalcontrol

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/madscore/mads"
	"github.com/madscore/mads/barrier"
	"github.com/madscore/mads/cache"
)

type objEvaluator struct {
	f func(x float64) float64
}

func (e objEvaluator) Evaluate(_ context.Context, p *mads.EvalPoint, evalType mads.EvalType) error {
	x, _ := p.Point.Coords[0].Value()
	ev := p.Eval(evalType)
	ev.SetOutputs(mads.ArrayOfDoubleFromFloat64([]float64{e.f(x)}), mads.BBOutputTypeList{mads.BBOutputObj})
	ev.Status = mads.EvalOK
	return nil
}

func queueOf(points []*mads.EvalPoint) *Queue {
	q := make(Queue, len(points))
	for i, p := range points {
		q[i] = EvalQueuePoint{Point: p, EvalType: mads.EvalTypeBB, Priority: float64(i)}
	}
	return &q
}

func TestRunDrainsQueueAndUpdatesBarrier(t *testing.T) {
	eval := objEvaluator{f: func(x float64) float64 { return x * x }}
	c := New(eval, cache.New(), Options{Workers: 2, BBMaxBlockSize: 4})
	b := barrier.New(mads.PosInfinity(), 0.1)

	points := []*mads.EvalPoint{
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{3})),
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{-1})),
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{0.5})),
	}
	q := queueOf(points)

	st, reason := c.Run(context.Background(), q, b)
	if reason != "" {
		t.Fatalf("unexpected stop reason %q", reason)
	}
	if st != barrier.FullSuccess {
		t.Fatalf("expected FullSuccess from an empty barrier, got %v", st)
	}
	inc := b.GetCurrentIncumbentFeas()
	if f, _ := inc.F().Value(); f != 0.25 {
		t.Fatalf("incumbent f = %v, want 0.25 (x=0.5)", f)
	}
	if c.Info().BBEval != 3 {
		t.Fatalf("BBEval = %d, want 3", c.Info().BBEval)
	}
}

func TestRunStopsAtMaxBBEval(t *testing.T) {
	eval := objEvaluator{f: func(x float64) float64 { return x }}
	c := New(eval, cache.New(), Options{Workers: 1, BBMaxBlockSize: 1, MaxBBEval: 2})
	b := barrier.New(mads.PosInfinity(), 0.1)

	points := []*mads.EvalPoint{
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{1})),
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{2})),
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{3})),
	}
	q := queueOf(points)
	_, reason := c.Run(context.Background(), q, b)
	if reason != "MAX_BB_EVAL_REACHED" {
		t.Fatalf("stop reason = %q, want MAX_BB_EVAL_REACHED", reason)
	}
	if c.Info().BBEval != 2 {
		t.Fatalf("BBEval = %d, want 2", c.Info().BBEval)
	}
}

// slowEvaluator tracks how many Evaluate calls are in flight at once,
// so a test can tell a genuine concurrent worker pool apart from one
// that merely dispatches blocks one at a time.
type slowEvaluator struct {
	f             func(x float64) float64
	concurrent    int32
	maxConcurrent int32
}

func (e *slowEvaluator) Evaluate(_ context.Context, p *mads.EvalPoint, evalType mads.EvalType) error {
	n := atomic.AddInt32(&e.concurrent, 1)
	for {
		old := atomic.LoadInt32(&e.maxConcurrent)
		if n <= old || atomic.CompareAndSwapInt32(&e.maxConcurrent, old, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	atomic.AddInt32(&e.concurrent, -1)

	x, _ := p.Point.Coords[0].Value()
	ev := p.Eval(evalType)
	ev.SetOutputs(mads.ArrayOfDoubleFromFloat64([]float64{e.f(x)}), mads.BBOutputTypeList{mads.BBOutputObj})
	ev.Status = mads.EvalOK
	return nil
}

// TestRunDispatchesMultipleBlocksConcurrently answers the review
// complaint that BB_MAX_BLOCK_SIZE=1 left Workers unconsulted past the
// first point: with 8 workers and a block size of 1, at least two
// single-point blocks must be in flight at once.
func TestRunDispatchesMultipleBlocksConcurrently(t *testing.T) {
	eval := &slowEvaluator{f: func(x float64) float64 { return x }}
	c := New(eval, cache.New(), Options{Workers: 8, BBMaxBlockSize: 1})
	b := barrier.New(mads.PosInfinity(), 0.1)

	points := make([]*mads.EvalPoint, 8)
	for i := range points {
		points[i] = mads.NewEvalPoint(mads.PointFromFloat64([]float64{float64(i)}))
	}
	q := queueOf(points)

	_, reason := c.Run(context.Background(), q, b)
	if reason != "" {
		t.Fatalf("unexpected stop reason %q", reason)
	}
	if got := atomic.LoadInt32(&eval.maxConcurrent); got < 2 {
		t.Fatalf("max concurrent evaluations = %d, want >= 2 with Workers=8, BBMaxBlockSize=1", got)
	}
}

// blockEvaluator implements BlockEvaluator and records how many times
// EvaluateBlock was called, to confirm Control hands a whole block to
// the evaluator as a single unit instead of looping Evaluate per point.
type blockEvaluator struct {
	calls int32
}

func (e *blockEvaluator) Evaluate(ctx context.Context, p *mads.EvalPoint, evalType mads.EvalType) error {
	return e.EvaluateBlock(ctx, []*mads.EvalPoint{p}, evalType)
}

func (e *blockEvaluator) EvaluateBlock(_ context.Context, points []*mads.EvalPoint, evalType mads.EvalType) error {
	atomic.AddInt32(&e.calls, 1)
	for _, p := range points {
		x, _ := p.Point.Coords[0].Value()
		ev := p.Eval(evalType)
		ev.SetOutputs(mads.ArrayOfDoubleFromFloat64([]float64{x * x}), mads.BBOutputTypeList{mads.BBOutputObj})
		ev.Status = mads.EvalOK
	}
	return nil
}

func TestRunUsesBlockEvaluatorOncePerBlock(t *testing.T) {
	eval := &blockEvaluator{}
	c := New(eval, cache.New(), Options{Workers: 1, BBMaxBlockSize: 4})
	b := barrier.New(mads.PosInfinity(), 0.1)

	points := []*mads.EvalPoint{
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{1})),
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{2})),
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{3})),
	}
	q := queueOf(points)
	_, reason := c.Run(context.Background(), q, b)
	if reason != "" {
		t.Fatalf("unexpected stop reason %q", reason)
	}
	if got := atomic.LoadInt32(&eval.calls); got != 1 {
		t.Fatalf("EvaluateBlock called %d times, want 1 for a single 3-point block", got)
	}
}

func TestRunCountsCacheHitsSeparatelyFromBBEval(t *testing.T) {
	// BBMaxBlockSize:1 with a single worker keeps the two duplicate
	// points in separate blocks processed one after the other, so the
	// second one's SmartInsert finds the first's completed OK eval
	// rather than racing it within the same block.
	eval := objEvaluator{f: func(x float64) float64 { return x }}
	c := New(eval, cache.New(), Options{Workers: 1, BBMaxBlockSize: 1})
	b := barrier.New(mads.PosInfinity(), 0.1)

	points := []*mads.EvalPoint{
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{2})),
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{2})), // same coordinates: a cache hit
	}
	q := queueOf(points)
	_, reason := c.Run(context.Background(), q, b)
	if reason != "" {
		t.Fatalf("unexpected stop reason %q", reason)
	}
	if c.Info().EvalCount != 2 {
		t.Fatalf("EvalCount = %d, want 2 (both points processed)", c.Info().EvalCount)
	}
	if c.Info().BBEval != 1 {
		t.Fatalf("BBEval = %d, want 1 (only the genuine send, not the cache hit)", c.Info().BBEval)
	}
}

func TestRunOpportunismStopsEarly(t *testing.T) {
	eval := objEvaluator{f: func(x float64) float64 { return x }}
	c := New(eval, cache.New(), Options{Workers: 1, BBMaxBlockSize: 1, Opportunistic: true, ClearQueueOnSuccess: true})
	b := barrier.New(mads.PosInfinity(), 0.1)

	points := []*mads.EvalPoint{
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{1})),
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{2})),
		mads.NewEvalPoint(mads.PointFromFloat64([]float64{3})),
	}
	q := queueOf(points)
	_, reason := c.Run(context.Background(), q, b)
	if reason != "OPPORTUNISTIC_SUCCESS" {
		t.Fatalf("stop reason = %q, want OPPORTUNISTIC_SUCCESS", reason)
	}
	if q.Len() != 0 {
		t.Fatalf("ClearQueueOnSuccess should have emptied the queue, got %d left", q.Len())
	}
}
