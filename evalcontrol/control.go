package evalcontrol

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/madscore/mads"
	"github.com/madscore/mads/barrier"
	"github.com/madscore/mads/cache"
	"github.com/sirupsen/logrus"
)

// MainThreadInfo mirrors NOMAD's EvcMainThreadInfo: the counters and
// flags the main driver thread consults between blocks to decide
// whether to keep polling.
type MainThreadInfo struct {
	BBEval         int64
	EvalCount      int64
	BlockEvalCount int64
	LastSuccess    barrier.SuccessType
	StopReason     string
}

// Options configures a Control: the stop conditions and concurrency
// parameters of spec.md 4.6.
type Options struct {
	Workers             int
	MaxBBEval           int64 // <=0 means unlimited
	MaxEval             int64
	MaxBlockEval        int64
	BBMaxBlockSize      int
	Opportunistic       bool
	ClearQueueOnSuccess bool
	EvalType            mads.EvalType
}

// Control runs blocks of the evaluation queue through a fixed-size
// worker pool and a single aggregator goroutine, following gonum
// optimize's distributor/worker-pool/stats-combiner split so that
// every counter update and barrier update happens on one goroutine.
type Control struct {
	eval  Evaluator
	cache *cache.Cache
	opts  Options

	info MainThreadInfo
}

// New returns a Control ready to run blocks against eval, deduping
// through c and honoring opts's stop conditions.
func New(eval Evaluator, c *cache.Cache, opts Options) *Control {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BBMaxBlockSize <= 0 {
		opts.BBMaxBlockSize = opts.Workers
	}
	return &Control{eval: eval, cache: c, opts: opts}
}

// Info returns a snapshot of the running counters.
func (c *Control) Info() MainThreadInfo { return c.info }

// evaluateBlock runs the given already-cache-resolved misses through
// the configured Evaluator: a single EvaluateBlock call if it
// implements BlockEvaluator, per spec.md 4.6/6's "hand the block to
// the Evaluator" one-file-one-launch contract, or else a per-point
// fallback loop (still concurrent, bounded by Workers) for evaluators
// that only know how to do one point at a time.
func (c *Control) evaluateBlock(ctx context.Context, misses []*mads.EvalPoint) {
	if len(misses) == 0 {
		return
	}
	if be, ok := c.eval.(BlockEvaluator); ok {
		if err := be.EvaluateBlock(ctx, misses, c.opts.EvalType); err != nil {
			logrus.WithError(err).Warn("evalcontrol: block evaluation failed")
		}
		return
	}

	jobs := make(chan *mads.EvalPoint, len(misses))
	var wg sync.WaitGroup
	workers := c.opts.Workers
	if workers > len(misses) {
		workers = len(misses)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if err := c.eval.Evaluate(ctx, p, c.opts.EvalType); err != nil {
					logrus.WithError(err).Warn("evalcontrol: evaluation failed")
				}
			}
		}()
	}
	for _, p := range misses {
		jobs <- p
	}
	close(jobs)
	wg.Wait()
}

// runBlock resolves one block against the cache, hands the genuine
// misses to the evaluator as a single unit, and returns the evaluated
// points in submission order plus the count actually sent to the
// evaluator (as opposed to resolved as cache hits) — the count
// spec.md 8's nbEval == nbEvalSentToEvaluator + nbCacheHits invariant
// needs kept separate from the total point count. It touches no
// Control state: callers update counters and the barrier themselves,
// since runBlock now runs concurrently from multiple persistent
// workers.
func (c *Control) runBlock(ctx context.Context, block []EvalQueuePoint) (results []*mads.EvalPoint, sent int) {
	results = make([]*mads.EvalPoint, len(block))
	misses := make([]*mads.EvalPoint, 0, len(block))
	for i, item := range block {
		resolved, hit := c.cache.SmartInsert(item.Point, c.opts.EvalType)
		results[i] = resolved
		if !hit {
			misses = append(misses, resolved)
		}
	}
	// evaluateBlock mutates each miss's Eval in place, so results[i]
	// (the same *mads.EvalPoint) already reflects the outcome.
	c.evaluateBlock(ctx, misses)
	return results, len(misses)
}

// stopReason reports the first stop condition Control's counters have
// crossed, or "" if none has.
func (c *Control) stopReason() string {
	switch {
	case c.opts.MaxBBEval > 0 && c.info.BBEval >= c.opts.MaxBBEval:
		return "MAX_BB_EVAL_REACHED"
	case c.opts.MaxEval > 0 && c.info.EvalCount >= c.opts.MaxEval:
		return "MAX_EVAL_REACHED"
	case c.opts.MaxBlockEval > 0 && c.info.BlockEvalCount >= c.opts.MaxBlockEval:
		return "MAX_BLOCK_EVAL_REACHED"
	default:
		return ""
	}
}

// blockOutcome is what a worker goroutine hands back to Run's
// aggregator loop for one popped block.
type blockOutcome struct {
	points []*mads.EvalPoint
	sent   int
}

// Run spins up opts.Workers persistent goroutines that independently
// pop blocks of at most BBMaxBlockSize off queue (guarded by a shared
// mutex) and evaluate them, following spec.md 5's fixed thread pool:
// unlike a design that dispatches one block, waits for it, then pops
// the next, every worker can have a block in flight at once, so up to
// Workers blocks evaluate concurrently. Only the single goroutine
// running Run itself (the aggregator) ever touches c.info or calls
// b.UpdateWithPoints, so counters and the barrier never race even
// though evaluation is concurrent.
//
// If Opportunistic is set, the aggregator stops accepting new blocks
// as soon as one achieves at least PartialSuccess (clearing queue too
// if ClearQueueOnSuccess is set); in every stopping case, workers
// finish whatever block they already popped before exiting, per
// spec.md 5's cancellation semantics. A worker pops its next block
// only after the aggregator has processed its previous one, so a stop
// decided on that block is seen first. Run returns the best SuccessType
// seen and the stop reason that ended it (empty if the queue drained
// naturally).
func (c *Control) Run(ctx context.Context, queue *Queue, b *barrier.Barrier) (barrier.SuccessType, string) {
	heap.Init(queue)
	best := barrier.Unsuccessful

	var qmu sync.Mutex
	var stopping atomic.Bool
	outcomes := make(chan blockOutcome)
	acks := make(chan struct{})

	popBlock := func() ([]EvalQueuePoint, bool) {
		qmu.Lock()
		defer qmu.Unlock()
		if queue.Len() == 0 {
			return nil, false
		}
		return PopBlock(queue, c.opts.BBMaxBlockSize), true
	}

	workers := c.opts.Workers
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				if stopping.Load() || ctx.Err() != nil {
					return
				}
				block, ok := popBlock()
				if !ok {
					return
				}
				points, sent := c.runBlock(ctx, block)
				outcomes <- blockOutcome{points: points, sent: sent}
				<-acks
			}
		}()
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	reason := ""
	for outcome := range outcomes {
		c.info.EvalCount += int64(len(outcome.points))
		if c.opts.EvalType == mads.EvalTypeBB {
			c.info.BBEval += int64(outcome.sent)
		}
		c.info.BlockEvalCount++

		st := b.UpdateWithPoints(outcome.points)
		best = best.Max(st)
		c.info.LastSuccess = best

		if reason != "" {
			acks <- struct{}{}
			continue
		}
		switch counterReason := c.stopReason(); {
		case ctx.Err() != nil:
			reason = "CTRL_C"
		case counterReason != "":
			reason = counterReason
		case c.opts.Opportunistic && best >= barrier.PartialSuccess:
			reason = "OPPORTUNISTIC_SUCCESS"
			if c.opts.ClearQueueOnSuccess {
				qmu.Lock()
				*queue = (*queue)[:0]
				qmu.Unlock()
			}
		}
		if reason != "" {
			stopping.Store(true)
		}
		acks <- struct{}{}
	}

	c.info.StopReason = reason
	return best, reason
}

// WaitForIdle busy-waits in small increments until there are no
// in-flight evaluations; Control's Run is synchronous so this is only
// needed by callers that launch Run in its own goroutine and want to
// join without a direct channel.
func WaitForIdle(currentlyRunning *int64, backoff time.Duration) {
	for atomic.LoadInt64(currentlyRunning) > 0 {
		time.Sleep(backoff)
	}
}
