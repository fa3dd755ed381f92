package evalcontrol

import (
	"container/heap"

	"github.com/madscore/mads"
)

// EvalQueuePoint is one entry of the evaluation queue: the point to
// evaluate, the tier to evaluate it under, and a priority used to
// order the queue (lower sorts first). Priority has no default: the
// caller sets it. The iteration driver uses the point's Tag
// (generation order); other callers may rank differently, e.g. by
// distance to the frame center.
type EvalQueuePoint struct {
	Point    *mads.EvalPoint
	EvalType mads.EvalType
	Priority float64
}

// Queue is a priority queue of EvalQueuePoint ordered by ascending
// Priority, implementing container/heap.Interface.
type Queue []EvalQueuePoint

func (q Queue) Len() int            { return len(q) }
func (q Queue) Less(i, j int) bool  { return q[i].Priority < q[j].Priority }
func (q Queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *Queue) Push(x interface{}) { *q = append(*q, x.(EvalQueuePoint)) }
func (q *Queue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// PopBlock removes and returns up to n items from q via repeated
// heap.Pop, in priority order, for a single evaluation block. q must
// already be heap-ordered (heap.Init or prior PopBlock/heap.Push
// calls).
func PopBlock(q *Queue, n int) []EvalQueuePoint {
	block := make([]EvalQueuePoint, 0, n)
	for q.Len() > 0 && len(block) < n {
		block = append(block, heap.Pop(q).(EvalQueuePoint))
	}
	return block
}
