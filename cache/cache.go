// Package cache deduplicates blackbox evaluations by point, keyed by
// a SHA-1 hash of the point's coordinates, following the hashing
// technique pattern-search codebases in the wild use for the same
// purpose.
package cache

import (
	"crypto/sha1"
	"encoding/binary"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/madscore/mads"
)

// Key is the SHA-1 digest of a Point's coordinate vector.
type Key [sha1.Size]byte

// HashPoint returns the cache key for p: the big-endian IEEE 754 bits
// of each coordinate, concatenated and hashed. Undefined coordinates
// hash as math.NaN's bit pattern, giving them a stable but
// non-colliding-with-any-finite-value key.
func HashPoint(p mads.Point) Key {
	data := make([]byte, len(p.Coords)*8)
	for i, c := range p.Coords {
		v, ok := c.Value()
		if !ok {
			v = math.NaN()
		}
		binary.BigEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}
	return sha1.Sum(data)
}

// Cache is a single-lock point store shared by every evaluator tier.
// Readers that need to hold onto a result past the call should copy
// what they need out before releasing control back to the cache,
// since the returned *mads.EvalPoint may still be mutated by a
// concurrent evaluation.
type Cache struct {
	mu   sync.Mutex
	byID map[Key]*mads.EvalPoint

	nbCacheHits int64 // blackbox-tier hits only
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{byID: make(map[Key]*mads.EvalPoint)}
}

// NbCacheHits returns the number of blackbox-tier lookups that found
// an existing OK evaluation, the counter spec.md 4.5 and the CACHE_HITS
// persistence header both refer to.
func (c *Cache) NbCacheHits() int64 { return atomic.LoadInt64(&c.nbCacheHits) }

// Insert adds ep under its point's key, overwriting whatever was
// there. Used when an evaluation is known to be new.
func (c *Cache) Insert(ep *mads.EvalPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[HashPoint(ep.Point)] = ep
}

// SmartInsert looks up p's point; if an OK evaluation of evalType
// already exists, it is returned as a hit (incrementing nbCacheHits
// for the blackbox tier) instead of being re-inserted. There is no
// evaluation-count limit: any existing OK evaluation is a hit, however
// many times the point was evaluated before. Otherwise p is
// inserted (merged into any existing EvalPoint at that key) and
// returned as a miss.
func (c *Cache) SmartInsert(p *mads.EvalPoint, evalType mads.EvalType) (result *mads.EvalPoint, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := HashPoint(p.Point)
	existing, found := c.byID[key]
	if found {
		if e, ok := existing.Evals[evalType]; ok && e.Status == mads.EvalOK {
			if evalType == mads.EvalTypeBB {
				atomic.AddInt64(&c.nbCacheHits, 1)
			}
			return existing, true
		}
		if e, ok := p.Evals[evalType]; ok {
			existing.Evals[evalType] = e
		}
		return existing, false
	}
	c.byID[key] = p
	return p, false
}

// Lookup returns the EvalPoint stored under p's exact coordinates, if
// any.
func (c *Cache) Lookup(p mads.Point) (*mads.EvalPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ep, ok := c.byID[HashPoint(p)]
	return ep, ok
}

// snapshot copies out the current set of cached points under the
// lock, so predicate/distance lookups can run lock-free afterward.
func (c *Cache) snapshot() []*mads.EvalPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*mads.EvalPoint, 0, len(c.byID))
	for _, ep := range c.byID {
		out = append(out, ep)
	}
	return out
}

// Find returns every cached point for which pred returns true.
func (c *Cache) Find(pred func(*mads.EvalPoint) bool) []*mads.EvalPoint {
	var out []*mads.EvalPoint
	for _, ep := range c.snapshot() {
		if pred(ep) {
			out = append(out, ep)
		}
	}
	return out
}

// DistanceKind selects the norm FindWithinDistance measures by.
type DistanceKind = mads.NormKind

// FindWithinDistance returns every cached point within radius r of
// center under the given norm.
func (c *Cache) FindWithinDistance(center mads.Point, r float64, kind DistanceKind) []*mads.EvalPoint {
	return c.Find(func(ep *mads.EvalPoint) bool {
		d := center.DirectionTo(ep.Point)
		dist, ok := d.Norm(kind).Value()
		return ok && dist <= r
	})
}

// FindInSubspace returns every cached point whose coordinates outside
// free match fixed exactly: the fixed-variable-subspace lookup used
// when a variable group is being polled independently of the rest.
func (c *Cache) FindInSubspace(fixed mads.Point, free []int) []*mads.EvalPoint {
	isFree := make(map[int]bool, len(free))
	for _, i := range free {
		isFree[i] = true
	}
	return c.Find(func(ep *mads.EvalPoint) bool {
		if len(ep.Point.Coords) != len(fixed.Coords) {
			return false
		}
		for i, c := range fixed.Coords {
			if isFree[i] {
				continue
			}
			if !c.Equal(ep.Point.Coords[i]) {
				return false
			}
		}
		return true
	})
}

// Ordered returns every cached point with an OK blackbox evaluation,
// sorted by f ascending (feasible before infeasible isn't applied
// here; callers wanting barrier ordering should filter by IsFeasible
// first).
func (c *Cache) Ordered() []*mads.EvalPoint {
	all := c.Find(func(ep *mads.EvalPoint) bool {
		e, ok := ep.Evals[mads.EvalTypeBB]
		return ok && e.Status == mads.EvalOK
	})
	sort.SliceStable(all, func(i, j int) bool {
		fi, _ := all[i].F().Value()
		fj, _ := all[j].F().Value()
		return fi < fj
	})
	return all
}

// Update replaces the Eval for evalType on the point matching p's
// coordinates, if present, without touching any other tier's record.
func (c *Cache) Update(p mads.Point, evalType mads.EvalType, e *mads.Eval) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ep, ok := c.byID[HashPoint(p)]
	if !ok {
		return false
	}
	ep.Evals[evalType] = e
	return true
}

// Len returns the number of distinct points currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}

// Purge, when the cache holds more than maxSize points, keeps the
// maxSize points outside keep with the smallest f (an undefined f
// sorts last) plus every point in keep, and drops the rest. The cut is
// by rank only: f is not compared with the mean f of the cache. It
// returns the number of points dropped.
func (c *Cache) Purge(maxSize int, keep []*mads.EvalPoint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.byID) <= maxSize {
		return 0
	}
	protected := make(map[Key]bool, len(keep))
	for _, k := range keep {
		protected[HashPoint(k.Point)] = true
	}

	type scored struct {
		key Key
		ep  *mads.EvalPoint
		f   float64
	}
	all := make([]scored, 0, len(c.byID))
	for k, ep := range c.byID {
		f, ok := ep.F().Value()
		if !ok {
			f = math.Inf(1)
		}
		all = append(all, scored{k, ep, f})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].f < all[j].f })

	dropped := 0
	kept := 0
	for _, s := range all {
		if protected[s.key] || kept < maxSize {
			if !protected[s.key] {
				kept++
			}
			continue
		}
		delete(c.byID, s.key)
		dropped++
	}
	return dropped
}
