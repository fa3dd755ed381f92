package cache

import (
	"bytes"
	"testing"

	"github.com/madscore/mads"
)

func bbPoint(x, y float64, raw []float64, types mads.BBOutputTypeList) *mads.EvalPoint {
	ep := mads.NewEvalPoint(mads.PointFromFloat64([]float64{x, y}))
	e := ep.Eval(mads.EvalTypeBB)
	e.SetOutputs(mads.ArrayOfDoubleFromFloat64(raw), types)
	e.Status = mads.EvalOK
	return ep
}

func TestSmartInsertHitsOnRepeat(t *testing.T) {
	c := New()
	types := mads.BBOutputTypeList{mads.BBOutputObj}
	p1 := bbPoint(1, 2, []float64{3}, types)

	_, hit := c.SmartInsert(p1, mads.EvalTypeBB)
	if hit {
		t.Fatal("first insert should not be a hit")
	}
	p2 := bbPoint(1, 2, []float64{99}, types) // same point, different (stale) outputs
	result, hit := c.SmartInsert(p2, mads.EvalTypeBB)
	if !hit {
		t.Fatal("re-inserting the same point should be a cache hit")
	}
	if f, _ := result.F().Value(); f != 3 {
		t.Fatalf("hit should return the original evaluation, f = %v, want 3", f)
	}
	if c.NbCacheHits() != 1 {
		t.Fatalf("NbCacheHits = %d, want 1", c.NbCacheHits())
	}
}

func TestFindWithinDistance(t *testing.T) {
	c := New()
	types := mads.BBOutputTypeList{mads.BBOutputObj}
	c.Insert(bbPoint(0, 0, []float64{1}, types))
	c.Insert(bbPoint(5, 5, []float64{2}, types))

	near := c.FindWithinDistance(mads.PointFromFloat64([]float64{0, 0}), 1, mads.L2)
	if len(near) != 1 {
		t.Fatalf("expected 1 point within radius 1, got %d", len(near))
	}
}

func TestOrderedSortsByF(t *testing.T) {
	c := New()
	types := mads.BBOutputTypeList{mads.BBOutputObj}
	c.Insert(bbPoint(0, 0, []float64{5}, types))
	c.Insert(bbPoint(1, 1, []float64{1}, types))
	ordered := c.Ordered()
	if len(ordered) != 2 {
		t.Fatalf("expected 2 points, got %d", len(ordered))
	}
	if f, _ := ordered[0].F().Value(); f != 1 {
		t.Fatalf("ordered[0].F() = %v, want 1 (smallest first)", f)
	}
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	c := New()
	types := mads.BBOutputTypeList{mads.BBOutputObj, mads.BBOutputPB}
	c.Insert(bbPoint(1, 2, []float64{3, 0}, types))
	c.Insert(bbPoint(4, 5, []float64{6, 1}, types))

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf, types)
	if err != nil {
		t.Fatalf("WriteTo error: %v", err)
	}
	if n != 2 {
		t.Fatalf("WriteTo wrote %d entries, want 2", n)
	}

	c2 := New()
	hits, readTypes, err := ReadFrom(&buf, c2, 2)
	if err != nil {
		t.Fatalf("ReadFrom error: %v", err)
	}
	if hits != 0 {
		t.Fatalf("cache hits = %d, want 0", hits)
	}
	if len(readTypes) != 2 {
		t.Fatalf("read %d output types, want 2", len(readTypes))
	}
	if c2.Len() != 2 {
		t.Fatalf("read back %d points, want 2", c2.Len())
	}
	ep, ok := c2.Lookup(mads.PointFromFloat64([]float64{1, 2}))
	if !ok {
		t.Fatal("point (1,2) missing after round trip")
	}
	if f, _ := ep.F().Value(); f != 3 {
		t.Fatalf("round-tripped f = %v, want 3", f)
	}
}

func TestPurgeNeverDropsKept(t *testing.T) {
	c := New()
	types := mads.BBOutputTypeList{mads.BBOutputObj}
	keep := bbPoint(0, 0, []float64{100}, types) // worst f, but protected
	c.Insert(keep)
	for i := 1; i <= 5; i++ {
		c.Insert(bbPoint(float64(i), 0, []float64{float64(i)}, types))
	}

	dropped := c.Purge(3, []*mads.EvalPoint{keep})
	if dropped == 0 {
		t.Fatal("expected Purge to drop something")
	}
	if _, ok := c.Lookup(keep.Point); !ok {
		t.Fatal("Purge dropped a protected incumbent")
	}
}
