package iteration

import (
	"context"

	"github.com/madscore/mads"
	"github.com/madscore/mads/barrier"
	"github.com/madscore/mads/direction"
	"github.com/madscore/mads/evalcontrol"
	"github.com/madscore/mads/mesh"
	"github.com/madscore/mads/output"
	"github.com/madscore/mads/poll"
	"golang.org/x/exp/rand"
)

// Record is one entry of the Driver's iteration arena: children refer
// to their parent's index into Driver.records rather than holding a
// pointer back to it, so the iteration tree never forms a reference
// cycle a garbage collector would need to break.
type Record struct {
	K          int
	Parent     int // -1 for the root iteration
	Children   []int
	Success    barrier.SuccessType
	StopReason mesh.StopReason
}

// Driver owns the mesh, barrier, and evaluation machinery shared
// across the whole run, and the flat arena of Records produced by
// successive iterations.
//
// Generator holds either a direction.Generator for the uniform
// one-pass poll methods (Ortho2N, QR2N, NP1Uni, Single, Double,
// Coordinate), or a direction.NP1NegQuad value for the two-pass NEG
// rule generator spec.md 4.3 describes separately: its final direction
// depends on which first-pass candidates the evaluator actually kept,
// so it cannot implement the single-shot Generator contract and is
// driven by a dedicated Step instead. RunIteration picks the matching
// Step by type-switching on Generator.
type Driver struct {
	Mesh             mesh.Mesh
	Barrier          *barrier.Barrier
	Generator        interface{}
	Groups           []poll.VariableGroup
	Bounds           poll.Bounds
	Control          *evalcontrol.Control
	Output           *output.Queue
	Rng              *rand.Rand
	AnisotropyFactor float64
	Anisotropic      bool

	k       int
	records []Record
}

// SeedInitial records initial as the Driver's starting incumbent,
// activating PhaseOne first if it violates an extreme barrier
// constraint (spec.md 4.2 / barrier.NeedsPhaseOne). Without this, an
// EB-infeasible x0 has h = +Inf, UpdateWithPoints drops it without
// ever making it an incumbent, and PrimaryFrameCenter stays nil for
// the rest of the run.
func (d *Driver) SeedInitial(initial *mads.EvalPoint) {
	if barrier.NeedsPhaseOne(initial) {
		d.Barrier.ActivatePhaseOne()
	}
	d.Barrier.UpdateWithPoints([]*mads.EvalPoint{initial})
}

// pollStep is the Step implementation for one MADS poll: Start picks
// the frame center and generates trial points, Run submits them to
// the evaluator, End updates the mesh and records the iteration.
type pollStep struct {
	d       *Driver
	parent  int
	center  *mads.EvalPoint
	points  []*mads.EvalPoint
	success barrier.SuccessType
	reason  string
}

func (s *pollStep) Start() bool {
	gen, ok := s.d.Generator.(direction.Generator)
	if !ok {
		return false
	}
	s.center = s.d.Barrier.PrimaryFrameCenter()
	if s.center == nil {
		return false
	}
	s.points = poll.Generate(gen, s.d.Mesh, s.center, s.d.Groups, s.d.Bounds, s.d.Rng)
	return len(s.points) > 0
}

func (s *pollStep) Run() bool {
	queue := make(evalcontrol.Queue, len(s.points))
	for i, p := range s.points {
		p.Tag = i
		queue[i] = evalcontrol.EvalQueuePoint{Point: p, EvalType: mads.EvalTypeBB, Priority: float64(i)}
	}
	s.success, s.reason = s.d.Control.Run(context.Background(), &queue, s.d.Barrier)
	return s.success >= barrier.PartialSuccess
}

func (s *pollStep) End() { s.d.finishIteration(s.parent, s.center, s.success) }

// negQuadPollStep drives direction.NP1NegQuad's two-pass protocol,
// since it cannot implement the uniform direction.Generator contract:
// the first pass evaluates Ortho2N's 2n candidates, the directions
// whose points came back OK become the retained basis, and the second
// pass adds the single NEG direction completing an n+1-direction
// positive spanning set. It operates on the Driver's first variable
// group (or the full dimension if none is configured); NP1NegQuad's
// two-pass functions don't support splitting the second pass across
// multiple groups.
type negQuadPollStep struct {
	d      *Driver
	parent int
	gen    direction.NP1NegQuad

	center      *mads.EvalPoint
	firstPoints []*mads.EvalPoint
	firstDirs   []mads.Direction
	secondPoint *mads.EvalPoint
	success     barrier.SuccessType
}

func (s *negQuadPollStep) group() poll.VariableGroup {
	if len(s.d.Groups) > 0 {
		return s.d.Groups[0]
	}
	return nil
}

func (s *negQuadPollStep) Start() bool {
	s.center = s.d.Barrier.PrimaryFrameCenter()
	if s.center == nil {
		return false
	}
	s.firstPoints, s.firstDirs = poll.GenerateNP1NegQuadFirstPass(s.gen, s.d.Mesh, s.center, s.group(), s.d.Bounds, s.d.Rng)
	return len(s.firstPoints) > 0
}

func (s *negQuadPollStep) Run() bool {
	d := s.d
	firstQueue := make(evalcontrol.Queue, len(s.firstPoints))
	for i, p := range s.firstPoints {
		p.Tag = i
		firstQueue[i] = evalcontrol.EvalQueuePoint{Point: p, EvalType: mads.EvalTypeBB, Priority: float64(i)}
	}
	firstSuccess, _ := d.Control.Run(context.Background(), &firstQueue, d.Barrier)
	s.success = firstSuccess

	basis := make([]mads.Direction, 0, len(s.firstDirs))
	for i, p := range s.firstPoints {
		if e, ok := p.Evals[mads.EvalTypeBB]; ok && e.Status == mads.EvalOK {
			basis = append(basis, s.firstDirs[i])
		}
	}

	s.secondPoint = poll.GenerateNP1NegQuadSecondPass(s.gen, d.Mesh, s.center, s.group(), basis, d.Bounds)
	if s.secondPoint != nil {
		secondQueue := evalcontrol.Queue{{Point: s.secondPoint, EvalType: mads.EvalTypeBB, Priority: 0}}
		secondSuccess, _ := d.Control.Run(context.Background(), &secondQueue, d.Barrier)
		s.success = s.success.Max(secondSuccess)
	}
	return s.success >= barrier.PartialSuccess
}

func (s *negQuadPollStep) End() { s.d.finishIteration(s.parent, s.center, s.success) }

// finishIteration applies the mesh refine/enlarge transition, bumps k,
// and appends the arena Record common to every poll Step's End, no
// matter which generator drove it.
func (d *Driver) finishIteration(parent int, center *mads.EvalPoint, success barrier.SuccessType) {
	dir := mads.Direction{}
	if inc := d.Barrier.PrimaryFrameCenter(); inc != nil && center != nil {
		dir = center.Point.DirectionTo(inc.Point)
	}
	if success >= barrier.PartialSuccess {
		d.Mesh.EnlargeDeltaFrameSize(dir, d.AnisotropyFactor, d.Anisotropic)
	} else {
		d.Mesh.RefineDeltaFrameSize()
	}
	d.k++

	rec := Record{K: d.k, Parent: parent, Success: success, StopReason: d.Mesh.CheckMeshForStopping()}
	idx := len(d.records)
	d.records = append(d.records, rec)
	if parent >= 0 && parent < len(d.records) {
		d.records[parent].Children = append(d.records[parent].Children, idx)
	}

	if d.Output != nil {
		d.Output.Add(output.LevelInfo, "iteration complete", map[string]interface{}{
			"k":          d.k,
			"success":    success.String(),
			"stopReason": rec.StopReason.String(),
		})
	}
}

// RunIteration drives a single poll-centered MADS iteration to
// completion and returns the resulting SuccessType and mesh stopping
// status. parent is the arena index of the iteration that spawned
// this one, or -1 for a top-level iteration. The Step implementation
// is chosen by the shape of Generator: a direction.Generator runs the
// uniform one-pass pollStep, a direction.NP1NegQuad runs the two-pass
// negQuadPollStep.
func (d *Driver) RunIteration(parent int) (barrier.SuccessType, mesh.StopReason) {
	var s Step
	switch gen := d.Generator.(type) {
	case direction.NP1NegQuad:
		s = &negQuadPollStep{d: d, parent: parent, gen: gen}
	default:
		s = &pollStep{d: d, parent: parent}
	}
	RunStep(s)
	if len(d.records) == 0 {
		return barrier.Unsuccessful, mesh.NotStopped
	}
	last := d.records[len(d.records)-1]
	return last.Success, last.StopReason
}

// Records returns the full iteration arena accumulated so far.
func (d *Driver) Records() []Record { return d.records }

// K returns the number of completed iterations.
func (d *Driver) K() int { return d.k }

// Optimize repeatedly runs top-level iterations until the mesh
// reports a stopping condition or the evaluator control's own stop
// conditions end the run. A Control stop other than
// OPPORTUNISTIC_SUCCESS (MaxBBEval, MaxEval, CTRL_C) ends the run with
// mesh.NotStopped; its reason is then in Control.Info().StopReason.
// A frame center that is missing also ends the run with
// mesh.NotStopped.
func (d *Driver) Optimize(maxIterations int) mesh.StopReason {
	for i := 0; i < maxIterations; i++ {
		_, reason := d.RunIteration(-1)
		if reason != mesh.NotStopped {
			return reason
		}
		if r := d.Control.Info().StopReason; r != "" && r != "OPPORTUNISTIC_SUCCESS" {
			return mesh.NotStopped
		}
		if d.Barrier.PrimaryFrameCenter() == nil {
			return mesh.NotStopped
		}
	}
	return mesh.NotStopped
}
