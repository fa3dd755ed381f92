package params

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/madscore/mads"
)

func valid() Params {
	return Params{
		Dimension:    2,
		BBOutputType: []string{"OBJ"},
		LowerBound:   []float64{0, 0},
		UpperBound:   []float64{10, 10},
		MaxBBEval:    100,
	}
}

func TestCheckAndComplyAcceptsValidParams(t *testing.T) {
	p := valid()
	if err := p.CheckAndComply(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
}

func TestCheckAndComplyRejectsMissingDimension(t *testing.T) {
	p := valid()
	p.Dimension = 0
	if err := p.CheckAndComply(); err != ErrMissingDimension {
		t.Fatalf("got %v, want ErrMissingDimension", err)
	}
}

func TestCheckAndComplyRejectsBoundsOrder(t *testing.T) {
	p := valid()
	p.LowerBound = []float64{5, 0}
	p.UpperBound = []float64{1, 10}
	if err := p.CheckAndComply(); err != ErrBoundsOrder {
		t.Fatalf("got %v, want ErrBoundsOrder", err)
	}
}

func TestCheckAndComplyRejectsMissingBudget(t *testing.T) {
	p := valid()
	p.MaxBBEval = 0
	if err := p.CheckAndComply(); err != ErrNoBudget {
		t.Fatalf("got %v, want ErrNoBudget", err)
	}
}

func TestCheckAndComplyValidatesVariableGroupPartition(t *testing.T) {
	p := valid()
	p.VariableGroup = [][]int{{0}, {0, 1}} // overlapping, invalid
	if err := p.CheckAndComply(); err != ErrVariableGroup {
		t.Fatalf("got %v, want ErrVariableGroup", err)
	}

	p.VariableGroup = [][]int{{0}, {1}}
	if err := p.CheckAndComply(); err != nil {
		t.Fatalf("valid partition rejected: %v", err)
	}
}

func TestLoadDecodesYAMLAndValidates(t *testing.T) {
	doc := `
DIMENSION: 2
BB_OUTPUT_TYPE: ["OBJ"]
LOWER_BOUND: [0, 0]
UPPER_BOUND: [10, 10]
MAX_BB_EVAL: 200
`
	got, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := valid()
	want.MaxBBEval = 200
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Fatalf("Load result mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckAndComplyRejectsInputTypeLength(t *testing.T) {
	p := valid()
	p.BBInputType = []string{"B"}
	if err := p.CheckAndComply(); err != ErrInputTypeLength {
		t.Fatalf("got %v, want ErrInputTypeLength", err)
	}
}

func TestInputTypesParsesEachToken(t *testing.T) {
	p := valid()
	p.BBInputType = []string{"B", "I"}
	want := mads.BBInputTypeList{mads.Binary, mads.Integer}
	if diff := cmp.Diff(want, p.InputTypes()); diff != "" {
		t.Fatalf("InputTypes mismatch (-want +got):\n%s", diff)
	}
}

func TestInputTypesNilWhenUnset(t *testing.T) {
	p := valid()
	if got := p.InputTypes(); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestLoadRejectsInvalidParams(t *testing.T) {
	doc := `
DIMENSION: 0
BB_OUTPUT_TYPE: ["OBJ"]
MAX_BB_EVAL: 1
`
	if _, err := Load(strings.NewReader(doc)); err != ErrMissingDimension {
		t.Fatalf("got %v, want ErrMissingDimension", err)
	}
}
