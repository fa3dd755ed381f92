// Package params defines the parameter set spec.md 6 lists: a plain
// struct with yaml.v3 tags, CheckAndComply's structural checks,
// InputTypes, which parses BB_INPUT_TYPE, and Load, which decodes YAML
// from an io.Reader and then runs CheckAndComply. Opening a parameter
// file is the caller's responsibility.
package params

import (
	"errors"
	"io"

	"github.com/madscore/mads"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingDimension  = errors.New("params: DIMENSION must be positive")
	ErrMissingBBOutput   = errors.New("params: BB_OUTPUT_TYPE is required")
	ErrBoundsDimension   = errors.New("params: LOWER_BOUND/UPPER_BOUND length must match DIMENSION")
	ErrBoundsOrder       = errors.New("params: LOWER_BOUND must be <= UPPER_BOUND componentwise")
	ErrGranularityLength = errors.New("params: GRANULARITY length must match DIMENSION")
	ErrInputTypeLength   = errors.New("params: BB_INPUT_TYPE length must match DIMENSION")
	ErrNoBudget          = errors.New("params: at least one of MAX_BB_EVAL, MAX_EVAL must be set")
	ErrVariableGroup     = errors.New("params: VARIABLE_GROUP indices must partition [0, DIMENSION)")
)

// Params is the full set of run parameters spec.md 6 names, with the
// yaml struct tags a params file is decoded through.
type Params struct {
	Dimension int `yaml:"DIMENSION"`

	BBInputType  []string `yaml:"BB_INPUT_TYPE"`
	BBOutputType []string `yaml:"BB_OUTPUT_TYPE"`

	LowerBound  []float64 `yaml:"LOWER_BOUND"`
	UpperBound  []float64 `yaml:"UPPER_BOUND"`
	Granularity []float64 `yaml:"GRANULARITY"`

	InitialMeshSize  []float64 `yaml:"INITIAL_MESH_SIZE"`
	InitialFrameSize []float64 `yaml:"INITIAL_FRAME_SIZE"`
	MinMeshSize      []float64 `yaml:"MIN_MESH_SIZE"`
	MinFrameSize     []float64 `yaml:"MIN_FRAME_SIZE"`

	DirectionType string `yaml:"DIRECTION_TYPE"`

	MaxBBEval         int64 `yaml:"MAX_BB_EVAL"`
	MaxEval           int64 `yaml:"MAX_EVAL"`
	MaxBlockEval      int64 `yaml:"MAX_BLOCK_EVAL"`
	BBMaxBlockSize    int   `yaml:"BB_MAX_BLOCK_SIZE"`
	SgtelibModelEvalNb int  `yaml:"SGTELIB_MODEL_EVAL_NB"`

	OpportunisticEval bool `yaml:"OPPORTUNISTIC_EVAL"`
	EvalUseCache      bool `yaml:"EVAL_USE_CACHE"`
	ClearEvalQueue    bool `yaml:"CLEAR_EVAL_QUEUE"`

	Rho  float64 `yaml:"RHO"`
	HMax0 float64 `yaml:"H_MAX_0"`

	VariableGroup [][]int `yaml:"VARIABLE_GROUP"`
}

// InputTypes parses BBInputType into the enum form poll.Bounds and the
// mesh consume, one mads.BBInputType per coordinate. A nil or empty
// BBInputType yields a nil list, meaning every coordinate is
// mads.Continuous.
func (p *Params) InputTypes() mads.BBInputTypeList {
	if len(p.BBInputType) == 0 {
		return nil
	}
	types := make(mads.BBInputTypeList, len(p.BBInputType))
	for i, s := range p.BBInputType {
		types[i] = mads.ParseBBInputType(s)
	}
	return types
}

// Load decodes a Params from a YAML parameter file and runs
// CheckAndComply on the result. Decoding itself is entirely
// yaml.v3's job; this function adds nothing beyond the structural
// check every Params must pass before a run starts.
func Load(r io.Reader) (*Params, error) {
	var p Params
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	if err := p.CheckAndComply(); err != nil {
		return nil, err
	}
	return &p, nil
}

// CheckAndComply runs the structural checks a params file must pass
// before a run can start: dimension consistency across every
// per-coordinate slice, bound ordering, a declared evaluation budget,
// and (if present) that VARIABLE_GROUP partitions every coordinate
// exactly once. It does not check numerical feasibility of the
// starting point; that is the driver's job once it has a Point.
func (p *Params) CheckAndComply() error {
	if p.Dimension <= 0 {
		return ErrMissingDimension
	}
	if len(p.BBOutputType) == 0 {
		return ErrMissingBBOutput
	}
	if len(p.LowerBound) > 0 && len(p.LowerBound) != p.Dimension {
		return ErrBoundsDimension
	}
	if len(p.UpperBound) > 0 && len(p.UpperBound) != p.Dimension {
		return ErrBoundsDimension
	}
	if len(p.LowerBound) == p.Dimension && len(p.UpperBound) == p.Dimension {
		for i := range p.LowerBound {
			if p.LowerBound[i] > p.UpperBound[i] {
				return ErrBoundsOrder
			}
		}
	}
	if len(p.Granularity) > 0 && len(p.Granularity) != p.Dimension {
		return ErrGranularityLength
	}
	if len(p.BBInputType) > 0 && len(p.BBInputType) != p.Dimension {
		return ErrInputTypeLength
	}
	if p.MaxBBEval <= 0 && p.MaxEval <= 0 {
		return ErrNoBudget
	}
	if len(p.VariableGroup) > 0 {
		seen := make([]bool, p.Dimension)
		for _, group := range p.VariableGroup {
			for _, idx := range group {
				if idx < 0 || idx >= p.Dimension || seen[idx] {
					return ErrVariableGroup
				}
				seen[idx] = true
			}
		}
		for _, s := range seen {
			if !s {
				return ErrVariableGroup
			}
		}
	}
	return nil
}
