// Package mads provides the core numerical types shared by the mesh,
// barrier, direction, poll, cache, and evalcontrol packages: a real
// scalar with explicit undefined/infinity sentinels (Double), fixed
// length sequences of Double with position semantics (Point) or vector
// semantics (Direction), and the per-tier evaluation record attached
// to a point (EvalPoint).
//
// mads itself never evaluates a blackbox, never reads a parameter
// file, and never fits a surrogate; see the params, blackbox, and
// evalcontrol packages for the collaborators that do.
package mads
