// Package config holds the single explicit configuration record threaded
// through construction of a reactive scope, a layout solve, and a live
// session. There is no package-level global here: every caller that wants
// non-default behavior builds a Config and passes it in.
package config

import "github.com/flowui-dev/flowui/reactive"

// Config is the recognized configuration surface: signal equality rule,
// the reactive propagation depth cap, the layout float-equality tolerance,
// whether independent layout boundaries may solve on a worker pool, and
// whether the (out-of-core) client transformer dumps its output for
// debugging.
type Config struct {
	// Equality selects how Signal.Set decides a new value differs from the
	// current one.
	Equality reactive.Equality

	// MaxPropagationDepth caps effect runs within a single flush before a
	// dependency cycle is reported. Zero uses reactive.DefaultMaxPropagationDepth.
	MaxPropagationDepth int

	// LayoutEpsilon is the float-equality tolerance used throughout the
	// flex solver (line-wrap decisions, cache-hit comparisons).
	LayoutEpsilon float64

	// ParallelLayout enables solving independent layout boundary subtrees
	// on a worker pool instead of sequentially.
	ParallelLayout bool

	// DebugClientTransform requests the (external, out-of-core) source
	// transformer dump its transformed output on import. Carried here
	// because it is part of the single configuration record named in
	// spec.md §6, even though the transformer itself is not implemented
	// by this module.
	DebugClientTransform bool
}

// DefaultLayoutEpsilon is the canonical float-equality tolerance for the
// layout solver.
const DefaultLayoutEpsilon = 0.001

// Default returns the configuration spec.md §6 lists as defaults.
func Default() Config {
	return Config{
		Equality:             reactive.EqualityValue,
		MaxPropagationDepth:  reactive.DefaultMaxPropagationDepth,
		LayoutEpsilon:        DefaultLayoutEpsilon,
		ParallelLayout:       true,
		DebugClientTransform: false,
	}
}

// normalize fills zero-value fields with their defaults. Call sites that
// build a Config with only some fields set (the common case) should run it
// through normalize before relying on MaxPropagationDepth/LayoutEpsilon.
func (c Config) normalize() Config {
	if c.MaxPropagationDepth <= 0 {
		c.MaxPropagationDepth = reactive.DefaultMaxPropagationDepth
	}
	if c.LayoutEpsilon <= 0 {
		c.LayoutEpsilon = DefaultLayoutEpsilon
	}
	return c
}

// Normalize returns c with zero-value numeric fields replaced by their
// documented defaults. Equality's zero value (EqualityValue) and
// ParallelLayout's zero value (false) are both meaningful, so they pass
// through unchanged.
func Normalize(c Config) Config {
	return c.normalize()
}
