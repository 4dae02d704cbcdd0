package reactive

import "fmt"

// CycleError is returned by Scope.Flush when propagation exceeds the
// configured MaxPropagationDepth, per spec.md §7's DependencyCycle kind.
// The flush is aborted (not every pending effect will have run); the scope
// itself stays usable. EffectName is the registered name (see WithName) of
// the effect run that pushed the flush over the limit, empty if that
// effect was created without one.
type CycleError struct {
	Depth      int
	EffectName string
}

func (e *CycleError) Error() string {
	if e.EffectName != "" {
		return fmt.Sprintf("reactive: dependency cycle suspected after %d propagation steps (last effect: %q)", e.Depth, e.EffectName)
	}
	return fmt.Sprintf("reactive: dependency cycle suspected after %d propagation steps", e.Depth)
}
