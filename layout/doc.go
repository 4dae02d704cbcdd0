// Package layout implements a CSS-Flexbox-compatible layout solver: style
// resolution, box-model accounting, a measurement cache, flex-line
// collection and flexible-length resolution, main/cross-axis placement,
// baseline alignment, absolute positioning, and layout boundaries that
// isolate dirty propagation and enable parallel solving of independent
// subtrees.
package layout
