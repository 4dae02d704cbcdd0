package layout

import "errors"

// ErrMeasuredHasChild mirrors element.ErrMeasuredHasChild for the layout
// tree's own Node type (a Node can be built directly, without going
// through FromElement).
var ErrMeasuredHasChild = errors.New("layout: cannot add child to a measured leaf node")
