package render

import (
	"io"

	"github.com/flowui-dev/flowui/layout"
	"github.com/flowui-dev/flowui/vdom"
)

// Renderer is the abstract back-end protocol a RenderNode tree is drawn
// through. A back end consumes both the render-node shape (tag, props,
// text, children) and the positioned layout.Node geometry produced for the
// same element tree; geom may be nil for back ends (or call sites) that
// don't need positioning, such as a bare HTML fragment render.
type Renderer interface {
	// Render draws the full tree rooted at node, using geom for
	// positioning when non-nil, and writes the back end's serialized
	// output to w.
	Render(w io.Writer, node *vdom.RenderNode, geom *layout.Node) error

	// RenderNode draws a single node (used for incremental patch
	// application — replacing one subtree's output without redrawing
	// the whole tree) and writes it to w.
	RenderNode(w io.Writer, node *vdom.RenderNode, geom *layout.Node) error
}
