// Package render converts a vdom.RenderNode tree into a concrete surface.
//
// Two back ends implement the Renderer interface: an HTML renderer for
// server-side rendering, and a terminal cell-buffer renderer for driving a
// character-grid display. Both back ends walk the same RenderNode tree and
// the same layout.Node geometry; neither knows about the other.
package render
