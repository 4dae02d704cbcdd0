// Package vdom defines RenderNode, the renderer-facing intermediate form
// every element subtree is converted to before a back end ever sees it.
// Renderers never walk an *element.Element directly.
package vdom
