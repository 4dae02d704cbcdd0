package vdom

import "github.com/flowui-dev/flowui/element"

// FromElement deep-clones e and its subtree into the renderer IR, preserving
// the stable element identifier at each node. Props maps are copied so later
// mutation of the live element tree cannot corrupt an already-dispatched
// RenderNode.
func FromElement(e *element.Element) *RenderNode {
	if e == nil {
		return nil
	}
	props := make(map[string]any, len(e.Props))
	for k, v := range e.Props {
		props[k] = v
	}
	children := e.Children()
	out := &RenderNode{
		ID:       e.ID(),
		Tag:      e.Tag,
		Props:    props,
		Children: make([]*RenderNode, 0, len(children)),
	}
	for _, c := range children {
		out.Children = append(out.Children, FromElement(c))
	}
	return out
}
