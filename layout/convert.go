package layout

import "github.com/flowui-dev/flowui/element"

// StyleProp is the conventional element.Props key under which a node's
// LayoutStyle is stored; element itself carries no layout dependency, so
// the bridge between the two trees is this one key rather than a field on
// element.Element.
const StyleProp = "layout_style"

// FromElement builds a layout tree from an element subtree, interpreting
// each element's StyleProp as its Style (DefaultStyle() if absent) and
// its Measure/Baseline callbacks as the corresponding layout callbacks.
// This is the element package's "to_layout_node()" conversion helper from
// spec.md §4.E, implemented here rather than on Element itself to avoid a
// layout<->element import cycle.
func FromElement(e *element.Element) *Node {
	if e == nil {
		return nil
	}
	style := DefaultStyle()
	if s, ok := e.Props[StyleProp].(Style); ok {
		style = s
	}

	n := &Node{Style: style, dirty: true}

	if mf := e.Measure(); mf != nil {
		n.Measure = func(aw, ah float64, wMode, hMode SizingMode) (float64, float64) {
			return mf(aw, ah)
		}
	}
	if bf := e.Baseline(); bf != nil {
		n.Baseline = func(*Node) float64 { return bf() }
	}

	for _, c := range e.Children() {
		n.Children = append(n.Children, FromElement(c))
	}
	return n
}
