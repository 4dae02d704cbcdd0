package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/flowui-dev/flowui/layout"
	"github.com/flowui-dev/flowui/vdom"
)

// explicitLayoutProps are the prop keys spec.md §4.V calls out as the
// source of truth that geometry utility classes must yield to: when any of
// these is present on a node, a "cls"/"className" value's matching
// geometryPrefixes classes are stripped from the rendered output.
var explicitLayoutProps = []string{"width", "height", "flexDirection", "justify", "align", "gap", "flexGrow"}

func hasExplicitLayoutProp(props map[string]any) bool {
	for _, k := range explicitLayoutProps {
		if _, ok := props[k]; ok {
			return true
		}
	}
	return false
}

// HTMLRenderer maps RenderNode trees to HTML. It carries no mutable state
// across calls — the same renderer may serve concurrent sessions — per
// spec.md §4.V's "renderers are pure functions of (render node + computed
// layout)".
type HTMLRenderer struct {
	Pretty bool
	Indent string
}

// NewHTMLRenderer returns an HTMLRenderer with a two-space indent default.
func NewHTMLRenderer(pretty bool) *HTMLRenderer {
	indent := "  "
	return &HTMLRenderer{Pretty: pretty, Indent: indent}
}

func (r *HTMLRenderer) Render(w io.Writer, node *vdom.RenderNode, geom *layout.Node) error {
	return r.renderNode(w, node, geom, 0)
}

func (r *HTMLRenderer) RenderNode(w io.Writer, node *vdom.RenderNode, geom *layout.Node) error {
	return r.renderNode(w, node, geom, 0)
}

// renderNode writes node's HTML. geom is the corresponding positioned
// layout.Node (nil if the caller has no geometry for this subtree) — its
// only effect here is honoring display:none, per spec.md §8's "total unless
// the root is display-none" cross-renderer property; children are matched
// to geom's children by index since both trees are built from the same
// element snapshot.
func (r *HTMLRenderer) renderNode(w io.Writer, node *vdom.RenderNode, geom *layout.Node, depth int) error {
	if node == nil {
		return nil
	}
	if geom != nil && geom.Style.Display == layout.DisplayNone {
		return nil
	}
	if text, ok := node.Props["text"].(string); ok && node.Tag == "" {
		_, err := io.WriteString(w, escapeHTML(text))
		return err
	}

	tag := node.Tag
	if r.Pretty && depth > 0 {
		io.WriteString(w, strings.Repeat(r.Indent, depth))
	}

	fmt.Fprintf(w, "<%s", tag)
	if err := r.renderAttrs(w, node); err != nil {
		return err
	}
	fmt.Fprintf(w, " data-hid=\"%d\"", node.ID)

	if isVoidElement(tag) {
		io.WriteString(w, ">")
		if r.Pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}
	io.WriteString(w, ">")

	if raw, ok := node.Props["dangerouslySetInnerHTML"].(string); ok {
		io.WriteString(w, raw)
	} else {
		hasChildren := len(node.Children) > 0
		if r.Pretty && hasChildren {
			io.WriteString(w, "\n")
		}
		for i, c := range node.Children {
			var childGeom *layout.Node
			if geom != nil && i < len(geom.Children) {
				childGeom = geom.Children[i]
			}
			if err := r.renderNode(w, c, childGeom, depth+1); err != nil {
				return err
			}
		}
		if r.Pretty && hasChildren {
			io.WriteString(w, strings.Repeat(r.Indent, depth))
		}
	}

	fmt.Fprintf(w, "</%s>", tag)
	if r.Pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

func (r *HTMLRenderer) renderAttrs(w io.Writer, node *vdom.RenderNode) error {
	if len(node.Props) == 0 {
		return nil
	}
	stripGeometry := hasExplicitLayoutProp(node.Props)

	keys := make([]string, 0, len(node.Props))
	for k := range node.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]
		switch key {
		case "text", "dangerouslySetInnerHTML", "key", layout.StyleProp:
			continue
		}
		if strings.HasPrefix(key, "on_") {
			continue
		}

		attrName := key
		switch key {
		case "className":
			attrName = "class"
		case "cls":
			attrName = "class"
		case "htmlFor":
			attrName = "for"
		}

		if attrName == "class" {
			str, _ := value.(string)
			if stripGeometry {
				str = stripGeometryClasses(str)
			}
			if str == "" {
				continue
			}
			fmt.Fprintf(w, ` class="%s"`, escapeAttr(str))
			continue
		}

		if isBooleanAttr(attrName) {
			if truthy, _ := value.(bool); truthy {
				fmt.Fprintf(w, " %s", attrName)
			}
			continue
		}

		fmt.Fprintf(w, ` %s="%s"`, attrName, escapeAttr(fmt.Sprint(value)))
	}
	return nil
}

func stripGeometryClasses(classes string) string {
	fields := strings.Fields(classes)
	kept := fields[:0]
	for _, c := range fields {
		if !isGeometryClass(c) {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " ")
}
