package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/flowui-dev/flowui/layout"
	"github.com/flowui-dev/flowui/vdom"
)

func TestHTMLEscape(t *testing.T) {
	root := &vdom.RenderNode{
		Tag: "div",
		Children: []*vdom.RenderNode{
			{Props: map[string]any{"text": "<script>x</script>"}},
		},
	}
	var buf bytes.Buffer
	if err := NewHTMLRenderer(false).Render(&buf, root, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Fatalf("unescaped script tag leaked into output: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped script tag, got: %s", out)
	}
}

func TestGeometryStrip(t *testing.T) {
	root := &vdom.RenderNode{
		Tag: "div",
		Props: map[string]any{
			"cls":   "w-10 bg-blue-500",
			"width": 100,
		},
	}
	var buf bytes.Buffer
	if err := NewHTMLRenderer(false).Render(&buf, root, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "w-10") {
		t.Fatalf("geometry class w-10 should have been stripped: %s", out)
	}
	if !strings.Contains(out, "bg-blue-500") {
		t.Fatalf("non-geometry class bg-blue-500 should survive: %s", out)
	}
	if !strings.Contains(out, `width="100"`) {
		t.Fatalf("explicit width prop should be rendered: %s", out)
	}
}

func TestCrossRendererTotality(t *testing.T) {
	tree := &vdom.RenderNode{
		Tag: "div",
		Children: []*vdom.RenderNode{
			{Tag: "span", Children: []*vdom.RenderNode{{Props: map[string]any{"text": "hi"}}}},
		},
	}
	var buf bytes.Buffer
	if err := NewHTMLRenderer(false).Render(&buf, tree, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("render of a non-display-none tree must be non-empty")
	}
}

func TestCrossRendererDisplayNoneIsEmpty(t *testing.T) {
	tree := &vdom.RenderNode{Tag: "div"}
	geom := &layout.Node{Style: func() layout.Style {
		s := layout.DefaultStyle()
		s.Display = layout.DisplayNone
		return s
	}()}
	var buf bytes.Buffer
	if err := NewHTMLRenderer(false).Render(&buf, tree, geom); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("display:none root should render empty output, got: %s", buf.String())
	}
}

func TestVoidElementHasNoClosingTag(t *testing.T) {
	tree := &vdom.RenderNode{Tag: "input", Props: map[string]any{"disabled": true}}
	var buf bytes.Buffer
	if err := NewHTMLRenderer(false).Render(&buf, tree, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "</input>") {
		t.Fatalf("void element must not have a closing tag: %s", out)
	}
	if !strings.Contains(out, " disabled") {
		t.Fatalf("boolean attr should render bare: %s", out)
	}
}
