package render

import (
	"fmt"
	"io"
	"testing"

	"github.com/flowui-dev/flowui/vdom"
)

func benchTree(n int) *vdom.RenderNode {
	items := make([]*vdom.RenderNode, n)
	for i := range items {
		items[i] = &vdom.RenderNode{
			Tag: "li",
			Children: []*vdom.RenderNode{
				{Props: map[string]any{"text": fmt.Sprintf("item %d", i)}},
			},
		}
	}
	return &vdom.RenderNode{Tag: "ul", Props: map[string]any{"cls": "w-10 list"}, Children: items}
}

func BenchmarkHTMLRenderSimple(b *testing.B) {
	r := NewHTMLRenderer(false)
	tree := benchTree(10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Render(io.Discard, tree, nil)
	}
}

func BenchmarkHTMLRenderLargeTree(b *testing.B) {
	r := NewHTMLRenderer(false)
	tree := benchTree(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Render(io.Discard, tree, nil)
	}
}
