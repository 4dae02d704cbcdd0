package render

import (
	"fmt"
	"io"
	"testing"

	"github.com/flowui-dev/flowui/layout"
	"github.com/flowui-dev/flowui/vdom"
)

func benchCellTree(n int) (*vdom.RenderNode, *layout.Node) {
	children := make([]*vdom.RenderNode, n)
	geomChildren := make([]*layout.Node, n)
	for i := range children {
		children[i] = &vdom.RenderNode{Props: map[string]any{"text": fmt.Sprintf("row %d", i)}}
		g := &layout.Node{}
		g.Result = layout.Rect{X: 0, Y: float64(i), Width: 10, Height: 1}
		geomChildren[i] = g
	}
	root := &layout.Node{Children: geomChildren}
	return &vdom.RenderNode{Children: children}, root
}

func BenchmarkCellBufferRenderSmall(b *testing.B) {
	tree, geom := benchCellTree(20)
	cb := NewCellBuffer(80, 24)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cb.Render(io.Discard, tree, geom)
	}
}

func BenchmarkCellBufferRenderFull(b *testing.B) {
	tree, geom := benchCellTree(80)
	cb := NewCellBuffer(80, 80)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cb.Render(io.Discard, tree, geom)
	}
}
