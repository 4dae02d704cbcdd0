package layout

import (
	"context"
	"math"

	"testing"

	"github.com/flowui-dev/flowui/config"
)

func solveFixed(t *testing.T, root *Node) {
	t.Helper()
	if err := Solve(context.Background(), root, AvailableSpace{}, config.Default(), nil); err != nil {
		t.Fatalf("Solve: %v", err)
	}
}

func near(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestRowSplit(t *testing.T) {
	a := NewContainer(DefaultStyle())
	a.Style.FlexGrow = 1
	b := NewContainer(DefaultStyle())
	b.Style.FlexGrow = 1

	root := NewContainer(DefaultStyle(), a, b)
	root.Style.Width, root.Style.Height = Pt(300), Pt(100)
	root.Style.FlexDirection = Row

	solveFixed(t, root)

	near(t, "a.X", a.Result.X, 0)
	near(t, "a.W", a.Result.Width, 150)
	near(t, "b.X", b.Result.X, 150)
	near(t, "b.W", b.Result.Width, 150)
}

func fixedBox(w, h float64) *Node {
	s := DefaultStyle()
	s.Width, s.Height = Pt(w), Pt(h)
	return NewContainer(s)
}

func TestWrap(t *testing.T) {
	items := []*Node{fixedBox(60, 10), fixedBox(60, 10), fixedBox(60, 10)}
	root := NewContainer(DefaultStyle(), items[0], items[1], items[2])
	root.Style.Width, root.Style.Height = Pt(100), Pt(100)
	root.Style.FlexDirection = Row
	root.Style.FlexWrap = Wrap

	solveFixed(t, root)

	lines := map[float64]bool{}
	for _, it := range items {
		lines[it.Result.Y] = true
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
}

func TestWrapWithGapStillThreeLines(t *testing.T) {
	items := []*Node{fixedBox(45, 10), fixedBox(45, 10), fixedBox(45, 10)}
	root := NewContainer(DefaultStyle(), items[0], items[1], items[2])
	root.Style.Width, root.Style.Height = Pt(100), Pt(100)
	root.Style.FlexDirection = Row
	root.Style.FlexWrap = Wrap
	root.Style.SetGap(20)

	solveFixed(t, root)

	lines := map[float64]bool{}
	for _, it := range items {
		lines[it.Result.Y] = true
	}
	if len(lines) != 3 {
		t.Fatalf("45+20+45 > 100 by epsilon: got %d lines, want 3", len(lines))
	}
}

func TestJustifyCenter(t *testing.T) {
	child := fixedBox(50, 10)
	root := NewContainer(DefaultStyle(), child)
	root.Style.Width, root.Style.Height = Pt(200), Pt(10)
	root.Style.FlexDirection = Row
	root.Style.Justify = AlignCenter

	solveFixed(t, root)
	near(t, "child.X", child.Result.X, 75)
}

func TestSpaceEvenlyItems(t *testing.T) {
	items := []*Node{fixedBox(40, 10), fixedBox(40, 10), fixedBox(40, 10), fixedBox(40, 10)}
	root := NewContainer(DefaultStyle(), items[0], items[1], items[2], items[3])
	root.Style.Width, root.Style.Height = Pt(200), Pt(10)
	root.Style.FlexDirection = Row
	root.Style.Justify = AlignSpaceEvenly

	solveFixed(t, root)

	want := []float64{8, 56, 104, 152}
	for i, it := range items {
		near(t, "item.X", it.Result.X, want[i])
	}
}

func TestSpaceEvenlyLines(t *testing.T) {
	line1 := fixedBox(50, 50)
	line2 := fixedBox(50, 50)
	// force two separate lines by wrapping a container whose main axis is
	// too small for both items side by side
	root := NewContainer(DefaultStyle(), line1, line2)
	root.Style.Width, root.Style.Height = Pt(50), Pt(200)
	root.Style.FlexDirection = Row
	root.Style.FlexWrap = Wrap
	root.Style.AlignContent = AlignSpaceEvenly

	solveFixed(t, root)

	near(t, "line1.Y", line1.Result.Y, 33.33)
	near(t, "line2.Y", line2.Result.Y, 116.66)
}

func TestAutoMarginCenter(t *testing.T) {
	child := fixedBox(50, 10)
	child.Style.Margin.Left = Auto()
	child.Style.Margin.Right = Auto()

	root := NewContainer(DefaultStyle(), child)
	root.Style.Width, root.Style.Height = Pt(200), Pt(10)
	root.Style.FlexDirection = Row

	solveFixed(t, root)
	near(t, "child.X", child.Result.X, 75)
}

func TestRTL(t *testing.T) {
	a := fixedBox(100, 10)
	b := fixedBox(100, 10)
	root := NewContainer(DefaultStyle(), a, b)
	root.Style.Width, root.Style.Height = Pt(300), Pt(10)
	root.Style.FlexDirection = Row
	root.Style.Direction = DirectionRTL

	solveFixed(t, root)
	near(t, "a.X", a.Result.X, 200)
	near(t, "b.X", b.Result.X, 100)
}

func TestBorderInclusion(t *testing.T) {
	child := NewContainer(DefaultStyle())
	child.Style.FlexGrow = 1

	root := NewContainer(DefaultStyle(), child)
	root.Style.Width, root.Style.Height = Pt(100), Pt(100)
	root.Style.Border = Border{Top: 10, Right: 10, Bottom: 10, Left: 10}
	root.Style.BoxSizing = BorderBox

	solveFixed(t, root)
	near(t, "child.X", child.Result.X, 10)
	near(t, "child.Y", child.Result.Y, 10)
	near(t, "child.W", child.Result.Width, 80)
	near(t, "child.H", child.Result.Height, 80)
}

func TestDisplayNone(t *testing.T) {
	a := NewContainer(DefaultStyle())
	a.Style.FlexGrow = 1
	mid := NewContainer(DefaultStyle())
	mid.Style.Display = DisplayNone
	mid.Style.FlexGrow = 1
	b := NewContainer(DefaultStyle())
	b.Style.FlexGrow = 1

	root := NewContainer(DefaultStyle(), a, mid, b)
	root.Style.Width, root.Style.Height = Pt(300), Pt(10)
	root.Style.FlexDirection = Row

	solveFixed(t, root)
	near(t, "mid.W", mid.Result.Width, 0)
	near(t, "a.W", a.Result.Width, 150)
	near(t, "b.W", b.Result.Width, 150)
	near(t, "b.X", b.Result.X, 150)
}

func TestBaselineAlignment(t *testing.T) {
	a := fixedBox(10, 20)
	a.Baseline = func(*Node) float64 { return 16 }
	a.Style.AlignSelf = AlignBaseline
	b := fixedBox(10, 40)
	b.Baseline = func(*Node) float64 { return 32 }
	b.Style.AlignSelf = AlignBaseline

	root := NewContainer(DefaultStyle(), a, b)
	root.Style.Width, root.Style.Height = Pt(100), Pt(50)
	root.Style.FlexDirection = Row
	root.Style.AlignItems = AlignBaseline

	solveFixed(t, root)
	near(t, "baseline invariant", b.Result.Y+32, a.Result.Y+16)
}

func TestCacheHit(t *testing.T) {
	calls := 0
	leaf := NewLeaf(DefaultStyle(), func(aw, ah float64, wm, hm SizingMode) (float64, float64) {
		calls++
		return 100, 100
	})
	leaf.Style.Width, leaf.Style.Height = Pt(100), Pt(100)

	solveFixed(t, leaf)
	solveFixed(t, leaf)

	if calls != 1 {
		t.Fatalf("measure called %d times, want 1", calls)
	}
}

func TestCacheExtendsFromMaxContent(t *testing.T) {
	calls := 0
	leaf := NewLeaf(DefaultStyle(), func(aw, ah float64, wm, hm SizingMode) (float64, float64) {
		calls++
		return 80, 20
	})

	s := &solver{epsilon: config.DefaultLayoutEpsilon}
	s.solveNode(leaf, AvailableSpace{Width: 500, WidthMode: MaxContent, Height: 500, HeightMode: MaxContent}, 500, 500)
	s.solveNode(leaf, AvailableSpace{Width: 200, WidthMode: AtMost, Height: 200, HeightMode: AtMost}, 500, 500)

	if calls != 1 {
		t.Fatalf("measure called %d times, want 1 (fit-content(200) should reuse the max-content cache)", calls)
	}
}

func TestLayoutBoundaryDoesNotMarkParentDirty(t *testing.T) {
	inner := NewContainer(DefaultStyle())
	boundary := NewContainer(DefaultStyle(), inner)
	boundary.Style.Width, boundary.Style.Height = Pt(50), Pt(50)
	root := NewContainer(DefaultStyle(), boundary)

	solveFixed(t, root)
	root.markClean()
	boundary.markClean()
	inner.markClean()

	PropagateDirty(inner, func(n *Node) *Node {
		if n == inner {
			return boundary
		}
		if n == boundary {
			return root
		}
		return nil
	})

	if !boundary.IsDirty() {
		t.Fatal("boundary itself should be marked dirty")
	}
	if root.IsDirty() {
		t.Fatal("dirty must not propagate past a layout boundary")
	}
}

func TestFloatStabilityThirdsFitOneLine(t *testing.T) {
	items := []*Node{fixedPercent(33.333, 10), fixedPercent(33.333, 10), fixedPercent(33.333, 10)}
	root := NewContainer(DefaultStyle(), items[0], items[1], items[2])
	root.Style.Width, root.Style.Height = Pt(100), Pt(10)
	root.Style.FlexDirection = Row
	root.Style.FlexWrap = Wrap

	solveFixed(t, root)

	lines := map[float64]bool{}
	for _, it := range items {
		lines[it.Result.Y] = true
	}
	if len(lines) != 1 {
		t.Fatalf("three 33.333%% items should fit on one line within LAYOUT_EPSILON, got %d lines", len(lines))
	}
}

func fixedPercent(pctBasis, h float64) *Node {
	s := DefaultStyle()
	s.FlexBasis, s.Height = Pct(pctBasis), Pt(h)
	s.FlexShrink = 0
	return NewContainer(s)
}
