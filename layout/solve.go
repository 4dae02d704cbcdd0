package layout

import (
	"context"
	"math"

	"github.com/flowui-dev/flowui/config"
)

// Solve is the layout entry point: it resolves root's own size against
// avail, recursively lays out and positions every descendant, and leaves
// the result in each node's Result field. root is always positioned at
// (0, 0) in its own coordinate space; a caller embedding the solved tree
// elsewhere is responsible for translating it.
func Solve(ctx context.Context, root *Node, avail AvailableSpace, cfg config.Config, metrics *Metrics) error {
	cfg = config.Normalize(cfg)
	s := &solver{ctx: ctx, cfg: cfg, metrics: metrics, epsilon: cfg.LayoutEpsilon}
	w, h := s.solveNode(root, avail, avail.Width, avail.Height)
	root.Result.X, root.Result.Y = 0, 0
	root.Result.Width, root.Result.Height = w, h
	return nil
}

type solver struct {
	ctx     context.Context
	cfg     config.Config
	metrics *Metrics
	epsilon float64
}

// resolveOwnSize implements spec.md §4.L step 1 (dimension resolution) for
// a single node against the available space offered by its parent. It does
// not consult Measure — that only matters for leaves, handled by the
// caller.
func resolveOwnSize(style Style, avail AvailableSpace, parentContentW, parentContentH float64) (w, h float64, wMode, hMode SizingMode) {
	w, wMode = resolveAxis(style.Width, style.MinWidth, style.MaxWidth, avail.Width, avail.WidthMode, parentContentW)
	h, hMode = resolveAxis(style.Height, style.MinHeight, style.MaxHeight, avail.Height, avail.HeightMode, parentContentH)
	return
}

func resolveAxis(dim, minDim, maxDim Dimension, avail float64, availMode SizingMode, parentRef float64) (float64, SizingMode) {
	var value float64
	var mode SizingMode
	switch dim.Unit {
	case UnitPoints:
		value, mode = dim.Value, Exactly
	case UnitPercent:
		if availMode == MaxContent {
			// Indefinite containing block: percent cannot resolve, falls
			// back to the parent-offered constraint (a documented
			// simplification of CSS's "percentage resolves against the
			// used value of the containing block" chain).
			return avail, availMode
		}
		value, mode = dim.Resolve(parentRef), Exactly
	default: // auto
		return avail, availMode
	}
	if mode == Exactly {
		if minDim.Unit != UnitAuto {
			if min := minDim.Resolve(parentRef); value < min {
				value = min
			}
		}
		if maxDim.Unit != UnitAuto {
			if max := maxDim.Resolve(parentRef); value > max {
				value = max
			}
		}
	}
	return value, mode
}

func clamp(v float64, minDim, maxDim Dimension, ref float64) float64 {
	if minDim.Unit != UnitAuto {
		if min := minDim.Resolve(ref); v < min {
			v = min
		}
	}
	if maxDim.Unit != UnitAuto {
		if max := maxDim.Resolve(ref); v > max {
			v = max
		}
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		// spec.md §7 LayoutOverflow: a bad measurement clamps to 0 rather
		// than propagating NaN/Inf through the tree.
		v = 0
	}
	return v
}

// solveNode resolves n's own box (Width/Height only — position is the
// caller's responsibility) against avail, recursing into children. It is
// called twice per flex item in a container: once during the measurement
// pass (avail reflecting the item's own constraints or an unbounded probe)
// and once during the final layout pass (avail pinned Exactly to the
// item's resolved main/cross size), so the second call's recursion into
// grandchildren sees the item's true final box.
func (s *solver) solveNode(n *Node, avail AvailableSpace, parentContentW, parentContentH float64) (w, h float64) {
	if n.Style.Display == DisplayNone {
		n.Result = Rect{}
		n.markClean()
		return 0, 0
	}

	ownW, ownH, wMode, hMode := resolveOwnSize(n.Style, avail, parentContentW, parentContentH)

	if n.IsLeaf() {
		return s.solveLeaf(n, ownW, ownH, wMode, hMode, parentContentW, parentContentH)
	}
	return s.solveContainer(n, ownW, ownH, wMode, hMode, parentContentW, parentContentH)
}

func (s *solver) solveLeaf(n *Node, ownW, ownH float64, wMode, hMode SizingMode, parentContentW, parentContentH float64) (float64, float64) {
	if w, h, ok := n.cache.Probe(ownW, ownH, wMode, hMode, s.epsilon); ok {
		s.metrics.cacheHit()
		n.Result.Width, n.Result.Height = w, h
		n.markClean()
		return w, h
	}
	s.metrics.cacheMiss()

	measuredW, measuredH := n.Measure(ownW, ownH, wMode, hMode)

	finalW := ownW
	if wMode != Exactly {
		finalW = clamp(measuredW, n.Style.MinWidth, n.Style.MaxWidth, parentContentW)
	}
	finalH := ownH
	if hMode != Exactly {
		finalH = clamp(measuredH, n.Style.MinHeight, n.Style.MaxHeight, parentContentH)
	}

	n.cache.Store(ownW, ownH, wMode, hMode, finalW, finalH)
	n.Result.Width, n.Result.Height = finalW, finalH
	n.markClean()
	s.metrics.solve()
	return finalW, finalH
}

// box is the resolved border+padding+content geometry for one node, used
// by both the container itself (to size its children's available space)
// and by its parent (to know how much of the node's own outer size is
// border/padding versus content).
type box struct {
	borderTop, borderRight, borderBottom, borderLeft   float64
	paddingTop, paddingRight, paddingBottom, paddingLeft float64
}

func resolveBox(style Style, widthRef float64) box {
	return box{
		borderTop:    style.Border.Top,
		borderRight:  style.Border.Right,
		borderBottom: style.Border.Bottom,
		borderLeft:   style.Border.Left,
		paddingTop:    style.Padding.Top.Resolve(widthRef),
		paddingRight:  style.Padding.Right.Resolve(widthRef),
		paddingBottom: style.Padding.Bottom.Resolve(widthRef),
		paddingLeft:   style.Padding.Left.Resolve(widthRef),
	}
}

func (b box) horizontal() float64 { return b.borderLeft + b.borderRight + b.paddingLeft + b.paddingRight }
func (b box) vertical() float64   { return b.borderTop + b.borderBottom + b.paddingTop + b.paddingBottom }

func (s *solver) solveContainer(n *Node, ownW, ownH float64, wMode, hMode SizingMode, parentContentW, parentContentH float64) (float64, float64) {
	bx := resolveBox(n.Style, ownW)

	contentW := ownW
	contentH := ownH
	if n.Style.BoxSizing == BorderBox {
		contentW -= bx.horizontal()
		contentH -= bx.vertical()
	}
	if contentW < 0 {
		contentW = 0
	}
	if contentH < 0 {
		contentH = 0
	}

	items, absolute := flattenFlexChildren(n.Children)

	offsetX, offsetY := bx.borderLeft+bx.paddingLeft, bx.borderTop+bx.paddingTop
	direction := n.Style.resolvedFlexDirection()
	finalMainSize, finalCrossSize := s.layoutFlexItems(items, n.Style, direction, contentW, contentH, wMode, hMode, offsetX, offsetY)

	finalContentW, finalContentH := contentW, contentH
	if direction.IsRow() {
		if wMode != Exactly {
			finalContentW = finalMainSize
		}
		if hMode != Exactly {
			finalContentH = finalCrossSize
		}
	} else {
		if hMode != Exactly {
			finalContentH = finalMainSize
		}
		if wMode != Exactly {
			finalContentW = finalCrossSize
		}
	}

	s.layoutAbsoluteChildren(absolute, n.Style, finalContentW, finalContentH, bx)

	finalOuterW, finalOuterH := finalContentW+bx.horizontal(), finalContentH+bx.vertical()

	n.Result.Width, n.Result.Height = finalOuterW, finalOuterH
	n.markClean()
	s.metrics.solve()
	return finalOuterW, finalOuterH
}

// flattenFlexChildren partitions n's children into the ordered flex-flow
// list (display:none dropped, display:contents inlined by its own
// children) and the list of position:absolute children, which are
// excluded from flex collection entirely per spec.md §4.L step 11.
func flattenFlexChildren(children []*Node) (flow []*Node, absolute []*Node) {
	for _, c := range children {
		switch {
		case c.Style.Display == DisplayNone:
			c.Result = Rect{}
			c.markClean()
		case c.Style.Position == PositionAbsolute:
			absolute = append(absolute, c)
		case c.Style.Display == DisplayContents:
			innerFlow, innerAbs := flattenFlexChildren(c.Children)
			flow = append(flow, innerFlow...)
			absolute = append(absolute, innerAbs...)
		default:
			flow = append(flow, c)
		}
	}
	return flow, absolute
}
