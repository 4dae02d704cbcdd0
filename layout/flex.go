package layout

import "math"

// flexItem carries everything the flex algorithm needs about one
// participating child beyond what's already on the Node itself.
type flexItem struct {
	node *Node

	marginMainStart, marginMainEnd   float64
	marginCrossStart, marginCrossEnd float64
	autoMainStart, autoMainEnd       bool
	autoCrossStart, autoCrossEnd     bool

	hypoMain, hypoCross float64
	baseSize            float64
	finalMain           float64
	mainPos             float64

	ascent     float64
	isBaseline bool
}

type flexLine struct {
	items          []*flexItem
	crossSize      float64
	crossPos       float64
	baselineAscent float64
}

// layoutFlexItems runs spec.md §4.L steps 6-10 for one container's flex
// children and positions every item's Result (absolute children are
// handled separately by layoutAbsoluteChildren). It returns the main- and
// cross-axis content size the container actually used, which the caller
// uses as the container's own size when that axis was not given an
// Exactly constraint (content-based auto sizing).
func (s *solver) layoutFlexItems(children []*Node, style Style, direction FlexDirection, contentW, contentH float64, wMode, hMode SizingMode, offsetX, offsetY float64) (mainUsed, crossUsed float64) {
	isRow := direction.IsRow()
	reverse := direction.IsReverse()

	mainRef, crossRef := contentW, contentH
	if !isRow {
		mainRef, crossRef = contentH, contentW
	}

	items := make([]*flexItem, 0, len(children))
	for _, c := range children {
		items = append(items, s.buildFlexItem(c, isRow, contentW, contentH, mainRef, style.AlignItems))
	}

	mainGap := style.Gap.MainGap(direction)
	crossGap := style.Gap.CrossGap(direction)

	lines := collectLines(items, mainRef, mainGap, style.FlexWrap, s.epsilon)
	if style.FlexWrap == WrapReverse {
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
	}

	crossMode := hMode
	if !isRow {
		crossMode = wMode
	}

	for _, line := range lines {
		resolveFlexibleLengths(line.items, mainRef, mainGap)
		placeMainAxis(line.items, style.Justify, mainRef, mainGap, reverse)
		sizeLineCross(line, style.AlignItems)
	}

	// A nowrap container always has exactly one line, whose cross size is
	// the container's own definite inner cross size rather than the
	// content-derived maximum — otherwise align-items:stretch on an
	// otherwise-empty line would have nothing to stretch against.
	if style.FlexWrap == NoWrap && len(lines) == 1 && crossMode == Exactly {
		lines[0].crossSize = crossRef
	}

	crossUsed = placeLines(lines, style.AlignContent, crossRef, crossGap)
	if len(lines) == 0 {
		crossUsed = 0
	}

	mainUsed = 0
	for _, line := range lines {
		w := lineMainExtent(line.items, mainGap)
		if w > mainUsed {
			mainUsed = w
		}
	}

	for _, line := range lines {
		s.finalizeLine(line, style.AlignItems, isRow, contentW, contentH, offsetX, offsetY)
	}

	return mainUsed, crossUsed
}

func (s *solver) buildFlexItem(c *Node, isRow bool, contentW, contentH, mainRef float64, alignItems Align) *flexItem {
	marginRef := contentW
	top := c.Style.Margin.Top
	right := c.Style.Margin.Right
	bottom := c.Style.Margin.Bottom
	left := c.Style.Margin.Left

	it := &flexItem{node: c}
	if isRow {
		it.marginMainStart, it.autoMainStart = left.Resolve(marginRef), left.IsAuto()
		it.marginMainEnd, it.autoMainEnd = right.Resolve(marginRef), right.IsAuto()
		it.marginCrossStart, it.autoCrossStart = top.Resolve(marginRef), top.IsAuto()
		it.marginCrossEnd, it.autoCrossEnd = bottom.Resolve(marginRef), bottom.IsAuto()
	} else {
		it.marginMainStart, it.autoMainStart = top.Resolve(marginRef), top.IsAuto()
		it.marginMainEnd, it.autoMainEnd = bottom.Resolve(marginRef), bottom.IsAuto()
		it.marginCrossStart, it.autoCrossStart = left.Resolve(marginRef), left.IsAuto()
		it.marginCrossEnd, it.autoCrossEnd = right.Resolve(marginRef), right.IsAuto()
	}

	probeAvail := AvailableSpace{Width: contentW, WidthMode: MaxContent, Height: contentH, HeightMode: MaxContent}
	pw, ph := s.solveNode(c, probeAvail, contentW, contentH)
	if isRow {
		it.hypoMain, it.hypoCross = pw, ph
	} else {
		it.hypoMain, it.hypoCross = ph, pw
	}

	if c.Style.FlexBasis.IsDefined() {
		it.baseSize = c.Style.FlexBasis.Resolve(mainRef)
	} else {
		it.baseSize = it.hypoMain
	}

	it.isBaseline = effectiveAlign(c.Style.AlignSelf, alignItems) == AlignBaseline
	if it.isBaseline {
		it.ascent = computeAscent(c)
	}

	return it
}

func effectiveAlign(self, containerDefault Align) Align {
	if self == AlignAuto {
		return containerDefault
	}
	return self
}

// computeAscent implements spec.md §4.L step 10's per-child baseline rule:
// a node's own Baseline callback wins; otherwise recurse into the first
// non-absolute child (already positioned by the probe solve), adding that
// child's top; otherwise fall back to the node's own height.
func computeAscent(n *Node) float64 {
	if n.Baseline != nil {
		return n.Baseline(n)
	}
	for _, c := range n.Children {
		if c.Style.Position == PositionAbsolute || c.Style.Display == DisplayNone {
			continue
		}
		return computeAscent(c) + c.Result.Y
	}
	return n.Result.Height
}

func collectLines(items []*flexItem, mainRef, gap float64, wrap FlexWrap, epsilon float64) []*flexLine {
	if len(items) == 0 {
		return nil
	}
	var lines []*flexLine
	var current []*flexItem
	var currentMain float64

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, &flexLine{items: current})
		}
	}

	for _, it := range items {
		outer := it.baseSize
		if !it.autoMainStart {
			outer += it.marginMainStart
		}
		if !it.autoMainEnd {
			outer += it.marginMainEnd
		}

		if wrap != NoWrap && len(current) > 0 {
			projected := currentMain + gap + outer
			if projected > mainRef+epsilon {
				flush()
				current = nil
				currentMain = 0
			}
		}

		if len(current) > 0 {
			currentMain += gap
		}
		current = append(current, it)
		currentMain += outer
	}
	flush()
	return lines
}

// resolveFlexibleLengths implements spec.md §4.L step 7: multi-pass
// fixed-point grow/shrink distribution, capped at 10 passes, with items
// that hit a min/max clamp frozen out of further redistribution.
func resolveFlexibleLengths(items []*flexItem, mainRef, gap float64) {
	n := len(items)
	if n == 0 {
		return
	}

	fixedTotal := gap * float64(n-1)
	for _, it := range items {
		if !it.autoMainStart {
			fixedTotal += it.marginMainStart
		}
		if !it.autoMainEnd {
			fixedTotal += it.marginMainEnd
		}
	}

	baseTotal := 0.0
	for _, it := range items {
		baseTotal += it.baseSize
		it.finalMain = it.baseSize
	}

	remaining := mainRef - fixedTotal - baseTotal
	frozen := make([]bool, n)

	grow := remaining > 0
	for pass := 0; pass < 10; pass++ {
		var ratioSum float64
		for i, it := range items {
			if frozen[i] {
				continue
			}
			if grow {
				ratioSum += it.node.Style.FlexGrow
			} else {
				ratioSum += it.node.Style.FlexShrink * it.baseSize
			}
		}
		if ratioSum <= 0 || math.Abs(remaining) < 1e-9 {
			break
		}

		violated := false
		for i, it := range items {
			if frozen[i] {
				continue
			}
			var share float64
			if grow {
				share = remaining * (it.node.Style.FlexGrow / ratioSum)
			} else {
				share = remaining * (it.node.Style.FlexShrink * it.baseSize / ratioSum)
			}
			candidate := it.finalMain + share

			minDim, maxDim := it.mainMinMax()
			clamped := candidate
			ref := mainRef
			if minDim.Unit != UnitAuto {
				if m := minDim.Resolve(ref); clamped < m {
					clamped = m
				}
			}
			if maxDim.Unit != UnitAuto {
				if m := maxDim.Resolve(ref); clamped > m {
					clamped = m
				}
			}
			if clamped != candidate {
				frozen[i] = true
				violated = true
			}
			remaining -= clamped - it.finalMain
			it.finalMain = clamped
		}
		if !violated {
			break
		}
	}
}

func (it *flexItem) mainMinMax() (Dimension, Dimension) {
	style := it.node.Style
	if isRowStyle(style) {
		return style.MinWidth, style.MaxWidth
	}
	return style.MinHeight, style.MaxHeight
}

func isRowStyle(style Style) bool { return style.resolvedFlexDirection().IsRow() }

func lineMainExtent(items []*flexItem, gap float64) float64 {
	total := 0.0
	for i, it := range items {
		if i > 0 {
			total += gap
		}
		total += it.finalMain
		if !it.autoMainStart {
			total += it.marginMainStart
		}
		if !it.autoMainEnd {
			total += it.marginMainEnd
		}
	}
	return total
}

// placeMainAxis implements step 8: auto margins absorb free space before
// justify-content runs; otherwise justify-content (including
// space-evenly) distributes it. Positions are computed in forward
// (document) order and then mirrored about mainRef when reverse is set,
// which reproduces row-reverse/column-reverse and RTL's row<->row-reverse
// swap without a second code path.
func placeMainAxis(items []*flexItem, justify Align, mainRef, gap float64, reverse bool) {
	n := len(items)
	if n == 0 {
		return
	}

	used := lineMainExtent(items, gap)
	free := mainRef - used
	if free < 0 {
		free = 0
	}

	autoEdges := 0
	for _, it := range items {
		if it.autoMainStart {
			autoEdges++
		}
		if it.autoMainEnd {
			autoEdges++
		}
	}

	var leading, between float64
	if autoEdges > 0 {
		perAuto := free / float64(autoEdges)
		cursor := 0.0
		for _, it := range items {
			if it.autoMainStart {
				cursor += perAuto
			} else {
				cursor += it.marginMainStart
			}
			pos := cursor
			cursor += it.finalMain
			if it.autoMainEnd {
				cursor += perAuto
			} else {
				cursor += it.marginMainEnd
			}
			cursor += gap
			setMainPos(it, pos, mainRef, reverse)
		}
		return
	}

	switch justify {
	case AlignEnd:
		leading = free
	case AlignCenter:
		leading = free / 2
	case AlignSpaceBetween:
		if n > 1 {
			between = free / float64(n-1)
		} else {
			leading = free / 2
		}
	case AlignSpaceAround:
		between = free / float64(n)
		leading = between / 2
	case AlignSpaceEvenly:
		between = free / float64(n+1)
		leading = between
	default: // AlignStart
		leading, between = 0, 0
	}

	cursor := leading
	for i, it := range items {
		if i > 0 {
			cursor += gap + between
		}
		cursor += it.marginMainStart
		pos := cursor
		cursor += it.finalMain + it.marginMainEnd
		setMainPos(it, pos, mainRef, reverse)
	}
}

func setMainPos(it *flexItem, pos, mainRef float64, reverse bool) {
	if reverse {
		pos = mainRef - pos - it.finalMain
	}
	it.mainPos = pos
}

func sizeLineCross(line *flexLine, alignItems Align) {
	maxAscent, maxDescent, maxPlain := 0.0, 0.0, 0.0
	for _, it := range line.items {
		margin := it.crossMargins()
		if it.isBaseline {
			descent := it.hypoCross - it.ascent
			if it.ascent > maxAscent {
				maxAscent = it.ascent
			}
			if descent > maxDescent {
				maxDescent = descent
			}
		} else {
			total := it.hypoCross + margin
			if total > maxPlain {
				maxPlain = total
			}
		}
	}
	line.crossSize = math.Max(maxAscent+maxDescent, maxPlain)
	line.baselineAscent = maxAscent
}

func (it *flexItem) crossMargins() float64 {
	m := 0.0
	if !it.autoCrossStart {
		m += it.marginCrossStart
	}
	if !it.autoCrossEnd {
		m += it.marginCrossEnd
	}
	return m
}

// placeLines implements step 9's multi-line distribution (align-content,
// including space-evenly) and returns the total cross extent used.
func placeLines(lines []*flexLine, alignContent Align, crossRef, gap float64) float64 {
	if len(lines) == 0 {
		return 0
	}
	n := len(lines)
	used := 0.0
	for i, l := range lines {
		if i > 0 {
			used += gap
		}
		used += l.crossSize
	}
	free := crossRef - used
	if free < 0 {
		free = 0
	}

	if alignContent == AlignStretch && n > 0 {
		extra := free / float64(n)
		for _, l := range lines {
			l.crossSize += extra
		}
		free = 0
	}

	var leading, between float64
	switch alignContent {
	case AlignEnd:
		leading = free
	case AlignCenter:
		leading = free / 2
	case AlignSpaceBetween:
		if n > 1 {
			between = free / float64(n-1)
		} else {
			leading = free / 2
		}
	case AlignSpaceAround:
		between = free / float64(n)
		leading = between / 2
	case AlignSpaceEvenly:
		between = free / float64(n + 1)
		leading = between
	default:
		leading, between = 0, 0
	}

	cursor := leading
	totalUsed := 0.0
	for i, l := range lines {
		if i > 0 {
			cursor += gap + between
		}
		l.crossPos = cursor
		cursor += l.crossSize
		totalUsed = cursor
	}
	return totalUsed
}

// finalizeItem resolves the item's final cross size (stretch triggers a
// cross-size request), re-solves it at its exact final box so its own
// children are positioned against the true final geometry, and writes its
// Result.X/Y.
func finalizeItem(s *solver, it *flexItem, containerAlignItems Align, line *flexLine, isRow bool, contentW, contentH, offsetX, offsetY float64) {
	align := effectiveAlign(it.node.Style.AlignSelf, containerAlignItems)

	crossSize := it.hypoCross
	ownCrossDim := it.node.Style.Height
	if !isRow {
		ownCrossDim = it.node.Style.Width
	}
	if align == AlignStretch && ownCrossDim.IsAuto() && !it.autoCrossStart && !it.autoCrossEnd {
		crossSize = line.crossSize - it.crossMargins()
		if crossSize < 0 {
			crossSize = 0
		}
	}

	var crossPos float64
	switch {
	case it.isBaseline:
		crossPos = line.baselineAscent - it.ascent
	case it.autoCrossStart || it.autoCrossEnd:
		freeSpace := line.crossSize - crossSize - it.crossMargins()
		if freeSpace < 0 {
			freeSpace = 0
		}
		switch {
		case it.autoCrossStart && it.autoCrossEnd:
			crossPos = freeSpace / 2
		case it.autoCrossStart:
			crossPos = freeSpace
		default:
			crossPos = 0
		}
	default:
		switch align {
		case AlignEnd:
			crossPos = line.crossSize - crossSize - it.marginCrossEnd
		case AlignCenter:
			crossPos = (line.crossSize - crossSize) / 2
		default: // Start, Stretch
			crossPos = it.marginCrossStart
		}
	}

	var finalAvail AvailableSpace
	if isRow {
		finalAvail = AvailableSpace{Width: it.finalMain, WidthMode: Exactly, Height: crossSize, HeightMode: Exactly}
	} else {
		finalAvail = AvailableSpace{Width: crossSize, WidthMode: Exactly, Height: it.finalMain, HeightMode: Exactly}
	}
	fw, fh := s.solveNode(it.node, finalAvail, contentW, contentH)

	var x, y float64
	if isRow {
		x, y = it.mainPos, line.crossPos+crossPos
	} else {
		x, y = line.crossPos+crossPos, it.mainPos
	}
	it.node.Result.X, it.node.Result.Y = x+offsetX, y+offsetY
	it.node.Result.Width, it.node.Result.Height = fw, fh
}
