package layout

// SizingMode is the sizing mode paired with an available-space value:
// Exactly stretch-fits the target, AtMost is a fit-content upper bound,
// MaxContent is unbounded.
type SizingMode int

const (
	Exactly SizingMode = iota
	AtMost
	MaxContent
)

// AvailableSpace pairs a numeric bound with a sizing mode, per axis.
type AvailableSpace struct {
	Width      float64
	WidthMode  SizingMode
	Height     float64
	HeightMode SizingMode
}

// Rect is a solved node's box: origin plus size, in the coordinate space of
// its containing block.
type Rect struct {
	X, Y, Width, Height float64
}

// MeasureFunc computes a leaf node's intrinsic size given the available
// space and sizing mode on each axis.
type MeasureFunc func(availWidth, availHeight float64, widthMode, heightMode SizingMode) (width, height float64)

// BaselineFunc computes a node's baseline offset measured down from its
// top edge (the content-box top, after layout has assigned a height).
type BaselineFunc func(n *Node) float64

// Node is a layout tree node: style, ordered children, an optional measure
// callback (making it a leaf — adding children to a measured node is an
// error), an optional baseline callback, and the solved result. A node
// whose resolved width and height are both concrete points is a layout
// boundary: its solve does not depend on its ancestors once its own size
// is known, and dirty flags from its descendants stop at it.
type Node struct {
	Style    Style
	Children []*Node
	Measure  MeasureFunc
	Baseline BaselineFunc

	Result Rect

	dirty bool
	cache CachedMeasurement
}

// NewLeaf creates a measured leaf node.
func NewLeaf(style Style, measure MeasureFunc) *Node {
	return &Node{Style: style, Measure: measure, dirty: true}
}

// NewContainer creates a flex container with the given children.
func NewContainer(style Style, children ...*Node) *Node {
	return &Node{Style: style, Children: children, dirty: true}
}

// AddChild appends c. Returns ErrMeasuredHasChild if n is a measured leaf.
func (n *Node) AddChild(c *Node) error {
	if n.Measure != nil {
		return ErrMeasuredHasChild
	}
	n.Children = append(n.Children, c)
	n.dirty = true
	return nil
}

// MarkDirty invalidates n's cache and marks it for re-solve. It does not
// propagate to the parent — that is PropagateDirty's job, which stops at
// the first node for which IsBoundary is true (spec.md §4.L "Layout
// boundaries").
func (n *Node) MarkDirty() {
	n.dirty = true
	n.cache.valid = false
}

// IsDirty reports whether n needs re-solving.
func (n *Node) IsDirty() bool { return n.dirty }

// IsLeaf reports whether n has a measure callback and therefore cannot
// have children.
func (n *Node) IsLeaf() bool { return n.Measure != nil }

// IsBoundary reports whether n's own width and height are both concrete
// points — such a node's solve is independent of its ancestors once its
// size is known, and is a candidate for parallel solving.
func (n *Node) IsBoundary() bool {
	return n.Style.Width.Unit == UnitPoints && n.Style.Height.Unit == UnitPoints
}

// markClean clears the dirty bit after a successful solve. Propagation of
// dirtiness to an ancestor stops at the first node for which IsBoundary is
// true; PropagateDirty implements that walk.
func (n *Node) markClean() { n.dirty = false }

// PropagateDirty marks n dirty and walks up via parent, stopping at (but
// including) the first boundary node encountered, per spec.md's "dirty
// flags do not propagate above it". Callers that maintain a parent pointer
// outside this package (e.g. the element package's own tree) should use
// this helper rather than reimplementing the stop condition.
func PropagateDirty(n *Node, parentOf func(*Node) *Node) {
	cur := n
	for cur != nil {
		cur.MarkDirty()
		if cur.IsBoundary() {
			return
		}
		cur = parentOf(cur)
	}
}
