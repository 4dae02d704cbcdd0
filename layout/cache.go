package layout

import "math"

// CachedMeasurement is the six-tuple cache slot spec.md §3 describes: the
// (available-width, available-height, width-mode, height-mode) query key
// plus the (computed-width, computed-height) result it produced. One slot
// per node — a later solve either hits this slot or overwrites it.
type CachedMeasurement struct {
	AvailWidth, AvailHeight     float64
	WidthMode, HeightMode       SizingMode
	ComputedWidth, ComputedHeight float64
	valid                       bool
}

// axisHit implements one axis of the cache-probe rule in spec.md §4.L step
// 3: exact match on mode+value, OR the request is Exactly the cached
// computed size, OR the request is an AtMost bound that the cached
// MaxContent result already fits within.
func axisHit(reqMode SizingMode, reqAvail float64, cachedMode SizingMode, cachedAvail, cachedComputed, epsilon float64) bool {
	if reqMode == cachedMode && math.Abs(reqAvail-cachedAvail) <= epsilon {
		return true
	}
	if reqMode == Exactly && math.Abs(reqAvail-cachedComputed) <= epsilon {
		return true
	}
	if reqMode == AtMost && cachedMode == MaxContent && cachedComputed <= reqAvail+epsilon {
		return true
	}
	return false
}

// Probe returns the cached size and true if it may be reused for the given
// request without remeasuring.
func (c *CachedMeasurement) Probe(availW, availH float64, wMode, hMode SizingMode, epsilon float64) (w, h float64, ok bool) {
	if c == nil || !c.valid {
		return 0, 0, false
	}
	if axisHit(wMode, availW, c.WidthMode, c.AvailWidth, c.ComputedWidth, epsilon) &&
		axisHit(hMode, availH, c.HeightMode, c.AvailHeight, c.ComputedHeight, epsilon) {
		return c.ComputedWidth, c.ComputedHeight, true
	}
	return 0, 0, false
}

// Store overwrites the cache slot with a fresh measurement.
func (c *CachedMeasurement) Store(availW, availH float64, wMode, hMode SizingMode, w, h float64) {
	c.AvailWidth, c.AvailHeight = availW, availH
	c.WidthMode, c.HeightMode = wMode, hMode
	c.ComputedWidth, c.ComputedHeight = w, h
	c.valid = true
}
