// Package layout is the pure tiling engine (spec §4.3): given a layout
// kind, a work area, a slot count, and resize adjustments, it computes the
// target rectangle for every tiling slot. Nothing in this package touches
// a window, a workspace, or the OS — it is pure geometry.
package layout

import "github.com/LGUG2Z/yatta/internal/geometry"

// Kind is a base tiling layout (spec §4.3). Monocle is deliberately not a
// Kind — it is a per-workspace toggle layered on top of whatever Kind is
// active, handled by the caller (internal/model), not the pure engine.
type Kind int

const (
	BSPV Kind = iota
	BSPH
	Columns
	Rows
)

func (k Kind) String() string {
	switch k {
	case BSPV:
		return "bspv"
	case BSPH:
		return "bsph"
	case Columns:
		return "columns"
	case Rows:
		return "rows"
	default:
		return "unknown"
	}
}

// ParseKind parses the kebab/lowercase names used on the wire (spec §6).
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "bspv":
		return BSPV, true
	case "bsph":
		return BSPH, true
	case "columns":
		return Columns, true
	case "rows":
		return Rows, true
	default:
		return 0, false
	}
}

// MinSlotWidth and MinSlotHeight are the clamp floor for resize
// adjustments (spec §4.3).
const (
	MinSlotWidth  = 100
	MinSlotHeight = 100
)

// Adjustment nudges one slot's edge by deltaPx, the neighbouring slot
// absorbing the change (spec §4.3).
type Adjustment struct {
	SlotIndex int
	Edge      geometry.Edge
	DeltaPx   int
}

// Compute returns n rectangles tiling area according to kind, then applies
// adjustments on top of the pure split. For n==0 it returns nil. For n==1
// the single slot always fills area, regardless of kind.
func Compute(kind Kind, area geometry.Rect, n int, adjustments []Adjustment) []geometry.Rect {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []geometry.Rect{area}
	}

	var rects []geometry.Rect
	switch kind {
	case BSPV:
		rects = bsp(area, n, true)
	case BSPH:
		rects = bsp(area, n, false)
	case Columns:
		rects = grid(area, n, true)
	case Rows:
		rects = grid(area, n, false)
	default:
		rects = bsp(area, n, true)
	}

	return applyAdjustments(kind, rects, adjustments)
}

// bsp recursively bisects area: slot 0 takes the first child of the split,
// the remaining n-1 slots recurse into the second child with the axis
// flipped at every level (spec §4.3; grounded on the original's
// workspace.rs::bsp, generalized to start from either axis).
func bsp(area geometry.Rect, n int, vertical bool) []geometry.Rect {
	if n == 1 {
		return []geometry.Rect{area}
	}

	var first, rest geometry.Rect
	if vertical {
		first, rest = geometry.SplitVertical(area, 0.5)
	} else {
		first, rest = geometry.SplitHorizontal(area, 0.5)
	}

	result := []geometry.Rect{first}
	return append(result, bsp(rest, n-1, !vertical)...)
}

// grid lays out n equal slots in a single row (columns=true) or a single
// column (columns=false), each taking floor(total/n) with the final slot
// absorbing the rounding remainder.
func grid(area geometry.Rect, n int, columns bool) []geometry.Rect {
	rects := make([]geometry.Rect, n)

	if columns {
		base := area.Width / n
		x := area.X
		for i := 0; i < n; i++ {
			w := base
			if i == n-1 {
				w = area.X + area.Width - x
			}
			rects[i] = geometry.Rect{X: x, Y: area.Y, Width: w, Height: area.Height}
			x += base
		}
		return rects
	}

	base := area.Height / n
	y := area.Y
	for i := 0; i < n; i++ {
		h := base
		if i == n-1 {
			h = area.Y + area.Height - y
		}
		rects[i] = geometry.Rect{X: area.X, Y: y, Width: area.Width, Height: h}
		y += base
	}
	return rects
}

// adjustableAxis reports whether edge is adjustable for kind. BSP layouts
// have a slot-specific split axis so either axis may be adjustable; grid
// layouts only admit adjustments along the split axis (spec §4.3).
func adjustableAxis(kind Kind, edge geometry.Edge) bool {
	switch kind {
	case BSPV, BSPH:
		return true
	case Columns:
		return edge == geometry.Left || edge == geometry.Right
	case Rows:
		return edge == geometry.Top || edge == geometry.Bottom
	default:
		return false
	}
}

// applyAdjustments grows/shrinks the named slot's edge by deltaPx, the
// adjacent slot along that axis absorbing the change, clamped so neither
// slot falls below the minimum size (spec §4.3).
func applyAdjustments(kind Kind, rects []geometry.Rect, adjustments []Adjustment) []geometry.Rect {
	for _, adj := range adjustments {
		if adj.SlotIndex < 0 || adj.SlotIndex >= len(rects) {
			continue
		}
		if !adjustableAxis(kind, adj.Edge) {
			continue
		}

		neighbor := findNeighbor(rects, adj.SlotIndex, adj.Edge)
		if neighbor < 0 {
			continue
		}

		applyEdgeDelta(rects, adj.SlotIndex, neighbor, adj.Edge, adj.DeltaPx)
	}
	return rects
}

// findNeighbor finds the slot immediately adjacent to slot along edge,
// identified by shared boundary rather than index order, so the search
// works regardless of the layout's traversal shape.
func findNeighbor(rects []geometry.Rect, slot int, edge geometry.Edge) int {
	r := rects[slot]
	for i, other := range rects {
		if i == slot {
			continue
		}
		switch edge {
		case geometry.Right:
			if other.X == r.X+r.Width && overlapsVertically(r, other) {
				return i
			}
		case geometry.Left:
			if r.X == other.X+other.Width && overlapsVertically(r, other) {
				return i
			}
		case geometry.Bottom:
			if other.Y == r.Y+r.Height && overlapsHorizontally(r, other) {
				return i
			}
		case geometry.Top:
			if r.Y == other.Y+other.Height && overlapsHorizontally(r, other) {
				return i
			}
		}
	}
	return -1
}

func overlapsVertically(a, b geometry.Rect) bool {
	return a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

func overlapsHorizontally(a, b geometry.Rect) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width
}

// applyEdgeDelta grows slot's named edge by deltaPx and shrinks neighbor's
// opposing edge by the same amount, clamping so neither drops below the
// minimum slot size; a clamped delta is simply the largest that fits,
// per spec §4.3's "clamped, remainder discarded".
func applyEdgeDelta(rects []geometry.Rect, slot, neighbor int, edge geometry.Edge, deltaPx int) {
	s := &rects[slot]
	nb := &rects[neighbor]

	switch edge {
	case geometry.Right:
		delta := clampDelta(deltaPx, s.Width, nb.Width, true)
		s.Width += delta
		nb.X += delta
		nb.Width -= delta
	case geometry.Left:
		delta := clampDelta(deltaPx, s.Width, nb.Width, true)
		s.X -= delta
		s.Width += delta
		nb.Width -= delta
	case geometry.Bottom:
		delta := clampDelta(deltaPx, s.Height, nb.Height, false)
		s.Height += delta
		nb.Y += delta
		nb.Height -= delta
	case geometry.Top:
		delta := clampDelta(deltaPx, s.Height, nb.Height, false)
		s.Y -= delta
		s.Height += delta
		nb.Height -= delta
	}
}

// clampDelta bounds a requested delta so the shrinking neighbor never
// drops below the minimum and the growing slot never needs to shrink
// below the minimum either (a negative delta shrinks slot and grows
// neighbor instead).
func clampDelta(delta, slotSize, neighborSize int, horizontal bool) int {
	min := MinSlotHeight
	if horizontal {
		min = MinSlotWidth
	}

	if delta > 0 {
		// neighbor shrinks by delta; it must not fall below min.
		maxDelta := neighborSize - min
		if maxDelta < 0 {
			maxDelta = 0
		}
		if delta > maxDelta {
			delta = maxDelta
		}
		return delta
	}

	// delta <= 0: slot shrinks by -delta; it must not fall below min.
	maxShrink := slotSize - min
	if maxShrink < 0 {
		maxShrink = 0
	}
	if -delta > maxShrink {
		delta = -maxShrink
	}
	return delta
}
