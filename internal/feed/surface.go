package feed

import "math"

// Surface is the scroll container. Every item is exactly one viewport tall and
// items are stacked in index order, so item i spans [i*h, (i+1)*h).
type Surface struct {
	offset   float64
	viewport float64
	count    int
	snap     bool
}

func NewSurface() Surface {
	return Surface{snap: true}
}

// Mounted reports whether the container has geometry to observe.
func (s Surface) Mounted() bool {
	return s.viewport > 0
}

func (s Surface) Offset() float64 { return s.offset }
func (s Surface) Viewport() float64 { return s.viewport }
func (s Surface) Count() int { return s.count }

// Snap reports whether scroll-snap is enabled.
func (s Surface) Snap() bool { return s.snap }

func (s Surface) MaxOffset() float64 {
	if s.count <= 0 || s.viewport <= 0 {
		return 0
	}
	return float64(s.count-1) * s.viewport
}

// ItemTop returns the offset of item i from the top of the container.
// It fails when the item does not exist or the container is not laid out.
func (s Surface) ItemTop(i int) (float64, bool) {
	if !s.Mounted() || i < 0 || i >= s.count {
		return 0, false
	}
	return float64(i) * s.viewport, true
}

// IntersectionRatio is the visible fraction of item i within the viewport.
func (s Surface) IntersectionRatio(i int) float64 {
	top, ok := s.ItemTop(i)
	if !ok {
		return 0
	}
	visible := math.Min(top+s.viewport, s.offset+s.viewport) - math.Max(top, s.offset)
	if visible <= 0 {
		return 0
	}
	return visible / s.viewport
}

// Nearest is the item whose top is closest to the current offset.
func (s Surface) Nearest() int {
	if !s.Mounted() || s.count <= 0 {
		return 0
	}
	i := int(math.Round(s.offset / s.viewport))
	return clampIndex(i, s.count)
}

func (s *Surface) setOffset(offset float64) {
	if offset < 0 {
		offset = 0
	}
	if limit := s.MaxOffset(); offset > limit {
		offset = limit
	}
	s.offset = offset
}

func (s *Surface) setSnap(on bool) {
	s.snap = on
}

func (s *Surface) layout(viewport float64, count int) {
	if viewport < 0 {
		viewport = 0
	}
	if count < 0 {
		count = 0
	}
	s.viewport = viewport
	s.count = count
	s.setOffset(s.offset)
}

func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}
