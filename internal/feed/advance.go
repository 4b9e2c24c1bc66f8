package feed

import (
	"math"
	"time"
)

const (
	// AdvanceDuration is the length of one eased auto-scroll.
	AdvanceDuration = 800 * time.Millisecond
	// DefaultFrameInterval paces the animation ticks.
	DefaultFrameInterval = 16 * time.Millisecond
)

// NextIndex is the entry after current, wrapping to 0 past the end.
func NextIndex(current, n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	return (clampIndex(current, n) + 1) % n, true
}

// Ease is the symmetric cubic ease-in-out over p in [0, 1].
func Ease(p float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	case p < 0.5:
		return 4 * p * p * p
	default:
		return 1 - math.Pow(-2*p+2, 3)/2
	}
}

// ScrollAnimation is the state of one in-flight auto-scroll.
type ScrollAnimation struct {
	From     float64
	To       float64
	Target   int
	Start    time.Time
	Duration time.Duration
}

// Progress is min(elapsed/duration, 1).
func (a ScrollAnimation) Progress(now time.Time) float64 {
	if a.Duration <= 0 {
		return 1
	}
	elapsed := now.Sub(a.Start)
	if elapsed <= 0 {
		return 0
	}
	return math.Min(float64(elapsed)/float64(a.Duration), 1)
}

func (a ScrollAnimation) OffsetAt(now time.Time) float64 {
	p := a.Progress(now)
	if p >= 1 {
		return a.To
	}
	return a.From + (a.To-a.From)*Ease(p)
}

func (a ScrollAnimation) Done(now time.Time) bool {
	return a.Progress(now) >= 1
}
