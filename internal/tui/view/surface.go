package view

import "math"

// CardFunc renders card i; it must return exactly the card height lines.
type CardFunc func(i int) []string

// SurfaceLines composes the scroll surface at offset: the tail of the card
// the offset falls in followed by the head of the next one, height rows in
// total. Cards are one viewport tall, matching the feed engine's geometry.
func SurfaceLines(offset float64, height, count int, card CardFunc) []string {
	if height <= 0 {
		return nil
	}
	out := make([]string, 0, height)
	if count > 0 {
		top := int(math.Round(offset))
		if top < 0 {
			top = 0
		}
		first := top / height
		skip := top % height
		for i := first; i < count && len(out) < height; i++ {
			lines := card(i)
			if i == first {
				if skip >= len(lines) {
					continue
				}
				lines = lines[skip:]
			}
			for _, line := range lines {
				if len(out) == height {
					break
				}
				out = append(out, line)
			}
		}
	}
	for len(out) < height {
		out = append(out, "")
	}
	return out
}
