package feed

// Window returns the render window for active in a feed of n entries:
// active and its direct neighbours, clipped to the valid range.
func Window(active, n int) []int {
	if n <= 0 || active < 0 || active >= n {
		return nil
	}
	out := make([]int, 0, 3)
	for i := active - 1; i <= active+1; i++ {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	return out
}

// InWindow reports whether index may have its media mounted.
func InWindow(index, active, n int) bool {
	if index < 0 || index >= n || active < 0 || active >= n {
		return false
	}
	d := index - active
	return d >= -1 && d <= 1
}
