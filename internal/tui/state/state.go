package state

import (
	tuigrid "github.com/glabrego/carta-cli/internal/tui/grid"
)

const (
	chromeLines = 5
	minCard     = 6
)

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

// CardHeight is the number of rows one feed card occupies: the terminal
// height minus the header, the category bar, the call-to-action row and the
// two footer rows.
func CardHeight(height int) int {
	if height <= 0 {
		return 0
	}
	h := height - chromeLines
	if h < minCard {
		h = minCard
	}
	return h
}

func PageStep(height int) int {
	if height <= 0 {
		return 10
	}
	step := CardHeight(height) - 2
	if step < 3 {
		step = 3
	}
	return step
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

// CycleCategory moves through "All" (0) followed by n categories, wrapping.
func CycleCategory(current, n, dir int) int {
	size := n + 1
	if size <= 1 {
		return 0
	}
	current = ClampCursor(current, size)
	return ((current+dir)%size + size) % size
}

// SyncedEntryCursor is the entry under the grid cursor, or the closest
// product below it, then above it.
func SyncedEntryCursor(rows []tuigrid.Row, gridCursor int) int {
	if len(rows) == 0 {
		return 0
	}
	gridCursor = ClampCursor(gridCursor, len(rows))
	if rows[gridCursor].Kind == tuigrid.RowProduct {
		return rows[gridCursor].EntryIndex
	}
	for i := gridCursor + 1; i < len(rows); i++ {
		if rows[i].Kind == tuigrid.RowProduct {
			return rows[i].EntryIndex
		}
	}
	for i := gridCursor - 1; i >= 0; i-- {
		if rows[i].Kind == tuigrid.RowProduct {
			return rows[i].EntryIndex
		}
	}
	return 0
}
