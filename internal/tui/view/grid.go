package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/glabrego/carta-cli/internal/feed"
	tuigrid "github.com/glabrego/carta-cli/internal/tui/grid"
	tuitheme "github.com/glabrego/carta-cli/internal/tui/theme"
)

type GridRenderInput struct {
	Rows      []tuigrid.Row
	Start     int
	End       int
	Cursor    int
	Collapsed map[string]bool

	RenderCategoryLine func(row tuigrid.Row, collapsed, active bool) string
	RenderProductLine  func(entryIndex int, active bool) string
}

func RenderGridBody(in GridRenderInput) string {
	if len(in.Rows) == 0 || in.Start >= in.End || in.Start < 0 {
		return ""
	}
	var b strings.Builder
	for i := in.Start; i < in.End && i < len(in.Rows); i++ {
		row := in.Rows[i]
		switch row.Kind {
		case tuigrid.RowCategory:
			b.WriteString(in.RenderCategoryLine(row, in.Collapsed[row.Category], i == in.Cursor))
		case tuigrid.RowProduct:
			b.WriteString(in.RenderProductLine(row.EntryIndex, i == in.Cursor))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func RenderCategoryLine(row tuigrid.Row, collapsed, active bool, width int, th tuitheme.Theme) string {
	prefix := "▾ "
	if collapsed {
		prefix = "▸ "
	}
	left := th.GridHeader.Render(prefix + row.Label)
	right := th.MetaLabel.Render(fmt.Sprintf("%d", row.Count))
	return th.RenderActiveLine(active, spread(left, right, width))
}

// RenderProductLine draws one product row. current marks the entry the feed
// is showing.
func RenderProductLine(entry feed.Entry, current, active bool, width int, th tuitheme.Theme) string {
	marker := "  "
	if active {
		marker = "> "
	}
	dot := "  "
	if current {
		dot = "● "
	}
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		name = "(untitled)"
	}
	left := "  " + marker + dot + name
	right := PriceLabel(entry.Price)
	return th.RenderActiveLine(active, spread(left, right, width))
}

// spread places right at the end of a width-wide line, truncating left to
// make room.
func spread(left, right string, width int) string {
	if width <= 0 {
		return left + right
	}
	rw := ansi.StringWidth(right)
	available := width - rw - 1
	if right == "" {
		available = width
	}
	if available < 1 {
		return ansi.Truncate(left, width, "…")
	}
	left = ansi.Truncate(left, available, "…")
	if right == "" {
		return left
	}
	gap := width - ansi.StringWidth(left) - rw
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
