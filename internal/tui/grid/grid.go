// Package grid builds the rows of the alternate menu view: one header row per
// category followed by that category's products, in feed order.
package grid

import (
	"strings"

	"github.com/glabrego/carta-cli/internal/feed"
)

type RowKind string

const (
	RowCategory RowKind = "category"
	RowProduct  RowKind = "product"
)

type Row struct {
	Kind       RowKind
	Label      string
	Category   string
	Count      int
	EntryIndex int
}

type BuildOptions struct {
	CollapsedCategories map[string]bool
}

const uncategorized = "Other"

func CategoryName(entry feed.Entry) string {
	name := strings.TrimSpace(entry.Category)
	if name == "" {
		return uncategorized
	}
	return name
}

// BuildRows groups consecutive entries by category. Entries come out of
// feed.Derive already ordered by category, so a category that shows up twice
// is only possible for unordered input and then gets two headers.
func BuildRows(entries []feed.Entry, opts BuildOptions) []Row {
	rows := make([]Row, 0, len(entries)+8)
	header := -1
	for i, entry := range entries {
		category := CategoryName(entry)
		if header < 0 || rows[header].Category != category {
			rows = append(rows, Row{Kind: RowCategory, Label: category, Category: category, EntryIndex: -1})
			header = len(rows) - 1
		}
		rows[header].Count++
		if opts.CollapsedCategories[category] {
			continue
		}
		rows = append(rows, Row{
			Kind:       RowProduct,
			Label:      productLabel(entry),
			Category:   category,
			EntryIndex: i,
		})
	}
	return rows
}

func productLabel(entry feed.Entry) string {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return "(untitled)"
	}
	return name
}

func FirstProductRow(rows []Row) int {
	for i, row := range rows {
		if row.Kind == RowProduct {
			return i
		}
	}
	return -1
}

// RowForEntry is the row showing entryIndex, or the header of its collapsed
// category, or -1.
func RowForEntry(rows []Row, entries []feed.Entry, entryIndex int) int {
	for i, row := range rows {
		if row.Kind == RowProduct && row.EntryIndex == entryIndex {
			return i
		}
	}
	if entryIndex < 0 || entryIndex >= len(entries) {
		return -1
	}
	category := CategoryName(entries[entryIndex])
	for i, row := range rows {
		if row.Kind == RowCategory && row.Category == category {
			return i
		}
	}
	return -1
}

// EntryAt resolves the product selected at cursor. Header rows select
// nothing.
func EntryAt(rows []Row, cursor int) (int, bool) {
	if cursor < 0 || cursor >= len(rows) || rows[cursor].Kind != RowProduct {
		return 0, false
	}
	return rows[cursor].EntryIndex, true
}
