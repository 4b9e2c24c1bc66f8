// Package feed implements the viewer engine behind the full-screen menu feed:
// which card is visible, when it has finished, how the surface scrolls to the
// next one, and when all of that is suspended because someone is holding the
// surface.
//
// The engine is single-threaded. Every exported method must be called from the
// host's event loop and receives the current time explicitly; pending work is
// exposed as deadlines through NextDeadline and executed by Tick.
package feed

import (
	"sort"
	"strings"
	"time"

	"github.com/glabrego/carta-cli/internal/menu"
)

// MediaKind tells the playback controller how an entry finishes.
type MediaKind int

const (
	MediaImage MediaKind = iota
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	default:
		return "unknown"
	}
}

// KindFromContentType maps a MIME-like content type to a media kind.
// Anything that is not an image is played as a video.
func KindFromContentType(contentType string) MediaKind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image") {
		return MediaImage
	}
	return MediaVideo
}

// Entry is one card of the feed. Index is its position in the derived order.
type Entry struct {
	ID          string
	Index       int
	Kind        MediaKind
	MediaURL    string
	Thumbnail   string
	Name        string
	Description string
	Category    string
	Price       float64
	Duration    time.Duration
}

// DeriveOptions carries the externally supplied filter and ordering.
type DeriveOptions struct {
	// Tags keeps only products sharing at least one tag. Empty disables the filter.
	Tags []string
	// CategoryOrder ranks categories; unlisted categories follow in first-seen order.
	CategoryOrder []string
	// Category keeps a single category. Empty keeps all.
	Category string
}

// Derive turns the upstream product collection into the ordered entry list.
func Derive(products []menu.Product, opts DeriveOptions) []Entry {
	kept := visibleProducts(products, opts.Tags)
	rank := categoryRanks(kept, opts.CategoryOrder)
	sort.SliceStable(kept, func(i, j int) bool {
		return rank[categoryKey(kept[i].Category)] < rank[categoryKey(kept[j].Category)]
	})

	want := categoryKey(opts.Category)
	entries := make([]Entry, 0, len(kept))
	for _, p := range kept {
		if want != "" && categoryKey(p.Category) != want {
			continue
		}
		entries = append(entries, Entry{
			ID:          p.ID,
			Index:       len(entries),
			Kind:        KindFromContentType(p.ContentType),
			MediaURL:    strings.TrimSpace(p.ContentURL),
			Thumbnail:   strings.TrimSpace(p.Thumbnail),
			Name:        strings.TrimSpace(p.Name),
			Description: p.Description,
			Category:    strings.TrimSpace(p.Category),
			Price:       p.Price,
			Duration:    time.Duration(p.DurationMS) * time.Millisecond,
		})
	}
	return entries
}

// Categories lists the categories of the visible products in feed order.
func Categories(products []menu.Product, opts DeriveOptions) []string {
	kept := visibleProducts(products, opts.Tags)
	rank := categoryRanks(kept, opts.CategoryOrder)
	seen := make(map[string]bool, len(rank))
	out := make([]string, 0, len(rank))
	for _, p := range kept {
		key := categoryKey(p.Category)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(p.Category))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank[categoryKey(out[i])] < rank[categoryKey(out[j])]
	})
	return out
}

// IndexByID returns the position of id in entries, or -1.
func IndexByID(entries []Entry, id string) int {
	for i, entry := range entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

func visibleProducts(products []menu.Product, tags []string) []menu.Product {
	filter := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if key := strings.ToLower(strings.TrimSpace(tag)); key != "" {
			filter[key] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(products))
	out := make([]menu.Product, 0, len(products))
	for _, p := range products {
		if !p.Show {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		if len(filter) > 0 && !sharesTag(p.Tags, filter) {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func sharesTag(tags []string, filter map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := filter[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return true
		}
	}
	return false
}

func categoryRanks(products []menu.Product, order []string) map[string]int {
	rank := make(map[string]int, len(order)+len(products))
	for _, c := range order {
		key := categoryKey(c)
		if _, ok := rank[key]; !ok {
			rank[key] = len(rank)
		}
	}
	next := len(order)
	for _, p := range products {
		key := categoryKey(p.Category)
		if _, ok := rank[key]; !ok {
			rank[key] = next
			next++
		}
	}
	return rank
}

func categoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
