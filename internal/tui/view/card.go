package view

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/glabrego/carta-cli/internal/feed"
	"github.com/glabrego/carta-cli/internal/render/description"
	tuitheme "github.com/glabrego/carta-cli/internal/tui/theme"
)

// MediaPreview is what the card shows in its media area.
type MediaPreview struct {
	Loading bool
	Raw     string
	Err     string
}

type CardParams struct {
	Entry    feed.Entry
	Width    int
	Height   int
	InWindow bool
	State    feed.PlaybackState
	Preview  MediaPreview
	// Progress is the played fraction of a video; HasProgress is false for
	// images and for videos that are not mounted.
	Progress    float64
	HasProgress bool
}

const maxDescriptionLines = 3

// RenderCard renders one feed card as exactly p.Height lines, none wider than
// p.Width cells.
func RenderCard(p CardParams, bar progress.Model, th tuitheme.Theme) []string {
	if p.Height <= 0 {
		return nil
	}
	width := max(1, p.Width)
	desc := description.Clamp(p.Entry.Description, width, descriptionRows(p.Height))

	text := make([]string, 0, 2+len(desc))
	text = append(text, titleLine(p.Entry, width, th))
	for _, line := range desc {
		text = append(text, th.Description.Render(line))
	}
	text = append(text, statusLine(p, width, bar, th))

	mediaRows := p.Height - len(text)
	lines := make([]string, 0, p.Height)
	lines = append(lines, mediaLines(p, width, mediaRows, th)...)
	lines = append(lines, text...)
	return fitLines(lines, width, p.Height)
}

// MediaRows is the height of the media area of a card for entry.
func MediaRows(entry feed.Entry, width, height int) int {
	desc := description.Clamp(entry.Description, max(1, width), descriptionRows(height))
	return max(0, height-2-len(desc))
}

func descriptionRows(height int) int {
	if height < 10 {
		return 1
	}
	return maxDescriptionLines
}

func PriceLabel(price float64) string {
	if price <= 0 {
		return ""
	}
	if price == float64(int64(price)) {
		return "$" + humanize.Comma(int64(price))
	}
	return "$" + humanize.FormatFloat("#,###.##", price)
}

func titleLine(entry feed.Entry, width int, th tuitheme.Theme) string {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		name = "(untitled)"
	}
	price := ""
	if label := PriceLabel(entry.Price); label != "" {
		price = th.Price.Render(label) + " "
	}
	available := width - ansi.StringWidth(price)
	if available < 1 {
		return ansi.Truncate(price, width, "")
	}
	return price + th.Name.Render(ansi.Truncate(name, available, "…"))
}

func stateIcon(state feed.PlaybackState) string {
	switch state {
	case feed.Playing:
		return "▶"
	case feed.Paused:
		return "❚❚"
	default:
		return "·"
	}
}

func statusLine(p CardParams, width int, bar progress.Model, th tuitheme.Theme) string {
	icon := stateIcon(p.State)
	label := p.Entry.Kind.String()
	if category := strings.TrimSpace(p.Entry.Category); category != "" {
		label += " · " + category
	}
	if p.Entry.Kind == feed.MediaVideo && p.HasProgress {
		bar.Width = max(4, width-ansi.StringWidth(icon)-1)
		return icon + " " + bar.ViewAs(clampUnit(p.Progress))
	}
	return th.MetaLabel.Render(icon) + " " + th.MetaValue.Render(label)
}

func mediaLines(p CardParams, width, rows int, th tuitheme.Theme) []string {
	if rows <= 0 {
		return nil
	}
	out := make([]string, 0, rows)
	switch {
	case !p.InWindow:
	case strings.TrimSpace(p.Preview.Raw) != "":
		for _, line := range strings.Split(strings.TrimRight(p.Preview.Raw, "\n"), "\n") {
			if len(out) == rows {
				break
			}
			out = append(out, line)
		}
	default:
		out = append(out, th.Placeholder.Render(placeholder(p)))
	}
	for len(out) < rows {
		out = append(out, "")
	}
	return out
}

func placeholder(p CardParams) string {
	switch {
	case p.Preview.Loading:
		return "loading " + p.Entry.Kind.String() + "…"
	case p.Preview.Err != "":
		return p.Entry.Kind.String() + " unavailable: " + p.Preview.Err
	case p.Entry.Kind == feed.MediaVideo:
		return "[video]"
	default:
		return "[image]"
	}
}

// fitLines pads or cuts lines to exactly height rows of at most width cells.
func fitLines(lines []string, width, height int) []string {
	out := make([]string, height)
	for i := range out {
		if i < len(lines) {
			out[i] = ansi.Truncate(lines[i], width, "")
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
