package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/glabrego/carta-cli/internal/menu"
)

type Theme struct {
	Title       lipgloss.Style
	ModePill    lipgloss.Style
	Category    lipgloss.Style
	CategoryOn  lipgloss.Style
	ActiveLine  lipgloss.Style
	GridHeader  lipgloss.Style
	MetaLabel   lipgloss.Style
	MetaValue   lipgloss.Style
	StateIdle   lipgloss.Style
	StateWarn   lipgloss.Style
	StateLoad   lipgloss.Style
	Placeholder lipgloss.Style

	Name        lipgloss.Style
	Price       lipgloss.Style
	Description lipgloss.Style
	CTA         lipgloss.Style
	HeldBadge   lipgloss.Style
}

// Catppuccin Mocha.
const (
	cpMauve    = lipgloss.Color("#cba6f7")
	cpRed      = lipgloss.Color("#f38ba8")
	cpPeach    = lipgloss.Color("#fab387")
	cpYellow   = lipgloss.Color("#f9e2af")
	cpGreen    = lipgloss.Color("#a6e3a1")
	cpTeal     = lipgloss.Color("#94e2d5")
	cpLavender = lipgloss.Color("#b4befe")
	cpText     = lipgloss.Color("#cdd6f4")
	cpSubtext0 = lipgloss.Color("#a6adc8")
	cpSubtext1 = lipgloss.Color("#bac2de")
	cpOverlay1 = lipgloss.Color("#7f849c")
	cpSurface0 = lipgloss.Color("#313244")
	cpCrust    = lipgloss.Color("#11111b")
)

func Default() Theme {
	return Theme{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:    lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Category:    lipgloss.NewStyle().Foreground(cpSubtext0),
		CategoryOn:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(cpTeal),
		ActiveLine:  lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		GridHeader:  lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		MetaLabel:   lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:   lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:   lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:   lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:   lipgloss.NewStyle().Foreground(cpPeach),
		Placeholder: lipgloss.NewStyle().Foreground(cpOverlay1).Italic(true),
		Name:        lipgloss.NewStyle().Bold(true).Foreground(cpText),
		Price:       lipgloss.NewStyle().Bold(true).Foreground(cpCrust).Background(cpYellow).Padding(0, 1),
		Description: lipgloss.NewStyle().Foreground(cpSubtext1),
		CTA:         lipgloss.NewStyle().Bold(true).Foreground(cpCrust).Background(cpMauve).Padding(0, 2),
		HeldBadge:   lipgloss.NewStyle().Foreground(cpPeach).Bold(true),
	}
}

// FromBusiness applies the venue's brand colours on top of Default. Colours
// that are not hex triplets are ignored. A background without a foreground
// gets dark or light text, whichever reads better on it.
func FromBusiness(b menu.Business) Theme {
	t := Default()
	bg, okBg := brandColor(b.BackgroundColor)
	fg, okFg := brandColor(b.ForegroundColor)
	if okBg {
		t.Price = t.Price.Background(lipgloss.Color(bg.Hex()))
		t.CTA = t.CTA.Background(lipgloss.Color(bg.Hex()))
		t.CategoryOn = t.CategoryOn.Foreground(lipgloss.Color(bg.Hex()))
		if !okFg {
			text := readableOn(bg)
			t.Price = t.Price.Foreground(text)
			t.CTA = t.CTA.Foreground(text)
		}
	}
	if okFg {
		t.Price = t.Price.Foreground(lipgloss.Color(fg.Hex()))
		t.CTA = t.CTA.Foreground(lipgloss.Color(fg.Hex()))
	}
	return t
}

func brandColor(raw string) (colorful.Color, bool) {
	c, err := colorful.Hex(strings.TrimSpace(raw))
	if err != nil || !c.IsValid() {
		return colorful.Color{}, false
	}
	return c, true
}

func readableOn(bg colorful.Color) lipgloss.Color {
	if l, _, _ := bg.Lab(); l > 0.6 {
		return cpCrust
	}
	return cpText
}
