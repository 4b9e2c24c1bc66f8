package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	tuitheme "github.com/glabrego/carta-cli/internal/tui/theme"
)

const AllCategories = "All"

type HeaderParams struct {
	Business string
	Mode     string
	Position int
	Total    int
	Gate     string
	Held     bool
	Width    int
}

func Header(p HeaderParams, th tuitheme.Theme) string {
	name := strings.TrimSpace(p.Business)
	if name == "" {
		name = "carta"
	}
	parts := []string{th.Title.Render(name), th.ModePill.Render(p.Mode)}
	if p.Total > 0 {
		parts = append(parts, th.MetaValue.Render(fmt.Sprintf("%d/%d", p.Position+1, p.Total)))
	}
	if p.Held {
		parts = append(parts, th.HeldBadge.Render("● held"))
	} else if p.Gate != "" {
		parts = append(parts, th.MetaLabel.Render(p.Gate))
	}
	return ansi.Truncate(strings.Join(parts, " "), max(1, p.Width), "…")
}

// CategoryBar lists "All" followed by categories; selected indexes that list.
func CategoryBar(categories []string, selected, width int, th tuitheme.Theme) string {
	names := append([]string{AllCategories}, categories...)
	parts := make([]string, 0, len(names))
	for i, name := range names {
		parts = append(parts, th.RenderCategory(i == selected, name))
	}
	return ansi.Truncate(strings.Join(parts, "  "), max(1, width), "…")
}

// CallToAction is the overlay shown while the surface is held.
func CallToAction(label string, width int, th tuitheme.Theme) string {
	if label == "" {
		label = "View full menu"
	}
	return lipgloss.PlaceHorizontal(max(1, width), lipgloss.Center, th.CTA.Render(label+" (o)"))
}

func Toolbar(inGrid, gridAllowed bool) string {
	if inGrid {
		return "j/k move | enter show in feed | space collapse | g feed | ? help | q quit"
	}
	if !gridAllowed {
		return "click+hold pause | j/k swipe | tab category | o menu | ? help | q quit"
	}
	return "click+hold pause | j/k swipe | tab category | g grid | o menu | ? help | q quit"
}

type MessageParams struct {
	Loading   bool
	Spinner   string
	Status    string
	Warning   string
	FetchedAt time.Time
	Now       time.Time
	User      string
}

func Message(p MessageParams, th tuitheme.Theme) string {
	state := "idle"
	stateLabel := th.StateIdle.Render("state")
	switch {
	case p.Warning != "":
		state = "warning"
		stateLabel = th.StateWarn.Render("state")
	case p.Loading:
		state = "loading"
		stateLabel = th.StateLoad.Render("state")
	}
	if p.Loading && p.Spinner != "" {
		state = p.Spinner + " " + state
	}

	main := "Ready"
	if p.Status != "" {
		main = p.Status
	} else if p.Warning != "" {
		main = p.Warning
	}
	parts := []string{fmt.Sprintf("%s: %s", stateLabel, state), th.MetaValue.Render(main)}
	if !p.FetchedAt.IsZero() {
		parts = append(parts, th.MetaLabel.Render("updated")+" "+th.MetaValue.Render(UpdatedLabel(p.Now, p.FetchedAt)))
	}
	if p.User != "" {
		parts = append(parts, th.MetaLabel.Render("user")+" "+th.MetaValue.Render(p.User))
	}
	return strings.Join(parts, " | ")
}

func UpdatedLabel(now, then time.Time) string {
	if then.IsZero() {
		return "never"
	}
	if now.IsZero() {
		now = time.Now()
	}
	if now.Sub(then) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(then, now, "ago", "from now")
}
