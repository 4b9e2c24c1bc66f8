package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/carta-cli/internal/app"
)

type Service interface {
	Refresh(ctx context.Context, slug string) (app.Catalog, error)
	LoadCached(ctx context.Context, slug string) (app.Catalog, error)
	Login(ctx context.Context, userName, password string) (app.Session, error)
}

const (
	SourceCache   = "cache"
	SourceRefresh = "refresh"
)

type CatalogLoadedMsg struct {
	Catalog  app.Catalog
	Duration time.Duration
	Source   string
}

type CatalogErrorMsg struct {
	Err      error
	Duration time.Duration
	Source   string
}

type LoginSuccessMsg struct {
	Session app.Session
}

type LoginErrorMsg struct {
	Err error
}

type PreviewSuccessMsg struct {
	Key     string
	EntryID string
	Preview string
}

type PreviewErrorMsg struct {
	Key     string
	EntryID string
	Err     error
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

// WakeMsg asks the model to run the feed engine's due timers. Seq lets the
// model drop wake-ups that were superseded by a later schedule.
type WakeMsg struct {
	Seq int
	At  time.Time
}

// PreviewRenderer turns a media URL into terminal lines of the given size.
type PreviewRenderer func(ctx context.Context, url string, width, rows int) (string, error)

func RefreshCmd(service Service, slug string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		start := time.Now()

		catalog, err := service.Refresh(ctx, slug)
		if err != nil {
			return CatalogErrorMsg{Err: err, Duration: time.Since(start), Source: SourceRefresh}
		}
		return CatalogLoadedMsg{Catalog: catalog, Duration: time.Since(start), Source: SourceRefresh}
	}
}

func LoadCachedCmd(service Service, slug string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		start := time.Now()

		catalog, err := service.LoadCached(ctx, slug)
		if err != nil {
			return CatalogErrorMsg{Err: err, Duration: time.Since(start), Source: SourceCache}
		}
		return CatalogLoadedMsg{Catalog: catalog, Duration: time.Since(start), Source: SourceCache}
	}
}

func LoginCmd(service Service, userName, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		session, err := service.Login(ctx, userName, password)
		if err != nil {
			return LoginErrorMsg{Err: err}
		}
		return LoginSuccessMsg{Session: session}
	}
}

func PreviewCmd(key, entryID, url string, width, rows int, renderFn PreviewRenderer) tea.Cmd {
	if renderFn == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		preview, err := renderFn(ctx, url, width, rows)
		if err != nil {
			return PreviewErrorMsg{Key: key, EntryID: entryID, Err: err}
		}
		return PreviewSuccessMsg{Key: key, EntryID: entryID, Preview: preview}
	}
}

func WakeCmd(seq int, after time.Duration) tea.Cmd {
	if after < 0 {
		after = 0
	}
	return tea.Tick(after, func(at time.Time) tea.Msg {
		return WakeMsg{Seq: seq, At: at}
	})
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened menu in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, menu URL copied to clipboard", Opened: false}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Menu URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy URL to clipboard")}
	}
}
