package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/glabrego/carta-cli/internal/app"
	"github.com/glabrego/carta-cli/internal/feed"
	"github.com/glabrego/carta-cli/internal/menu"
	"github.com/glabrego/carta-cli/internal/storage"
	"github.com/glabrego/carta-cli/internal/tui/actions"
)

var t0 = time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

type fakeService struct {
	catalog app.Catalog
	err     error
}

func (f fakeService) Refresh(context.Context, string) (app.Catalog, error) {
	return f.catalog, f.err
}

func (f fakeService) LoadCached(context.Context, string) (app.Catalog, error) {
	return f.catalog, f.err
}

func (f fakeService) Login(_ context.Context, userName, _ string) (app.Session, error) {
	return app.Session{User: menu.User{UserName: userName}}, f.err
}

func testCatalog() app.Catalog {
	return app.Catalog{
		Business: menu.Business{ID: "b1", Name: "Cafe Sol", Slug: "cafe-sol", MenuURL: "https://cafe.example/menu"},
		Products: []menu.Product{
			{ID: "p1", Name: "Flat white", Category: "Coffee", ContentType: "image/jpeg", Show: true, Price: 4.5},
			{ID: "p2", Name: "Espresso", Category: "Coffee", ContentType: "image/jpeg", Show: true, Price: 3},
			{ID: "p3", Name: "Croissant", Category: "Bakery", ContentType: "image/jpeg", Show: true, Price: 2.75},
		},
		FetchedAt: t0.Add(-time.Hour),
	}
}

// newTestModel returns a sized model whose clock reads *now.
func newTestModel(t *testing.T, now *time.Time, opts Options) Model {
	t.Helper()
	m := NewModel(fakeService{catalog: testCatalog()}, opts)
	t.Cleanup(m.engine.Close)
	m.nowFn = func() time.Time { return *now }
	m.openURLFn = func(string) error { return nil }
	m.copyURLFn = func(string) error { return nil }
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func loadCatalog(t *testing.T, m Model, catalog app.Catalog, source string) Model {
	t.Helper()
	return update(t, m, actions.CatalogLoadedMsg{Catalog: catalog, Duration: 120 * time.Millisecond, Source: source})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func activeIndex(t *testing.T, m Model) int {
	t.Helper()
	idx, ok := m.engine.ActiveIndex()
	if !ok {
		t.Fatal("expected an active entry")
	}
	return idx
}

func TestModelView_BeforeSize(t *testing.T) {
	m := NewModel(nil, Options{})
	t.Cleanup(m.engine.Close)
	if got := m.View(); !strings.Contains(got, "Loading menu") {
		t.Fatalf("expected loading placeholder, got %q", got)
	}
}

func TestModelInit_BatchesStartupCommands(t *testing.T) {
	m := NewModel(fakeService{}, Options{Slug: "cafe-sol", Username: "ana", Password: "secret"})
	t.Cleanup(m.engine.Close)
	if m.Init() == nil {
		t.Fatal("expected startup commands")
	}

	bare := NewModel(nil, Options{})
	t.Cleanup(bare.engine.Close)
	if bare.Init() != nil {
		t.Fatal("expected no commands without a service")
	}
}

func TestModelUpdate_ResizeLaysOutSurface(t *testing.T) {
	now := t0
	m := newTestModel(t, &now, Options{})
	if got := m.engine.Surface().Viewport(); got != 19 {
		t.Fatalf("expected a 19 row viewport, got %v", got)
	}
}

func TestModelUpdate_CatalogDerivesFeed(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	if got := len(m.engine.Entries()); got != 3 {
		t.Fatalf("expected 3 entries, got %d", got)
	}
	if strings.Join(m.categories, ",") != "Coffee,Bakery" {
		t.Fatalf("unexpected categories: %v", m.categories)
	}
	if m.status != "Menu refreshed: 3 items in 120ms" {
		t.Fatalf("unexpected status: %q", m.status)
	}
	if !m.refreshed || m.loading {
		t.Fatalf("expected refreshed state, got refreshed=%v loading=%v", m.refreshed, m.loading)
	}

	view := ansi.Strip(m.View())
	for _, want := range []string{"Cafe Sol", "1/3", "Flat white", "$4.50", "All  Coffee  Bakery"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view, got:\n%s", want, view)
		}
	}
}

func TestModelUpdate_ConfiguredTagsOverrideBusiness(t *testing.T) {
	now := t0
	catalog := testCatalog()
	catalog.Business.FilterByTags = []string{"hot"}
	catalog.Products[0].Tags = []string{"hot"}
	catalog.Products[2].Tags = []string{"vegan"}

	m := loadCatalog(t, newTestModel(t, &now, Options{}), catalog, actions.SourceRefresh)
	if got := len(m.engine.Entries()); got != 1 {
		t.Fatalf("expected business tags to keep 1 entry, got %d", got)
	}

	m = loadCatalog(t, newTestModel(t, &now, Options{Tags: []string{"vegan"}}), catalog, actions.SourceRefresh)
	entries := m.engine.Entries()
	if len(entries) != 1 || entries[0].ID != "p3" {
		t.Fatalf("expected configured tag to keep p3, got %+v", entries)
	}
}

func TestModelUpdate_CacheAfterRefreshIsIgnored(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	stale := testCatalog()
	stale.Products = stale.Products[:1]
	m = loadCatalog(t, m, stale, actions.SourceCache)
	if got := len(m.engine.Entries()); got != 3 {
		t.Fatalf("expected refreshed catalog to win, got %d entries", got)
	}
}

func TestModelUpdate_RefreshReplacesCache(t *testing.T) {
	now := t0
	cached := testCatalog()
	cached.Products = cached.Products[:1]
	m := loadCatalog(t, newTestModel(t, &now, Options{}), cached, actions.SourceCache)
	if m.status != "Loaded 1 cached items" {
		t.Fatalf("unexpected status: %q", m.status)
	}

	m = loadCatalog(t, m, testCatalog(), actions.SourceRefresh)
	if got := len(m.engine.Entries()); got != 3 {
		t.Fatalf("expected 3 entries after refresh, got %d", got)
	}
}

func TestModelUpdate_CatalogErrors(t *testing.T) {
	now := t0
	m := newTestModel(t, &now, Options{Slug: "cafe-sol"})

	m = update(t, m, actions.CatalogErrorMsg{
		Err:    fmt.Errorf("load business from cache: %w", storage.ErrNotFound),
		Source: actions.SourceCache,
	})
	if m.err != nil {
		t.Fatalf("expected empty cache to stay silent, got %v", m.err)
	}

	m.loading = true
	m = update(t, m, actions.CatalogErrorMsg{Err: errors.New("network down"), Source: actions.SourceRefresh})
	if m.loading {
		t.Fatal("expected loading to stop")
	}
	if m.err == nil || !strings.Contains(m.err.Error(), "Failed to refresh menu 'cafe-sol'") {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "network down") {
		t.Fatalf("expected error in message panel, got:\n%s", view)
	}
}

func TestModelUpdate_RefreshKey(t *testing.T) {
	now := t0
	m := newTestModel(t, &now, Options{Slug: "cafe-sol"})
	if !m.loading {
		t.Fatal("expected the startup refresh to count as loading")
	}
	_, cmd := m.Update(runes("r"))
	if cmd != nil {
		t.Fatal("expected no refresh while the startup refresh is in flight")
	}

	m = loadCatalog(t, m, testCatalog(), actions.SourceRefresh)
	updated, cmd := m.Update(runes("r"))
	m = updated.(Model)
	if cmd == nil || !m.loading {
		t.Fatalf("expected refresh to start, loading=%v", m.loading)
	}

	_, cmd = m.Update(runes("r"))
	if cmd != nil {
		t.Fatal("expected no second refresh while one is in flight")
	}
}

func TestModelUpdate_SpaceHoldsFeed(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.engine.UserInteracting() {
		t.Fatal("expected hold to engage the gate")
	}
	if got := m.engine.PlaybackState(0); got != feed.Paused {
		t.Fatalf("expected active entry paused, got %s", got)
	}
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "View full menu (o)") || !strings.Contains(view, "● held") {
		t.Fatalf("expected held chrome, got:\n%s", view)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.engine.UserInteracting() {
		t.Fatal("expected second space to release")
	}
	if got := m.engine.PlaybackState(0); got != feed.Playing {
		t.Fatalf("expected active entry playing, got %s", got)
	}
	if view := ansi.Strip(m.View()); strings.Contains(view, "View full menu (o)") {
		t.Fatalf("expected call to action hidden after release, got:\n%s", view)
	}
}

func TestModelUpdate_MouseDragAndRelease(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	m = update(t, m, tea.MouseMsg{Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.engine.UserInteracting() {
		t.Fatal("expected a press on the header to be ignored")
	}

	m = update(t, m, tea.MouseMsg{Y: 17, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !m.engine.UserInteracting() {
		t.Fatal("expected a press on the surface to hold the feed")
	}
	m = update(t, m, tea.MouseMsg{Y: 3, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if got := m.engine.Surface().Offset(); got != 14 {
		t.Fatalf("expected drag offset 14, got %v", got)
	}

	m = update(t, m, tea.MouseMsg{Y: 3, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone})
	if m.engine.UserInteracting() {
		t.Fatal("expected release to free the gate")
	}
	if got := activeIndex(t, m); got != 1 {
		t.Fatalf("expected snap to entry 1, got %d", got)
	}
	if got := m.engine.Surface().Offset(); got != 19 {
		t.Fatalf("expected snapped offset 19, got %v", got)
	}
}

func TestModelUpdate_KeyAndMouseHoldCombine(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = update(t, m, tea.MouseMsg{Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, tea.MouseMsg{Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone})
	if !m.engine.UserInteracting() {
		t.Fatal("expected keyboard hold to outlast the mouse release")
	}
}

func TestModelUpdate_SwipeAndWheel(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	m = update(t, m, runes("j"))
	if got := activeIndex(t, m); got != 1 {
		t.Fatalf("expected j to swipe to 1, got %d", got)
	}
	m = update(t, m, tea.MouseMsg{Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if got := activeIndex(t, m); got != 2 {
		t.Fatalf("expected wheel to swipe to 2, got %d", got)
	}
	m = update(t, m, runes("j"))
	if got := activeIndex(t, m); got != 2 {
		t.Fatalf("expected swipe not to wrap, got %d", got)
	}
	m = update(t, m, runes("k"))
	if got := activeIndex(t, m); got != 1 {
		t.Fatalf("expected k to swipe back to 1, got %d", got)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "2/3") {
		t.Fatalf("expected position in header, got:\n%s", view)
	}
}

func TestModelUpdate_CategoryCycling(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.categoryName != "Coffee" || len(m.engine.Entries()) != 2 {
		t.Fatalf("expected Coffee with 2 entries, got %q with %d", m.categoryName, len(m.engine.Entries()))
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.categoryName != "" || len(m.engine.Entries()) != 3 {
		t.Fatalf("expected All with 3 entries, got %q with %d", m.categoryName, len(m.engine.Entries()))
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	entries := m.engine.Entries()
	if m.categoryName != "Bakery" || len(entries) != 1 || entries[0].ID != "p3" {
		t.Fatalf("expected wrap to Bakery, got %q with %+v", m.categoryName, entries)
	}
}

func TestModelUpdate_GridSelectJumpsFeed(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	m = update(t, m, runes("g"))
	if !m.inGrid || m.gridCursor != 1 {
		t.Fatalf("expected grid on the active product row, got inGrid=%v cursor=%d", m.inGrid, m.gridCursor)
	}
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "▾ Coffee") || !strings.Contains(view, "Croissant") {
		t.Fatalf("expected grid rows in view, got:\n%s", view)
	}

	for i := 0; i < 3; i++ {
		m = update(t, m, runes("j"))
	}
	if m.gridCursor != 4 {
		t.Fatalf("expected cursor on Croissant row, got %d", m.gridCursor)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.inGrid {
		t.Fatal("expected enter to return to the feed")
	}
	if got := activeIndex(t, m); got != 2 {
		t.Fatalf("expected jump to entry 2, got %d", got)
	}
}

func TestModelUpdate_GridCollapse(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)
	m = update(t, m, runes("g"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.collapsed["Coffee"] || m.gridCursor != 0 {
		t.Fatalf("expected Coffee collapsed with cursor on its header, got %v cursor=%d", m.collapsed, m.gridCursor)
	}
	if got := len(m.gridRows()); got != 3 {
		t.Fatalf("expected 3 rows after collapse, got %d", got)
	}
	if m.engine.UserInteracting() {
		t.Fatal("expected space in the grid not to hold the feed")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.inGrid {
		t.Fatal("expected esc to leave the grid")
	}
}

func TestModelUpdate_GridPermissions(t *testing.T) {
	now := t0
	denied := testCatalog()
	off := false
	denied.Business.AllowGridView = &off

	m := loadCatalog(t, newTestModel(t, &now, Options{}), denied, actions.SourceRefresh)
	m = update(t, m, runes("g"))
	if m.inGrid {
		t.Fatal("expected grid to stay closed when the business disables it")
	}

	preferred := testCatalog()
	preferred.Business.DefaultView = "grid"
	m = loadCatalog(t, newTestModel(t, &now, Options{}), preferred, actions.SourceRefresh)
	if !m.inGrid {
		t.Fatal("expected the business default view to open the grid")
	}
}

func TestModelUpdate_WakeDrivesAutoAdvance(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{Dwell: 2 * time.Second}), testCatalog(), actions.SourceRefresh)
	seq := m.wakeSeq
	if seq == 0 || m.wakeAt.IsZero() {
		t.Fatalf("expected a scheduled wake, got seq=%d at=%v", seq, m.wakeAt)
	}

	now = t0.Add(3 * time.Second)
	m = update(t, m, actions.WakeMsg{Seq: seq + 1, At: now})
	if m.engine.Animating() {
		t.Fatal("expected a stale wake to be dropped")
	}

	m = update(t, m, actions.WakeMsg{Seq: seq, At: now})
	if !m.engine.Animating() {
		t.Fatal("expected dwell expiry to start the advance")
	}
	if m.wakeSeq == seq || m.wakeAt.IsZero() {
		t.Fatalf("expected the next frame to be scheduled, got seq=%d at=%v", m.wakeSeq, m.wakeAt)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "advancing") {
		t.Fatalf("expected advancing badge, got:\n%s", view)
	}
}

func TestModelUpdate_OpenMenu(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)
	var opened string
	m.openURLFn = func(url string) error {
		opened = url
		return nil
	}

	_, cmd := m.Update(runes("o"))
	if cmd == nil {
		t.Fatal("expected open command")
	}
	msg := cmd()
	if _, ok := msg.(actions.OpenURLSuccessMsg); !ok {
		t.Fatalf("expected success message, got %T", msg)
	}
	if opened != "https://cafe.example/menu" {
		t.Fatalf("unexpected url: %q", opened)
	}

	m = update(t, m, msg)
	if m.status != "Opened menu in browser" {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestModelUpdate_OpenMenuPrefersConfiguredURL(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{MenuURL: "https://override.example/m"}), testCatalog(), actions.SourceRefresh)
	var opened string
	m.openURLFn = func(url string) error {
		opened = url
		return nil
	}

	_, cmd := m.Update(runes("o"))
	cmd()
	if opened != "https://override.example/m" {
		t.Fatalf("unexpected url: %q", opened)
	}
}

func TestModelUpdate_OpenMenuWithoutURL(t *testing.T) {
	now := t0
	catalog := testCatalog()
	catalog.Business.MenuURL = ""
	m := loadCatalog(t, newTestModel(t, &now, Options{}), catalog, actions.SourceRefresh)

	m = update(t, m, runes("o"))
	if m.status != "Failed to open full menu: business has no menu URL" {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestModelUpdate_CopyMenu(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)
	var copied string
	m.copyURLFn = func(url string) error {
		copied = url
		return nil
	}

	_, cmd := m.Update(runes("y"))
	m = update(t, m, cmd())
	if copied != "https://cafe.example/menu" || m.status != "Menu URL copied to clipboard" {
		t.Fatalf("unexpected copy result: %q status=%q", copied, m.status)
	}
}

func TestModelUpdate_StatusClearsOnlyForCurrentID(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	m = update(t, m, clearStatusMsg{id: m.statusID - 1})
	if m.status == "" {
		t.Fatal("expected an old clear to be ignored")
	}
	m = update(t, m, clearStatusMsg{id: m.statusID})
	if m.status != "" {
		t.Fatalf("expected status cleared, got %q", m.status)
	}
}

func TestModelUpdate_Login(t *testing.T) {
	now := t0
	m := newTestModel(t, &now, Options{})

	m = update(t, m, actions.LoginSuccessMsg{Session: app.Session{User: menu.User{UserName: "ana"}}})
	if m.session == nil || m.status != "Signed in as ana" {
		t.Fatalf("unexpected login state: session=%v status=%q", m.session, m.status)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "ana") {
		t.Fatalf("expected user in message panel, got:\n%s", view)
	}

	m = update(t, m, actions.LoginErrorMsg{Err: menu.ErrInvalidCredentials})
	if m.err == nil || !strings.HasPrefix(m.err.Error(), "Failed to sign in") {
		t.Fatalf("unexpected error: %v", m.err)
	}
}

func TestModelUpdate_PreviewMessages(t *testing.T) {
	now := t0
	m := newTestModel(t, &now, Options{})
	m.previewLoading["p1@80x10"] = true

	m = update(t, m, actions.PreviewSuccessMsg{Key: "p1@80x10", EntryID: "p1", Preview: "###"})
	if m.previewLoading["p1@80x10"] || m.preview["p1@80x10"] != "###" {
		t.Fatalf("unexpected preview state: %+v", m.preview)
	}

	m = update(t, m, actions.PreviewErrorMsg{Key: "p2@80x10", EntryID: "p2", Err: errors.New("404")})
	if m.previewErr["p2@80x10"] != "404" {
		t.Fatalf("unexpected preview error state: %+v", m.previewErr)
	}
}

func TestModelUpdate_InlineImagesRequestPreviews(t *testing.T) {
	now := t0
	m := newTestModel(t, &now, Options{InlineImages: true})
	catalog := testCatalog()
	for i := range catalog.Products {
		catalog.Products[i].ContentURL = "https://cdn.example/" + catalog.Products[i].ID + ".jpg"
	}
	m = loadCatalog(t, m, catalog, actions.SourceRefresh)

	// Entry 0 and its neighbour are in the render window.
	if got := len(m.previewLoading); got != 2 {
		t.Fatalf("expected 2 preview requests, got %d: %v", got, m.previewLoading)
	}
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 24})
	if len(m.preview) != 0 || len(m.previewErr) != 0 {
		t.Fatal("expected previews reset on resize")
	}
}

func TestModelUpdate_HelpToggle(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	m = update(t, m, runes("?"))
	if !m.showHelp {
		t.Fatal("expected help open")
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "next category") {
		t.Fatalf("expected key help in view, got:\n%s", view)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Fatal("expected esc to close help")
	}
}

func TestModelUpdate_QuitClosesEngine(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if _, ok := m.engine.NextDeadline(); ok {
		t.Fatal("expected engine timers cleared")
	}
}

func TestModelUpdate_GridExitFollowsCursor(t *testing.T) {
	now := t0
	m := loadCatalog(t, newTestModel(t, &now, Options{}), testCatalog(), actions.SourceRefresh)
	m = update(t, m, runes("g"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	if m.gridCursor != 4 {
		t.Fatalf("expected page down to clamp on the last row, got %d", m.gridCursor)
	}
	m = update(t, m, runes("k"))
	if m.gridCursor != 3 {
		t.Fatalf("expected cursor on the Bakery header, got %d", m.gridCursor)
	}

	m = update(t, m, runes("g"))
	if m.inGrid {
		t.Fatal("expected g to leave the grid")
	}
	if got := activeIndex(t, m); got != 2 {
		t.Fatalf("expected feed on the first product below the header, got %d", got)
	}
}
