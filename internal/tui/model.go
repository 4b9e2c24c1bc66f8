package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/glabrego/carta-cli/internal/app"
	"github.com/glabrego/carta-cli/internal/errmsg"
	"github.com/glabrego/carta-cli/internal/feed"
	"github.com/glabrego/carta-cli/internal/storage"
	"github.com/glabrego/carta-cli/internal/tui/actions"
	tuigrid "github.com/glabrego/carta-cli/internal/tui/grid"
	"github.com/glabrego/carta-cli/internal/tui/platform"
	tuistate "github.com/glabrego/carta-cli/internal/tui/state"
	tuitheme "github.com/glabrego/carta-cli/internal/tui/theme"
	"github.com/glabrego/carta-cli/internal/tui/view"
)

const (
	modeFeed = "feed"
	modeGrid = "grid"

	// surfaceTop is the first terminal row of the card surface.
	surfaceTop = 2
)

type clearStatusMsg struct {
	id int
}

type Options struct {
	Slug         string
	MenuURL      string
	Username     string
	Password     string
	Tags         []string
	Dwell        time.Duration
	Frame        time.Duration
	InlineImages bool
	Logger       log.Logger
}

type Model struct {
	service actions.Service
	engine  *feed.Engine
	opts    Options
	log     *log.Helper

	catalog      app.Catalog
	refreshed    bool
	session      *app.Session
	categories   []string
	categoryName string

	inGrid      bool
	gridCursor  int
	collapsed   map[string]bool
	viewChosen  bool
	showHelp    bool
	mouseDown   bool
	keyHold     bool
	lastMouseY  int
	width       int
	height      int
	loading     bool
	status      string
	statusID    int
	err         error
	wakeSeq     int
	wakeAt      time.Time

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	bar     progress.Model
	theme   tuitheme.Theme

	nowFn          func() time.Time
	openURLFn      func(string) error
	copyURLFn      func(string) error
	renderImageFn  actions.PreviewRenderer
	preview        map[string]string
	previewErr     map[string]string
	previewLoading map[string]bool
}

func NewModel(service actions.Service, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewStdLogger(io.Discard)
	}
	engine := feed.New(feed.Options{
		Dwell:         opts.Dwell,
		FrameInterval: opts.Frame,
		Logger:        logger,
	})

	m := Model{
		service:        service,
		engine:         engine,
		opts:           opts,
		log:            log.NewHelper(log.With(logger, "module", "tui/model")),
		collapsed:      make(map[string]bool),
		keys:           defaultKeyMap(),
		help:           help.New(),
		spinner:        spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		bar:            progress.New(progress.WithoutPercentage(), progress.WithSolidFill("#cba6f7")),
		theme:          tuitheme.Default(),
		nowFn:          time.Now,
		openURLFn:      platform.OpenURLInBrowser,
		copyURLFn:      platform.CopyURLToClipboard,
		preview:        make(map[string]string),
		previewErr:     make(map[string]string),
		previewLoading: make(map[string]bool),
	}
	if opts.InlineImages {
		m.renderImageFn = view.RenderImagePreview
	}
	// Init starts the first refresh.
	m.loading = service != nil
	m.help.ShowAll = true
	return m
}

func (m Model) Init() tea.Cmd {
	if m.service == nil {
		return nil
	}
	cmds := []tea.Cmd{
		actions.LoadCachedCmd(m.service, m.opts.Slug),
		actions.RefreshCmd(m.service, m.opts.Slug),
		m.spinner.Tick,
	}
	if m.opts.Username != "" {
		cmds = append(cmds, actions.LoginCmd(m.service, m.opts.Username, m.opts.Password))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case actions.WakeMsg:
		if msg.Seq != m.wakeSeq {
			return m, nil
		}
		m.wakeAt = time.Time{}
		m.engine.Tick(m.now())
		cmd := m.afterEngine()
		return m, cmd
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case actions.CatalogLoadedMsg:
		return m.applyCatalog(msg)
	case actions.CatalogErrorMsg:
		if msg.Source == actions.SourceCache {
			if errors.Is(msg.Err, storage.ErrNotFound) {
				m.log.Debugw("msg", "no cached menu", "slug", m.opts.Slug)
				return m, nil
			}
			m.err = errors.New(errmsg.Format(errmsg.OpMenuLoad, msg.Err))
			return m, nil
		}
		m.loading = false
		m.status = ""
		m.err = errors.New(errmsg.FormatWith(errmsg.OpMenuRefresh, m.opts.Slug, msg.Err))
		m.log.Warnw("msg", "refresh failed", "slug", m.opts.Slug, "error", msg.Err, "duration", msg.Duration)
		return m, nil
	case actions.LoginSuccessMsg:
		session := msg.Session
		m.session = &session
		m.status = "Signed in as " + session.User.UserName
		m.statusID++
		return m, clearStatusCmd(m.statusID, 3*time.Second)
	case actions.LoginErrorMsg:
		m.err = errors.New(errmsg.Format(errmsg.OpLogin, msg.Err))
		return m, nil
	case actions.PreviewSuccessMsg:
		delete(m.previewLoading, msg.Key)
		delete(m.previewErr, msg.Key)
		m.preview[msg.Key] = msg.Preview
		return m, nil
	case actions.PreviewErrorMsg:
		delete(m.previewLoading, msg.Key)
		m.previewErr[msg.Key] = msg.Err.Error()
		m.log.Debugw("msg", errmsg.FormatWith(errmsg.OpPreviewLoad, msg.EntryID, msg.Err))
		return m, nil
	case actions.OpenURLSuccessMsg:
		m.err = nil
		m.status = msg.Status
		m.statusID++
		return m, clearStatusCmd(m.statusID, 3*time.Second)
	case actions.OpenURLErrorMsg:
		m.status = errmsg.Format(errmsg.OpMenuOpen, msg.Err)
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case m.showHelp && key.Matches(msg, m.keys.Back):
		m.showHelp = false
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	case key.Matches(msg, m.keys.Open):
		return m.openMenu()
	case key.Matches(msg, m.keys.Copy):
		return m.copyMenu()
	}
	if m.inGrid {
		return m.handleGridKey(msg)
	}
	return m.handleFeedKey(msg)
}

func (m Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	switch {
	case key.Matches(msg, m.keys.Down):
		m.engine.Swipe(1, now)
	case key.Matches(msg, m.keys.Up):
		m.engine.Swipe(-1, now)
	case key.Matches(msg, m.keys.Hold):
		m.setHeld(m.mouseDown, !m.keyHold)
	case key.Matches(msg, m.keys.NextCategory):
		m.cycleCategory(1)
	case key.Matches(msg, m.keys.PrevCategory):
		m.cycleCategory(-1)
	case key.Matches(msg, m.keys.Grid):
		if !m.gridAllowed() {
			return m, nil
		}
		m.enterGrid()
		return m, nil
	default:
		return m, nil
	}
	cmd := m.afterEngine()
	return m, cmd
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.gridRows()
	switch {
	case key.Matches(msg, m.keys.Down):
		m.gridCursor = tuistate.ClampCursor(m.gridCursor+1, len(rows))
	case key.Matches(msg, m.keys.Up):
		m.gridCursor = tuistate.ClampCursor(m.gridCursor-1, len(rows))
	case key.Matches(msg, m.keys.PageDown):
		m.gridCursor = tuistate.ClampCursor(m.gridCursor+tuistate.PageStep(m.height), len(rows))
	case key.Matches(msg, m.keys.PageUp):
		m.gridCursor = tuistate.ClampCursor(m.gridCursor-tuistate.PageStep(m.height), len(rows))
	case key.Matches(msg, m.keys.Hold):
		m.toggleCollapsed(rows)
	case key.Matches(msg, m.keys.NextCategory):
		m.cycleCategory(1)
		m.syncGridCursor()
		cmd := m.afterEngine()
		return m, cmd
	case key.Matches(msg, m.keys.PrevCategory):
		m.cycleCategory(-1)
		m.syncGridCursor()
		cmd := m.afterEngine()
		return m, cmd
	case key.Matches(msg, m.keys.Select):
		idx, ok := tuigrid.EntryAt(rows, m.gridCursor)
		if !ok {
			m.toggleCollapsed(rows)
			return m, nil
		}
		m.engine.JumpTo(idx, m.now())
		m.inGrid = false
		cmd := m.afterEngine()
		return m, cmd
	case key.Matches(msg, m.keys.Grid):
		// The feed follows the grid cursor; esc leaves it where it was.
		if len(rows) > 0 {
			m.engine.JumpTo(tuistate.SyncedEntryCursor(rows, m.gridCursor), m.now())
		}
		m.inGrid = false
		cmd := m.afterEngine()
		return m, cmd
	case key.Matches(msg, m.keys.Back):
		m.inGrid = false
		cmd := m.afterEngine()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	event := tea.MouseEvent(msg)
	if m.inGrid {
		rows := m.gridRows()
		switch event.Button {
		case tea.MouseButtonWheelDown:
			m.gridCursor = tuistate.ClampCursor(m.gridCursor+1, len(rows))
		case tea.MouseButtonWheelUp:
			m.gridCursor = tuistate.ClampCursor(m.gridCursor-1, len(rows))
		}
		return m, nil
	}

	switch {
	case event.Button == tea.MouseButtonWheelDown:
		m.engine.Swipe(1, now)
	case event.Button == tea.MouseButtonWheelUp:
		m.engine.Swipe(-1, now)
	case event.Action == tea.MouseActionPress && event.Button == tea.MouseButtonLeft:
		if !m.onSurface(event.Y) {
			return m, nil
		}
		m.lastMouseY = event.Y
		m.setHeld(true, m.keyHold)
	case event.Action == tea.MouseActionMotion && m.mouseDown:
		delta := m.lastMouseY - event.Y
		m.lastMouseY = event.Y
		if delta != 0 {
			m.engine.ScrollBy(float64(delta), now)
		}
	case event.Action == tea.MouseActionRelease && m.mouseDown:
		m.setHeld(false, m.keyHold)
	default:
		return m, nil
	}
	cmd := m.afterEngine()
	return m, cmd
}

// setHeld folds the mouse button and the keyboard hold into one pointer for
// the interaction gate.
func (m *Model) setHeld(mouse, keyHold bool) {
	was := m.mouseDown || m.keyHold
	m.mouseDown, m.keyHold = mouse, keyHold
	now := m.mouseDown || m.keyHold
	switch {
	case now && !was:
		m.engine.Press(m.now())
	case !now && was:
		m.engine.Release(m.now())
	}
}

func (m Model) resize(width, height int) (tea.Model, tea.Cmd) {
	if width != m.width || height != m.height {
		m.preview = make(map[string]string)
		m.previewErr = make(map[string]string)
		m.previewLoading = make(map[string]bool)
	}
	m.width = width
	m.height = height
	m.help.Width = width
	m.engine.Resize(float64(tuistate.CardHeight(height)), m.now())
	cmd := m.afterEngine()
	return m, cmd
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	if m.service == nil || m.loading {
		return m, nil
	}
	m.loading = true
	m.err = nil
	m.status = "Refreshing menu..."
	return m, tea.Batch(actions.RefreshCmd(m.service, m.opts.Slug), m.spinner.Tick)
}

func (m Model) applyCatalog(msg actions.CatalogLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Source == actions.SourceRefresh {
		m.loading = false
		m.refreshed = true
		m.err = nil
	} else if m.refreshed {
		return m, nil
	}

	m.catalog = msg.Catalog
	m.theme = tuitheme.FromBusiness(msg.Catalog.Business)
	if !m.viewChosen {
		m.viewChosen = true
		m.inGrid = strings.EqualFold(msg.Catalog.Business.DefaultView, modeGrid) && m.gridAllowed()
	}
	if !m.gridAllowed() {
		m.inGrid = false
	}
	m.rederive()
	if m.inGrid {
		m.syncGridCursor()
	}

	count := len(m.engine.Entries())
	m.log.Infow("msg", "catalog applied", "source", msg.Source, "products", len(msg.Catalog.Products), "entries", count)
	if msg.Source == actions.SourceRefresh {
		m.status = fmt.Sprintf("Menu refreshed: %d items in %dms", count, msg.Duration.Milliseconds())
	} else {
		m.status = fmt.Sprintf("Loaded %d cached items", count)
	}
	m.statusID++
	cmd := m.afterEngine()
	return m, tea.Batch(clearStatusCmd(m.statusID, 3*time.Second), cmd)
}

// rederive rebuilds the feed from the catalog with the current tag filter and
// category selection.
func (m *Model) rederive() {
	opts := feed.DeriveOptions{
		Tags:          m.catalog.Business.FilterByTags,
		CategoryOrder: m.catalog.Business.CategoryOrder,
	}
	if len(m.opts.Tags) > 0 {
		opts.Tags = m.opts.Tags
	}
	m.categories = feed.Categories(m.catalog.Products, opts)
	if m.categoryPosition() == 0 {
		m.categoryName = ""
	}
	opts.Category = m.categoryName
	m.engine.SetEntries(feed.Derive(m.catalog.Products, opts), m.now())
}

// categoryPosition is the selected slot in the category bar, 0 being "All".
func (m Model) categoryPosition() int {
	if m.categoryName == "" {
		return 0
	}
	for i, name := range m.categories {
		if strings.EqualFold(name, m.categoryName) {
			return i + 1
		}
	}
	return 0
}

func (m *Model) cycleCategory(dir int) {
	next := tuistate.CycleCategory(m.categoryPosition(), len(m.categories), dir)
	if next == 0 {
		m.categoryName = ""
	} else {
		m.categoryName = m.categories[next-1]
	}
	m.rederive()
}

func (m Model) gridAllowed() bool {
	return m.catalog.Business.GridViewAllowed()
}

func (m Model) gridRows() []tuigrid.Row {
	return tuigrid.BuildRows(m.engine.Entries(), tuigrid.BuildOptions{CollapsedCategories: m.collapsed})
}

func (m *Model) enterGrid() {
	m.inGrid = true
	m.syncGridCursor()
}

func (m *Model) syncGridCursor() {
	rows := m.gridRows()
	active, ok := m.engine.ActiveIndex()
	if !ok {
		m.gridCursor = 0
		return
	}
	if row := tuigrid.RowForEntry(rows, m.engine.Entries(), active); row >= 0 {
		m.gridCursor = row
		return
	}
	if row := tuigrid.FirstProductRow(rows); row >= 0 {
		m.gridCursor = row
		return
	}
	m.gridCursor = tuistate.ClampCursor(m.gridCursor, len(rows))
}

func (m *Model) toggleCollapsed(rows []tuigrid.Row) {
	if m.gridCursor < 0 || m.gridCursor >= len(rows) {
		return
	}
	category := rows[m.gridCursor].Category
	m.collapsed[category] = !m.collapsed[category]
	next := m.gridRows()
	for i, row := range next {
		if row.Kind == tuigrid.RowCategory && row.Category == category {
			m.gridCursor = i
			return
		}
	}
	m.gridCursor = tuistate.ClampCursor(m.gridCursor, len(next))
}

func (m Model) menuURL() string {
	if m.opts.MenuURL != "" {
		return m.opts.MenuURL
	}
	return m.catalog.Business.MenuURL
}

func (m Model) openMenu() (tea.Model, tea.Cmd) {
	url, err := platform.ValidateMenuURL(m.menuURL())
	if err != nil {
		m.status = errmsg.Format(errmsg.OpMenuOpen, err)
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	}
	return m, actions.OpenURLCmd(url, m.openURLFn, m.copyURLFn)
}

func (m Model) copyMenu() (tea.Model, tea.Cmd) {
	url, err := platform.ValidateMenuURL(m.menuURL())
	if err != nil {
		m.status = errmsg.Format(errmsg.OpMenuCopy, err)
		m.statusID++
		return m, clearStatusCmd(m.statusID, 4*time.Second)
	}
	return m, actions.CopyURLCmd(url, m.copyURLFn)
}

// afterEngine schedules the next engine wake-up and requests previews for
// the render window.
func (m *Model) afterEngine() tea.Cmd {
	cmds := []tea.Cmd{m.scheduleWake()}
	cmds = append(cmds, m.ensurePreviewCmds()...)
	return tea.Batch(cmds...)
}

func (m *Model) scheduleWake() tea.Cmd {
	at, ok := m.engine.NextDeadline()
	if !ok {
		m.wakeAt = time.Time{}
		return nil
	}
	if !m.wakeAt.IsZero() && at.Equal(m.wakeAt) {
		return nil
	}
	m.wakeSeq++
	m.wakeAt = at
	return actions.WakeCmd(m.wakeSeq, at.Sub(m.now()))
}

func (m *Model) ensurePreviewCmds() []tea.Cmd {
	if m.renderImageFn == nil || m.width <= 0 {
		return nil
	}
	entries := m.engine.Entries()
	cardHeight := tuistate.CardHeight(m.height)
	cmds := make([]tea.Cmd, 0, 3)
	for _, i := range m.engine.RenderWindow() {
		entry := entries[i]
		url := view.PreviewURL(entry)
		rows := view.MediaRows(entry, m.width, cardHeight)
		if url == "" || rows < 2 {
			continue
		}
		previewKey := view.PreviewKey(entry.ID, m.width, rows)
		if _, ok := m.preview[previewKey]; ok || m.previewLoading[previewKey] || m.previewErr[previewKey] != "" {
			continue
		}
		m.previewLoading[previewKey] = true
		cmds = append(cmds, actions.PreviewCmd(previewKey, entry.ID, url, m.width, rows, m.renderImageFn))
	}
	return cmds
}

func (m Model) previewFor(entry feed.Entry, cardHeight int) view.MediaPreview {
	previewKey := view.PreviewKey(entry.ID, m.width, view.MediaRows(entry, m.width, cardHeight))
	return view.MediaPreview{
		Loading: m.previewLoading[previewKey],
		Raw:     m.preview[previewKey],
		Err:     m.previewErr[previewKey],
	}
}

func (m Model) onSurface(y int) bool {
	cardHeight := tuistate.CardHeight(m.height)
	return y >= surfaceTop && y < surfaceTop+cardHeight
}

func (m Model) now() time.Time {
	return m.nowFn()
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Loading menu...\n"
	}
	now := m.now()
	cardHeight := tuistate.CardHeight(m.height)

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(view.CategoryBar(m.categories, m.categoryPosition(), m.width, m.theme))
	b.WriteString("\n")

	var body []string
	switch {
	case m.showHelp:
		body = strings.Split(m.help.View(m.keys), "\n")
	case m.inGrid:
		body = m.gridLines(cardHeight)
	case len(m.engine.Entries()) == 0:
		body = []string{m.emptyLine()}
	default:
		body = m.surfaceLines(cardHeight, now)
	}
	for i := 0; i < cardHeight; i++ {
		if i < len(body) {
			b.WriteString(body[i])
		}
		b.WriteString("\n")
	}

	if m.engine.UserInteracting() && !m.inGrid && !m.showHelp {
		b.WriteString(view.CallToAction("View full menu", m.width, m.theme))
	}
	b.WriteString("\n")
	b.WriteString(m.messagePanel(now))
	b.WriteString("\n")
	b.WriteString(view.Toolbar(m.inGrid, m.gridAllowed()))
	return b.String()
}

func (m Model) header() string {
	mode := modeFeed
	if m.inGrid {
		mode = modeGrid
	}
	active, _ := m.engine.ActiveIndex()
	gate := ""
	if m.engine.Animating() {
		gate = "advancing"
	}
	return view.Header(view.HeaderParams{
		Business: m.catalog.Business.Name,
		Mode:     mode,
		Position: active,
		Total:    len(m.engine.Entries()),
		Gate:     gate,
		Held:     m.engine.UserInteracting(),
		Width:    m.width,
	}, m.theme)
}

func (m Model) emptyLine() string {
	if m.loading {
		return m.theme.Placeholder.Render("Loading menu...")
	}
	return m.theme.Placeholder.Render("No items to show.")
}

func (m Model) surfaceLines(cardHeight int, now time.Time) []string {
	entries := m.engine.Entries()
	snap := m.engine.Snapshot()
	return view.SurfaceLines(snap.Offset, cardHeight, len(entries), func(i int) []string {
		played, hasProgress := m.engine.Progress(i, now)
		return view.RenderCard(view.CardParams{
			Entry:       entries[i],
			Width:       m.width,
			Height:      cardHeight,
			InWindow:    feed.InWindow(i, snap.Active, snap.Count),
			State:       snap.Playback[i],
			Preview:     m.previewFor(entries[i], cardHeight),
			Progress:    played,
			HasProgress: hasProgress,
		}, m.bar, m.theme)
	})
}

func (m Model) gridLines(height int) []string {
	rows := m.gridRows()
	if len(rows) == 0 {
		return []string{m.emptyLine()}
	}
	entries := m.engine.Entries()
	active, _ := m.engine.ActiveIndex()
	start, end := tuistate.CenteredWindow(len(rows), m.gridCursor, height)
	body := view.RenderGridBody(view.GridRenderInput{
		Rows:      rows,
		Start:     start,
		End:       end,
		Cursor:    m.gridCursor,
		Collapsed: m.collapsed,
		RenderCategoryLine: func(row tuigrid.Row, collapsed, isCursor bool) string {
			return view.RenderCategoryLine(row, collapsed, isCursor, m.width, m.theme)
		},
		RenderProductLine: func(entryIndex int, isCursor bool) string {
			return view.RenderProductLine(entries[entryIndex], entryIndex == active, isCursor, m.width, m.theme)
		},
	})
	return strings.Split(strings.TrimRight(body, "\n"), "\n")
}

func (m Model) messagePanel(now time.Time) string {
	warning := ""
	if m.err != nil {
		warning = m.err.Error()
	}
	user := ""
	if m.session != nil {
		user = m.session.User.UserName
	}
	return view.Message(view.MessageParams{
		Loading:   m.loading,
		Spinner:   m.spinner.View(),
		Status:    m.status,
		Warning:   warning,
		FetchedAt: m.catalog.FetchedAt,
		Now:       now,
		User:      user,
	}, m.theme)
}
