package feed

import (
	"io"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// DefaultDebounce is how long observations must settle before a stuck
// auto-scroll flag is cleared.
const DefaultDebounce = 100 * time.Millisecond

type Options struct {
	Dwell           time.Duration
	Debounce        time.Duration
	AdvanceDuration time.Duration
	FrameInterval   time.Duration
	Threshold       float64
	MediaFactory    MediaFactory
	Logger          log.Logger
}

func DefaultOptions() Options {
	return Options{
		Dwell:           DefaultDwell,
		Debounce:        DefaultDebounce,
		AdvanceDuration: AdvanceDuration,
		FrameInterval:   DefaultFrameInterval,
		Threshold:       VisibilityThreshold,
		MediaFactory:    ClipFactory,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Dwell <= 0 {
		o.Dwell = d.Dwell
	}
	if o.Debounce <= 0 {
		o.Debounce = d.Debounce
	}
	if o.AdvanceDuration <= 0 {
		o.AdvanceDuration = d.AdvanceDuration
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = d.FrameInterval
	}
	if o.Threshold <= 0 || o.Threshold > 1 {
		o.Threshold = d.Threshold
	}
	if o.MediaFactory == nil {
		o.MediaFactory = d.MediaFactory
	}
	if o.Logger == nil {
		o.Logger = log.NewStdLogger(io.Discard)
	}
	return o
}

var (
	debounceKey = timerKey{kind: timerDebounce, index: -1}
	frameKey    = timerKey{kind: timerFrame, index: -1}
)

// Engine drives the feed: it owns the surface, the visibility tracker, the
// interaction gate, the per-entry playback slots and the auto-advance
// animation.
type Engine struct {
	opts     Options
	entries  []Entry
	active   int
	surface  Surface
	tracker  *Tracker
	gate     Gate
	timers   *timers
	playback *playback
	anim     *ScrollAnimation
	// deferred is the index whose finish arrived mid-animation, or -1.
	deferred int
	closed   bool
	log      *log.Helper
}

func New(opts Options) *Engine {
	opts = opts.withDefaults()
	helper := log.NewHelper(log.With(opts.Logger, "module", "feed/engine"))
	t := newTimers()
	return &Engine{
		opts:     opts,
		surface:  NewSurface(),
		tracker:  NewTracker(opts.Threshold),
		timers:   t,
		playback: newPlayback(opts.Dwell, opts.MediaFactory, t, helper),
		deferred: -1,
		log:      helper,
	}
}

// SetEntries replaces the entry list. The active entry keeps its place when
// its ID survives, otherwise the old index is clamped. The tracker is always
// re-subscribed. A list with the same IDs in the same order keeps playback
// and any animation running; any other list remounts everything.
func (e *Engine) SetEntries(entries []Entry, now time.Time) {
	if e.closed {
		return
	}
	anchor := ""
	if e.active < len(e.entries) {
		anchor = e.entries[e.active].ID
	}

	next := make([]Entry, len(entries))
	copy(next, entries)
	for i := range next {
		next[i].Index = i
	}

	if sameIDs(e.entries, next) {
		e.entries = next
		e.tracker.Observe(len(next))
		e.log.Debugw("msg", "entries refreshed in place", "count", len(next), "active", e.active, "generation", e.tracker.Generation())
		e.observe(now)
		e.sync(now)
		return
	}

	e.stopAnimation(now)
	e.deferred = -1
	e.playback.releaseAll(now)
	e.entries = next
	if idx := IndexByID(next, anchor); anchor != "" && idx >= 0 {
		e.active = idx
	} else {
		e.active = clampIndex(e.active, len(next))
	}

	e.surface.layout(e.surface.Viewport(), len(next))
	e.tracker.Observe(len(next))
	e.placeActive()
	e.log.Debugw("msg", "entries replaced", "count", len(next), "active", e.active, "generation", e.tracker.Generation())
	e.observe(now)
	e.sync(now)
}

// Resize lays the surface out for a new viewport height. A zero height leaves
// the container unmounted and observation idle.
func (e *Engine) Resize(viewport float64, now time.Time) {
	if e.closed {
		return
	}
	e.surface.layout(viewport, len(e.entries))
	if e.anim != nil {
		e.stopAnimation(now)
	}
	e.placeActive()
	e.observe(now)
	e.sync(now)
}

// JumpTo makes index active and scrolls to it instantly.
func (e *Engine) JumpTo(index int, now time.Time) bool {
	if e.closed || index < 0 || index >= len(e.entries) {
		return false
	}
	e.stopAnimation(now)
	e.active = index
	e.placeActive()
	e.observe(now)
	e.sync(now)
	return true
}

// Press records a pointer going down on the surface.
func (e *Engine) Press(now time.Time) {
	if e.closed {
		return
	}
	e.gate.Press()
	e.sync(now)
}

// Release records the pointer going up. With snap enabled the surface
// settles on the nearest item.
func (e *Engine) Release(now time.Time) {
	if e.closed {
		return
	}
	e.gate.Release()
	if e.surface.Snap() && e.anim == nil {
		e.snapTo(e.surface.Nearest(), now)
		return
	}
	e.sync(now)
}

// ScrollBy applies a manual drag of delta. While the pointer is up the
// surface snaps to the nearest item.
func (e *Engine) ScrollBy(delta float64, now time.Time) {
	if e.closed || !e.surface.Mounted() {
		return
	}
	e.surface.setOffset(e.surface.Offset() + delta)
	if e.surface.Snap() && !e.gate.UserInteracting() && e.anim == nil {
		e.snapTo(e.surface.Nearest(), now)
		return
	}
	e.observe(now)
	e.sync(now)
}

// Swipe moves one item in dir (+1 down, -1 up) as a native snapped scroll would.
// It does not wrap.
func (e *Engine) Swipe(dir int, now time.Time) {
	if e.closed || len(e.entries) == 0 || e.anim != nil {
		return
	}
	switch {
	case dir > 0:
		dir = 1
	case dir < 0:
		dir = -1
	default:
		return
	}
	e.snapTo(clampIndex(e.surface.Nearest()+dir, len(e.entries)), now)
}

// MediaEnded reports a natural end-of-media event from a host media element.
func (e *Engine) MediaEnded(index int, now time.Time) {
	if e.closed {
		return
	}
	if e.playback.ended(index, now) {
		e.finish(index, now)
	}
	e.sync(now)
}

// NextDeadline is the earliest pending timer, if any.
func (e *Engine) NextDeadline() (time.Time, bool) {
	if e.closed {
		return time.Time{}, false
	}
	return e.timers.next()
}

// Tick fires every timer due at now, in deadline order.
func (e *Engine) Tick(now time.Time) {
	for !e.closed {
		key, ok := e.timers.popDue(now)
		if !ok {
			return
		}
		switch key.kind {
		case timerDwell, timerVideoEnd:
			if e.playback.expire(key, now) {
				e.finish(key.index, now)
			}
		case timerDebounce:
			e.gate.EndAuto()
		case timerFrame:
			e.frame(now)
		}
		e.sync(now)
	}
}

// Close cancels every timer and releases all media. The engine ignores all
// further calls. Released media never report a position again, so teardown
// needs no clock.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.playback.releaseAll(time.Time{})
	e.timers.clear()
	e.tracker.Disconnect()
	e.anim = nil
	e.deferred = -1
	e.closed = true
}

func (e *Engine) Entries() []Entry { return e.entries }

// ActiveIndex is the entry in view; false when the feed is empty.
func (e *Engine) ActiveIndex() (int, bool) {
	if len(e.entries) == 0 {
		return 0, false
	}
	return e.active, true
}

func (e *Engine) ActiveEntry() (Entry, bool) {
	if len(e.entries) == 0 {
		return Entry{}, false
	}
	return e.entries[e.active], true
}

func (e *Engine) Gate() GateState { return e.gate.State() }
func (e *Engine) UserInteracting() bool { return e.gate.UserInteracting() }
func (e *Engine) Paused() bool { return e.gate.Paused() }
func (e *Engine) Surface() Surface { return e.surface }
func (e *Engine) Animating() bool { return e.anim != nil }
func (e *Engine) TrackerGeneration() int { return e.tracker.Generation() }

func (e *Engine) Animation() (ScrollAnimation, bool) {
	if e.anim == nil {
		return ScrollAnimation{}, false
	}
	return *e.anim, true
}

func (e *Engine) RenderWindow() []int {
	return Window(e.active, len(e.entries))
}

func (e *Engine) PlaybackState(index int) PlaybackState {
	return e.playback.state(index)
}

// Progress reports how far a mounted video has played, in [0, 1].
func (e *Engine) Progress(index int, now time.Time) (float64, bool) {
	m, ok := e.playback.media(index)
	if !ok || m.Duration() <= 0 {
		return 0, false
	}
	return float64(m.Position(now)) / float64(m.Duration()), true
}

func (e *Engine) finish(index int, now time.Time) {
	if len(e.entries) == 0 || index != e.active {
		return
	}
	if e.anim != nil {
		e.deferred = index
		e.log.Debugw("msg", "advance deferred, animation in flight", "index", index)
		return
	}
	next, _ := NextIndex(e.active, len(e.entries))
	target, ok := e.surface.ItemTop(next)
	if !ok {
		e.log.Debugw("msg", "advance skipped, target not measurable", "from", index, "to", next)
		return
	}
	e.surface.setSnap(false)
	e.gate.BeginAuto()
	e.anim = &ScrollAnimation{
		From:     e.surface.Offset(),
		To:       target,
		Target:   next,
		Start:    now,
		Duration: e.opts.AdvanceDuration,
	}
	e.timers.set(frameKey, now.Add(e.opts.FrameInterval))
	e.log.Debugw("msg", "auto-advance", "from", index, "to", next)
}

func (e *Engine) frame(now time.Time) {
	if e.anim == nil {
		return
	}
	anim := *e.anim
	e.surface.setOffset(anim.OffsetAt(now))
	e.observe(now)
	if anim.Done(now) {
		e.anim = nil
		e.surface.setSnap(true)
		e.gate.EndAuto()
		e.runDeferred(now)
		return
	}
	e.timers.set(frameKey, now.Add(e.opts.FrameInterval))
}

// runDeferred replays a finish that arrived while the animation ran. The
// slot must still be the active one and still be Playing with no timer of
// its own, otherwise a pause or remount has already rearmed it.
func (e *Engine) runDeferred(now time.Time) {
	index := e.deferred
	e.deferred = -1
	if index < 0 || index != e.active || !e.playback.spent(index) {
		return
	}
	e.finish(index, now)
}

// stopAnimation abandons the animation in flight. A deferred finish is not
// replayed; the slot starts its dwell or video over instead.
func (e *Engine) stopAnimation(now time.Time) {
	e.timers.cancel(frameKey)
	if e.anim == nil {
		return
	}
	e.anim = nil
	e.surface.setSnap(true)
	e.gate.EndAuto()
	if index := e.deferred; index >= 0 {
		e.deferred = -1
		e.playback.restart(index, now)
	}
}

func sameIDs(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func (e *Engine) snapTo(index int, now time.Time) {
	if top, ok := e.surface.ItemTop(index); ok {
		e.surface.setOffset(top)
	}
	e.observe(now)
	e.sync(now)
}

func (e *Engine) placeActive() {
	if top, ok := e.surface.ItemTop(e.active); ok {
		e.surface.setOffset(top)
	}
}

// observe feeds one tracker batch into the active index. The last
// intersecting observation wins; while an animation runs only its target may
// become active, so a wrap back to the top does not walk through every item.
func (e *Engine) observe(now time.Time) {
	for _, o := range e.tracker.Scan(e.surface) {
		if !o.Intersecting {
			continue
		}
		if e.anim != nil && o.Index != e.anim.Target {
			continue
		}
		e.active = clampIndex(o.Index, len(e.entries))
		e.timers.set(debounceKey, now.Add(e.opts.Debounce))
	}
}

// sync is one render pass: everything derived from the active index is
// recomputed from its current value.
func (e *Engine) sync(now time.Time) {
	if e.closed {
		return
	}
	if len(e.entries) == 0 {
		e.playback.releaseAll(now)
		return
	}
	e.active = clampIndex(e.active, len(e.entries))
	e.playback.reconcile(e.entries, e.active, e.gate.Paused(), now)
}

// Snapshot is a read-only view of the engine for renderers.
type Snapshot struct {
	Active    int
	Count     int
	Offset    float64
	Viewport  float64
	Snap      bool
	Animating bool
	Gate      GateState
	Window    []int
	Playback  map[int]PlaybackState
}

func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Active:    e.active,
		Count:     len(e.entries),
		Offset:    e.surface.Offset(),
		Viewport:  e.surface.Viewport(),
		Snap:      e.surface.Snap(),
		Animating: e.anim != nil,
		Gate:      e.gate.State(),
		Window:    e.RenderWindow(),
	}
	s.Playback = make(map[int]PlaybackState, len(s.Window))
	for _, i := range s.Window {
		s.Playback[i] = e.playback.state(i)
	}
	return s
}
