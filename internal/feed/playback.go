package feed

import (
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	// DefaultDwell stands in for the viewing duration of an image.
	DefaultDwell = 4000 * time.Millisecond
	// DefaultClipDuration is used for videos whose record carries no duration.
	DefaultClipDuration = 8 * time.Second
)

// PlaybackState is the per-entry classification.
type PlaybackState int

const (
	Dormant PlaybackState = iota
	Playing
	Paused
)

func (s PlaybackState) String() string {
	switch s {
	case Dormant:
		return "Dormant"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// ErrReleased is returned by a Clip that has been released.
var ErrReleased = errors.New("media released")

// Media is a mounted video element.
type Media interface {
	// Play starts or resumes playback. A failure leaves the media paused.
	Play(now time.Time) error
	// Pause stops playback and keeps the position.
	Pause(now time.Time)
	Position(now time.Time) time.Duration
	Duration() time.Duration
	Release()
}

// MediaFactory mounts the video element for an entry.
type MediaFactory func(Entry) Media

// Clip is the built-in video element: a position advancing with time while
// playing. Playing an ended clip starts it over.
type Clip struct {
	duration  time.Duration
	position  time.Duration
	startedAt time.Time
	playing   bool
	released  bool
}

func NewClip(duration time.Duration) *Clip {
	if duration <= 0 {
		duration = DefaultClipDuration
	}
	return &Clip{duration: duration}
}

// ClipFactory mounts a Clip sized from the entry duration.
func ClipFactory(entry Entry) Media {
	return NewClip(entry.Duration)
}

func (c *Clip) Play(now time.Time) error {
	if c.released {
		return ErrReleased
	}
	if c.playing {
		return nil
	}
	if c.position >= c.duration {
		c.position = 0
	}
	c.playing = true
	c.startedAt = now
	return nil
}

func (c *Clip) Pause(now time.Time) {
	if !c.playing {
		return
	}
	c.position = c.Position(now)
	c.playing = false
}

func (c *Clip) Position(now time.Time) time.Duration {
	pos := c.position
	if c.playing && now.After(c.startedAt) {
		pos += now.Sub(c.startedAt)
	}
	if pos > c.duration {
		pos = c.duration
	}
	return pos
}

func (c *Clip) Duration() time.Duration { return c.duration }

func (c *Clip) Playing() bool { return c.playing }

func (c *Clip) Release() {
	c.playing = false
	c.released = true
}

// item is the per-index resource slot: the state, the entry it was mounted
// for, and the video element when the entry is a video.
type item struct {
	id      string
	kind    MediaKind
	state   PlaybackState
	media   Media
	running bool
}

// playback owns the per-index slots inside the render window.
type playback struct {
	dwell   time.Duration
	factory MediaFactory
	timers  *timers
	items   map[int]*item
	log     *log.Helper
}

func newPlayback(dwell time.Duration, factory MediaFactory, t *timers, logger *log.Helper) *playback {
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	if factory == nil {
		factory = ClipFactory
	}
	return &playback{
		dwell:   dwell,
		factory: factory,
		timers:  t,
		items:   make(map[int]*item),
		log:     logger,
	}
}

// reconcile brings every slot in line with the active index and the pause
// input. Slots outside the window are released; slots whose entry changed
// are remounted.
func (p *playback) reconcile(entries []Entry, active int, paused bool, now time.Time) {
	n := len(entries)
	for i, it := range p.items {
		if !InWindow(i, active, n) || it.id != entries[i].ID {
			p.unmount(i, now)
		}
	}
	for _, i := range Window(active, n) {
		it, ok := p.items[i]
		if !ok {
			it = p.mount(entries[i])
			p.items[i] = it
		}
		desired := Dormant
		if i == active {
			desired = Playing
			if paused {
				desired = Paused
			}
		}
		p.transition(i, it, desired, now)
	}
}

func (p *playback) mount(entry Entry) *item {
	it := &item{id: entry.ID, kind: entry.Kind}
	if entry.Kind == MediaVideo {
		it.media = p.factory(entry)
	}
	return it
}

func (p *playback) unmount(i int, now time.Time) {
	it, ok := p.items[i]
	if !ok {
		return
	}
	p.timers.cancelIndex(i)
	if it.media != nil {
		it.media.Pause(now)
		it.media.Release()
	}
	delete(p.items, i)
}

func (p *playback) releaseAll(now time.Time) {
	for i := range p.items {
		p.unmount(i, now)
	}
}

func (p *playback) transition(i int, it *item, desired PlaybackState, now time.Time) {
	if it.state == desired {
		return
	}
	p.timers.cancelIndex(i)
	switch desired {
	case Dormant, Paused:
		if it.media != nil {
			it.media.Pause(now)
		}
		it.running = false
	case Playing:
		p.start(i, it, now)
	}
	it.state = desired
}

func (p *playback) start(i int, it *item, now time.Time) {
	if it.kind == MediaImage {
		p.timers.set(timerKey{kind: timerDwell, index: i}, now.Add(p.dwell))
		return
	}
	if it.media == nil {
		return
	}
	if err := it.media.Play(now); err != nil {
		it.running = false
		p.log.Debugw("msg", "video play rejected", "index", i, "id", it.id, "error", err)
		return
	}
	it.running = true
	remaining := it.media.Duration() - it.media.Position(now)
	if remaining < 0 {
		remaining = 0
	}
	p.timers.set(timerKey{kind: timerVideoEnd, index: i}, now.Add(remaining))
}

// expire handles a dwell or video-end timer and reports whether the slot
// finished naturally.
func (p *playback) expire(key timerKey, now time.Time) bool {
	it, ok := p.items[key.index]
	if !ok || it.state != Playing {
		return false
	}
	switch key.kind {
	case timerDwell:
		return it.kind == MediaImage
	case timerVideoEnd:
		if it.media == nil || !it.running {
			return false
		}
		it.media.Pause(now)
		it.running = false
		return true
	}
	return false
}

// ended handles a natural end reported by the media itself.
func (p *playback) ended(i int, now time.Time) bool {
	it, ok := p.items[i]
	if !ok || it.state != Playing || it.kind != MediaVideo {
		return false
	}
	p.timers.cancelIndex(i)
	if it.media != nil {
		it.media.Pause(now)
	}
	it.running = false
	return true
}

// spent reports a Playing slot whose dwell or video has already run out.
func (p *playback) spent(i int) bool {
	it, ok := p.items[i]
	if !ok || it.state != Playing {
		return false
	}
	return !p.timers.armed(i) && (it.kind == MediaImage || !it.running)
}

// restart starts a spent Playing slot over from the beginning.
func (p *playback) restart(i int, now time.Time) {
	if !p.spent(i) {
		return
	}
	p.start(i, p.items[i], now)
}

func (p *playback) state(i int) PlaybackState {
	if it, ok := p.items[i]; ok {
		return it.state
	}
	return Dormant
}

func (p *playback) media(i int) (Media, bool) {
	it, ok := p.items[i]
	if !ok || it.media == nil {
		return nil, false
	}
	return it.media, true
}
