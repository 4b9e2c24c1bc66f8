package feed

import "time"

type timerKind int

const (
	timerDwell timerKind = iota
	timerVideoEnd
	timerDebounce
	timerFrame
)

func (k timerKind) String() string {
	switch k {
	case timerDwell:
		return "dwell"
	case timerVideoEnd:
		return "video-end"
	case timerDebounce:
		return "debounce"
	case timerFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// timerKey identifies a pending timer. Engine-wide timers use index -1.
type timerKey struct {
	kind  timerKind
	index int
}

// timers is the set of pending deadlines. Setting a key replaces its previous
// deadline, so one key never has two live timers.
type timers struct {
	deadlines map[timerKey]time.Time
}

func newTimers() *timers {
	return &timers{deadlines: make(map[timerKey]time.Time)}
}

func (t *timers) set(key timerKey, at time.Time) {
	t.deadlines[key] = at
}

func (t *timers) cancel(key timerKey) {
	delete(t.deadlines, key)
}

func (t *timers) cancelIndex(index int) {
	delete(t.deadlines, timerKey{kind: timerDwell, index: index})
	delete(t.deadlines, timerKey{kind: timerVideoEnd, index: index})
}

// armed reports whether index has a dwell or video-end timer pending.
func (t *timers) armed(index int) bool {
	_, dwell := t.deadlines[timerKey{kind: timerDwell, index: index}]
	_, video := t.deadlines[timerKey{kind: timerVideoEnd, index: index}]
	return dwell || video
}

func (t *timers) clear() {
	for key := range t.deadlines {
		delete(t.deadlines, key)
	}
}

func (t *timers) pending(key timerKey) (time.Time, bool) {
	at, ok := t.deadlines[key]
	return at, ok
}

func (t *timers) len() int { return len(t.deadlines) }

func (t *timers) next() (time.Time, bool) {
	var (
		best  time.Time
		found bool
	)
	for _, at := range t.deadlines {
		if !found || at.Before(best) {
			best = at
			found = true
		}
	}
	return best, found
}

// popDue removes and returns the earliest timer due at now. Ties resolve by
// kind then index so runs are deterministic.
func (t *timers) popDue(now time.Time) (timerKey, bool) {
	var (
		bestKey timerKey
		bestAt  time.Time
		found   bool
	)
	for key, at := range t.deadlines {
		if at.After(now) {
			continue
		}
		if !found || at.Before(bestAt) || (at.Equal(bestAt) && keyLess(key, bestKey)) {
			bestKey, bestAt, found = key, at, true
		}
	}
	if found {
		delete(t.deadlines, bestKey)
	}
	return bestKey, found
}

func keyLess(a, b timerKey) bool {
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	return a.index < b.index
}
