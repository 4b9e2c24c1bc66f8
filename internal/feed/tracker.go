package feed

// VisibilityThreshold is the intersection ratio at which an item counts as in view.
const VisibilityThreshold = 0.6

// Observation reports that an item crossed the visibility threshold.
type Observation struct {
	Index        int
	Ratio        float64
	Intersecting bool
}

// Tracker emulates an intersection observer over the surface items.
// Scan reports only threshold crossings, except the first scan after Observe
// which reports every observed item.
type Tracker struct {
	threshold    float64
	intersecting []bool
	connected    bool
	primed       bool
	generation   int
}

func NewTracker(threshold float64) *Tracker {
	if threshold <= 0 || threshold > 1 {
		threshold = VisibilityThreshold
	}
	return &Tracker{threshold: threshold}
}

// Observe tears down the current subscription and starts observing count items.
func (t *Tracker) Observe(count int) {
	t.Disconnect()
	t.generation++
	if count <= 0 {
		return
	}
	t.intersecting = make([]bool, count)
	t.connected = true
}

func (t *Tracker) Disconnect() {
	t.intersecting = nil
	t.connected = false
	t.primed = false
}

// Generation counts subscriptions; it changes on every Observe.
func (t *Tracker) Generation() int { return t.generation }

func (t *Tracker) Observed() int { return len(t.intersecting) }

// Scan compares the surface against the last known state and returns one batch
// of observations in index order. An unmounted surface yields nothing and
// leaves the subscription waiting for geometry.
func (t *Tracker) Scan(s Surface) []Observation {
	if !t.connected || !s.Mounted() {
		return nil
	}
	var batch []Observation
	for i := range t.intersecting {
		ratio := s.IntersectionRatio(i)
		in := ratio >= t.threshold
		if t.primed && in == t.intersecting[i] {
			continue
		}
		t.intersecting[i] = in
		batch = append(batch, Observation{Index: i, Ratio: ratio, Intersecting: in})
	}
	t.primed = true
	return batch
}
