package feed

// GateState combines the two pause sources into one explicit state.
type GateState int

const (
	GateIdle GateState = iota
	GateUserHeld
	GateAutoScrolling
	GateHeldAutoScrolling
)

func (s GateState) String() string {
	switch s {
	case GateIdle:
		return "Idle"
	case GateUserHeld:
		return "UserHeld"
	case GateAutoScrolling:
		return "AutoScrolling"
	case GateHeldAutoScrolling:
		return "HeldAutoScrolling"
	default:
		return "Unknown"
	}
}

// Gate tracks whether a human is holding the surface and whether an
// auto-scroll is in flight. Either one pauses playback and auto-advance.
type Gate struct {
	state GateState
}

func (g *Gate) State() GateState { return g.state }

func (g *Gate) Paused() bool { return g.state != GateIdle }

func (g *Gate) UserInteracting() bool {
	return g.state == GateUserHeld || g.state == GateHeldAutoScrolling
}

func (g *Gate) AutoScrolling() bool {
	return g.state == GateAutoScrolling || g.state == GateHeldAutoScrolling
}

// Press records a pointer going down. There is no timeout.
func (g *Gate) Press() {
	g.set(true, g.AutoScrolling())
}

func (g *Gate) Release() {
	g.set(false, g.AutoScrolling())
}

func (g *Gate) BeginAuto() {
	g.set(g.UserInteracting(), true)
}

func (g *Gate) EndAuto() {
	g.set(g.UserInteracting(), false)
}

func (g *Gate) set(user, auto bool) {
	switch {
	case user && auto:
		g.state = GateHeldAutoScrolling
	case user:
		g.state = GateUserHeld
	case auto:
		g.state = GateAutoScrolling
	default:
		g.state = GateIdle
	}
}
