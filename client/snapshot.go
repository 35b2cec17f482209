package client

import (
	"math"
	"time"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/geom"
	"github.com/alexokonski/fixedtick/shared/netconst"
)

// BufferState is the snapshot interpolation pipeline's own Buffering/Playing
// state machine, the render-side mirror of the server's input jitter
// buffer: arrivals are smoothed out before anything is shown, rather than
// rendered the instant they land.
type BufferState uint8

const (
	SnapshotBuffering BufferState = iota
	SnapshotPlaying
)

type receivedSnapshot struct {
	ws         entity.WorldState
	receivedAt time.Time
}

// SnapshotBuffer turns a stream of arriving world-state snapshots into a
// smooth render-time query. It holds back rendering by InterpDelayS so that,
// in steady state, there are always two bracketing snapshots to interpolate
// between even when arrivals are jittery.
type SnapshotBuffer struct {
	state       BufferState
	queue       []receivedSnapshot
	interpDelay time.Duration
	lastRender  entity.WorldState
}

func NewSnapshotBuffer() *SnapshotBuffer {
	return &SnapshotBuffer{
		state:       SnapshotBuffering,
		interpDelay: time.Duration(math.Round(netconst.InterpDelayS * float64(time.Second))),
	}
}

// Push records a freshly decoded snapshot. Snapshots are kept in arrival
// order (frame numbers are not used to reorder them), and received-time
// drives the interpolation clock.
func (b *SnapshotBuffer) Push(ws entity.WorldState, now time.Time) {
	b.queue = append(b.queue, receivedSnapshot{ws: ws, receivedAt: now})

	// Overflow drain: if arrivals have outpaced consumption (e.g. after a
	// latency spike resolves in a burst), drop everything older than the
	// target buffer depth rather than slowly working through a growing
	// backlog of stale snapshots.
	target := netconst.ExpectedSnapshotBuffer()
	if over := len(b.queue) - target; over > 0 {
		b.queue = b.queue[over:]
	}
}

// Render returns the interpolated world state for the given render time,
// along with whether the buffer was starved (had to fall back to Buffering)
// on this call.
func (b *SnapshotBuffer) Render(now time.Time) (entity.WorldState, bool) {
	if b.state == SnapshotBuffering {
		if len(b.queue) < netconst.ExpectedSnapshotBuffer() {
			return b.lastRender, false
		}
		b.state = SnapshotPlaying
	}

	renderTime := now.Add(-b.interpDelay)

	for len(b.queue) > 1 && b.queue[1].receivedAt.Before(renderTime) {
		b.queue = b.queue[1:]
	}

	if len(b.queue) == 0 {
		b.state = SnapshotBuffering
		return b.lastRender, true
	}

	if len(b.queue) == 1 {
		// Nothing to interpolate toward yet (or caught all the way up);
		// hold the most recent snapshot rather than extrapolate.
		if renderTime.Sub(b.queue[0].receivedAt) > netconst.TickDuration*time.Duration(netconst.BufferLen()) {
			b.state = SnapshotBuffering
			return b.lastRender, true
		}
		b.lastRender = b.queue[0].ws
		return b.lastRender, false
	}

	from, to := b.queue[0], b.queue[1]
	span := to.receivedAt.Sub(from.receivedAt)
	var t float32
	if span > 0 {
		t = float32(renderTime.Sub(from.receivedAt)) / float32(span)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	b.lastRender = interpolate(from.ws, to.ws, t)
	return b.lastRender, false
}

// RenderOverstep is a pure variant of Render: instead of deriving the
// interpolation fraction from wall-clock time against the held-back
// interpDelay, it takes the overstep fraction directly from the caller (the
// fraction of the current fixed-tick period already elapsed). This is the
// literal render-time contract of a fixed-tick interpolation driver:
// display = lerp(from, to, overstep_fraction). Render performs the same lerp
// with a wall-clock-derived fraction so real callers don't have to track
// overstep themselves; RenderOverstep exists for callers (and tests) that
// already have an explicit overstep fraction in hand, e.g. a presentation
// layer driven by its own render clock rather than this package's delay
// window.
func (b *SnapshotBuffer) RenderOverstep(overstep float32) entity.WorldState {
	if overstep < 0 {
		overstep = 0
	}
	if overstep > 1 {
		overstep = 1
	}
	if len(b.queue) == 0 {
		return b.lastRender
	}
	if len(b.queue) == 1 {
		return b.queue[0].ws
	}
	return interpolate(b.queue[0].ws, b.queue[1].ws, overstep)
}

// interpolate merges two snapshots, lerping position for entities present in
// both (by NetID) and taking the newer snapshot's value outright for
// entities it alone has (a spawn) or that have no continuous motion (bricks,
// score).
func interpolate(from, to entity.WorldState, t float32) entity.WorldState {
	fromByID := make(map[entity.NetID]entity.NetEntity, len(from.Entities))
	for _, e := range from.Entities {
		fromByID[e.NetID] = e
	}

	out := entity.WorldState{Frame: to.Frame, Entities: make([]entity.NetEntity, 0, len(to.Entities))}
	for _, e := range to.Entities {
		prev, ok := fromByID[e.NetID]
		if !ok || prev.Kind != e.Kind {
			out.Entities = append(out.Entities, e)
			continue
		}
		switch e.Kind {
		case entity.KindPaddle:
			e.Paddle.Pos = geom.Lerp(prev.Paddle.Pos, e.Paddle.Pos, t)
		case entity.KindBall:
			e.Ball.Pos = geom.Lerp(prev.Ball.Pos, e.Ball.Pos, t)
		case entity.KindBrick, entity.KindScore:
			// No motion to interpolate; show the newer value as-is.
		}
		out.Entities = append(out.Entities, e)
	}
	return out
}
