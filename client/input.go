package client

import (
	"time"

	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
)

// PingTracker emits a ping on a fixed interval and measures round-trip time
// from the matching pong, the way the transport layer's own HeartbeatTimer
// gates heartbeats: an accumulator advanced by dt, firing and resetting
// rather than free-running off wall-clock reads.
type PingTracker struct {
	interval time.Duration
	elapsed  time.Duration
	nextID   uint32

	inFlight map[uint32]time.Time
}

func NewPingTracker() *PingTracker {
	return &PingTracker{
		interval: netconst.PingInterval,
		inFlight: make(map[uint32]time.Time),
	}
}

// Tick advances the ping clock and returns a ping to send, if one is due.
func (t *PingTracker) Tick(dt time.Duration, now time.Time) (wire.PingData, bool) {
	t.elapsed += dt
	if t.elapsed < t.interval {
		return wire.PingData{}, false
	}
	t.elapsed = 0

	id := t.nextID
	t.nextID++
	t.inFlight[id] = now

	// Bound how many outstanding pings get tracked; a pong that never
	// arrives (dropped by simulated loss) shouldn't leak forever.
	if len(t.inFlight) > 64 {
		for k := range t.inFlight {
			delete(t.inFlight, k)
			break
		}
	}
	return wire.PingData{PingID: id}, true
}

// Observe records a pong's round-trip time, if the matching ping is still
// tracked.
func (t *PingTracker) Observe(pong wire.PingData, now time.Time) (time.Duration, bool) {
	sentAt, ok := t.inFlight[pong.PingID]
	if !ok {
		return 0, false
	}
	delete(t.inFlight, pong.PingID)
	return now.Sub(sentAt), true
}
