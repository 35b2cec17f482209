package transport

import "time"

// HeartbeatTimer fires once every interval has elapsed since it last fired,
// driven by the caller passing in elapsed wall-clock time each tick. Used
// by the client to send an empty payload when it has nothing else to say,
// refreshing the server's idle-timeout clock.
type HeartbeatTimer struct {
	interval time.Duration
	elapsed  time.Duration
}

func NewHeartbeatTimer(interval time.Duration) *HeartbeatTimer {
	return &HeartbeatTimer{interval: interval}
}

// Tick advances the timer by dt and reports whether it just fired. Firing
// resets the accumulator rather than just subtracting one interval, so a
// long pause doesn't queue up a burst of heartbeats.
func (h *HeartbeatTimer) Tick(dt time.Duration) bool {
	h.elapsed += dt
	if h.elapsed >= h.interval {
		h.elapsed = 0
		return true
	}
	return false
}
