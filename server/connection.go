package server

import (
	"net"
	"time"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/wire"
)

// Connection is one connected player's server-side state: which entities it
// owns, its input jitter buffer, and its liveness bookkeeping.
type Connection struct {
	Addr net.Addr

	PlayerIndex entity.PlayerIndex
	PaddleID    entity.NetID
	BallID      entity.NetID

	LastAppliedInput uint32
	LastActivity     time.Time

	Input *InputBuffer
	Pongs []wire.PingData
}

// Registry maps peer address to connection state, keyed by the address's
// string form (net.Addr implementations from different reads of the same
// peer aren't guaranteed comparable as map keys, but their String() is
// stable).
type Registry struct {
	byAddr map[string]*Connection
	order  []string // insertion order, for deterministic iteration in tests
}

func NewRegistry() *Registry {
	return &Registry{byAddr: make(map[string]*Connection)}
}

func (r *Registry) Get(addr net.Addr) (*Connection, bool) {
	c, ok := r.byAddr[addr.String()]
	return c, ok
}

func (r *Registry) Add(c *Connection) {
	key := c.Addr.String()
	if _, exists := r.byAddr[key]; !exists {
		r.order = append(r.order, key)
	}
	r.byAddr[key] = c
}

func (r *Registry) Remove(addr net.Addr) {
	key := addr.String()
	delete(r.byAddr, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) All() []*Connection {
	out := make([]*Connection, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byAddr[k])
	}
	return out
}

// SweepIdle removes every connection whose last activity is older than
// idleTimeout as of now, returning the removed connections so the caller
// can despawn their entities and log the event.
func (r *Registry) SweepIdle(now time.Time, idleTimeout time.Duration) []*Connection {
	var timedOut []*Connection
	for _, c := range r.All() {
		if now.Sub(c.LastActivity) > idleTimeout {
			timedOut = append(timedOut, c)
		}
	}
	for _, c := range timedOut {
		r.Remove(c.Addr)
	}
	return timedOut
}
