package client_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/alexokonski/fixedtick/client"
	"github.com/alexokonski/fixedtick/server"
	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
)

type fakeSink struct {
	last    entity.WorldState
	keyMask uint8
}

func (s *fakeSink) Render(ws entity.WorldState) { s.last = ws }
func (s *fakeSink) KeyMask() uint8              { return s.keyMask }

func TestClientConnectsAndEventuallyRendersOwnEntities(t *testing.T) {
	srv, err := server.New(server.Config{BindAddr: "127.0.0.1:0", Seed: 1}, zerolog.Nop())
	require.NoError(t, err)
	defer srv.Close()

	c, err := client.New(client.Config{
		ServerAddr: srv.LocalAddr().String(),
		BindAddr:   "127.0.0.1:0",
		Seed:       1,
	}, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	sink := &fakeSink{keyMask: wire.KeyRight}

	now := time.Now()
	target := netconst.ExpectedSnapshotBuffer()
	// The client sends nothing until its first ping is due (inputs wait for
	// the first snapshot, heartbeats for a much longer interval), so run past
	// the ping interval, then enough ticks for the snapshot buffer to reach
	// its target depth and start interpolating (client first, so its ping is
	// in flight when the server ticks).
	warmup := int(netconst.PingInterval/netconst.TickDuration) + 1
	for i := 0; i < warmup+target+5; i++ {
		c.Tick(now, netconst.TickDuration, sink)
		srv.Tick(now)
		now = now.Add(netconst.TickDuration)
	}
	// A few more rounds so the client has authoritative snapshots to render.
	for i := 0; i < target+5; i++ {
		srv.Tick(now)
		c.Tick(now, netconst.TickDuration, sink)
		now = now.Add(netconst.TickDuration)
	}

	var sawPaddle, sawBall bool
	for _, e := range sink.last.Entities {
		switch e.Kind {
		case entity.KindPaddle:
			sawPaddle = true
		case entity.KindBall:
			sawBall = true
		}
	}
	require.True(t, sawPaddle, "expected a rendered paddle entity after warmup")
	require.True(t, sawBall, "expected a rendered ball entity after warmup")
}
