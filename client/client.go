// Package client implements the predicting, interpolating netcode client:
// input capture and send, rollback/replay prediction of the local player's
// paddle and ball, and snapshot interpolation for everything else.
package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
	"github.com/alexokonski/fixedtick/transport"
)

// Config is the client's runtime configuration, populated by the CLI layer.
type Config struct {
	ServerAddr        string
	BindAddr          string
	Sim               transport.Settings
	Seed              int64
	DisablePrediction bool
}

// Client is the authoritative-server's counterpart: it predicts the local
// player's own paddle and ball ahead of the network, reconciling against
// each authoritative snapshot, and interpolates every other entity between
// the last two snapshots it has seen.
type Client struct {
	cfg Config
	log zerolog.Logger

	sock *transport.Socket

	snapshots *SnapshotBuffer
	predictor *Predictor
	pings     *PingTracker

	heartbeat *transport.HeartbeatTimer

	localPlayerIndex entity.PlayerIndex
	haveLocalIndex   bool

	frame   uint32
	metrics *Metrics
}

func New(cfg Config, log zerolog.Logger) (*Client, error) {
	serverAddr, err := net.ResolveUDPAddr("udp", cfg.ServerAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve server address %q: %w", cfg.ServerAddr, err)
	}

	sock, err := transport.NewClientSocket(serverAddr, cfg.Sim, cfg.Seed, log)
	if err != nil {
		return nil, fmt.Errorf("create client socket: %w", err)
	}

	metrics := NewMetrics()
	return &Client{
		cfg:       cfg,
		log:       log.With().Str("component", "client").Logger(),
		sock:      sock,
		snapshots: NewSnapshotBuffer(),
		predictor: NewPredictor(metrics),
		pings:     NewPingTracker(),
		heartbeat: transport.NewHeartbeatTimer(netconst.HeartbeatInterval),
		metrics:   metrics,
	}, nil
}

func (c *Client) Close() error {
	return c.sock.Close()
}

func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Run drives Tick at the fixed tick rate until ctx is cancelled, rendering
// through sink each tick.
func (c *Client) Run(ctx context.Context, sink Sink) error {
	ticker := time.NewTicker(netconst.TickDuration)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			c.Tick(now, dt, sink)
		}
	}
}

// Tick runs one client tick: receive and process inbound packets, advance
// local prediction, emit input/ping/heartbeat, flush the send queue, and
// render through sink.
func (c *Client) Tick(now time.Time, dt time.Duration, sink Sink) {
	c.frame++
	sentSomething := c.receive(now)

	// Gated on having learned the local paddle/ball IDs from a bootstrap
	// snapshot (§4.9): nothing is predicted or sent until the client knows
	// what it's predicting from.
	if _, _, ok := c.predictor.LocalIDs(); ok {
		keyMask := sink.KeyMask()
		input := c.predictor.ApplyLocalInput(keyMask, c.frame)
		c.sock.Send(nil, wire.EncodeClientToServer(wire.NewInputPacket(input)))
		c.metrics.inputsSent.Inc()
		sentSomething = true
	}

	if ping, due := c.pings.Tick(dt, now); due {
		c.sock.Send(nil, wire.EncodeClientToServer(wire.NewPingPacket(ping)))
		sentSomething = true
	}

	if !sentSomething && c.heartbeat.Tick(dt) {
		c.sock.Send(nil, nil)
	}

	if err := c.sock.FlushSend(); err != nil {
		c.log.Warn().Err(err).Msg("flush send failed")
	}

	render := c.render(now)
	sink.Render(render)
}

func (c *Client) receive(now time.Time) bool {
	handled := false
	for _, dgram := range c.sock.Poll() {
		if len(dgram.Payload) == 0 {
			continue
		}
		header, body, err := wire.ReadHeader(dgram.Payload)
		if err != nil {
			c.metrics.packetsDroppedDecode.Inc()
			c.log.Debug().Err(err).Msg("dropping malformed datagram")
			continue
		}
		packet, err := wire.DecodeServerToClient(body)
		if err != nil {
			c.metrics.packetsDroppedDecode.Inc()
			c.log.Debug().Err(err).Msg("dropping undecodable packet")
			continue
		}

		if !c.haveLocalIndex {
			c.localPlayerIndex = header.LocalClientIndex
			c.haveLocalIndex = true
		}

		switch {
		case packet.IsWorldState():
			c.predictor.LearnLocalIDs(packet.WorldState, c.localPlayerIndex)
			c.predictor.Reconcile(header.LastAppliedInput, packet.WorldState)
			c.snapshots.Push(packet.WorldState, now)
			c.metrics.snapshotsReceived.Inc()
		case packet.IsPong():
			if rtt, ok := c.pings.Observe(packet.Pong, now); ok {
				c.metrics.rttSeconds.Update(rtt.Seconds())
			}
		}
		handled = true
	}
	return handled
}

// render merges the interpolated remote world with the locally predicted
// paddle/ball, unless prediction has been disabled for comparison.
func (c *Client) render(now time.Time) entity.WorldState {
	ws, starved := c.snapshots.Render(now)
	if starved {
		c.metrics.bufferStarvations.Inc()
	}

	if c.cfg.DisablePrediction {
		return ws
	}

	paddleID, ballID, ok := c.predictor.LocalIDs()
	if !ok {
		return ws
	}

	predictedPaddle := c.predictor.Paddle()
	predictedBall := c.predictor.Ball()

	for i := range ws.Entities {
		switch {
		case ws.Entities[i].Kind == entity.KindPaddle && ws.Entities[i].NetID == paddleID:
			ws.Entities[i].Paddle.Pos = predictedPaddle.Pos
		case ws.Entities[i].Kind == entity.KindBall && ws.Entities[i].NetID == ballID:
			ws.Entities[i].Ball.Pos = predictedBall.Pos
			ws.Entities[i].Ball.Velocity = predictedBall.Velocity
		}
	}
	return ws
}
