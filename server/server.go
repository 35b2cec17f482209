// Package server implements the authoritative tick loop: it drains input,
// advances the simulation, resolves collisions, and broadcasts a snapshot
// once per tick, in the fixed order the prediction/reconciliation model on
// the client depends on.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
	"github.com/alexokonski/fixedtick/sim"
	"github.com/alexokonski/fixedtick/transport"
)

// Config is the server's runtime configuration, populated by the CLI layer.
type Config struct {
	BindAddr string
	Sim      transport.Settings
	Seed     int64
}

// Server is the authoritative game server: one UDP socket, one connection
// registry, one world. It is driven entirely by repeated calls to Tick;
// Run is a convenience fixed-rate loop around that.
type Server struct {
	cfg Config
	log zerolog.Logger

	sock     *transport.Socket
	registry *Registry
	world    *World
	rng      *sim.RNG
	players  entity.PlayerIndexAllocator
	metrics  *Metrics

	frame uint32
}

func New(cfg Config, log zerolog.Logger) (*Server, error) {
	sock, err := transport.NewServerSocket(cfg.BindAddr, cfg.Sim, cfg.Seed, log)
	if err != nil {
		return nil, fmt.Errorf("create server socket: %w", err)
	}

	world := NewWorld()
	world.SetupBricks()

	return &Server{
		cfg:      cfg,
		log:      log.With().Str("component", "server").Logger(),
		sock:     sock,
		registry: NewRegistry(),
		world:    world,
		rng:      sim.NewRNG(cfg.Seed),
		metrics:  NewMetrics(),
	}, nil
}

func (s *Server) Close() error {
	return s.sock.Close()
}

func (s *Server) LocalAddr() net.Addr {
	return s.sock.LocalAddr()
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run drives Tick at the fixed tick rate until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(netconst.TickDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick(time.Now())
		}
	}
}

type inboundMessage struct {
	addr    net.Addr
	payload []byte
}

// Tick runs one full server tick: steps §4.5.1 through §4.5.10 of the
// server tick specification, in order.
func (s *Server) Tick(now time.Time) {
	start := time.Now()

	// 1. Start tick.
	s.frame++

	// 2. Receive.
	newlyConnected, messages := s.receive(now)

	// 3. Idle-timeout sweep.
	timedOut := s.registry.SweepIdle(now, netconst.IdleTimeout)

	// 4. Connection handler.
	s.handleConnects(newlyConnected, now)
	s.handleDisconnects(timedOut)
	s.handleMessages(messages, now)

	// 5. Process input.
	s.processInput(now)

	// 6. Apply velocity.
	s.applyVelocity()

	// 7. Collisions.
	s.checkCollisions()

	// 8. Broadcast snapshot.
	s.broadcastSnapshot()

	// 9. Send.
	if err := s.sock.FlushSend(); err != nil {
		s.log.Warn().Err(err).Msg("flush send failed")
	}

	// 10. End tick.
	s.metrics.ticksRun.Inc()
	s.metrics.tickDuration.UpdateDuration(start)
	s.log.Debug().Dur("tick_time", time.Since(start)).Uint32("frame", s.frame).Msg("tick complete")
}

func (s *Server) receive(now time.Time) ([]net.Addr, []inboundMessage) {
	var newlyConnected []net.Addr
	var messages []inboundMessage

	for _, dgram := range s.sock.Poll() {
		if _, known := s.registry.Get(dgram.Addr); !known {
			newlyConnected = append(newlyConnected, dgram.Addr)
		}
		if conn, ok := s.registry.Get(dgram.Addr); ok {
			conn.LastActivity = now
		}
		if len(dgram.Payload) == 0 {
			s.log.Debug().Str("addr", dgram.Addr.String()).Msg("received heartbeat packet")
			continue
		}
		messages = append(messages, inboundMessage{addr: dgram.Addr, payload: dgram.Payload})
	}
	return newlyConnected, messages
}

func (s *Server) handleConnects(addrs []net.Addr, now time.Time) {
	for _, addr := range addrs {
		if _, exists := s.registry.Get(addr); exists {
			continue
		}
		playerIndex := s.players.Next()
		paddleX := s.rng.PaddleSpawnX()
		paddleID, ballID := s.world.SpawnPlayer(playerIndex, paddleX, s.rng)

		conn := &Connection{
			Addr:         addr,
			PlayerIndex:  playerIndex,
			PaddleID:     paddleID,
			BallID:       ballID,
			LastActivity: now,
			Input:        NewInputBuffer(),
		}
		s.registry.Add(conn)
		s.metrics.connectionsAccepted.Inc()
		s.log.Info().Str("addr", addr.String()).Uint8("player_index", uint8(playerIndex)).Msg("connected")
	}
}

func (s *Server) handleDisconnects(conns []*Connection) {
	for _, c := range conns {
		s.world.DespawnPlayer(c.PaddleID, c.BallID)
		s.metrics.disconnectsIdle.Inc()
		s.log.Info().Str("addr", c.Addr.String()).Msg("disconnected (idle timeout)")
	}
}

func (s *Server) handleMessages(messages []inboundMessage, now time.Time) {
	for _, m := range messages {
		conn, ok := s.registry.Get(m.addr)
		if !ok {
			s.log.Warn().Str("addr", m.addr.String()).Msg("message from unregistered peer")
			continue
		}
		packet, err := wire.DecodeClientToServer(m.payload)
		if err != nil {
			s.metrics.packetsDroppedDecode.Inc()
			s.log.Debug().Err(err).Str("addr", m.addr.String()).Msg("dropping undecodable packet")
			continue
		}
		switch {
		case packet.IsInput():
			conn.Input.Push(packet.Input, now)
		case packet.IsPing():
			conn.Pongs = append(conn.Pongs, packet.Ping)
		}
	}
}

func (s *Server) processInput(now time.Time) {
	for _, conn := range s.registry.All() {
		result := conn.Input.Consume(now)
		if result.Starved {
			s.metrics.bufferStarvations.Inc()
			s.log.Debug().Str("addr", conn.Addr.String()).Msg("input buffer starved, back to Buffering")
		}
		if len(result.Consumed) == 0 {
			continue
		}
		paddle, ok := s.world.Paddle(conn.PaddleID)
		if !ok {
			continue
		}
		for _, input := range result.Consumed {
			sim.MovePaddleWithInput(paddle, netconst.TickS, input)
			conn.LastAppliedInput = input.Sequence
			s.metrics.inputsConsumed.Inc()
		}
	}
}

func (s *Server) applyVelocity() {
	balls, _ := s.world.AllBalls()
	for i := range balls {
		sim.IntegrateBall(&balls[i], netconst.TickS)
	}
}

func (s *Server) checkCollisions() {
	colliders := s.world.FrozenColliders()
	balls, _ := s.world.AllBalls()
	destroyed := map[int]bool{}
	for i := range balls {
		hit := sim.ResolveBallCollisions(&balls[i], netconst.BallDiameter/2, colliders, destroyed)
		_ = hit
	}
	n := s.world.DestroyBricks(destroyed)
	if n > 0 {
		s.metrics.bricksDestroyed.Add(n)
	}
}

func (s *Server) broadcastSnapshot() {
	snapshot := s.world.Snapshot(s.frame)
	body := wire.EncodeServerToClient(wire.NewWorldStatePacket(snapshot))

	buf := make([]byte, netconst.HeaderLen+len(body))
	copy(buf[netconst.HeaderLen:], body)

	for _, conn := range s.registry.All() {
		wire.WriteHeader(buf, conn.LastAppliedInput, conn.PlayerIndex)
		s.sock.Send(conn.Addr, append([]byte(nil), buf...))
		s.metrics.snapshotsSent.Inc()
		s.metrics.bytesSent.Add(len(buf))

		for _, ping := range conn.Pongs {
			pongBody := wire.EncodeServerToClient(wire.NewPongPacket(ping))
			pongBuf := make([]byte, netconst.HeaderLen+len(pongBody))
			copy(pongBuf[netconst.HeaderLen:], pongBody)
			wire.WriteHeader(pongBuf, conn.LastAppliedInput, conn.PlayerIndex)
			s.sock.Send(conn.Addr, pongBuf)
			s.metrics.bytesSent.Add(len(pongBuf))
		}
		conn.Pongs = conn.Pongs[:0]
	}
}
