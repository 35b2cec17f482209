package server_test

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/alexokonski/fixedtick/server"
	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
	"github.com/alexokonski/fixedtick/transport"
)

func newTestServer(t *testing.T) (*server.Server, *net.UDPConn) {
	t.Helper()
	s, err := server.New(server.Config{BindAddr: "127.0.0.1:0", Seed: 1}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clientConn, err := net.DialUDP("udp", nil, s.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	return s, clientConn
}

func recvWorldState(t *testing.T, conn *net.UDPConn) (wire.Header, entity.WorldState) {
	t.Helper()
	buf := make([]byte, netconst.EthernetMTU)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	n, err := conn.Read(buf)
	require.NoError(t, err)

	header, body, err := wire.ReadHeader(buf[:n])
	require.NoError(t, err)
	packet, err := wire.DecodeServerToClient(body)
	require.NoError(t, err)
	require.True(t, packet.IsWorldState())
	return header, packet.WorldState
}

func TestServerFirstSnapshotHasExpectedEntities(t *testing.T) {
	s, clientConn := newTestServer(t)

	_, err := clientConn.Write([]byte{}) // heartbeat to register the connection
	require.NoError(t, err)

	s.Tick(time.Now())
	s.Tick(time.Now())

	_, ws := recvWorldState(t, clientConn)

	var paddles, balls, bricks, scores int
	for _, e := range ws.Entities {
		switch e.Kind {
		case entity.KindPaddle:
			paddles++
			require.InDelta(t, netconst.PaddleY, e.Paddle.Pos.Y, 1e-3)
			require.GreaterOrEqual(t, e.Paddle.Pos.X, float32(netconst.PaddleLeftBound))
			require.LessOrEqual(t, e.Paddle.Pos.X, float32(netconst.PaddleRightBound))
		case entity.KindBall:
			balls++
			require.InDelta(t, 0, e.Ball.Pos.X, 1e-3)
			require.InDelta(t, -50, e.Ball.Pos.Y, 1e-3)
		case entity.KindBrick:
			bricks++
		case entity.KindScore:
			scores++
			require.Zero(t, e.Score.Score)
		}
	}
	require.Equal(t, 1, paddles)
	require.Equal(t, 1, balls)
	require.Equal(t, 1, scores)
	require.Greater(t, bricks, 0)
}

func TestServerDespawnsOnIdleTimeout(t *testing.T) {
	s, clientConn := newTestServer(t)
	_, err := clientConn.Write([]byte{})
	require.NoError(t, err)

	s.Tick(time.Now())

	// A second peer that connects on the timed-out tick receives the snapshot
	// broadcast after the idle sweep: it must hold only its own paddle and
	// ball, the first peer's having been despawned.
	other, err := net.DialUDP("udp", nil, s.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer other.Close()
	_, err = other.Write([]byte{})
	require.NoError(t, err)

	past := time.Now().Add(netconst.IdleTimeout + time.Second)
	s.Tick(past)
	ws := s.Metrics() // sanity: metrics object is non-nil and usable after a disconnect tick
	require.NotNil(t, ws)

	_, snapshot := recvWorldState(t, other)
	var paddles, balls int
	for _, e := range snapshot.Entities {
		switch e.Kind {
		case entity.KindPaddle:
			paddles++
		case entity.KindBall:
			balls++
		}
	}
	require.Equal(t, 1, paddles)
	require.Equal(t, 1, balls)
}

func TestServerSendLossDropsAllSnapshots(t *testing.T) {
	s, err := server.New(server.Config{
		BindAddr: "127.0.0.1:0",
		Seed:     1,
		Sim: transport.Settings{
			Send: transport.Profile{Loss: transport.Loss{Chance: 1.0}},
		},
	}, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	clientConn, err := net.DialUDP("udp", nil, s.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer clientConn.Close()

	_, err = clientConn.Write([]byte{})
	require.NoError(t, err)
	s.Tick(time.Now())

	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	buf := make([]byte, 16)
	_, err = clientConn.Read(buf)
	require.Error(t, err) // nothing arrives: everything was dropped
}
