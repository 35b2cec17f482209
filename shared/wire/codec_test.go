package wire_test

import (
	"testing"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/geom"
	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/shared/wire"
	"github.com/stretchr/testify/require"
)

func TestClientToServerRoundTripInput(t *testing.T) {
	p := wire.NewInputPacket(wire.PlayerInputData{KeyMask: wire.KeyLeft, SimulatingFrame: 42, Sequence: 7})
	decoded, err := wire.DecodeClientToServer(wire.EncodeClientToServer(p))
	require.NoError(t, err)
	require.True(t, decoded.IsInput())
	require.Equal(t, p.Input, decoded.Input)
}

func TestClientToServerRoundTripPing(t *testing.T) {
	p := wire.NewPingPacket(wire.PingData{PingID: 99})
	decoded, err := wire.DecodeClientToServer(wire.EncodeClientToServer(p))
	require.NoError(t, err)
	require.True(t, decoded.IsPing())
	require.Equal(t, p.Ping, decoded.Ping)
}

func TestServerToClientRoundTripWorldState(t *testing.T) {
	ws := entity.WorldState{
		Frame: 123,
		Entities: []entity.NetEntity{
			entity.NewPaddleEntity(1, entity.PaddleData{Pos: geom.New(10, -300), PlayerIndex: 0}),
			entity.NewBallEntity(2, entity.BallData{Pos: geom.New(0, -50), Velocity: geom.New(1, -1), PlayerIndex: 0}),
			entity.NewBrickEntity(3, entity.BrickData{Pos: geom.New(5, 5)}),
			entity.NewScoreEntity(entity.ScoreData{Score: 3}),
		},
	}
	p := wire.NewWorldStatePacket(ws)
	decoded, err := wire.DecodeServerToClient(wire.EncodeServerToClient(p))
	require.NoError(t, err)
	require.True(t, decoded.IsWorldState())
	require.Equal(t, ws, decoded.WorldState)
}

func TestServerToClientRoundTripPong(t *testing.T) {
	p := wire.NewPongPacket(wire.PingData{PingID: 55})
	decoded, err := wire.DecodeServerToClient(wire.EncodeServerToClient(p))
	require.NoError(t, err)
	require.True(t, decoded.IsPong())
	require.Equal(t, p.Pong, decoded.Pong)
}

func TestHeaderLayout(t *testing.T) {
	buf := make([]byte, netconst.HeaderLen+1)
	wire.WriteHeader(buf, 101, 2)

	require.Equal(t, byte(0xBA), buf[0])
	require.Equal(t, byte(0x11), buf[1])
	require.Equal(t, byte(0xBA), buf[2])
	require.Equal(t, byte(0x11), buf[3])

	h, rest, err := wire.ReadHeader(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(101), h.LastAppliedInput)
	require.Equal(t, entity.PlayerIndex(2), h.LocalClientIndex)
	require.Len(t, rest, 1)
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, netconst.HeaderLen+1)
	wire.WriteHeader(buf, 1, 0)
	buf[0] = 0x00
	_, _, err := wire.ReadHeader(buf)
	require.Error(t, err)
}

func TestHeaderRejectsShortDatagram(t *testing.T) {
	_, _, err := wire.ReadHeader(make([]byte, netconst.HeaderLen))
	require.Error(t, err)
}
