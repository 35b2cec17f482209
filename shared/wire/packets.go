// Package wire implements the binary packet codec and the fixed
// server-to-client header. Two packet families exist, each a tagged union:
// ClientToServer carries player input and pings, ServerToClient carries
// world snapshots and pong replies.
package wire

import "github.com/alexokonski/fixedtick/shared/entity"

// PlayerInputData is one client input sample.
type PlayerInputData struct {
	KeyMask         uint8
	SimulatingFrame uint32
	Sequence        uint32
}

// Key mask bits.
const (
	KeyLeft  uint8 = 1 << 0
	KeyRight uint8 = 1 << 1
)

// PingData is echoed verbatim by the server as a Pong.
type PingData struct {
	PingID uint32
}

// clientToServerTag discriminates the ClientToServerPacket union on the
// wire.
type clientToServerTag uint8

const (
	tagCTSInput clientToServerTag = iota
	tagCTSPing
)

// ClientToServerPacket is a tagged union: exactly one of Input/Ping is
// populated, selected by Tag.
type ClientToServerPacket struct {
	tag   clientToServerTag
	Input PlayerInputData
	Ping  PingData
}

func NewInputPacket(d PlayerInputData) ClientToServerPacket {
	return ClientToServerPacket{tag: tagCTSInput, Input: d}
}

func NewPingPacket(d PingData) ClientToServerPacket {
	return ClientToServerPacket{tag: tagCTSPing, Ping: d}
}

func (p ClientToServerPacket) IsInput() bool { return p.tag == tagCTSInput }
func (p ClientToServerPacket) IsPing() bool  { return p.tag == tagCTSPing }

type serverToClientTag uint8

const (
	tagSTCWorldState serverToClientTag = iota
	tagSTCPong
)

// ServerToClientPacket is a tagged union: exactly one of WorldState/Pong is
// populated, selected by Tag.
type ServerToClientPacket struct {
	tag        serverToClientTag
	WorldState entity.WorldState
	Pong       PingData
}

func NewWorldStatePacket(ws entity.WorldState) ServerToClientPacket {
	return ServerToClientPacket{tag: tagSTCWorldState, WorldState: ws}
}

func NewPongPacket(d PingData) ServerToClientPacket {
	return ServerToClientPacket{tag: tagSTCPong, Pong: d}
}

func (p ServerToClientPacket) IsWorldState() bool { return p.tag == tagSTCWorldState }
func (p ServerToClientPacket) IsPong() bool        { return p.tag == tagSTCPong }
