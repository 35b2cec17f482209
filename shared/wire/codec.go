package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/geom"
)

// The codec is a small hand-rolled tagged-union binary format: a one-byte
// tag, single bytes for key masks, entity kinds and player indices,
// little-endian float32 for vector components, and unsigned varints for
// every other integer (frame numbers, sequences, ping ids, entity counts,
// NetIDs, score), since those are most likely to be small in practice even
// though they're declared as u32/u16. It is not a
// general-purpose serde; it only needs to round-trip the types in this
// package.

func putUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func readUvarint(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func putFloat32(buf *bytes.Buffer, f float32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(f))
	buf.Write(tmp[:])
}

func readFloat32(r *bytes.Reader) (float32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(tmp[:])), nil
}

func putVec2(buf *bytes.Buffer, v geom.Vec2) {
	putFloat32(buf, v.X)
	putFloat32(buf, v.Y)
}

func readVec2(r *bytes.Reader) (geom.Vec2, error) {
	x, err := readFloat32(r)
	if err != nil {
		return geom.Vec2{}, err
	}
	y, err := readFloat32(r)
	if err != nil {
		return geom.Vec2{}, err
	}
	return geom.New(x, y), nil
}

// EncodeClientToServer serializes a ClientToServerPacket.
func EncodeClientToServer(p ClientToServerPacket) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(p.tag))
	switch p.tag {
	case tagCTSInput:
		buf.WriteByte(p.Input.KeyMask)
		putUvarint(&buf, uint64(p.Input.SimulatingFrame))
		putUvarint(&buf, uint64(p.Input.Sequence))
	case tagCTSPing:
		putUvarint(&buf, uint64(p.Ping.PingID))
	}
	return buf.Bytes()
}

// DecodeClientToServer parses a ClientToServerPacket.
func DecodeClientToServer(data []byte) (ClientToServerPacket, error) {
	r := bytes.NewReader(data)
	tagByte, err := r.ReadByte()
	if err != nil {
		return ClientToServerPacket{}, fmt.Errorf("read tag: %w", err)
	}
	switch clientToServerTag(tagByte) {
	case tagCTSInput:
		keyMask, err := r.ReadByte()
		if err != nil {
			return ClientToServerPacket{}, fmt.Errorf("read key_mask: %w", err)
		}
		simFrame, err := readUvarint(r)
		if err != nil {
			return ClientToServerPacket{}, fmt.Errorf("read simulating_frame: %w", err)
		}
		seq, err := readUvarint(r)
		if err != nil {
			return ClientToServerPacket{}, fmt.Errorf("read sequence: %w", err)
		}
		return NewInputPacket(PlayerInputData{
			KeyMask:         keyMask,
			SimulatingFrame: uint32(simFrame),
			Sequence:        uint32(seq),
		}), nil
	case tagCTSPing:
		id, err := readUvarint(r)
		if err != nil {
			return ClientToServerPacket{}, fmt.Errorf("read ping_id: %w", err)
		}
		return NewPingPacket(PingData{PingID: uint32(id)}), nil
	default:
		return ClientToServerPacket{}, fmt.Errorf("unknown ClientToServer tag %d", tagByte)
	}
}

// EncodeServerToClient serializes a ServerToClientPacket.
func EncodeServerToClient(p ServerToClientPacket) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(p.tag))
	switch p.tag {
	case tagSTCWorldState:
		encodeWorldState(&buf, p.WorldState)
	case tagSTCPong:
		putUvarint(&buf, uint64(p.Pong.PingID))
	}
	return buf.Bytes()
}

// DecodeServerToClient parses a ServerToClientPacket.
func DecodeServerToClient(data []byte) (ServerToClientPacket, error) {
	r := bytes.NewReader(data)
	tagByte, err := r.ReadByte()
	if err != nil {
		return ServerToClientPacket{}, fmt.Errorf("read tag: %w", err)
	}
	switch serverToClientTag(tagByte) {
	case tagSTCWorldState:
		ws, err := decodeWorldState(r)
		if err != nil {
			return ServerToClientPacket{}, fmt.Errorf("decode world state: %w", err)
		}
		return NewWorldStatePacket(ws), nil
	case tagSTCPong:
		id, err := readUvarint(r)
		if err != nil {
			return ServerToClientPacket{}, fmt.Errorf("read pong ping_id: %w", err)
		}
		return NewPongPacket(PingData{PingID: uint32(id)}), nil
	default:
		return ServerToClientPacket{}, fmt.Errorf("unknown ServerToClient tag %d", tagByte)
	}
}

func encodeWorldState(buf *bytes.Buffer, ws entity.WorldState) {
	putUvarint(buf, uint64(ws.Frame))
	putUvarint(buf, uint64(len(ws.Entities)))
	for _, e := range ws.Entities {
		putUvarint(buf, uint64(e.NetID))
		buf.WriteByte(byte(e.Kind))
		switch e.Kind {
		case entity.KindPaddle:
			putVec2(buf, e.Paddle.Pos)
			buf.WriteByte(byte(e.Paddle.PlayerIndex))
		case entity.KindBrick:
			putVec2(buf, e.Brick.Pos)
		case entity.KindBall:
			putVec2(buf, e.Ball.Pos)
			putVec2(buf, e.Ball.Velocity)
			buf.WriteByte(byte(e.Ball.PlayerIndex))
		case entity.KindScore:
			putUvarint(buf, uint64(e.Score.Score))
		}
	}
}

func decodeWorldState(r *bytes.Reader) (entity.WorldState, error) {
	frame, err := readUvarint(r)
	if err != nil {
		return entity.WorldState{}, fmt.Errorf("read frame: %w", err)
	}
	count, err := readUvarint(r)
	if err != nil {
		return entity.WorldState{}, fmt.Errorf("read entity count: %w", err)
	}
	entities := make([]entity.NetEntity, 0, count)
	for i := uint64(0); i < count; i++ {
		id, err := readUvarint(r)
		if err != nil {
			return entity.WorldState{}, fmt.Errorf("read net_id: %w", err)
		}
		kindByte, err := r.ReadByte()
		if err != nil {
			return entity.WorldState{}, fmt.Errorf("read kind: %w", err)
		}
		kind := entity.Kind(kindByte)
		netID := entity.NetID(id)
		switch kind {
		case entity.KindPaddle:
			pos, err := readVec2(r)
			if err != nil {
				return entity.WorldState{}, fmt.Errorf("read paddle pos: %w", err)
			}
			pi, err := r.ReadByte()
			if err != nil {
				return entity.WorldState{}, fmt.Errorf("read paddle player index: %w", err)
			}
			entities = append(entities, entity.NewPaddleEntity(netID, entity.PaddleData{
				Pos:         pos,
				PlayerIndex: entity.PlayerIndex(pi),
			}))
		case entity.KindBrick:
			pos, err := readVec2(r)
			if err != nil {
				return entity.WorldState{}, fmt.Errorf("read brick pos: %w", err)
			}
			entities = append(entities, entity.NewBrickEntity(netID, entity.BrickData{Pos: pos}))
		case entity.KindBall:
			pos, err := readVec2(r)
			if err != nil {
				return entity.WorldState{}, fmt.Errorf("read ball pos: %w", err)
			}
			vel, err := readVec2(r)
			if err != nil {
				return entity.WorldState{}, fmt.Errorf("read ball velocity: %w", err)
			}
			pi, err := r.ReadByte()
			if err != nil {
				return entity.WorldState{}, fmt.Errorf("read ball player index: %w", err)
			}
			entities = append(entities, entity.NewBallEntity(netID, entity.BallData{
				Pos:         pos,
				Velocity:    vel,
				PlayerIndex: entity.PlayerIndex(pi),
			}))
		case entity.KindScore:
			score, err := readUvarint(r)
			if err != nil {
				return entity.WorldState{}, fmt.Errorf("read score: %w", err)
			}
			entities = append(entities, entity.NewScoreEntity(entity.ScoreData{Score: uint32(score)}))
		default:
			return entity.WorldState{}, fmt.Errorf("unknown entity kind %d", kindByte)
		}
	}
	return entity.WorldState{Frame: uint32(frame), Entities: entities}, nil
}
