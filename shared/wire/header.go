package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/alexokonski/fixedtick/shared/entity"
	"github.com/alexokonski/fixedtick/shared/netconst"
)

// WriteHeader writes the fixed 9-byte server-to-client header into buf
// (which must be at least netconst.HeaderLen bytes), network byte order.
// The server serializes a world-state body once and calls this once per
// recipient to patch the 5 bytes that vary (last_applied_input,
// local_client_index) ahead of the shared body.
func WriteHeader(buf []byte, lastAppliedInput uint32, localClientIndex entity.PlayerIndex) {
	binary.BigEndian.PutUint32(buf[0:4], netconst.WorldPacketMagic)
	binary.BigEndian.PutUint32(buf[4:8], lastAppliedInput)
	buf[8] = byte(localClientIndex)
}

// Header is the parsed form of the fixed header, returned by ReadHeader.
type Header struct {
	LastAppliedInput  uint32
	LocalClientIndex entity.PlayerIndex
}

// ReadHeader validates and parses the fixed header at the front of buf. Per
// the wire protocol, a client MUST discard any datagram shorter than
// header+1 byte or whose magic doesn't match.
func ReadHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < netconst.HeaderLen+1 {
		return Header{}, nil, fmt.Errorf("datagram too short: %d bytes", len(buf))
	}
	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != netconst.WorldPacketMagic {
		return Header{}, nil, fmt.Errorf("bad magic: got %#x want %#x", magic, netconst.WorldPacketMagic)
	}
	h := Header{
		LastAppliedInput:  binary.BigEndian.Uint32(buf[4:8]),
		LocalClientIndex: entity.PlayerIndex(buf[8]),
	}
	return h, buf[netconst.HeaderLen:], nil
}
