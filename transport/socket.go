// Package transport wraps a UDP socket with the non-blocking read loop,
// send queue, and artificial latency/loss injection the netcode core needs.
// A Socket is driven entirely from the owning tick loop: nothing here
// spawns a goroutine, matching the single-threaded cooperative scheduling
// model the rest of the module uses.
package transport

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/alexokonski/fixedtick/shared/netconst"
	"github.com/alexokonski/fixedtick/sim"
)

// Datagram is one application-visible unit of received data: a source
// address and a payload. A zero-length payload is a heartbeat.
type Datagram struct {
	Addr    net.Addr
	Payload []byte
}

// Socket is a non-blocking UDP endpoint with optional simulated latency and
// loss in each direction.
type Socket struct {
	conn      *net.UDPConn
	connected bool

	sendSettings Settings
	sendQueue    *delayQueue
	recvQueue    *delayQueue

	rng *sim.RNG
	log zerolog.Logger

	recvErrLimiter *rate.Limiter

	recvBuf [netconst.EthernetMTU]byte
}

// NewServerSocket binds a listening socket for the server; it never
// "connects" since it must accept datagrams from any peer.
func NewServerSocket(bindAddr string, settings Settings, rngSeed int64, log zerolog.Logger) (*Socket, error) {
	return newSocket(bindAddr, nil, settings, rngSeed, log)
}

// NewClientSocket binds an ephemeral local socket and connects it to the
// server address, so the kernel filters out datagrams from anywhere else.
func NewClientSocket(remoteAddr *net.UDPAddr, settings Settings, rngSeed int64, log zerolog.Logger) (*Socket, error) {
	return newSocket("0.0.0.0:0", remoteAddr, settings, rngSeed, log)
}

func newSocket(bindAddr string, remoteAddr *net.UDPAddr, settings Settings, rngSeed int64, log zerolog.Logger) (*Socket, error) {
	laddr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve bind address %q: %w", bindAddr, err)
	}

	var conn *net.UDPConn
	if remoteAddr != nil {
		conn, err = net.DialUDP("udp", laddr, remoteAddr)
	} else {
		conn, err = net.ListenUDP("udp", laddr)
	}
	if err != nil {
		return nil, fmt.Errorf("open udp socket: %w", err)
	}

	if err := tuneSocket(conn); err != nil {
		log.Warn().Err(err).Msg("failed to apply platform socket tuning")
	}

	s := &Socket{
		conn:           conn,
		connected:      remoteAddr != nil,
		sendSettings:   settings,
		sendQueue:      newDelayQueue(settings.Send.IsSet()),
		recvQueue:      newDelayQueue(settings.Receive.IsSet()),
		rng:            sim.NewRNG(rngSeed),
		log:            log.With().Str("component", "transport").Logger(),
		recvErrLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
	return s, nil
}

func (s *Socket) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *Socket) Close() error {
	return s.conn.Close()
}

// Send enqueues a payload for a destination, applying the send-side
// latency/loss profile. dest is ignored (and may be nil) on a connected
// (client) socket, where WriteTo always targets the dialed peer.
func (s *Socket) Send(dest net.Addr, payload []byte) {
	roll := s.sendSettings.Send.roll(s.rng, time.Now())
	if roll.kind == rollDrop {
		return
	}
	s.sendQueue.push(dest, payload, roll.releaseAt)
}

// FlushSend drains every ready queued send and writes it to the socket,
// returning the first write error encountered; the rest of that drained
// batch is not sent. The server and client tick loops log the error and
// carry on: no connection is dropped because of a send error.
func (s *Socket) FlushSend() error {
	ready := s.sendQueue.drain(time.Now(), func(packet) bool { return true })
	for _, p := range ready {
		var err error
		if s.connected {
			_, err = s.conn.Write(p.payload)
		} else {
			_, err = s.conn.WriteTo(p.payload, p.addr)
		}
		if err != nil {
			return fmt.Errorf("send to %v: %w", p.addr, err)
		}
	}
	return nil
}

// Poll drains every datagram currently available on the underlying socket
// (looping until the kernel would block), applies the receive-side
// latency/loss profile to each, and returns every datagram (freshly read or
// previously delayed) whose simulated release time has now arrived. This
// is the single call sites use once per tick to get their inbound batch.
func (s *Socket) Poll() []Datagram {
	s.drainSocketIntoRecvQueue()
	ready := s.recvQueue.drain(time.Now(), func(packet) bool { return true })
	out := make([]Datagram, 0, len(ready))
	for _, p := range ready {
		out = append(out, Datagram{Addr: p.addr, Payload: p.payload})
	}
	return out
}

func (s *Socket) drainSocketIntoRecvQueue() {
	for {
		// A deadline of now (already past when the read runs) makes the read
		// return immediately with a timeout error instead of blocking,
		// which is how this module emulates the "non-blocking socket,
		// WouldBlock on nothing pending" contract on top of net.UDPConn.
		if err := s.conn.SetReadDeadline(time.Now()); err != nil {
			s.log.Warn().Err(err).Msg("failed to set read deadline")
			return
		}

		n, addr, err := s.conn.ReadFrom(s.recvBuf[:])
		if err != nil {
			if isWouldBlock(err) {
				return
			}
			if s.recvErrLimiter.Allow() {
				s.log.Warn().Err(err).Msg("recv error")
			}
			continue
		}

		payload := make([]byte, n)
		copy(payload, s.recvBuf[:n])

		if len(payload) == 0 {
			s.log.Debug().Str("addr", addrString(addr)).Msg("received heartbeat packet")
		}

		roll := s.sendSettings.Receive.roll(s.rng, time.Now())
		if roll.kind == rollDrop {
			continue
		}
		s.recvQueue.push(addr, payload, roll.releaseAt)
	}
}

func isWouldBlock(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func addrString(a net.Addr) string {
	if a == nil {
		return "<nil>"
	}
	return a.String()
}
