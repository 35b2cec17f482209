package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDelayQueueSend(t *testing.T) {
	q := newDelayQueue(false)
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 3000}
	q.push(addr, []byte("test"), time.Time{})

	require.Equal(t, 1, q.len())
	require.Equal(t, []byte("test"), q.packets[0].payload)
}

func TestDelayQueueHasMessages(t *testing.T) {
	q := newDelayQueue(false)
	require.Equal(t, 0, q.len())
	q.push(nil, []byte("test"), time.Time{})
	require.Equal(t, 1, q.len())
}

func TestDelayQueueDrainOnlyHeartbeatMessages(t *testing.T) {
	q := newDelayQueue(false)
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 3000}
	isHeartbeat := func(p packet) bool { return len(p.payload) == 0 }

	q.push(addr, []byte("test"), time.Time{})
	q.push(addr, []byte{}, time.Time{})
	q.push(addr, []byte("test"), time.Time{})
	q.push(addr, []byte{}, time.Time{})
	q.push(addr, []byte("test"), time.Time{})

	require.Len(t, q.drain(time.Now(), isHeartbeat), 2)
	require.Len(t, q.drain(time.Now(), isHeartbeat), 0)

	require.Len(t, q.drain(time.Now(), func(packet) bool { return false }), 0)
	require.Len(t, q.drain(time.Now(), func(packet) bool { return true }), 3)
	require.Len(t, q.drain(time.Now(), func(packet) bool { return true }), 0)
}

func TestDelayQueueOrdersByReleaseTime(t *testing.T) {
	q := newDelayQueue(true)
	now := time.Now()
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 3000}

	q.push(addr, []byte("second"), now.Add(20*time.Millisecond))
	q.push(addr, []byte("first"), now.Add(10*time.Millisecond))
	q.push(addr, []byte("third"), now.Add(30*time.Millisecond))

	drained := q.drain(now.Add(25*time.Millisecond), func(packet) bool { return true })
	require.Len(t, drained, 2)
	require.Equal(t, []byte("first"), drained[0].payload)
	require.Equal(t, []byte("second"), drained[1].payload)
}

func TestDelayQueueNotReadyBeforeReleaseTime(t *testing.T) {
	q := newDelayQueue(true)
	now := time.Now()
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 3000}
	q.push(addr, []byte("later"), now.Add(time.Hour))

	require.Empty(t, q.drain(now, func(packet) bool { return true }))
}
