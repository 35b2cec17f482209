package transport_test

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/alexokonski/fixedtick/transport"
)

func TestSocketLoopbackSendRecv(t *testing.T) {
	log := zerolog.Nop()

	server, err := transport.NewServerSocket("127.0.0.1:0", transport.Settings{}, 1, log)
	require.NoError(t, err)
	defer server.Close()

	udpAddr, err := net.ResolveUDPAddr("udp", server.LocalAddr().String())
	require.NoError(t, err)

	client, err := transport.NewClientSocket(udpAddr, transport.Settings{}, 2, log)
	require.NoError(t, err)
	defer client.Close()

	client.Send(nil, []byte("hello"))
	require.NoError(t, client.FlushSend())

	require.Eventually(t, func() bool {
		return len(server.Poll()) > 0
	}, time.Second, time.Millisecond)
}

func TestSocketPollDrainsUntilWouldBlock(t *testing.T) {
	log := zerolog.Nop()
	server, err := transport.NewServerSocket("127.0.0.1:0", transport.Settings{}, 1, log)
	require.NoError(t, err)
	defer server.Close()

	// With nothing sent, Poll must return immediately with no datagrams
	// rather than blocking.
	done := make(chan struct{})
	go func() {
		server.Poll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Poll blocked with nothing to read")
	}
}
